package io

import (
	"bytes"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing/fstest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// mapCreateFS stores created files into a fstest.MapFS.
type mapCreateFS struct {
	fsys   fstest.MapFS
	prefix string
}

type mapFile struct {
	bytes.Buffer
	fsys fstest.MapFS
	name string
}

func (mf *mapFile) Close() error {
	mf.fsys[mf.name] = &fstest.MapFile{Data: mf.Bytes(), Mode: 0644}
	return nil
}

func (mfs *mapCreateFS) Sub(name string) (sub CreateFS, err error) {
	file, ok := mfs.fsys[mfs.prefix+name]
	if !ok || !file.Mode.IsDir() {
		err = fs.ErrNotExist
		return
	}
	sub = &mapCreateFS{fsys: mfs.fsys, prefix: mfs.prefix + name + "/"}
	return
}

func (mfs *mapCreateFS) Create(name string) (file io.WriteCloser, err error) {
	file = &mapFile{fsys: mfs.fsys, name: mfs.prefix + name}
	return
}

func (mfs *mapCreateFS) Mkdir(name string, filemode fs.FileMode) (err error) {
	mfs.fsys[mfs.prefix+name] = &fstest.MapFile{Mode: fs.ModeDir | filemode}
	return
}

var _ = Describe("FileLoader", func() {
	var (
		fsys   fstest.MapFS
		loader *FileLoader
	)

	BeforeEach(func() {
		fsys = fstest.MapFS{
			"prog.img": &fstest.MapFile{Data: []byte("90 10 91 20\nA0 01\n")},
			"bad.img":  &fstest.MapFile{Data: []byte("90 1\n")},
		}
		loader = &FileLoader{Dir: fsys, Out: &mapCreateFS{fsys: fsys}}
	})

	It("should load an image", func() {
		image, err := loader.Load("prog.img")
		Expect(err).NotTo(HaveOccurred())
		Expect(image).To(Equal([]uint8{0x90, 0x10, 0x91, 0x20, 0xa0, 0x01}))
	})

	It("should report a missing image", func() {
		_, err := loader.Load("missing.img")
		Expect(err).To(MatchError(fs.ErrNotExist))

		var load ErrImageLoad
		Expect(err).To(BeAssignableToTypeOf(load))
		Expect(err.(ErrImageLoad).Name).To(Equal("missing.img"))
	})

	It("should report a corrupt image", func() {
		_, err := loader.Load("bad.img")
		Expect(err).To(MatchError(ErrMalformedImageByte("1")))
	})

	It("should store an image that loads back", func() {
		image := []uint8{1, 2, 3, 0xff}
		Expect(loader.Store("new.img", image)).To(Succeed())
		Expect(string(fsys["new.img"].Data)).To(Equal("01 02 03 FF\n"))

		loaded, err := loader.Load("new.img")
		Expect(err).NotTo(HaveOccurred())
		Expect(loaded).To(Equal(image))
	})

	It("should store into a subdirectory", func() {
		out := &mapCreateFS{fsys: fsys}
		Expect(out.Mkdir("images", 0755)).To(Succeed())
		sub, err := out.Sub("images")
		Expect(err).NotTo(HaveOccurred())

		loader.Out = sub
		Expect(loader.Store("a.img", []uint8{7})).To(Succeed())

		loaded, err := loader.Load("images/a.img")
		Expect(err).NotTo(HaveOccurred())
		Expect(loaded).To(Equal([]uint8{7}))
	})

	It("should refuse to store without an output", func() {
		loader.Out = nil
		Expect(loader.Store("new.img", nil)).To(MatchError(ErrReadOnly))
	})

	It("should refuse to store an oversize image", func() {
		err := loader.Store("big.img", make([]uint8, IMAGE_SIZE+1))
		Expect(err).To(MatchError(ErrImageTooLarge))
	})
})

var _ = Describe("DirFS", func() {
	var dir string

	BeforeEach(func() {
		var err error
		dir, err = os.MkdirTemp("", "cpuedu")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(os.RemoveAll, dir)
	})

	It("should store and load through the host file system", func() {
		loader := &FileLoader{Dir: os.DirFS(dir), Out: DirFS(dir)}

		Expect(loader.Store("prog.img", []uint8{0x90, 0x05})).To(Succeed())
		data, err := os.ReadFile(filepath.Join(dir, "prog.img"))
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(Equal("90 05\n"))

		image, err := loader.Load("prog.img")
		Expect(err).NotTo(HaveOccurred())
		Expect(image).To(Equal([]uint8{0x90, 0x05}))
	})

	It("should create subdirectories", func() {
		out := DirFS(dir)

		_, err := out.Sub("sub")
		Expect(err).To(MatchError(fs.ErrNotExist))

		Expect(out.Mkdir("sub", 0755)).To(Succeed())
		sub, err := out.Sub("sub")
		Expect(err).NotTo(HaveOccurred())
		Expect(sub).To(Equal(DirFS(filepath.Join(dir, "sub"))))
	})

	It("should refuse paths escaping the root", func() {
		_, err := DirFS(dir).Create("../escape.img")
		Expect(err).To(MatchError(fs.ErrInvalid))
	})
})

var _ = Describe("EepromLoader", func() {
	var (
		ee     *Eeprom
		loader *EepromLoader
	)

	BeforeEach(func() {
		ee = &Eeprom{}
		ee.Reset()
		loader = &EepromLoader{Storage: ee}
	})

	It("should find nothing on an erased device", func() {
		_, err := loader.Load("prog")
		Expect(err).To(MatchError(fs.ErrNotExist))
	})

	It("should store the header and the image", func() {
		Expect(loader.Store("ab", []uint8{0x90, 0x10, 0x00})).To(Succeed())
		Expect(ee.Data[:8]).To(Equal([]uint8{0x00, 0x03, 0x02, 'a', 'b', 0x90, 0x10, 0x00}))
		Expect(ee.Data[8]).To(Equal(uint8(EEPROM_ERASED)))
		Expect(ee.PageWrites).To(Equal(1))
	})

	It("should load what it stored", func() {
		image := make([]uint8, 1000)
		for n := range image {
			image[n] = uint8(n)
		}
		Expect(loader.Store("counting.img", image)).To(Succeed())

		loaded, err := loader.Load("counting.img")
		Expect(err).NotTo(HaveOccurred())
		Expect(loaded).To(Equal(image))

		_, err = loader.Load("other.img")
		Expect(err).To(MatchError(fs.ErrNotExist))
	})

	It("should refuse an image that does not fit", func() {
		err := loader.Store("big", make([]uint8, EEPROM_SIZE))
		Expect(err).To(MatchError(ErrStorageFull))

		err = loader.Store("huge", make([]uint8, 0x10000))
		Expect(err).To(MatchError(ErrImageTooLarge))
	})

	It("should refuse a long name", func() {
		name := string(bytes.Repeat([]byte{'n'}, 256))
		Expect(loader.Store(name, nil)).To(MatchError(ErrImageName))
	})

	It("should report a truncated image", func() {
		ee.Data[0] = 0xff
		ee.Data[1] = 0xff
		ee.Data[2] = 0
		_, err := loader.Load("")
		Expect(err).To(MatchError(io.EOF))
	})
})
