package io

import (
	"bytes"
	"io"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Eeprom", func() {
	var ee *Eeprom

	BeforeEach(func() {
		ee = &Eeprom{}
		ee.Reset()
	})

	It("should start erased", func() {
		Expect(ee.Data).To(HaveLen(EEPROM_SIZE))
		Expect(ee.Read(0)).To(Equal(uint8(EEPROM_ERASED)))
		Expect(ee.Read(EEPROM_SIZE - 1)).To(Equal(uint8(EEPROM_ERASED)))
		Expect(ee.PageWrites).To(Equal(0))
	})

	It("should erase on first use without a reset", func() {
		ee = &Eeprom{}
		Expect(ee.Read(10)).To(Equal(uint8(EEPROM_ERASED)))
		ee.Write(11, 0x42)
		Expect(ee.Data[11]).To(Equal(uint8(0x42)))
		Expect(ee.PageWrites).To(Equal(1))
	})

	It("should ignore address bits above the capacity", func() {
		ee.Write(0x8005, 0x5a)
		Expect(ee.Read(0x0005)).To(Equal(uint8(0x5a)))
		Expect(ee.Read(0xffff)).To(Equal(ee.Read(0x7fff)))
	})

	Describe("WriteBlock", func() {
		It("should use one page write inside a page", func() {
			n, err := ee.WriteBlock(0x40, bytes.Repeat([]uint8{1}, EEPROM_PAGE_SIZE))
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(EEPROM_PAGE_SIZE))
			Expect(ee.PageWrites).To(Equal(1))
		})

		It("should split at page boundaries", func() {
			data := []uint8{1, 2, 3, 4, 5, 6}
			n, err := ee.WriteBlock(EEPROM_PAGE_SIZE-2, data)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(len(data)))
			Expect(ee.PageWrites).To(Equal(2))
			Expect(ee.Data[EEPROM_PAGE_SIZE-2 : EEPROM_PAGE_SIZE+4]).To(Equal(data))
			Expect(ee.Data[EEPROM_PAGE_SIZE+4]).To(Equal(uint8(EEPROM_ERASED)))
		})

		It("should count every page touched", func() {
			_, err := ee.WriteBlock(10, make([]uint8, 3*EEPROM_PAGE_SIZE))
			Expect(err).NotTo(HaveOccurred())
			Expect(ee.PageWrites).To(Equal(4))
		})

		It("should refuse a block past the end", func() {
			n, err := ee.WriteBlock(EEPROM_SIZE-2, []uint8{1, 2, 3})
			Expect(err).To(MatchError(ErrStorageFull))
			Expect(n).To(Equal(0))
			Expect(ee.PageWrites).To(Equal(0))
			Expect(ee.Read(EEPROM_SIZE - 2)).To(Equal(uint8(EEPROM_ERASED)))
		})
	})

	Describe("ReadBlock", func() {
		It("should read back a block", func() {
			_, err := ee.WriteBlock(100, []uint8{9, 8, 7})
			Expect(err).NotTo(HaveOccurred())

			buf := make([]uint8, 4)
			n, err := ee.ReadBlock(100, buf)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(4))
			Expect(buf).To(Equal([]uint8{9, 8, 7, EEPROM_ERASED}))
		})

		It("should stop at the end of the device", func() {
			buf := make([]uint8, 4)
			n, err := ee.ReadBlock(EEPROM_SIZE-1, buf)
			Expect(err).To(MatchError(io.EOF))
			Expect(n).To(Equal(1))
		})
	})

	Describe("Marshal", func() {
		It("should round trip through a hex image", func() {
			ee.Write(0, 0x12)
			ee.Write(EEPROM_SIZE-1, 0x34)

			var buf bytes.Buffer
			Expect(ee.Marshal(&buf)).To(Succeed())

			other := &Eeprom{}
			Expect(other.Unmarshal(&buf)).To(Succeed())
			Expect(other.Data).To(Equal(ee.Data))
			Expect(other.PageWrites).To(Equal(0))
		})

		It("should erase past the end of a short image", func() {
			Expect(ee.Unmarshal(strings.NewReader("01 02"))).To(Succeed())
			Expect(ee.Data).To(HaveLen(EEPROM_SIZE))
			Expect(ee.Read(1)).To(Equal(uint8(2)))
			Expect(ee.Read(2)).To(Equal(uint8(EEPROM_ERASED)))
		})

		It("should refuse an image larger than the device", func() {
			var buf bytes.Buffer
			Expect(EncodeImage(&buf, make([]uint8, EEPROM_SIZE+1))).To(Succeed())
			Expect(ee.Unmarshal(&buf)).To(MatchError(ErrStorageFull))
		})

		It("should refuse a malformed image", func() {
			err := ee.Unmarshal(strings.NewReader("01 zz"))
			Expect(err).To(MatchError(ErrMalformedImageByte("zz")))
		})
	})
})
