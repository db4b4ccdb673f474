package io

import (
	"bytes"
	"errors"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type failWriter struct{}

func (failWriter) Write(p []byte) (int, error) {
	return 0, errors.New("write failed")
}

var _ = Describe("Image", func() {
	Describe("EncodeImage", func() {
		It("should write sixteen bytes per line", func() {
			image := make([]uint8, 18)
			for n := range image {
				image[n] = uint8(n * 15)
			}

			var buf bytes.Buffer
			Expect(EncodeImage(&buf, image)).To(Succeed())
			Expect(buf.String()).To(Equal(
				"00 0F 1E 2D 3C 4B 5A 69 78 87 96 A5 B4 C3 D2 E1\n" +
					"F0 FF\n"))
		})

		It("should write nothing for an empty image", func() {
			var buf bytes.Buffer
			Expect(EncodeImage(&buf, nil)).To(Succeed())
			Expect(buf.Len()).To(Equal(0))
		})

		It("should report write errors", func() {
			Expect(EncodeImage(failWriter{}, []uint8{1})).NotTo(Succeed())
		})
	})

	Describe("DecodeImage", func() {
		It("should round trip", func() {
			image := []uint8{0x90, 0x10, 0x91, 0x20, 0xa0, 0x01}

			var buf bytes.Buffer
			Expect(EncodeImage(&buf, image)).To(Succeed())

			decoded, err := DecodeImage(&buf)
			Expect(err).NotTo(HaveOccurred())
			Expect(decoded).To(Equal(image))
		})

		It("should accept any whitespace and word pairs", func() {
			decoded, err := DecodeImage(strings.NewReader("9010\n\t91 20\r\n  a0\n01"))
			Expect(err).NotTo(HaveOccurred())
			Expect(decoded).To(Equal([]uint8{0x90, 0x10, 0x91, 0x20, 0xa0, 0x01}))
		})

		It("should decode an empty image", func() {
			decoded, err := DecodeImage(strings.NewReader(" \n"))
			Expect(err).NotTo(HaveOccurred())
			Expect(decoded).To(BeEmpty())
		})

		DescribeTable("malformed bytes",
			func(text string, word string) {
				decoded, err := DecodeImage(strings.NewReader(text))
				Expect(err).To(MatchError(ErrMalformedImageByte(word)))
				Expect(decoded).To(BeNil())
			},
			Entry("odd digits", "00 123", "123"),
			Entry("not hex", "0g", "0g"),
			Entry("prefix", "0x10", "0x10"),
			Entry("single digit", "1 2", "1"),
		)

		It("should refuse an image larger than instruction memory", func() {
			text := strings.Repeat("00 ", IMAGE_SIZE)
			decoded, err := DecodeImage(strings.NewReader(text))
			Expect(err).NotTo(HaveOccurred())
			Expect(decoded).To(HaveLen(IMAGE_SIZE))

			decoded, err = DecodeImage(strings.NewReader(text + "00"))
			Expect(err).To(MatchError(ErrImageTooLarge))
			Expect(decoded).To(BeNil())
		})
	})
})
