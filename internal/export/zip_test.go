package export

import (
	"archive/zip"
	"bytes"
	"io"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ZIP export", func() {
	It("bundles the other formats under one base name", func() {
		rec := sampleRecord()
		res, err := Export("zip", rec)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.ContentType).To(Equal("application/zip"))
		Expect(res.Filename).To(Equal("Cafe_Mocha_Co_1709800000000.zip"))

		zr, err := zip.NewReader(bytes.NewReader(res.Data), int64(len(res.Data)))
		Expect(err).NotTo(HaveOccurred())

		contents := map[string][]byte{}
		for _, f := range zr.File {
			rc, err := f.Open()
			Expect(err).NotTo(HaveOccurred())
			data, err := io.ReadAll(rc)
			Expect(err).NotTo(HaveOccurred())
			rc.Close()
			contents[f.Name] = data
		}

		base := "Cafe_Mocha_Co_1709800000000"
		Expect(contents).To(HaveLen(5))
		Expect(contents).To(HaveKey(base + ".xlsx"))
		Expect(contents).To(HaveKey(base + ".tally.xml"))

		tsv, err := renderTSV(rec)
		Expect(err).NotTo(HaveOccurred())
		Expect(contents[base+".tsv"]).To(Equal(tsv))
		Expect(string(contents[base+".txt"])).To(Equal(rec.Raw))
	})
})
