package upload_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/festflow/festflow/internal/upload"
)

func TestUpload(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Upload Module Suite")
}

var _ = Describe("DiskStore", func() {
	var (
		dir   string
		store *upload.DiskStore
	)

	BeforeEach(func() {
		var err error
		dir, err = os.MkdirTemp("", "uploads")
		Expect(err).ToNot(HaveOccurred())

		store, err = upload.NewDiskStore(dir)
		Expect(err).ToNot(HaveOccurred())
	})

	AfterEach(func() {
		os.RemoveAll(dir)
	})

	It("writes the file and keeps the original basename as a suffix", func() {
		name, err := store.Save("receipt.jpg", strings.NewReader("image-bytes"))

		Expect(err).ToNot(HaveOccurred())
		Expect(name).To(HaveSuffix("_receipt.jpg"))

		data, err := os.ReadFile(filepath.Join(dir, name))
		Expect(err).ToNot(HaveOccurred())
		Expect(string(data)).To(Equal("image-bytes"))
	})

	It("never collides on the same filename", func() {
		first, err := store.Save("receipt.jpg", strings.NewReader("a"))
		Expect(err).ToNot(HaveOccurred())

		second, err := store.Save("receipt.jpg", strings.NewReader("b"))
		Expect(err).ToNot(HaveOccurred())

		Expect(first).ToNot(Equal(second))
	})

	It("strips directory components from the client name", func() {
		name, err := store.Save("../../etc/passwd", strings.NewReader("x"))

		Expect(err).ToNot(HaveOccurred())
		Expect(name).To(HaveSuffix("_passwd"))
		Expect(name).ToNot(ContainSubstring(".."))

		_, err = os.Stat(filepath.Join(dir, name))
		Expect(err).ToNot(HaveOccurred())
	})
})
