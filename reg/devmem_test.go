package reg_test

import (
	"encoding/binary"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/bitrev/reg"
)

var _ = Describe("DevMem", func() {
	var (
		path string
		page uint32
		dm   *reg.DevMem
	)

	BeforeEach(func() {
		page = uint32(os.Getpagesize())
		path = filepath.Join(GinkgoT().TempDir(), "mem")
		Expect(os.WriteFile(path, make([]byte, 2*page), 0o600)).To(Succeed())

		var err error
		dm, err = reg.OpenDevMem(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(dm.Map(page+0x10, 0x10)).To(Succeed())
	})

	AfterEach(func() {
		Expect(dm.Close()).To(Succeed())
	})

	It("should store through to the backing memory", func() {
		Expect(dm.Write32(page+0x14, 0xCAFEF00D)).To(Succeed())
		Expect(dm.Read32(page + 0x14)).To(Equal(uint32(0xCAFEF00D)))

		raw, err := os.ReadFile(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(binary.NativeEndian.Uint32(raw[page+0x14:])).
			To(Equal(uint32(0xCAFEF00D)))
	})

	It("should reject addresses outside the window", func() {
		_, err := dm.Read32(page + 0x20)
		Expect(err).To(MatchError(reg.ErrAddress))
		Expect(dm.Write32(page, 1)).To(MatchError(reg.ErrAddress))
	})

	It("should reject unaligned addresses", func() {
		_, err := dm.Read32(page + 0x11)
		Expect(err).To(MatchError(reg.ErrAddress))
	})
})
