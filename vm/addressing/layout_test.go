package addressing

import (
	"errors"
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/pagesim/vm"
)

var _ = Describe("Layout", func() {
	It("should give all bits to a dense table", func() {
		l, err := NewLayout(4096, vm.Dense)

		Expect(err).NotTo(HaveOccurred())
		Expect(l.OffsetBits).To(Equal(uint(12)))
		Expect(l.OuterBits).To(Equal(uint(20)))
		Expect(l.SecondBits).To(BeZero())
		Expect(l.ThirdBits).To(BeZero())
	})

	It("should let the outer level absorb the remainder of a two-level table",
		func() {
			l, err := NewLayout(2048, vm.TwoLevel)

			Expect(err).NotTo(HaveOccurred())
			Expect(l.OffsetBits).To(Equal(uint(11)))
			Expect(l.SecondBits).To(Equal(uint(10)))
			Expect(l.OuterBits).To(Equal(uint(11)))
		})

	It("should let the outer level absorb the remainder of a three-level table",
		func() {
			l, err := NewLayout(4096, vm.ThreeLevel)

			Expect(err).NotTo(HaveOccurred())
			Expect(l.ThirdBits).To(Equal(uint(6)))
			Expect(l.SecondBits).To(Equal(uint(6)))
			Expect(l.OuterBits).To(Equal(uint(8)))
			Expect(l.TableSize(0)).To(Equal(256))
			Expect(l.TableSize(1)).To(Equal(64))
			Expect(l.TableSize(2)).To(Equal(64))
		})

	It("should only use the offset for an inverted table", func() {
		l, err := NewLayout(1024, vm.Inverted)

		Expect(err).NotTo(HaveOccurred())
		Expect(l.OffsetBits).To(Equal(uint(10)))
		Expect(l.OuterBits).To(BeZero())

		ix := l.Decompose(0xdeadbeef)
		Expect(ix.Outer).To(Equal(NoIndex))
		Expect(l.PageNumber(0xdeadbeef)).To(Equal(uint32(0xdeadbeef >> 10)))
	})

	It("should reject page sizes that are not a power of two", func() {
		_, err := NewLayout(3000, vm.Dense)

		var cfgErr *vm.ConfigurationError
		Expect(errors.As(err, &cfgErr)).To(BeTrue())
		Expect(cfgErr.Field).To(Equal("page size"))
	})

	It("should reject a zero page size", func() {
		_, err := NewLayout(0, vm.Dense)
		Expect(err).To(HaveOccurred())
	})

	It("should reject unknown table types", func() {
		_, err := NewLayout(4096, vm.TableType(9))
		Expect(err).To(HaveOccurred())
	})

	It("should decompose a three-level address", func() {
		l, _ := NewLayout(4096, vm.ThreeLevel)

		// outer 8 bits | second 6 bits | third 6 bits | offset 12 bits
		addr := uint32(0xAB<<24 | 0x2A<<18 | 0x15<<12 | 0x123)
		ix := l.Decompose(addr)

		Expect(ix.Outer).To(Equal(0xAB))
		Expect(ix.Second).To(Equal(0x2A))
		Expect(ix.Third).To(Equal(0x15))
		Expect(ix.Offset).To(Equal(uint32(0x123)))
	})

	It("should decompose a two-level address", func() {
		l, _ := NewLayout(4096, vm.TwoLevel)

		ix := l.Decompose(0x12345678)

		Expect(ix.Outer).To(Equal(0x12345678 >> 22))
		Expect(ix.Second).To(Equal((0x12345678 >> 12) & 0x3ff))
		Expect(ix.Third).To(Equal(NoIndex))
	})

	It("should handle one-byte pages", func() {
		l, err := NewLayout(1, vm.Dense)

		Expect(err).NotTo(HaveOccurred())
		Expect(l.OuterBits).To(Equal(uint(32)))
		Expect(l.Decompose(0xffffffff).Outer).To(Equal(0xffffffff))
	})

	DescribeTable("should round trip addresses",
		func(pageSize uint64, tableType vm.TableType) {
			l, err := NewLayout(pageSize, tableType)
			Expect(err).NotTo(HaveOccurred())

			rng := rand.New(rand.NewSource(7))
			for i := 0; i < 1000; i++ {
				addr := rng.Uint32()
				Expect(l.Compose(l.Decompose(addr))).To(Equal(addr))
			}
		},
		Entry("dense 4K", uint64(4096), vm.Dense),
		Entry("two-level 1K", uint64(1024), vm.TwoLevel),
		Entry("two-level 8K", uint64(8192), vm.TwoLevel),
		Entry("three-level 4K", uint64(4096), vm.ThreeLevel),
		Entry("three-level 2K", uint64(2048), vm.ThreeLevel),
		Entry("three-level 1B", uint64(1), vm.ThreeLevel),
	)
})
