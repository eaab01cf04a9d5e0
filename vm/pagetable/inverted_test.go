package pagetable

import (
	"github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = ginkgo.Describe("Inverted table", func() {
	var table *Inverted

	ginkgo.BeforeEach(func() {
		var err error
		table, err = NewInverted(3)
		Expect(err).NotTo(HaveOccurred())
	})

	ginkgo.It("should reserve the first free slot", func() {
		index, res := table.FindOrReserve(42)

		Expect(res).To(Equal(Reserved))
		Expect(index).To(Equal(0))
	})

	ginkgo.It("should find resident pages", func() {
		table.Install(0, 42, false, 1)

		index, res := table.FindOrReserve(42)

		Expect(res).To(Equal(Found))
		Expect(index).To(Equal(0))
	})

	ginkgo.It("should prefer a hit behind a free slot", func() {
		table.Install(0, 1, false, 1)
		table.Install(2, 9, false, 2)

		index, res := table.FindOrReserve(9)

		Expect(res).To(Equal(Found))
		Expect(index).To(Equal(2))
	})

	ginkgo.It("should report a full table", func() {
		table.Install(0, 1, false, 1)
		table.Install(1, 2, false, 2)
		table.Install(2, 3, false, 3)

		index, res := table.FindOrReserve(4)

		Expect(res).To(Equal(Full))
		Expect(index).To(Equal(-1))
	})

	ginkgo.It("should not confuse page zero with a free slot", func() {
		index, res := table.FindOrReserve(0)
		Expect(res).To(Equal(Reserved))

		table.Install(index, 0, false, 1)

		index, res = table.FindOrReserve(0)
		Expect(res).To(Equal(Found))
		Expect(index).To(Equal(0))
	})

	ginkgo.It("should track hits", func() {
		table.Install(1, 5, false, 1)
		table.Touch(1, false, 4)
		table.Touch(1, true, 6)

		e := table.Entry(1)
		Expect(e.AccessCount).To(Equal(uint32(3)))
		Expect(e.LastAccess).To(Equal(uint64(6)))
		Expect(e.Modified).To(BeTrue())
		Expect(table.LastAccess(1)).To(Equal(uint64(6)))
		Expect(table.AccessCount(1)).To(Equal(uint32(3)))
	})

	ginkgo.It("should never clear the modified flag on a read", func() {
		table.Install(0, 5, true, 1)
		table.Touch(0, false, 2)

		Expect(table.Entry(0).Modified).To(BeTrue())
	})

	ginkgo.It("should report whether the replaced page was dirty", func() {
		Expect(table.Install(0, 5, true, 1)).To(BeFalse())
		Expect(table.Install(0, 6, false, 2)).To(BeTrue())
		Expect(table.Install(0, 7, false, 3)).To(BeFalse())

		e := table.Entry(0)
		Expect(e.PageID).To(Equal(uint32(7)))
		Expect(e.AccessCount).To(Equal(uint32(1)))
	})

	ginkgo.It("should panic when touching an empty slot", func() {
		Expect(func() { table.Touch(0, false, 1) }).To(Panic())
	})

	ginkgo.It("should reject an empty frame pool", func() {
		_, err := NewInverted(0)
		Expect(err).To(HaveOccurred())
	})
})
