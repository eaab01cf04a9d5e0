package frame

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/pagesim/vm"
)

type mapping struct {
	id    vm.EntryID
	frame int
}

type fakeOwner struct {
	mapped   []mapping
	unmapped []vm.EntryID
}

func (o *fakeOwner) Map(id vm.EntryID, frame int) {
	o.mapped = append(o.mapped, mapping{id, frame})
}

func (o *fakeOwner) Unmap(id vm.EntryID) {
	o.unmapped = append(o.unmapped, id)
}

var _ = Describe("Pool", func() {
	var (
		pool  *Pool
		owner *fakeOwner
	)

	BeforeEach(func() {
		var err error
		pool, err = NewPool(4*4096, 4096)
		Expect(err).NotTo(HaveOccurred())

		owner = &fakeOwner{}
	})

	It("should truncate the frame count", func() {
		p, err := NewPool(4096*3+100, 4096)

		Expect(err).NotTo(HaveOccurred())
		Expect(p.Len()).To(Equal(3))
	})

	It("should reject memory smaller than a page", func() {
		_, err := NewPool(100, 4096)

		var cfgErr *vm.ConfigurationError
		Expect(errors.As(err, &cfgErr)).To(BeTrue())
		Expect(cfgErr.Field).To(Equal("memory size"))
	})

	It("should reject pools beyond the limit", func() {
		_, err := NewPool(uint64(MaxFrames+1)*1024, 1024)

		var resErr *vm.ResourceError
		Expect(errors.As(err, &resErr)).To(BeTrue())
	})

	It("should find free frames first fit", func() {
		index, ok := pool.FindFree()
		Expect(ok).To(BeTrue())
		Expect(index).To(Equal(0))

		pool.AssignFree(0, owner, 10, false, 1)
		pool.AssignFree(1, owner, 11, false, 2)

		index, ok = pool.FindFree()
		Expect(ok).To(BeTrue())
		Expect(index).To(Equal(2))
		Expect(pool.NumAllocated()).To(Equal(2))
	})

	It("should report no free frame when all are allocated", func() {
		for i := 0; i < pool.Len(); i++ {
			pool.AssignFree(i, owner, vm.EntryID(i), false, uint64(i+1))
		}

		_, ok := pool.FindFree()
		Expect(ok).To(BeFalse())
	})

	It("should link the frame and the entry on assignment", func() {
		pool.AssignFree(2, owner, 42, true, 5)

		f := pool.Frame(2)
		Expect(f).To(Equal(Frame{
			Allocated:   true,
			Modified:    true,
			LastAccess:  5,
			AccessCount: 1,
			Owner:       42,
		}))
		Expect(owner.mapped).To(Equal([]mapping{{42, 2}}))
	})

	It("should refuse to assign an allocated frame as free", func() {
		pool.AssignFree(0, owner, 1, false, 1)

		Expect(func() { pool.AssignFree(0, owner, 2, false, 2) }).To(Panic())
	})

	It("should evict the previous owner", func() {
		pool.AssignFree(1, owner, 7, true, 1)
		pool.Touch(1, false, 2)

		wasDirty := pool.EvictAndAssign(1, owner, 8, false, 3)

		Expect(wasDirty).To(BeTrue())
		Expect(owner.unmapped).To(Equal([]vm.EntryID{7}))
		Expect(owner.mapped).To(Equal([]mapping{{7, 1}, {8, 1}}))

		f := pool.Frame(1)
		Expect(f.Owner).To(Equal(vm.EntryID(8)))
		Expect(f.Modified).To(BeFalse())
		Expect(f.AccessCount).To(Equal(uint32(1)))
		Expect(f.LastAccess).To(Equal(uint64(3)))
	})

	It("should report clean victims", func() {
		pool.AssignFree(0, owner, 7, false, 1)

		Expect(pool.EvictAndAssign(0, owner, 8, true, 2)).To(BeFalse())
		Expect(pool.Frame(0).Modified).To(BeTrue())
	})

	It("should refuse to evict a free frame", func() {
		Expect(func() { pool.EvictAndAssign(0, owner, 1, false, 1) }).
			To(Panic())
	})

	It("should update statistics on touch", func() {
		pool.AssignFree(0, owner, 7, false, 1)
		pool.Touch(0, false, 4)
		pool.Touch(0, true, 9)
		pool.Touch(0, false, 11)

		f := pool.Frame(0)
		Expect(f.AccessCount).To(Equal(uint32(4)))
		Expect(f.LastAccess).To(Equal(uint64(11)))
		Expect(f.Modified).To(BeTrue())
		Expect(pool.LastAccess(0)).To(Equal(uint64(11)))
		Expect(pool.AccessCount(0)).To(Equal(uint32(4)))
	})

	It("should mirror without an owner", func() {
		pool.AssignFree(0, nil, vm.NoEntry, true, 1)
		wasDirty := pool.EvictAndAssign(0, nil, vm.NoEntry, false, 2)

		Expect(wasDirty).To(BeTrue())
		Expect(pool.Frame(0).Owner).To(Equal(vm.NoEntry))
	})

	It("should panic on out-of-range frames", func() {
		Expect(func() { pool.Touch(4, false, 1) }).To(Panic())
		Expect(func() { pool.Frame(-1) }).To(Panic())
	})
})
