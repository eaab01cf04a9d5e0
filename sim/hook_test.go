package sim

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type recordingHook struct {
	ctxs []HookCtx
}

func (h *recordingHook) Func(ctx HookCtx) {
	h.ctxs = append(h.ctxs, ctx)
}

var hookPosTest = &HookPos{Name: "Test"}

var _ = Describe("HookableBase", func() {
	var (
		domain *HookableBase
	)

	BeforeEach(func() {
		domain = NewHookableBase()
	})

	It("should invoke hooks in registration order", func() {
		order := []string{}
		first := &orderHook{name: "first", order: &order}
		second := &orderHook{name: "second", order: &order}

		domain.AcceptHook(first)
		domain.AcceptHook(second)
		domain.InvokeHook(HookCtx{Domain: domain, Pos: hookPosTest})

		Expect(order).To(Equal([]string{"first", "second"}))
		Expect(domain.NumHooks()).To(Equal(2))
		Expect(domain.Hooks()).To(HaveLen(2))
	})

	It("should pass the context through", func() {
		hook := &recordingHook{}
		domain.AcceptHook(hook)

		domain.InvokeHook(HookCtx{
			Domain: domain,
			Pos:    hookPosTest,
			Item:   42,
			Detail: "detail",
		})

		Expect(hook.ctxs).To(HaveLen(1))
		Expect(hook.ctxs[0].Domain).To(BeIdenticalTo(domain))
		Expect(hook.ctxs[0].Pos).To(BeIdenticalTo(hookPosTest))
		Expect(hook.ctxs[0].Item).To(Equal(42))
		Expect(hook.ctxs[0].Detail).To(Equal("detail"))
	})

	It("should panic when the same hook is registered twice", func() {
		hook := &recordingHook{}
		domain.AcceptHook(hook)

		Expect(func() { domain.AcceptHook(hook) }).To(Panic())
	})
})

type orderHook struct {
	name  string
	order *[]string
}

func (h *orderHook) Func(_ HookCtx) {
	*h.order = append(*h.order, h.name)
}

var _ = Describe("LogHookBase", func() {
	It("should write lines without prefix", func() {
		buf := new(bytes.Buffer)
		base := NewLogHookBase(buf)

		base.Printf("hello %d", 1)

		Expect(buf.String()).To(Equal("hello 1\n"))
	})
})

var _ = Describe("IDGenerator", func() {
	It("should generate sequential ids", func() {
		g := &sequentialIDGenerator{}

		Expect(g.Generate()).To(Equal("1"))
		Expect(g.Generate()).To(Equal("2"))
	})

	It("should generate distinct global ids", func() {
		g := globalIDGenerator{}

		Expect(g.Generate()).NotTo(Equal(g.Generate()))
	})
})
