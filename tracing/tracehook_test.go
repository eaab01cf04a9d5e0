package tracing

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/pagesim/sim"
	"github.com/sarchlab/pagesim/simulation"
)

var _ = Describe("CollectTrace", func() {
	var (
		mockCtrl *gomock.Controller
		domain   *MockNamedHookable
		tracer   *MockTracer
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		domain = NewMockNamedHookable(mockCtrl)
		tracer = NewMockTracer(mockCtrl)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should attach a hook that forwards to the tracer", func() {
		var hook sim.Hook

		domain.EXPECT().Hooks().Return(nil)
		domain.EXPECT().AcceptHook(gomock.Any()).Do(func(h sim.Hook) {
			hook = h
		})

		CollectTrace(domain, tracer)

		info := simulation.AccessInfo{Moment: 1, Outcome: simulation.Hit}
		stats := simulation.Stats{Events: 1}
		tracer.EXPECT().TraceAccess(info)
		tracer.EXPECT().EndRun(stats)

		hook.Func(sim.HookCtx{Pos: simulation.HookPosAccess, Detail: info})
		hook.Func(sim.HookCtx{Pos: simulation.HookPosRunEnd, Detail: stats})
		hook.Func(sim.HookCtx{Pos: &sim.HookPos{Name: "Other"}})
	})

	It("should refuse to attach the same tracer twice", func() {
		domain.EXPECT().Hooks().Return([]sim.Hook{&traceHook{t: tracer}})
		domain.EXPECT().Name().Return("Engine")

		Expect(func() { CollectTrace(domain, tracer) }).To(Panic())
	})
})
