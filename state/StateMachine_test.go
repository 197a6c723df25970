package state_test

import (
	"aquaflow/state"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("StateMachine", func() {
	var (
		stateMachine *state.StateMachine
	)

	BeforeEach(func() {
		//            PENDING   CONFIRMED    CANCELLED   WAITING     DELIVERED
		// PENDING      -        V (confirm)  V (cancel)  X           X
		// CONFIRMED    X        -            X           V (assign)  X
		// WAITING      X        X            X           -           V (deliver)
		stateMachine = state.NewStateMachine(
			[]state.State{{Name: "PENDING"}, {Name: "CONFIRMED"}, {Name: "CANCELLED", Category: state.Terminal},
				{Name: "WAITING", Category: state.InDelivery}, {Name: "DELIVERED", Category: state.Terminal}},
			[]state.Transition{
				{Name: "confirm", From: state.State{Name: "PENDING"}, To: state.State{Name: "CONFIRMED"}},
				{Name: "cancel", From: state.State{Name: "PENDING"}, To: state.State{Name: "CANCELLED", Category: state.Terminal}},
				{Name: "assign", From: state.State{Name: "CONFIRMED"}, To: state.State{Name: "WAITING", Category: state.InDelivery}},
				{Name: "deliver", From: state.State{Name: "WAITING", Category: state.InDelivery}, To: state.State{Name: "DELIVERED", Category: state.Terminal}},
			})
	})

	Describe("NewStateMachine", func() {
		It("should create new State Machine successfully", func() {
			Expect(stateMachine).NotTo(BeZero())
			Expect(len(stateMachine.States)).To(Equal(5))
			Expect(len(stateMachine.Transitions)).To(Equal(4))
		})
	})

	Describe("FindState", func() {
		It("should find states by name", func() {
			s, found := stateMachine.FindState("WAITING")
			Expect(found).To(BeTrue())
			Expect(s).To(Equal(state.State{Name: "WAITING", Category: state.InDelivery}))

			_, found = stateMachine.FindState("UNKNOWN")
			Expect(found).To(BeFalse())
		})
	})

	Describe("AvailableTransitions", func() {
		It("should return availableTransitions as expected", func() {
			Ω(stateMachine.AvailableTransitions("PENDING", "")).Should(Equal([]state.Transition{
				{Name: "confirm", From: state.State{Name: "PENDING"}, To: state.State{Name: "CONFIRMED"}},
				{Name: "cancel", From: state.State{Name: "PENDING"}, To: state.State{Name: "CANCELLED", Category: state.Terminal}},
			}))

			Ω(stateMachine.AvailableTransitions("", "DELIVERED")).Should(Equal([]state.Transition{
				{Name: "deliver", From: state.State{Name: "WAITING", Category: state.InDelivery}, To: state.State{Name: "DELIVERED", Category: state.Terminal}},
			}))

			Ω(stateMachine.AvailableTransitions("CONFIRMED", "WAITING")).Should(Equal([]state.Transition{
				{Name: "assign", From: state.State{Name: "CONFIRMED"}, To: state.State{Name: "WAITING", Category: state.InDelivery}},
			}))

			// terminal states have no way out
			Ω(len(stateMachine.AvailableTransitions("CANCELLED", ""))).Should(Equal(0))
			Ω(len(stateMachine.AvailableTransitions("DELIVERED", ""))).Should(Equal(0))

			// no backwards edges
			Ω(len(stateMachine.AvailableTransitions("CONFIRMED", "PENDING"))).Should(Equal(0))
			Ω(len(stateMachine.AvailableTransitions("CONFIRMED", "CANCELLED"))).Should(Equal(0))

			Ω(len(stateMachine.AvailableTransitions("UNKNOWN", ""))).Should(Equal(0))
		})
	})
})
