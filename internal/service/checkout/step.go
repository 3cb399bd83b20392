package checkout

import "grocery-commerce/internal/domain"

// Step is a checkout stage. The current step is always derived from the
// selection and never stored.
type Step int

const (
	StepAddress Step = iota + 1
	StepTimeSlot
	StepPayment
	StepReview
)

func (s Step) String() string {
	switch s {
	case StepAddress:
		return "address"
	case StepTimeSlot:
		return "time_slot"
	case StepPayment:
		return "payment"
	case StepReview:
		return "review"
	default:
		return "unknown"
	}
}

// DeriveStep returns the lowest incomplete step, or StepReview when the
// address, time slot and payment are all selected, along with the steps that
// are complete. The result depends only on which selections are present.
func DeriveStep(sel domain.CheckoutSelection) (Step, []Step) {
	done := map[Step]bool{
		StepAddress:  sel.Address != nil,
		StepTimeSlot: sel.TimeSlot != nil,
		StepPayment:  sel.Payment != nil,
	}
	current := StepReview
	var completed []Step
	for _, st := range []Step{StepAddress, StepTimeSlot, StepPayment} {
		if done[st] {
			completed = append(completed, st)
			continue
		}
		if st < current {
			current = st
		}
	}
	return current, completed
}
