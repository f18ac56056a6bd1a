package models

type Phase string

const (
	PhaseMenstrual  Phase = "menstrual"
	PhaseFollicular Phase = "follicular"
	PhaseOvulatory  Phase = "ovulatory"
	PhaseLuteal     Phase = "luteal"
)

// Phases lists every phase in cycle order.
func Phases() []Phase {
	return []Phase{PhaseMenstrual, PhaseFollicular, PhaseOvulatory, PhaseLuteal}
}
