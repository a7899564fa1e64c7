package exam

// Phase enumerates the lifecycle states of an in-memory exam session.
type Phase string

const (
	// PhaseActive — a question is shown and navigation is free.
	PhaseActive Phase = "ACTIVE"
	// PhaseFeedback — the current answer is locked and its correctness is
	// visible; only an advance event is accepted.
	PhaseFeedback Phase = "FEEDBACK"
	// PhasePaused — a progress snapshot was taken; terminal for this
	// in-memory session, resuming constructs a new one.
	PhasePaused Phase = "PAUSED"
	// PhaseSubmitting — scoring is done but the attempt write has not been
	// confirmed; the session stays here until the write succeeds.
	PhaseSubmitting Phase = "SUBMITTING"
	// PhaseCompleted — the attempt is in the ledger.
	PhaseCompleted Phase = "COMPLETED"
	// PhaseExited — discarded without any answers and without persistence.
	PhaseExited Phase = "EXITED"
)

// Terminal reports whether no further transitions are possible.
func (p Phase) Terminal() bool {
	switch p {
	case PhasePaused, PhaseCompleted, PhaseExited:
		return true
	}
	return false
}
