package upload

// Stepper is the linear step controller for the upload wizard. It knows
// nothing about step semantics; gating a transition is the caller's job.
type Stepper struct {
	current  int
	maxSteps int
}

// NewStepper creates a stepper over steps 0..maxSteps-1
func NewStepper(maxSteps int) *Stepper {
	if maxSteps < 1 {
		maxSteps = 1
	}
	return &Stepper{maxSteps: maxSteps}
}

// Current returns the active step
func (s *Stepper) Current() int {
	return s.current
}

// Next advances one step; a no-op at the last step
func (s *Stepper) Next() {
	if s.current < s.maxSteps-1 {
		s.current++
	}
}

// Back retreats one step; a no-op at step 0
func (s *Stepper) Back() {
	if s.current > 0 {
		s.current--
	}
}

// GoTo jumps to step n, clamped into range
func (s *Stepper) GoTo(n int) {
	if n < 0 {
		n = 0
	}
	if n > s.maxSteps-1 {
		n = s.maxSteps - 1
	}
	s.current = n
}

// Reset returns to step 0
func (s *Stepper) Reset() {
	s.current = 0
}
