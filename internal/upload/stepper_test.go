package upload

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStepperSaturatesAtBothEnds(t *testing.T) {
	s := NewStepper(4)

	s.Back()
	assert.Equal(t, 0, s.Current(), "back at step 0 is a no-op")

	s.Next()
	s.Next()
	s.Next()
	assert.Equal(t, 3, s.Current())

	s.Next()
	assert.Equal(t, 3, s.Current(), "next at the last step is a no-op")
}

func TestStepperGoToClamps(t *testing.T) {
	s := NewStepper(4)

	s.GoTo(99)
	assert.Equal(t, 3, s.Current())

	s.GoTo(-5)
	assert.Equal(t, 0, s.Current())

	s.GoTo(2)
	assert.Equal(t, 2, s.Current())
}

func TestStepperReset(t *testing.T) {
	s := NewStepper(4)
	s.GoTo(3)

	s.Reset()
	assert.Equal(t, 0, s.Current())
}
