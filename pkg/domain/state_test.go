package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		state State
		want  int
	}{
		{StateValid, 0},
		{StateSolveFailed, 1},
		{StateInvalid, 2},
		{StateSolving, 1},
		{StateInit, 1},
	}
	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.state))
		})
	}
}

func TestCanTransition(t *testing.T) {
	allowed := [][2]State{
		{StateInit, StateSolving},
		{StateSolving, StateSolveFailed},
		{StateSolving, StatePlanProduced},
		{StatePlanProduced, StateValidating},
		{StateValidating, StateValid},
		{StateValidating, StateInvalid},
		{StateValid, StateDone},
		{StateInvalid, StateDone},
		{StateSolveFailed, StateDone},
	}
	for _, pair := range allowed {
		assert.True(t, CanTransition(pair[0], pair[1]), "%s -> %s", pair[0], pair[1])
	}

	assert.False(t, CanTransition(StateInit, StateValidating))
	assert.False(t, CanTransition(StateSolving, StateValid))
	assert.False(t, CanTransition(StateSolveFailed, StateValidating))
	assert.False(t, CanTransition(StateDone, StateInit))
}

func TestTerminal(t *testing.T) {
	assert.True(t, StateValid.Terminal())
	assert.True(t, StateInvalid.Terminal())
	assert.True(t, StateSolveFailed.Terminal())
	assert.False(t, StatePlanProduced.Terminal())
}
