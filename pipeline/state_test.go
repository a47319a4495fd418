package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateTransitions(t *testing.T) {
	tests := []struct {
		from, to State
		ok       bool
	}{
		{NotStarted, Phase1Running, true},
		{NotStarted, Complete, false},
		{Phase1Running, Phase1Done, true},
		{Phase1Running, Failed, true},
		{Phase1Running, Phase2Running, false},
		{Phase1Done, Phase2Running, true},
		{Phase1Done, Failed, true},
		{Phase2Running, Complete, true},
		{Phase2Running, Failed, true},
		{Complete, Failed, false},
		{Failed, Phase1Running, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.ok, tt.from.CanTransition(tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "phase2_running", Phase2Running.String())
	assert.Equal(t, "state(9)", State(9).String())
	bs, err := Failed.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "failed", string(bs))
	assert.True(t, Phase1Running.Running())
	assert.False(t, Phase1Done.Running())
	assert.True(t, Complete.Terminal())
	assert.False(t, NotStarted.Terminal())
}

func TestRunTransition(t *testing.T) {
	run := newRun(&Request{Goals: []string{"a"}})
	assert.Equal(t, NotStarted, run.State())
	require.NoError(t, run.transition(Phase1Running))
	err := run.transition(Complete)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, Phase1Running, run.State())
	require.NoError(t, run.transition(Failed))
	assert.True(t, run.State().Terminal())
}

func TestFailedStage(t *testing.T) {
	assert.Equal(t, "", FailedStage(nil))
	assert.Equal(t, "critique", FailedStage(&StageError{Stage: "critique", Err: errBoom}))
	assert.Equal(t, "mockup", FailedStage(&ExtractionError{Stage: "mockup", Err: errBoom}))
}
