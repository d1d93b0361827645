package lottery

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStepsAt(t *testing.T) {
	noop := func() {}
	steps := StepsAt(
		[]time.Duration{time.Second, 1500 * time.Millisecond, 4 * time.Second},
		[]func(){noop, noop, noop},
	)
	require.Len(t, steps, 3)
	assert.Equal(t, time.Second, steps[0].Delay)
	assert.Equal(t, 500*time.Millisecond, steps[1].Delay)
	assert.Equal(t, 2500*time.Millisecond, steps[2].Delay)
}

func TestSequenceRunsStepsInOrder(t *testing.T) {
	clk := NewManualClock(time.Unix(0, 0))
	var got []int
	done := false
	seq := RunSequence(clk, []Step{
		{Delay: 100 * time.Millisecond, Effect: func() { got = append(got, 1) }},
		{Delay: 200 * time.Millisecond, Effect: func() { got = append(got, 2) }},
		{Delay: 300 * time.Millisecond, Effect: func() { got = append(got, 3) }},
	}, func() { done = true })

	assert.Empty(t, got, "nothing runs before the clock moves")
	clk.Advance(299 * time.Millisecond)
	assert.Equal(t, []int{1}, got)
	clk.Advance(time.Millisecond)
	assert.Equal(t, []int{1, 2}, got)
	assert.False(t, done)
	clk.Advance(300 * time.Millisecond)
	assert.Equal(t, []int{1, 2, 3}, got)
	assert.True(t, done)
	assert.True(t, seq.Finished())
}

func TestSequenceCancelAtBoundary(t *testing.T) {
	clk := NewManualClock(time.Unix(0, 0))
	var got []int
	done := false
	var seq *Sequence
	seq = RunSequence(clk, []Step{
		{Delay: 10 * time.Millisecond, Effect: func() { got = append(got, 1) }},
		{Delay: 10 * time.Millisecond, Effect: func() { got = append(got, 2); seq.Cancel() }},
		{Delay: 10 * time.Millisecond, Effect: func() { got = append(got, 3) }},
	}, func() { done = true })

	clk.Advance(time.Second)
	assert.Equal(t, []int{1, 2}, got)
	assert.False(t, done)
	assert.False(t, seq.Finished())
	assert.Zero(t, clk.Pending())

	seq.Cancel()
	var nilSeq *Sequence
	nilSeq.Cancel()
}

func TestSequenceWithoutStepsStillDefersDone(t *testing.T) {
	clk := NewManualClock(time.Unix(0, 0))
	done := false
	RunSequence(clk, nil, func() { done = true })
	assert.False(t, done)
	clk.Advance(0)
	assert.True(t, done)
}
