package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGovernor_AllowsBurst(t *testing.T) {
	g := NewGovernor(60, 3)

	for i := 0; i < 3; i++ {
		ok, _ := g.Allow()
		assert.True(t, ok, "request %d within burst should be allowed", i)
	}

	ok, wait := g.Allow()
	assert.False(t, ok)
	assert.Greater(t, wait, time.Duration(0))
}

func TestGovernor_RefillsOverTime(t *testing.T) {
	// 600 rpm = 10 tokens/sec, so a drained bucket recovers quickly.
	g := NewGovernor(600, 1)

	ok, _ := g.Allow()
	require.True(t, ok)

	ok, _ = g.Allow()
	require.False(t, ok)

	time.Sleep(150 * time.Millisecond)

	ok, _ = g.Allow()
	assert.True(t, ok, "token should have refilled after sleeping")
}

func TestGovernor_WaitRespectsContext(t *testing.T) {
	// 1 rpm: once drained, the next token is a minute away.
	g := NewGovernor(1, 1)

	require.NoError(t, g.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := g.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestGovernor_SharedAcrossCallers(t *testing.T) {
	g := NewGovernor(60, 2)

	// Two callers share the same budget: only two requests pass.
	allowed := 0
	for i := 0; i < 4; i++ {
		if ok, _ := g.Allow(); ok {
			allowed++
		}
	}
	assert.Equal(t, 2, allowed)
}
