package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunGuardSingleSlot(t *testing.T) {
	g := NewRunGuard()

	assert.False(t, g.InProgress())
	assert.True(t, g.TryAcquire())
	assert.True(t, g.InProgress())
	assert.False(t, g.TryAcquire(), "second acquire must fail while held")

	g.Release()
	assert.False(t, g.InProgress())
	assert.True(t, g.TryAcquire())
	g.Release()
}
