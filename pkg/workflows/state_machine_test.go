package workflows

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStateMachine(t *testing.T) {
	sm := NewStateMachine([]Edge{
		{From: "open", Trigger: "start", To: "active"},
		{From: "active", Trigger: "finish", To: "closed"},
		{From: "active", Trigger: "abort", To: "open"},
	})

	to, ok := sm.Target("open", "start")
	assert.True(t, ok)
	assert.Equal(t, "active", to)

	_, ok = sm.Target("open", "finish")
	assert.False(t, ok)
	_, ok = sm.Target("closed", "start")
	assert.False(t, ok)

	assert.True(t, sm.CanTrigger("active", "abort"))
	assert.False(t, sm.CanTrigger("closed", "abort"))

	assert.ElementsMatch(t, []string{"finish", "abort"}, sm.TriggersFrom("active"))
	assert.Empty(t, sm.TriggersFrom("closed"))
}
