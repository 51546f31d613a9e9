package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransitionTable(t *testing.T) {
	machine := NewStateMachine()

	tests := []struct {
		from    Status
		trigger Trigger
		to      Status
		legal   bool
	}{
		{StatusDraft, TriggerSubmitForReview, StatusInReview, true},
		{StatusInReview, TriggerApprove, StatusReviewed, true},
		{StatusInReview, TriggerRequestChanges, StatusDraft, true},
		{StatusReviewed, TriggerPublish, StatusPublished, true},
		{StatusPublished, TriggerReopenForReview, StatusInReview, true},

		{StatusDraft, TriggerApprove, 0, false},
		{StatusDraft, TriggerPublish, 0, false},
		{StatusDraft, TriggerRequestChanges, 0, false},
		{StatusInReview, TriggerSubmitForReview, 0, false},
		{StatusInReview, TriggerPublish, 0, false},
		{StatusReviewed, TriggerApprove, 0, false},
		{StatusReviewed, TriggerSubmitForReview, 0, false},
		{StatusPublished, TriggerPublish, 0, false},
		{StatusPublished, TriggerSubmitForReview, 0, false},
	}

	for _, tt := range tests {
		to, ok := machine.Target(tt.from.String(), string(tt.trigger))
		assert.Equal(t, tt.legal, ok, "%s + %s", tt.from, tt.trigger)
		if tt.legal {
			assert.Equal(t, tt.to.String(), to)
		}
	}
}

func TestEveryTriggerHasARule(t *testing.T) {
	for _, trigger := range []Trigger{
		TriggerSubmitForReview, TriggerApprove, TriggerRequestChanges,
		TriggerPublish, TriggerReopenForReview,
	} {
		_, ok := transitionRules[trigger]
		assert.True(t, ok, "missing rule for %s", trigger)
	}
}

func TestParseTrigger(t *testing.T) {
	trigger, err := ParseTrigger("  approve ")
	require.NoError(t, err)
	assert.Equal(t, TriggerApprove, trigger)

	_, err = ParseTrigger("promote")
	assert.Error(t, err)
}

func TestStatusJSONRoundTrip(t *testing.T) {
	for _, status := range []Status{StatusDraft, StatusInReview, StatusReviewed, StatusPublished} {
		data, err := status.MarshalJSON()
		require.NoError(t, err)

		var decoded Status
		require.NoError(t, decoded.UnmarshalJSON(data))
		assert.Equal(t, status, decoded)
	}

	var s Status
	assert.Error(t, s.UnmarshalJSON([]byte(`"retired"`)))
}
