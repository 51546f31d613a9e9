package workflow

import (
	"fmt"
	"strings"

	"subsurface-atlas/borehole-portal/borehole-portal-backend/pkg/workflows"
)

// Trigger names a requested status change.
type Trigger string

const (
	TriggerSubmitForReview Trigger = "submit_for_review"
	TriggerApprove         Trigger = "approve"
	TriggerRequestChanges  Trigger = "request_changes"
	TriggerPublish         Trigger = "publish"
	TriggerReopenForReview Trigger = "reopen_for_review"
)

// ParseTrigger resolves a wire-level trigger name.
func ParseTrigger(raw string) (Trigger, error) {
	switch Trigger(strings.TrimSpace(raw)) {
	case TriggerSubmitForReview:
		return TriggerSubmitForReview, nil
	case TriggerApprove:
		return TriggerApprove, nil
	case TriggerRequestChanges:
		return TriggerRequestChanges, nil
	case TriggerPublish:
		return TriggerPublish, nil
	case TriggerReopenForReview:
		return TriggerReopenForReview, nil
	default:
		return "", fmt.Errorf("unknown trigger %q", raw)
	}
}

// NewStateMachine builds the review lifecycle transition table.
func NewStateMachine() *workflows.StateMachine {
	return workflows.NewStateMachine([]workflows.Edge{
		{From: StatusDraft.String(), Trigger: string(TriggerSubmitForReview), To: StatusInReview.String()},
		{From: StatusInReview.String(), Trigger: string(TriggerApprove), To: StatusReviewed.String()},
		{From: StatusInReview.String(), Trigger: string(TriggerRequestChanges), To: StatusDraft.String()},
		{From: StatusReviewed.String(), Trigger: string(TriggerPublish), To: StatusPublished.String()},
		{From: StatusPublished.String(), Trigger: string(TriggerReopenForReview), To: StatusInReview.String()},
	})
}

// transitionInput carries the guard data gathered before a transition is
// applied: the caller's comment, for submit the live completeness signal, and
// for approve whether the actor holds review rights.
type transitionInput struct {
	comment       string
	completeness  Completeness
	required      []Section
	reviewGranted bool
}

// transitionRule pairs the guard and side effect of one trigger. The guard
// runs against the locked aggregate; apply mutates workflow fields and
// snapshots only after the guard passed.
type transitionRule struct {
	guard func(wf *Workflow, in *transitionInput) error
	apply func(wf *Workflow, in *transitionInput)
}

var transitionRules = map[Trigger]transitionRule{
	TriggerSubmitForReview: {
		apply: func(wf *Workflow, in *transitionInput) {
			applySnapshot(&wf.ReviewedTabs, in.completeness)
			wf.HasRequestedChanges = false
		},
	},
	TriggerApprove: {
		guard: func(wf *Workflow, in *transitionInput) error {
			if !in.reviewGranted {
				return &ValidationError{Field: "actor_id", Reason: "approving requires review rights"}
			}
			return nil
		},
	},
	TriggerRequestChanges: {
		guard: func(wf *Workflow, in *transitionInput) error {
			if strings.TrimSpace(in.comment) == "" {
				return &ValidationError{Field: "comment", Reason: "a comment is required when requesting changes"}
			}
			return nil
		},
		apply: func(wf *Workflow, in *transitionInput) {
			wf.HasRequestedChanges = true
		},
	},
	TriggerPublish: {
		guard: func(wf *Workflow, in *transitionInput) error {
			for _, section := range in.required {
				if !wf.ReviewedTabs.Complete(section) {
					return &InvalidTransitionError{From: wf.Status, Trigger: TriggerPublish}
				}
			}
			return nil
		},
		apply: func(wf *Workflow, in *transitionInput) {
			copySnapshot(&wf.PublishedTabs, &wf.ReviewedTabs)
			wf.HasRequestedChanges = false
		},
	},
	TriggerReopenForReview: {},
}
