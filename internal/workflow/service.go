package workflow

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"subsurface-atlas/borehole-portal/borehole-portal-backend/pkg/workflows"
)

// BoreholeStore is the borehole record collaborator the engine consumes.
type BoreholeStore interface {
	Exists(ctx context.Context, boreholeID uuid.UUID) (bool, error)
}

// UserDirectory validates actor and assignee references.
type UserDirectory interface {
	Exists(ctx context.Context, userID uuid.UUID) (bool, error)
	// CanReview reports whether the user's role grants review rights.
	CanReview(ctx context.Context, userID uuid.UUID) (bool, error)
}

// CompletenessProvider exposes the live per-section completeness of a
// borehole's draft content. Consulted only when capturing a snapshot.
type CompletenessProvider interface {
	CurrentCompleteness(ctx context.Context, boreholeID uuid.UUID) (Completeness, error)
}

// Service orchestrates the review lifecycle of borehole records.
type Service struct {
	repo         Repository
	boreholes    BoreholeStore
	users        UserDirectory
	completeness CompletenessProvider
	machine      *workflows.StateMachine
	required     []Section
	logger       *zap.Logger
}

// NewService wires the workflow engine. requiredSections gates the publish
// transition; nil falls back to the defaults.
func NewService(
	repo Repository,
	boreholes BoreholeStore,
	users UserDirectory,
	completeness CompletenessProvider,
	requiredSections []Section,
	logger *zap.Logger,
) *Service {
	if len(requiredSections) == 0 {
		requiredSections = DefaultRequiredSections()
	}
	return &Service{
		repo:         repo,
		boreholes:    boreholes,
		users:        users,
		completeness: completeness,
		machine:      NewStateMachine(),
		required:     requiredSections,
		logger:       logger,
	}
}

// CreateWorkflow creates the workflow for a borehole in Draft with two empty
// snapshots. At most one workflow may exist per borehole.
func (s *Service) CreateWorkflow(ctx context.Context, boreholeID uuid.UUID) (*Workflow, error) {
	exists, err := s.boreholes.Exists(ctx, boreholeID)
	if err != nil {
		return nil, fmt.Errorf("failed to check borehole: %w", err)
	}
	if !exists {
		return nil, &ValidationError{Field: "borehole_id", Reason: "borehole does not exist"}
	}

	wf := &Workflow{
		ID:                  uuid.New(),
		BoreholeID:          boreholeID,
		Status:              StatusDraft,
		HasRequestedChanges: false,
		ReviewedTabsID:      uuid.New(),
		PublishedTabsID:     uuid.New(),
	}
	wf.ReviewedTabs.ID = wf.ReviewedTabsID
	wf.PublishedTabs.ID = wf.PublishedTabsID

	if err := s.repo.Create(ctx, wf); err != nil {
		return nil, err
	}
	return wf, nil
}

// GetWorkflow loads the workflow for a borehole. The status field is checked
// against the change log's latest entry; a mismatch is logged, never repaired
// silently.
func (s *Service) GetWorkflow(ctx context.Context, boreholeID uuid.UUID) (*Workflow, error) {
	wf, err := s.repo.GetByBorehole(ctx, boreholeID)
	if err != nil {
		return nil, err
	}

	latest, err := s.repo.LatestChange(ctx, wf.ID)
	if err != nil {
		return nil, err
	}
	if latest == nil {
		if wf.Status != StatusDraft {
			s.logger.Warn("workflow status inconsistent with empty change log",
				zap.String("workflow_id", wf.ID.String()),
				zap.Stringer("status", wf.Status))
		}
	} else if latest.ToStatus != wf.Status {
		s.logger.Warn("workflow status diverges from latest change",
			zap.String("workflow_id", wf.ID.String()),
			zap.Stringer("status", wf.Status),
			zap.Stringer("latest_to_status", latest.ToStatus))
	}
	return wf, nil
}

// TransitionRequest carries one requested status change.
type TransitionRequest struct {
	BoreholeID uuid.UUID
	Trigger    Trigger
	Comment    string
	ActorID    *uuid.UUID
}

// Transition applies one review lifecycle trigger: guard, field mutation,
// snapshot replacement and change-log append commit as one unit against the
// locked aggregate.
func (s *Service) Transition(ctx context.Context, req TransitionRequest) (*Workflow, error) {
	if req.ActorID != nil {
		known, err := s.users.Exists(ctx, *req.ActorID)
		if err != nil {
			return nil, fmt.Errorf("failed to check actor: %w", err)
		}
		if !known {
			return nil, &ValidationError{Field: "actor_id", Reason: "user does not exist"}
		}
	}

	rule, ok := transitionRules[req.Trigger]
	if !ok {
		return nil, &ValidationError{Field: "trigger", Reason: fmt.Sprintf("unknown trigger %q", req.Trigger)}
	}

	in := &transitionInput{comment: req.Comment, required: s.required}
	switch req.Trigger {
	case TriggerSubmitForReview:
		completeness, err := s.completeness.CurrentCompleteness(ctx, req.BoreholeID)
		if err != nil {
			return nil, fmt.Errorf("failed to capture section completeness: %w", err)
		}
		in.completeness = completeness
	case TriggerApprove:
		// Actorless transitions come from internal callers and are trusted.
		in.reviewGranted = req.ActorID == nil
		if req.ActorID != nil {
			granted, err := s.users.CanReview(ctx, *req.ActorID)
			if err != nil {
				return nil, fmt.Errorf("failed to check review rights: %w", err)
			}
			in.reviewGranted = granted
		}
	}

	wf, err := s.repo.Transition(ctx, req.BoreholeID, func(wf *Workflow) (*WorkflowChange, error) {
		target, legal := s.machine.Target(wf.Status.String(), string(req.Trigger))
		if !legal {
			return nil, &InvalidTransitionError{From: wf.Status, Trigger: req.Trigger}
		}
		if rule.guard != nil {
			if err := rule.guard(wf, in); err != nil {
				return nil, err
			}
		}

		from := wf.Status
		if rule.apply != nil {
			rule.apply(wf, in)
		}
		wf.Status = mustParseStatus(target)

		return &WorkflowChange{
			FromStatus:  from,
			ToStatus:    wf.Status,
			Comment:     req.Comment,
			CreatedByID: req.ActorID,
		}, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("workflow transition applied",
		zap.String("borehole_id", req.BoreholeID.String()),
		zap.String("trigger", string(req.Trigger)),
		zap.Stringer("status", wf.Status))
	return wf, nil
}

// Assign sets the reviewer responsible for a workflow. Reassignment is not a
// status transition and appends no change entry.
func (s *Service) Assign(ctx context.Context, boreholeID, userID uuid.UUID) error {
	known, err := s.users.Exists(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to check assignee: %w", err)
	}
	if !known {
		return &ValidationError{Field: "user_id", Reason: "user does not exist"}
	}
	return s.repo.SetAssignee(ctx, boreholeID, &userID)
}

// Unassign clears the workflow's reviewer.
func (s *Service) Unassign(ctx context.Context, boreholeID uuid.UUID) error {
	return s.repo.SetAssignee(ctx, boreholeID, nil)
}

// ListChanges returns the workflow's audit trail ordered oldest first.
func (s *Service) ListChanges(ctx context.Context, boreholeID uuid.UUID) ([]WorkflowChange, error) {
	wf, err := s.repo.GetByBorehole(ctx, boreholeID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListChanges(ctx, wf.ID)
}

// NextTriggers returns the triggers legal from the workflow's current status,
// sorted for stable responses.
func (s *Service) NextTriggers(wf *Workflow) []Trigger {
	names := s.machine.TriggersFrom(wf.Status.String())
	sort.Strings(names)
	triggers := make([]Trigger, len(names))
	for i, name := range names {
		triggers[i] = Trigger(name)
	}
	return triggers
}

func mustParseStatus(name string) Status {
	for status, n := range statusNames {
		if n == name {
			return status
		}
	}
	// unreachable while the transition table only names known states
	panic(fmt.Sprintf("unknown status %q in transition table", name))
}
