package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository persists workflow aggregates and their append-only change log.
type Repository interface {
	Create(ctx context.Context, wf *Workflow) error
	GetByBorehole(ctx context.Context, boreholeID uuid.UUID) (*Workflow, error)

	// Transition runs apply against the exclusively locked aggregate. The
	// status update, snapshot replacement and change-log insert commit as one
	// transaction; any error from apply rolls everything back.
	Transition(ctx context.Context, boreholeID uuid.UUID, apply func(wf *Workflow) (*WorkflowChange, error)) (*Workflow, error)

	SetAssignee(ctx context.Context, boreholeID uuid.UUID, assigneeID *uuid.UUID) error

	ListChanges(ctx context.Context, workflowID uuid.UUID) ([]WorkflowChange, error)
	LatestChange(ctx context.Context, workflowID uuid.UUID) (*WorkflowChange, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a postgres-backed workflow repository.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, wf *Workflow) error {
	if err := r.db.WithContext(ctx).Create(wf).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("failed to create workflow: %w", err)
	}
	return nil
}

func (r *gormRepository) GetByBorehole(ctx context.Context, boreholeID uuid.UUID) (*Workflow, error) {
	var wf Workflow
	err := r.db.WithContext(ctx).
		Preload("ReviewedTabs").
		Preload("PublishedTabs").
		Where("borehole_id = ?", boreholeID).
		First(&wf).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load workflow: %w", err)
	}
	return &wf, nil
}

func (r *gormRepository) Transition(ctx context.Context, boreholeID uuid.UUID, apply func(wf *Workflow) (*WorkflowChange, error)) (*Workflow, error) {
	var out *Workflow
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var wf Workflow
		// Lock the aggregate row before evaluating any guard so competing
		// reviewers serialize on it.
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("borehole_id = ?", boreholeID).
			First(&wf).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to lock workflow: %w", err)
		}

		if err := tx.First(&wf.ReviewedTabs, "id = ?", wf.ReviewedTabsID).Error; err != nil {
			return fmt.Errorf("failed to load reviewed tabs: %w", err)
		}
		if err := tx.First(&wf.PublishedTabs, "id = ?", wf.PublishedTabsID).Error; err != nil {
			return fmt.Errorf("failed to load published tabs: %w", err)
		}

		change, err := apply(&wf)
		if err != nil {
			return err
		}

		if err := tx.Save(&wf.ReviewedTabs).Error; err != nil {
			return fmt.Errorf("failed to save reviewed tabs: %w", err)
		}
		if err := tx.Save(&wf.PublishedTabs).Error; err != nil {
			return fmt.Errorf("failed to save published tabs: %w", err)
		}
		if err := tx.Model(&Workflow{}).Where("id = ?", wf.ID).Updates(map[string]interface{}{
			"status":                wf.Status,
			"has_requested_changes": wf.HasRequestedChanges,
		}).Error; err != nil {
			return fmt.Errorf("failed to update workflow status: %w", err)
		}

		change.ID = uuid.New()
		change.WorkflowID = wf.ID
		change.CreatedAt = time.Now().UTC()
		change.AssigneeID = wf.AssigneeID
		if err := tx.Create(change).Error; err != nil {
			return fmt.Errorf("failed to append workflow change: %w", err)
		}

		out = &wf
		return nil
	})
	if err != nil {
		if isSerializationFailure(err) {
			return nil, ErrConcurrencyConflict
		}
		return nil, err
	}
	return out, nil
}

func (r *gormRepository) SetAssignee(ctx context.Context, boreholeID uuid.UUID, assigneeID *uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&Workflow{}).
		Where("borehole_id = ?", boreholeID).
		Update("assignee_id", assigneeID)
	if result.Error != nil {
		return fmt.Errorf("failed to update assignee: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gormRepository) ListChanges(ctx context.Context, workflowID uuid.UUID) ([]WorkflowChange, error) {
	var changes []WorkflowChange
	err := r.db.WithContext(ctx).
		Where("workflow_id = ?", workflowID).
		Order("created_at ASC").
		Find(&changes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list workflow changes: %w", err)
	}
	return changes, nil
}

func (r *gormRepository) LatestChange(ctx context.Context, workflowID uuid.UUID) (*WorkflowChange, error) {
	var change WorkflowChange
	err := r.db.WithContext(ctx).
		Where("workflow_id = ?", workflowID).
		Order("created_at DESC").
		First(&change).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load latest workflow change: %w", err)
	}
	return &change, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	// serialization_failure, deadlock_detected, lock_not_available
	return pgErr.Code == "40001" || pgErr.Code == "40P01" || pgErr.Code == "55P03"
}
