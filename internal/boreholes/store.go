package boreholes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"subsurface-atlas/borehole-portal/borehole-portal-backend/internal/workflow"
)

// ErrNotFound indicates the requested borehole does not exist.
var ErrNotFound = errors.New("borehole not found")

// Store persists borehole records and their editing checklist. It implements
// the collaborator interfaces the workflow engine consumes.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Create(ctx context.Context, borehole *Borehole) error {
	if borehole.ID == uuid.Nil {
		borehole.ID = uuid.New()
	}
	if err := s.db.WithContext(ctx).Create(borehole).Error; err != nil {
		return fmt.Errorf("failed to create borehole: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id uuid.UUID) (*Borehole, error) {
	var borehole Borehole
	err := s.db.WithContext(ctx).First(&borehole, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load borehole: %w", err)
	}
	return &borehole, nil
}

// Delete removes the borehole together with its workflow, the workflow's
// change log and snapshot rows, and the section checklist. The snapshot
// foreign keys point from the workflow to the tab status rows, so the
// database cascade stops at the workflow; everything is deleted explicitly
// in one transaction.
func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var wf workflow.Workflow
		err := tx.Where("borehole_id = ?", id).First(&wf).Error
		hasWorkflow := err == nil
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to load workflow for deletion: %w", err)
		}

		if hasWorkflow {
			if err := tx.Delete(&workflow.WorkflowChange{}, "workflow_id = ?", wf.ID).Error; err != nil {
				return fmt.Errorf("failed to delete workflow changes: %w", err)
			}
			if err := tx.Delete(&workflow.Workflow{}, "id = ?", wf.ID).Error; err != nil {
				return fmt.Errorf("failed to delete workflow: %w", err)
			}
			if err := tx.Delete(&workflow.TabStatus{}, "id IN ?", wf.SnapshotIDs()).Error; err != nil {
				return fmt.Errorf("failed to delete workflow snapshots: %w", err)
			}
		}

		if err := tx.Delete(&SectionStatus{}, "borehole_id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete section status: %w", err)
		}

		result := tx.Delete(&Borehole{}, "id = ?", id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete borehole: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// Exists implements workflow.BoreholeStore.
func (s *Store) Exists(ctx context.Context, boreholeID uuid.UUID) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&Borehole{}).Where("id = ?", boreholeID).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check borehole existence: %w", err)
	}
	return count > 0, nil
}

// SetSectionComplete upserts one checklist entry.
func (s *Store) SetSectionComplete(ctx context.Context, boreholeID uuid.UUID, section string, complete bool) error {
	exists, err := s.Exists(ctx, boreholeID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}

	row := SectionStatus{
		ID:         uuid.New(),
		BoreholeID: boreholeID,
		Section:    section,
		Complete:   complete,
		UpdatedAt:  time.Now().UTC(),
	}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "borehole_id"}, {Name: "section"}},
		DoUpdates: clause.AssignmentColumns([]string{"complete", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to update section status: %w", err)
	}
	return nil
}

// CurrentCompleteness implements workflow.CompletenessProvider. It is a pure
// read of the checklist: sections without a row count as incomplete.
func (s *Store) CurrentCompleteness(ctx context.Context, boreholeID uuid.UUID) (workflow.Completeness, error) {
	var rows []SectionStatus
	err := s.db.WithContext(ctx).Where("borehole_id = ?", boreholeID).Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load section status: %w", err)
	}
	return completenessFromRows(rows), nil
}

func completenessFromRows(rows []SectionStatus) workflow.Completeness {
	c := make(workflow.Completeness, len(workflow.AllSections()))
	for _, section := range workflow.AllSections() {
		c[section] = false
	}
	for _, row := range rows {
		c[workflow.Section(row.Section)] = row.Complete
	}
	return c
}
