package boreholes

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"subsurface-atlas/borehole-portal/borehole-portal-backend/internal/workflow"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&workflow.TabStatus{},
		&workflow.Workflow{},
		&workflow.WorkflowChange{},
		&SectionStatus{},
		&Borehole{},
	))
	return db
}

func seedWorkflow(t *testing.T, db *gorm.DB, boreholeID uuid.UUID) *workflow.Workflow {
	t.Helper()

	wf := &workflow.Workflow{
		ID:              uuid.New(),
		BoreholeID:      boreholeID,
		Status:          workflow.StatusInReview,
		ReviewedTabsID:  uuid.New(),
		PublishedTabsID: uuid.New(),
	}
	wf.ReviewedTabs.ID = wf.ReviewedTabsID
	wf.PublishedTabs.ID = wf.PublishedTabsID
	require.NoError(t, db.Create(wf).Error)

	change := &workflow.WorkflowChange{
		ID:         uuid.New(),
		WorkflowID: wf.ID,
		FromStatus: workflow.StatusDraft,
		ToStatus:   workflow.StatusInReview,
		CreatedAt:  time.Now().UTC(),
	}
	require.NoError(t, db.Create(change).Error)
	return wf
}

func countRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()

	var count int64
	require.NoError(t, db.Model(model).Count(&count).Error)
	return count
}

func TestDeleteRemovesWorkflowAndSnapshots(t *testing.T) {
	db := newTestDB(t)
	store := NewStore(db)
	ctx := context.Background()

	borehole := &Borehole{Name: "Seeberg-1"}
	require.NoError(t, store.Create(ctx, borehole))
	require.NoError(t, store.SetSectionComplete(ctx, borehole.ID, string(workflow.SectionLithology), true))
	seedWorkflow(t, db, borehole.ID)

	require.Equal(t, int64(2), countRows(t, db, &workflow.TabStatus{}))

	require.NoError(t, store.Delete(ctx, borehole.ID))

	assert.Zero(t, countRows(t, db, &Borehole{}))
	assert.Zero(t, countRows(t, db, &SectionStatus{}))
	assert.Zero(t, countRows(t, db, &workflow.Workflow{}))
	assert.Zero(t, countRows(t, db, &workflow.WorkflowChange{}))
	assert.Zero(t, countRows(t, db, &workflow.TabStatus{}), "snapshot rows must not outlive the borehole")

	assert.ErrorIs(t, store.Delete(ctx, borehole.ID), ErrNotFound)
}

func TestDeleteWithoutWorkflow(t *testing.T) {
	db := newTestDB(t)
	store := NewStore(db)
	ctx := context.Background()

	borehole := &Borehole{Name: "Seeberg-2"}
	require.NoError(t, store.Create(ctx, borehole))

	require.NoError(t, store.Delete(ctx, borehole.ID))
	assert.Zero(t, countRows(t, db, &Borehole{}))
}

func TestCompletenessFromRows(t *testing.T) {
	rows := []SectionStatus{
		{Section: string(workflow.SectionLithology), Complete: true},
		{Section: string(workflow.SectionCasing), Complete: false},
	}

	c := completenessFromRows(rows)

	assert.Len(t, c, len(workflow.AllSections()))
	assert.True(t, c[workflow.SectionLithology])
	assert.False(t, c[workflow.SectionCasing])
	assert.False(t, c[workflow.SectionGroundwater], "sections without a checklist row count as incomplete")
}

func TestCompletenessFromRowsEmpty(t *testing.T) {
	c := completenessFromRows(nil)

	for _, section := range workflow.AllSections() {
		assert.False(t, c[section])
	}
}
