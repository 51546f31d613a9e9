package boreholes

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"subsurface-atlas/borehole-portal/borehole-portal-backend/internal/workflow"
)

// Borehole is the subsurface-investigation record that owns one review
// workflow. The geological detail tables live in the editing subsystem; this
// store only carries the identity and editing checklist the engine consumes.
type Borehole struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string         `gorm:"not null" json:"name"`
	Metadata  datatypes.JSON `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`

	// The database cascade covers the workflow, its change rows and the
	// checklist; the two tab snapshot rows sit on the far side of the
	// workflow's own foreign keys and are removed in Store.Delete.
	Workflow        *workflow.Workflow `gorm:"foreignKey:BoreholeID;constraint:OnDelete:CASCADE" json:"-"`
	SectionStatuses []SectionStatus    `gorm:"foreignKey:BoreholeID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Borehole) TableName() string {
	return "boreholes"
}

// SectionStatus is the live editing checklist: one row per section the editor
// has marked complete. The workflow engine reads it only when capturing a
// snapshot at submit time.
type SectionStatus struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	BoreholeID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_borehole_section" json:"borehole_id"`
	Section    string    `gorm:"not null;uniqueIndex:idx_borehole_section" json:"section"`
	Complete   bool      `gorm:"not null;default:false" json:"complete"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (SectionStatus) TableName() string {
	return "borehole_section_status"
}
