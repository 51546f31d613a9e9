package workflow

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Status is the review lifecycle state of a borehole, stored ordinal-coded.
type Status int

const (
	StatusDraft Status = iota
	StatusInReview
	StatusReviewed
	StatusPublished
)

var statusNames = map[Status]string{
	StatusDraft:     "draft",
	StatusInReview:  "in_review",
	StatusReviewed:  "reviewed",
	StatusPublished: "published",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Valid reports whether s is one of the known lifecycle states.
func (s Status) Valid() bool {
	_, ok := statusNames[s]
	return ok
}

func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Status) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for status, n := range statusNames {
		if n == name {
			*s = status
			return nil
		}
	}
	return fmt.Errorf("unknown workflow status %q", name)
}

// Section names one logical grouping of borehole attributes whose
// completeness is tracked independently.
type Section string

const (
	SectionGeneral            Section = "general"
	SectionLocation           Section = "location"
	SectionSections           Section = "sections"
	SectionGeometry           Section = "geometry"
	SectionLithology          Section = "lithology"
	SectionChronostratigraphy Section = "chronostratigraphy"
	SectionLithostratigraphy  Section = "lithostratigraphy"
	SectionCasing             Section = "casing"
	SectionInstrumentation    Section = "instrumentation"
	SectionBackfill           Section = "backfill"
	SectionWaterIngress       Section = "water_ingress"
	SectionGroundwater        Section = "groundwater"
	SectionFieldMeasurement   Section = "field_measurement"
	SectionHydrotest          Section = "hydrotest"
	SectionProfile            Section = "profile"
	SectionPhoto              Section = "photo"
	SectionDocument           Section = "document"
	SectionLog                Section = "log"
)

// AllSections lists every tracked section in display order.
func AllSections() []Section {
	return []Section{
		SectionGeneral, SectionLocation, SectionSections, SectionGeometry,
		SectionLithology, SectionChronostratigraphy, SectionLithostratigraphy,
		SectionCasing, SectionInstrumentation, SectionBackfill,
		SectionWaterIngress, SectionGroundwater, SectionFieldMeasurement,
		SectionHydrotest, SectionProfile, SectionPhoto, SectionDocument,
		SectionLog,
	}
}

// DefaultRequiredSections gate the publish transition unless overridden
// through configuration.
func DefaultRequiredSections() []Section {
	return []Section{SectionGeneral, SectionLocation, SectionLithology, SectionCasing}
}

// Completeness maps each section to whether it is complete.
type Completeness map[Section]bool

// TabStatus is a per-section completeness snapshot taken at a workflow
// milestone. Rows are value objects owned exclusively by one Workflow field.
type TabStatus struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey" json:"-"`
	General            bool      `gorm:"not null;default:false" json:"general"`
	Location           bool      `gorm:"not null;default:false" json:"location"`
	Sections           bool      `gorm:"not null;default:false" json:"sections"`
	Geometry           bool      `gorm:"not null;default:false" json:"geometry"`
	Lithology          bool      `gorm:"not null;default:false" json:"lithology"`
	Chronostratigraphy bool      `gorm:"not null;default:false" json:"chronostratigraphy"`
	Lithostratigraphy  bool      `gorm:"not null;default:false" json:"lithostratigraphy"`
	Casing             bool      `gorm:"not null;default:false" json:"casing"`
	Instrumentation    bool      `gorm:"not null;default:false" json:"instrumentation"`
	Backfill           bool      `gorm:"not null;default:false" json:"backfill"`
	WaterIngress       bool      `gorm:"not null;default:false" json:"water_ingress"`
	Groundwater        bool      `gorm:"not null;default:false" json:"groundwater"`
	FieldMeasurement   bool      `gorm:"not null;default:false" json:"field_measurement"`
	Hydrotest          bool      `gorm:"not null;default:false" json:"hydrotest"`
	Profile            bool      `gorm:"not null;default:false" json:"profile"`
	Photo              bool      `gorm:"not null;default:false" json:"photo"`
	Document           bool      `gorm:"not null;default:false" json:"document"`
	Log                bool      `gorm:"not null;default:false" json:"log"`
}

func (TabStatus) TableName() string {
	return "tab_status"
}

func (t *TabStatus) sectionFields() map[Section]*bool {
	return map[Section]*bool{
		SectionGeneral:            &t.General,
		SectionLocation:           &t.Location,
		SectionSections:           &t.Sections,
		SectionGeometry:           &t.Geometry,
		SectionLithology:          &t.Lithology,
		SectionChronostratigraphy: &t.Chronostratigraphy,
		SectionLithostratigraphy:  &t.Lithostratigraphy,
		SectionCasing:             &t.Casing,
		SectionInstrumentation:    &t.Instrumentation,
		SectionBackfill:           &t.Backfill,
		SectionWaterIngress:       &t.WaterIngress,
		SectionGroundwater:        &t.Groundwater,
		SectionFieldMeasurement:   &t.FieldMeasurement,
		SectionHydrotest:          &t.Hydrotest,
		SectionProfile:            &t.Profile,
		SectionPhoto:              &t.Photo,
		SectionDocument:           &t.Document,
		SectionLog:                &t.Log,
	}
}

// Completeness returns the snapshot as a section map.
func (t *TabStatus) Completeness() Completeness {
	c := make(Completeness, len(AllSections()))
	for section, flag := range t.sectionFields() {
		c[section] = *flag
	}
	return c
}

// Complete reports whether the named section is flagged complete.
func (t *TabStatus) Complete(section Section) bool {
	flag, ok := t.sectionFields()[section]
	return ok && *flag
}

// Workflow is the per-borehole review lifecycle aggregate. Exactly one exists
// per borehole; it owns both TabStatus snapshots exclusively.
type Workflow struct {
	ID                  uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	BoreholeID          uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex" json:"borehole_id"`
	Status              Status     `gorm:"not null;default:0" json:"status"`
	HasRequestedChanges bool       `gorm:"not null;default:false" json:"has_requested_changes"`
	ReviewedTabsID      uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex" json:"-"`
	ReviewedTabs        TabStatus  `gorm:"foreignKey:ReviewedTabsID;constraint:OnDelete:RESTRICT" json:"reviewed_tabs"`
	PublishedTabsID     uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex" json:"-"`
	PublishedTabs       TabStatus  `gorm:"foreignKey:PublishedTabsID;constraint:OnDelete:RESTRICT" json:"published_tabs"`
	AssigneeID          *uuid.UUID `gorm:"type:uuid" json:"assignee_id,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

func (Workflow) TableName() string {
	return "workflows"
}

// SnapshotIDs returns the ids of both owned tab status rows. The snapshot
// foreign keys point from the workflow to the snapshots, so a database
// cascade never reaches them; whoever deletes a workflow must remove these
// rows as well.
func (w *Workflow) SnapshotIDs() []uuid.UUID {
	return []uuid.UUID{w.ReviewedTabsID, w.PublishedTabsID}
}

// WorkflowChange is one immutable audit-log entry for a status transition.
// Rows are append-only; the engine never updates or deletes them.
type WorkflowChange struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	WorkflowID  uuid.UUID  `gorm:"type:uuid;not null;index" json:"workflow_id"`
	Workflow    *Workflow  `gorm:"foreignKey:WorkflowID;constraint:OnDelete:CASCADE" json:"-"`
	FromStatus  Status     `gorm:"not null" json:"from_status"`
	ToStatus    Status     `gorm:"not null" json:"to_status"`
	Comment     string     `gorm:"not null;default:''" json:"comment"`
	CreatedByID *uuid.UUID `gorm:"type:uuid" json:"created_by_id,omitempty"`
	CreatedAt   time.Time  `gorm:"not null" json:"created_at"`
	AssigneeID  *uuid.UUID `gorm:"type:uuid" json:"assignee_id,omitempty"`
}

func (WorkflowChange) TableName() string {
	return "workflow_changes"
}
