package workflow

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestApplySnapshotIsTotalReplacement(t *testing.T) {
	target := TabStatus{ID: uuid.New(), Casing: true, Groundwater: true}

	applySnapshot(&target, Completeness{SectionLithology: true})

	assert.True(t, target.Lithology)
	assert.False(t, target.Casing, "sections absent from the capture reset to false")
	assert.False(t, target.Groundwater)
}

func TestCopySnapshotKeepsIdentity(t *testing.T) {
	source := TabStatus{ID: uuid.New(), General: true, Log: true}
	targetID := uuid.New()
	target := TabStatus{ID: targetID, Photo: true}

	copySnapshot(&target, &source)

	assert.Equal(t, targetID, target.ID)
	assert.Equal(t, source.Completeness(), target.Completeness())
	assert.False(t, target.Photo)
}

func TestCompletenessCoversAllSections(t *testing.T) {
	var tabs TabStatus
	c := tabs.Completeness()

	assert.Len(t, c, len(AllSections()))
	for _, section := range AllSections() {
		_, ok := c[section]
		assert.True(t, ok, "missing section %s", section)
	}
}
