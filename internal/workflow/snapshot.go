package workflow

// applySnapshot overwrites every section flag of the target snapshot from the
// captured completeness map. The replacement is total: sections absent from
// the map are reset to false, and the row keeps its identity so no orphaned
// snapshot rows are created.
func applySnapshot(target *TabStatus, c Completeness) {
	for section, flag := range target.sectionFields() {
		*flag = c[section]
	}
}

// copySnapshot overwrites the target snapshot's field values with the source
// snapshot's, preserving the target row identity.
func copySnapshot(target, source *TabStatus) {
	applySnapshot(target, source.Completeness())
}
