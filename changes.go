package assets

// changeRecord maps component IDs to the entities a change touched.
type changeRecord map[ComponentID]map[Entity]struct{}

func (r changeRecord) record(id ComponentID, e Entity) {
	set := r[id]
	if set == nil {
		set = make(map[Entity]struct{})
		r[id] = set
	}
	set[e] = struct{}{}
}

// changeLog is one tick's worth of change detection: which entities gained,
// mutated or lost a component of each type.
type changeLog struct {
	added   changeRecord
	updated changeRecord
	removed changeRecord
}

func newChangeLog() changeLog {
	return changeLog{
		added:   make(changeRecord),
		updated: make(changeRecord),
		removed: make(changeRecord),
	}
}

// ChangeView is a read-only window over one change record.
type ChangeView struct {
	record changeRecord
}

// IsEmpty returns true if no changes were recorded.
func (v ChangeView) IsEmpty() bool {
	for _, set := range v.record {
		if len(set) > 0 {
			return false
		}
	}
	return true
}

// entities returns the entities recorded for the given component ID.
func (v ChangeView) entities(id ComponentID) []Entity {
	set := v.record[id]
	if len(set) == 0 {
		return nil
	}
	out := make([]Entity, 0, len(set))
	for e := range set {
		out = append(out, e)
	}
	return out
}

// EntitiesOf returns the entities the view recorded for component type T.
// Iteration order is unspecified.
func EntitiesOf[T any](v ChangeView) []Entity {
	return v.entities(componentID[T]())
}

// Added returns the view of components gained since the last tick roll.
func (w *World) Added() ChangeView {
	return ChangeView{record: w.changes.added}
}

// Updated returns the view of components mutated since the last tick roll.
// Mutation through a component pointer is invisible to the storage; callers
// flag it with Touch.
func (w *World) Updated() ChangeView {
	return ChangeView{record: w.changes.updated}
}

// Removed returns the view of components lost since the last tick roll.
// Removed entries may refer to despawned entities.
func (w *World) Removed() ChangeView {
	return ChangeView{record: w.changes.removed}
}

// AddedLastTick returns the previous tick's added view, preserved across the
// roll for one tick.
func (w *World) AddedLastTick() ChangeView {
	return ChangeView{record: w.lastChanges.added}
}

// UpdatedLastTick returns the previous tick's updated view.
func (w *World) UpdatedLastTick() ChangeView {
	return ChangeView{record: w.lastChanges.updated}
}

// RemovedLastTick returns the previous tick's removed view.
func (w *World) RemovedLastTick() ChangeView {
	return ChangeView{record: w.lastChanges.removed}
}

// RollChanges moves the live change log into the last-tick snapshot and
// starts a fresh one. The database calls this at the start of every
// maintenance tick.
func (w *World) RollChanges() {
	w.lastChanges = w.changes
	w.changes = newChangeLog()
}
