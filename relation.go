package assets

import "fmt"

// RelationKind names a directed relation stored in the world's relation
// index. Kinds are plain strings so user code can define its own alongside
// the built-in dependency kind.
type RelationKind string

// AssetDependency is the relation from a parent asset to a child asset it
// needs. Protocols create these edges while processing the parent.
const AssetDependency RelationKind = "asset-dependency"

// relationTable holds one kind's edges in both directions.
type relationTable struct {
	outgoing map[Entity][]Entity
	incoming map[Entity][]Entity
}

func newRelationTable() *relationTable {
	return &relationTable{
		outgoing: make(map[Entity][]Entity),
		incoming: make(map[Entity][]Entity),
	}
}

// Relate creates a directed edge of the given kind from parent to child.
// Duplicate edges collapse; both entities must be alive.
func (w *World) Relate(kind RelationKind, parent, child Entity) error {
	if w.slotOf(parent) == nil {
		return fmt.Errorf("%w: relation parent %s", ErrEntityMissing, parent)
	}
	if w.slotOf(child) == nil {
		return fmt.Errorf("%w: relation child %s", ErrEntityMissing, child)
	}
	table := w.relations[kind]
	if table == nil {
		table = newRelationTable()
		w.relations[kind] = table
	}
	for _, existing := range table.outgoing[parent] {
		if existing == child {
			return nil
		}
	}
	table.outgoing[parent] = append(table.outgoing[parent], child)
	table.incoming[child] = append(table.incoming[child], parent)
	return nil
}

// Unrelate removes the edge of the given kind from parent to child, if any.
func (w *World) Unrelate(kind RelationKind, parent, child Entity) {
	table := w.relations[kind]
	if table == nil {
		return
	}
	table.outgoing[parent] = removeEntity(table.outgoing[parent], child)
	table.incoming[child] = removeEntity(table.incoming[child], parent)
}

// RelationsOutgoing returns the children related from parent under kind.
func (w *World) RelationsOutgoing(kind RelationKind, parent Entity) []Entity {
	table := w.relations[kind]
	if table == nil {
		return nil
	}
	edges := table.outgoing[parent]
	if len(edges) == 0 {
		return nil
	}
	out := make([]Entity, len(edges))
	copy(out, edges)
	return out
}

// RelationsIncoming returns the parents related to child under kind.
func (w *World) RelationsIncoming(kind RelationKind, child Entity) []Entity {
	table := w.relations[kind]
	if table == nil {
		return nil
	}
	edges := table.incoming[child]
	if len(edges) == 0 {
		return nil
	}
	out := make([]Entity, len(edges))
	copy(out, edges)
	return out
}

// dropRelations removes every edge of every kind that touches the entity.
// Called on despawn so edges are never dangling.
func (w *World) dropRelations(e Entity) {
	for _, table := range w.relations {
		for _, child := range table.outgoing[e] {
			table.incoming[child] = removeEntity(table.incoming[child], e)
		}
		delete(table.outgoing, e)
		for _, parent := range table.incoming[e] {
			table.outgoing[parent] = removeEntity(table.outgoing[parent], e)
		}
		delete(table.incoming, e)
	}
}

func removeEntity(list []Entity, e Entity) []Entity {
	for i, candidate := range list {
		if candidate == e {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}
