package assets

import "fmt"

// Entity is a generational index naming a row in a World.
//
// The zero Entity is never valid: generations start at 1, so a despawned
// slot's reuse bumps the generation and stale entities stop resolving.
type Entity struct {
	index      uint32
	generation uint32
}

// IsValid returns true if the entity was produced by a spawn.
// It does not check liveness; use World.Alive for that.
func (e Entity) IsValid() bool {
	return e.generation != 0
}

// String returns a debug representation of the entity.
func (e Entity) String() string {
	if !e.IsValid() {
		return "Entity(invalid)"
	}
	return fmt.Sprintf("Entity(%d/%d)", e.index, e.generation)
}
