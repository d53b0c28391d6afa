package assets

import (
	"fmt"
	"reflect"
	"unsafe"
)

// bundleItem is one type-erased component slot in a bundle.
type bundleItem struct {
	id  ComponentID
	ptr unsafe.Pointer
}

// Bundle is an ordered set of heterogeneous components assembled before they
// are installed on an entity. Fetch engines return bundles from LoadBytes;
// protocols install bundles produced by decoders.
//
// Bundles hold at most one component per type; putting a second value of the
// same type replaces the first. Bundles may be built on any goroutine — the
// component registry is thread-safe — but a single bundle is not for
// concurrent use.
type Bundle struct {
	items []bundleItem
}

// NewBundle creates a bundle from the given components. Each component must
// be a non-nil pointer to its value:
//
//	assets.NewBundle(&Material{Shader: "pbr"}, &Tag{})
func NewBundle(components ...any) *Bundle {
	b := &Bundle{}
	return b.With(components...)
}

// With adds components to the bundle and returns it for chaining.
// Panics if a component is not a non-nil pointer; that is a programmer error.
func (b *Bundle) With(components ...any) *Bundle {
	for _, component := range components {
		v := reflect.ValueOf(component)
		if v.Kind() != reflect.Ptr || v.IsNil() {
			panic(fmt.Sprintf("assets: bundle component must be a non-nil pointer, got %T", component))
		}
		b.put(componentIDFromType(v.Type().Elem()), v.UnsafePointer())
	}
	return b
}

// Put adds a single typed component to the bundle and returns the bundle.
func Put[T any](b *Bundle, component *T) *Bundle {
	if component == nil {
		panic("assets: bundle component must be a non-nil pointer")
	}
	b.put(componentID[T](), unsafe.Pointer(component))
	return b
}

// put stores a slot, replacing any existing slot with the same ID.
func (b *Bundle) put(id ComponentID, ptr unsafe.Pointer) {
	for i, item := range b.items {
		if item.id == id {
			b.items[i].ptr = ptr
			return
		}
	}
	b.items = append(b.items, bundleItem{id: id, ptr: ptr})
}

// Len returns the number of components in the bundle.
func (b *Bundle) Len() int {
	return len(b.items)
}

// has reports whether the bundle carries a component with the given ID.
func (b *Bundle) has(id ComponentID) bool {
	for _, item := range b.items {
		if item.id == id {
			return true
		}
	}
	return false
}
