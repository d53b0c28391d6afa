package assets

import (
	"errors"
	"fmt"
	"strings"
)

// RouterEntryPattern constrains a route to paths carrying a matching meta
// item. An empty Key or Value acts as a wildcard for that side.
type RouterEntryPattern struct {
	Key   string
	Value string
}

func (p RouterEntryPattern) matches(path AssetPath) bool {
	for _, item := range path.MetaItems() {
		if (p.Key == "" || p.Key == item.Key) && (p.Value == "" || p.Value == item.Value) {
			return true
		}
	}
	return false
}

// RouterPattern selects asset paths by body prefix and required meta items.
// A matched path is forwarded with the prefix stripped, so routed engines
// see paths relative to their mount point.
type RouterPattern struct {
	PathPrefix string
	Entries    []RouterEntryPattern
}

// matches validates the path against the pattern and returns the forwarded
// path on success.
func (p RouterPattern) matches(path AssetPath) (AssetPath, bool) {
	if !strings.HasPrefix(path.Path(), p.PathPrefix) {
		return AssetPath{}, false
	}
	for _, entry := range p.Entries {
		if !entry.matches(path) {
			return AssetPath{}, false
		}
	}
	forwarded := AssetPathFromParts(
		path.Protocol(),
		strings.TrimPrefix(path.Path(), p.PathPrefix),
		path.Meta(),
	)
	return forwarded, true
}

// routerRoute is one registered route.
type routerRoute struct {
	pattern  RouterPattern
	priority int
	seq      int
	fetch    AssetFetch
}

// RouterAssetFetch dispatches loads across multiple engines by path
// pattern. Among matching routes the highest priority wins; ties break by
// registration order.
type RouterAssetFetch struct {
	routes []routerRoute
}

// NewRouterAssetFetch creates an empty router.
func NewRouterAssetFetch() *RouterAssetFetch {
	return &RouterAssetFetch{}
}

// Route registers an engine under a pattern and returns the router for
// chaining.
func (r *RouterAssetFetch) Route(pattern RouterPattern, priority int, fetch AssetFetch) *RouterAssetFetch {
	r.routes = append(r.routes, routerRoute{
		pattern:  pattern,
		priority: priority,
		seq:      len(r.routes),
		fetch:    fetch,
	})
	return r
}

// LoadBytes delegates to the best matching route.
func (r *RouterAssetFetch) LoadBytes(path AssetPath) (*Bundle, error) {
	best := -1
	var bestPath AssetPath
	for i, route := range r.routes {
		forwarded, ok := route.pattern.matches(path)
		if !ok {
			continue
		}
		if best < 0 ||
			route.priority > r.routes[best].priority ||
			(route.priority == r.routes[best].priority && route.seq < r.routes[best].seq) {
			best = i
			bestPath = forwarded
		}
	}
	if best < 0 {
		return nil, fmt.Errorf("%w: no route for %q", ErrFetchFailed, path.String())
	}
	return r.routes[best].fetch.LoadBytes(bestPath)
}

// Maintain forwards to every routed engine.
func (r *RouterAssetFetch) Maintain(storage *World) error {
	var errs []error
	for _, route := range r.routes {
		if err := maintainFetch(route.fetch, storage); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close shuts every routed engine down.
func (r *RouterAssetFetch) Close() error {
	var errs []error
	for _, route := range r.routes {
		if err := closeFetch(route.fetch); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
