package assets

import "errors"

// Sentinel errors reported by the storage and database layers. Callers match
// them with errors.Is; wrapped messages carry the offending path or entity.
var (
	// ErrEntityMissing is returned when operating on a despawned or invalid entity.
	ErrEntityMissing = errors.New("entity missing")

	// ErrComponentAbsent is returned when reading a component the entity does not carry.
	ErrComponentAbsent = errors.New("component absent")

	// ErrPathMalformed is returned when an asset path fails the grammar.
	ErrPathMalformed = errors.New("asset path malformed")

	// ErrNoFetchEngine is returned when no engine on the fetch stack accepted a path.
	ErrNoFetchEngine = errors.New("no fetch engine on stack")

	// ErrNoProtocol is returned when no protocol is registered for a path's scheme.
	ErrNoProtocol = errors.New("no protocol for scheme")

	// ErrFetchFailed wraps an underlying source I/O failure.
	ErrFetchFailed = errors.New("fetch failed")

	// ErrProtocolFailed wraps a decoder rejection or dependency spawn failure.
	ErrProtocolFailed = errors.New("protocol failed")

	// ErrNoStoreEngine is returned when no engine on the store stack accepted a path.
	ErrNoStoreEngine = errors.New("no store engine on stack")

	// ErrStoreFailed wraps an underlying sink I/O failure.
	ErrStoreFailed = errors.New("store failed")
)
