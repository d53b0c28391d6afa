package assets

import "fmt"

// BundleWithDependencies pairs a decoded component bundle with the paths of
// assets it depends on.
type BundleWithDependencies struct {
	Bundle       *Bundle
	Dependencies []AssetPath
}

// NewBundleWithDependencies wraps a bundle with an empty dependency list.
func NewBundleWithDependencies(bundle *Bundle) *BundleWithDependencies {
	return &BundleWithDependencies{Bundle: bundle}
}

// Dependency adds a dependency path and returns the result for chaining.
func (b *BundleWithDependencies) Dependency(path string) *BundleWithDependencies {
	b.Dependencies = append(b.Dependencies, NewAssetPath(path))
	return b
}

// DependencyPath adds an already parsed dependency path.
func (b *BundleWithDependencies) DependencyPath(path AssetPath) *BundleWithDependencies {
	b.Dependencies = append(b.Dependencies, path)
	return b
}

// StoreWithDependencies pairs encoded asset bytes with the paths of assets
// that should be queued for storing alongside.
type StoreWithDependencies struct {
	Bytes        []byte
	Dependencies []AssetPath
}

// NewStoreWithDependencies wraps bytes with an empty dependency list.
func NewStoreWithDependencies(bytes []byte) *StoreWithDependencies {
	return &StoreWithDependencies{Bytes: bytes}
}

// Dependency adds a dependency path and returns the result for chaining.
func (s *StoreWithDependencies) Dependency(path string) *StoreWithDependencies {
	s.Dependencies = append(s.Dependencies, NewAssetPath(path))
	return s
}

// BundleProcessor turns raw bytes into a component bundle plus dependency
// list. Processors should be pure: same bytes, same bundle.
type BundleProcessor interface {
	ProcessBytes(bytes []byte) (*BundleWithDependencies, error)
}

// BundleProducer is the optional encoding hook of a BundleProcessor: it
// inspects the asset's components and emits the bytes to store.
type BundleProducer interface {
	ProduceBytes(handle AssetHandle, storage *World) (*StoreWithDependencies, error)
}

// BundleProcessorFunc adapts a plain function to BundleProcessor.
type BundleProcessorFunc func(bytes []byte) (*BundleWithDependencies, error)

// ProcessBytes calls the function.
func (f BundleProcessorFunc) ProcessBytes(bytes []byte) (*BundleWithDependencies, error) {
	return f(bytes)
}

// BundleAssetProtocol adapts a BundleProcessor into a protocol: it installs
// the processor's bundle on the asset and registers each returned dependency.
// Most custom protocols are one of these plus a decode function:
//
//	db.WithProtocol(assets.NewBundleAssetProtocol("config",
//	    assets.BundleProcessorFunc(func(bytes []byte) (*assets.BundleWithDependencies, error) {
//	        config, err := parseConfig(bytes)
//	        if err != nil {
//	            return nil, err
//	        }
//	        return assets.NewBundleWithDependencies(assets.NewBundle(config)), nil
//	    })))
type BundleAssetProtocol struct {
	name      string
	processor BundleProcessor
}

// NewBundleAssetProtocol creates a bundle protocol under the given scheme.
func NewBundleAssetProtocol(name string, processor BundleProcessor) *BundleAssetProtocol {
	return &BundleAssetProtocol{name: name, processor: processor}
}

// Name returns the registered scheme.
func (p *BundleAssetProtocol) Name() string {
	return p.name
}

// ProcessBytes runs the processor, installs its bundle and relates its
// dependencies to the asset.
func (p *BundleAssetProtocol) ProcessBytes(handle AssetHandle, storage *World, bytes []byte) error {
	result, err := p.processor.ProcessBytes(bytes)
	if err != nil {
		return err
	}
	if result.Bundle != nil {
		if err := storage.InsertBundle(handle.Entity(), result.Bundle); err != nil {
			return err
		}
	}
	for _, path := range result.Dependencies {
		if _, err := spawnDependency(storage, handle.Entity(), path); err != nil {
			return err
		}
	}
	return nil
}

// ProduceBytes forwards to the processor's encoding hook and queues its
// extra dependencies for storing. Processors without the hook reject the
// store request.
func (p *BundleAssetProtocol) ProduceBytes(handle AssetHandle, storage *World) ([]byte, error) {
	producer, ok := p.processor.(BundleProducer)
	if !ok {
		return nil, fmt.Errorf("processor of %q does not support producing bytes", p.name)
	}
	result, err := producer.ProduceBytes(handle, storage)
	if err != nil {
		return nil, err
	}
	for _, path := range result.Dependencies {
		if entity, ok := storage.FindByPath(path); ok {
			if err := Insert(storage, entity, &AssetAwaitsStoring{}); err != nil {
				return nil, err
			}
		}
	}
	return result.Bytes, nil
}

// Maintain forwards to the processor when it keeps internal state.
func (p *BundleAssetProtocol) Maintain(storage *World) error {
	if m, ok := p.processor.(ProtocolMaintainer); ok {
		return m.Maintain(storage)
	}
	return nil
}
