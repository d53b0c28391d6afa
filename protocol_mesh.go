package assets

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// MeshAsset is the decoded geometry of a mesh-scheme asset.
type MeshAsset struct {
	Points []mgl64.Vec3
}

// NewMeshAssetProtocol decodes plain-text point meshes under the "mesh"
// scheme. The format is line-oriented:
//
//	# comment
//	v 0.0 1.0 0.5        vertex position
//	use text://mesh.mtl  dependency asset to load alongside
//
// Vertices become a MeshAsset component; every "use" line is registered as
// a dependency. Built on BundleAssetProtocol the same way application
// protocols are expected to be.
func NewMeshAssetProtocol() *BundleAssetProtocol {
	return NewBundleAssetProtocol("mesh", BundleProcessorFunc(decodeMesh))
}

func decodeMesh(bytes []byte) (*BundleWithDependencies, error) {
	mesh := &MeshAsset{}
	result := &BundleWithDependencies{}
	number := 0
	for line := range strings.Lines(string(bytes)) {
		number++
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		switch fields[0] {
		case "v":
			if len(fields) != 4 {
				return nil, fmt.Errorf("line %d: vertex needs 3 coordinates", number)
			}
			var point mgl64.Vec3
			for i, field := range fields[1:] {
				value, err := strconv.ParseFloat(field, 64)
				if err != nil {
					return nil, fmt.Errorf("line %d: bad coordinate %q: %w", number, field, err)
				}
				point[i] = value
			}
			mesh.Points = append(mesh.Points, point)
		case "use":
			if len(fields) != 2 {
				return nil, fmt.Errorf("line %d: use needs one asset path", number)
			}
			result.Dependency(fields[1])
		default:
			return nil, fmt.Errorf("line %d: unknown directive %q", number, fields[0])
		}
	}
	result.Bundle = NewBundle(mesh)
	return result, nil
}
