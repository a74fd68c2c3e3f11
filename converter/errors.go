package converter

import "github.com/pkg/errors"

var (
	ErrMissingEmbeddedData       = errors.New("gltf: missing embedded data")
	ErrCorruptBufferData         = errors.New("gltf: corrupt buffer data")
	ErrPrimitiveMissingPositions = errors.New("gltf: primitive missing positions")
	ErrUnsupportedStridedImage   = errors.New("gltf: unsupported strided image")
	ErrUnsupportedInterpolation  = errors.New("gltf: unsupported interpolation")
	ErrInvalidReference          = errors.New("gltf: invalid reference")
)

// CapabilityMissingError reports an optional collaborator that was not
// configured.
type CapabilityMissingError struct {
	Name string
}

func (e *CapabilityMissingError) Error() string {
	return "gltf: capability missing: " + e.Name
}
