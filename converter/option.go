package converter

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// LoadOptionFile reads converter options from a YAML file:
//
//	cubicSpline: linear
//	skipAnimations: false
//	skipTextures: false
func LoadOptionFile(path string) (*GLTFToModelOption, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseOption(data)
}

func ParseOption(data []byte) (*GLTFToModelOption, error) {
	var opt GLTFToModelOption
	if err := yaml.UnmarshalStrict(data, &opt); err != nil {
		return nil, errors.Wrap(err, "option")
	}
	switch opt.CubicSpline {
	case "":
		opt.CubicSpline = CubicSplineLinear
	case CubicSplineLinear, CubicSplineError:
	default:
		return nil, errors.Errorf("option: unknown cubicSpline mode %q", opt.CubicSpline)
	}
	return &opt, nil
}
