// Package geojson checks GeoJSON files before they are uploaded to the portal.
package geojson

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/tidwall/gjson"
)

const Extension = ".geojson"

var ErrInvalid = errors.New("invalid geojson")

// Summary describes a GeoJSON file about to be published.
type Summary struct {
	Path          string
	LayerName     string
	Kind          string
	Features      int
	Size          int64
	Bound         orb.Bound
	GeometryTypes map[string]int

	hasBound bool
}

// LayerName derives the layer/service name from a file path: the base name
// without the .geojson extension. Both path separators are accepted.
func LayerName(path string) string {
	base := path
	if i := strings.LastIndexAny(base, `/\`); i >= 0 {
		base = base[i+1:]
	}
	return strings.TrimSuffix(base, Extension)
}

// Inspect parses the file at path and reports its features and extent.
func Inspect(path string) (Summary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Summary{}, fmt.Errorf("read %s: %w", path, err)
	}
	s := Summary{
		Path:          path,
		LayerName:     LayerName(path),
		Size:          int64(len(data)),
		GeometryTypes: map[string]int{},
	}
	if !gjson.ValidBytes(data) {
		return s, fmt.Errorf("%w: %s is not valid JSON", ErrInvalid, path)
	}

	s.Kind = gjson.GetBytes(data, "type").String()
	switch s.Kind {
	case "FeatureCollection":
		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			return s, fmt.Errorf("%w: %s: %v", ErrInvalid, path, err)
		}
		for _, f := range fc.Features {
			s.add(f.Geometry)
		}
	case "Feature":
		f, err := geojson.UnmarshalFeature(data)
		if err != nil {
			return s, fmt.Errorf("%w: %s: %v", ErrInvalid, path, err)
		}
		s.add(f.Geometry)
	case "":
		return s, fmt.Errorf("%w: %s has no type member", ErrInvalid, path)
	default:
		g, err := geojson.UnmarshalGeometry(data)
		if err != nil {
			return s, fmt.Errorf("%w: %s: %v", ErrInvalid, path, err)
		}
		s.add(g.Geometry())
	}
	return s, nil
}

func (s *Summary) add(g orb.Geometry) {
	s.Features++
	if g == nil {
		s.GeometryTypes["null"]++
		return
	}
	s.GeometryTypes[g.GeoJSONType()]++
	b := g.Bound()
	if !s.hasBound {
		s.Bound = b
		s.hasBound = true
		return
	}
	s.Bound = s.Bound.Union(b)
}
