package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// paths.json keys. Each can also be supplied through the environment.
const (
	PathProjectConfigDir = "PROJECT_CONFIG_DIR"
	PathSharingURL       = "SHARING_URL"
	PathVideoServerURL   = "VIDEO_SERVER_URL"
	PathVideoStreamURL   = "URL_TO_VIDEO_STREAM"
	PathGeoJSONDataDir   = "GEOJSON_DATA_DIR"
	PathVerifySSL        = "VERIFY_SSL"
)

// DefaultPathsFile is used when --paths is not given
var DefaultPathsFile = filepath.Join("config", "paths.json")

// WebMapTemplateName is the web map body used for new web maps, looked up in
// the project config directory.
const WebMapTemplateName = "base-webmap-sample.json"

// Paths holds the locations and endpoints read from paths.json
type Paths struct {
	ProjectConfigDir string `mapstructure:"PROJECT_CONFIG_DIR"`
	SharingURL       string `mapstructure:"SHARING_URL"`
	VideoServerURL   string `mapstructure:"VIDEO_SERVER_URL"`
	VideoStreamURL   string `mapstructure:"URL_TO_VIDEO_STREAM"`
	GeoJSONDataDir   string `mapstructure:"GEOJSON_DATA_DIR"`
	VerifySSL        bool   `mapstructure:"VERIFY_SSL"`
}

// LoadPaths reads the paths file. A missing file is an error only when
// required is set; otherwise values come from the environment alone.
// Relative directories are resolved against the file's directory.
func LoadPaths(file string, required bool) (Paths, error) {
	v := viper.New()
	v.SetConfigType("json")
	v.SetDefault(PathVerifySSL, true)
	for _, key := range []string{PathProjectConfigDir, PathSharingURL, PathVideoServerURL, PathVideoStreamURL, PathGeoJSONDataDir, PathVerifySSL} {
		_ = v.BindEnv(key)
	}

	if file == "" {
		file = DefaultPathsFile
	}
	baseDir := filepath.Dir(file)

	v.SetConfigFile(file)
	if err := v.ReadInConfig(); err != nil {
		if !errors.Is(err, os.ErrNotExist) || required {
			return Paths{}, fmt.Errorf("read paths file %s: %w", file, err)
		}
		baseDir = ""
	}

	var p Paths
	if err := v.Unmarshal(&p); err != nil {
		return Paths{}, fmt.Errorf("decode paths file %s: %w", file, err)
	}
	p.ProjectConfigDir = resolveDir(baseDir, p.ProjectConfigDir)
	p.GeoJSONDataDir = resolveDir(baseDir, p.GeoJSONDataDir)
	return p, nil
}

func resolveDir(base, dir string) string {
	if dir == "" || filepath.IsAbs(dir) || base == "" {
		return dir
	}
	return filepath.Join(base, filepath.FromSlash(dir))
}

// ProjectConfigFile returns the path of a project config, adding the .json
// extension when missing. The file must exist.
func (p Paths) ProjectConfigFile(name string) (string, error) {
	if !strings.HasSuffix(name, ".json") {
		name += ".json"
	}
	path := filepath.Join(p.ProjectConfigDir, name)
	if err := requireFile(path); err != nil {
		return "", fmt.Errorf("project config file not found: %s: %w", path, err)
	}
	return path, nil
}

// GeoJSONFile returns the path of a GeoJSON file in the data directory,
// adding the .geojson extension when missing. The file must exist.
func (p Paths) GeoJSONFile(name string) (string, error) {
	if !strings.HasSuffix(name, ".geojson") {
		name += ".geojson"
	}
	path := filepath.Join(p.GeoJSONDataDir, name)
	if err := requireFile(path); err != nil {
		return "", fmt.Errorf("geojson file not found: %s: %w", path, err)
	}
	return path, nil
}

// WebMapTemplate returns the path of the base web map body
func (p Paths) WebMapTemplate() string {
	return filepath.Join(p.ProjectConfigDir, WebMapTemplateName)
}

func requireFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return os.ErrNotExist
	}
	return nil
}
