package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadPaths(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "paths.json")
	writeFile(t, file, `{
  "PROJECT_CONFIG_DIR": "projects",
  "SHARING_URL": "https://portal.example.com/portal/sharing/rest",
  "VIDEO_SERVER_URL": "https://portal.example.com/video",
  "URL_TO_VIDEO_STREAM": "rtsp://cam/1",
  "GEOJSON_DATA_DIR": "/data/geojson",
  "VERIFY_SSL": "false"
}`)

	p, err := LoadPaths(file, true)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if p.ProjectConfigDir != filepath.Join(dir, "projects") {
		t.Fatalf("relative dir not resolved: %s", p.ProjectConfigDir)
	}
	if p.GeoJSONDataDir != "/data/geojson" {
		t.Fatalf("absolute dir changed: %s", p.GeoJSONDataDir)
	}
	if p.SharingURL != "https://portal.example.com/portal/sharing/rest" || p.VideoStreamURL != "rtsp://cam/1" {
		t.Fatalf("unexpected urls: %+v", p)
	}
	if p.VerifySSL {
		t.Fatal("VERIFY_SSL=false not honoured")
	}
}

func TestLoadPathsDefaultsAndEnv(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "paths.json")
	writeFile(t, file, `{"SHARING_URL": "https://from-file/sharing/rest"}`)
	t.Setenv("SHARING_URL", "https://from-env/sharing/rest")
	t.Setenv("URL_TO_VIDEO_STREAM", "rtsp://env/stream")

	p, err := LoadPaths(file, true)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !p.VerifySSL {
		t.Fatal("VERIFY_SSL should default to true")
	}
	if p.SharingURL != "https://from-env/sharing/rest" {
		t.Fatalf("env should override file, got %s", p.SharingURL)
	}
	if p.VideoStreamURL != "rtsp://env/stream" {
		t.Fatalf("env-only key missing, got %q", p.VideoStreamURL)
	}
}

func TestLoadPathsMissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "paths.json")

	if _, err := LoadPaths(missing, true); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected ErrNotExist when required, got %v", err)
	}
	p, err := LoadPaths(missing, false)
	if err != nil {
		t.Fatalf("optional missing file: %v", err)
	}
	if !p.VerifySSL {
		t.Fatal("defaults should still apply")
	}
}

func TestPathsFileLookups(t *testing.T) {
	dir := t.TempDir()
	p := Paths{ProjectConfigDir: filepath.Join(dir, "projects"), GeoJSONDataDir: filepath.Join(dir, "data")}
	writeFile(t, filepath.Join(dir, "projects", "fire.json"), `{}`)
	writeFile(t, filepath.Join(dir, "data", "fire.geojson"), `{}`)

	for _, name := range []string{"fire", "fire.json"} {
		got, err := p.ProjectConfigFile(name)
		if err != nil || got != filepath.Join(dir, "projects", "fire.json") {
			t.Fatalf("ProjectConfigFile(%q) = %q, %v", name, got, err)
		}
	}
	for _, name := range []string{"fire", "fire.geojson"} {
		got, err := p.GeoJSONFile(name)
		if err != nil || got != filepath.Join(dir, "data", "fire.geojson") {
			t.Fatalf("GeoJSONFile(%q) = %q, %v", name, got, err)
		}
	}
	if _, err := p.ProjectConfigFile("nope"); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected ErrNotExist, got %v", err)
	}
	if p.WebMapTemplate() != filepath.Join(dir, "projects", WebMapTemplateName) {
		t.Fatalf("unexpected template path %s", p.WebMapTemplate())
	}
}

func TestSessionRoundTrip(t *testing.T) {
	file := filepath.Join(t.TempDir(), "cli.yaml")
	viper.Reset()
	t.Cleanup(viper.Reset)

	if err := InitConfig(file); err != nil {
		t.Fatalf("init: %v", err)
	}
	expires := time.UnixMilli(time.Now().Add(time.Hour).UnixMilli())
	want := Session{SharingURL: "https://p/sharing/rest", Username: "operator", Token: "tok", Expires: expires}
	if err := SaveSession(want); err != nil {
		t.Fatalf("save: %v", err)
	}

	viper.Reset()
	if err := InitConfig(file); err != nil {
		t.Fatalf("reinit: %v", err)
	}
	got := LoadSession()
	if got.SharingURL != want.SharingURL || got.Username != want.Username || got.Token != want.Token || !got.Expires.Equal(want.Expires) {
		t.Fatalf("got %+v, want %+v", got, want)
	}

	if err := ClearSession(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if s := LoadSession(); s.Token != "" || !s.Expires.IsZero() || s.Username != "operator" {
		t.Fatalf("unexpected session after clear: %+v", s)
	}
}
