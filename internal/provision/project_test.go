package provision

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/tidwall/gjson"

	"excalibur-cli/internal/client"
	"excalibur-cli/internal/testsupport"
	"excalibur-cli/pkg/models"
)

func TestBuildStandaloneProject(t *testing.T) {
	tests := []struct {
		name        string
		cfg         string
		folder      string
		projectType string
		check       func(t *testing.T, data string)
	}{
		{
			name:   "defaults",
			cfg:    `{"title":"Ridge"}`,
			folder: "Ridge",
			check: func(t *testing.T, data string) {
				if gjson.Get(data, "version").String() != "4.0" {
					t.Errorf("version = %s", gjson.Get(data, "version").Raw)
				}
				if r := gjson.Get(data, "instructions"); !r.Exists() || r.String() != "" {
					t.Errorf("instructions = %s", r.Raw)
				}
			},
		},
		{
			name:   "version one uses the shared folder",
			cfg:    `{"title":"Ridge","version":1}`,
			folder: LegacyProjectFolder,
			check: func(t *testing.T, data string) {
				if gjson.Get(data, "version").Raw != "1" {
					t.Errorf("version = %s", gjson.Get(data, "version").Raw)
				}
			},
		},
		{
			name:   "focus image layer becomes the only primary layer",
			cfg:    `{"title":"Ridge","focusImageLayer":{"itemId":"f1"},"serviceUrl":"https://x/ImageServer"}`,
			folder: "Ridge",
			check: func(t *testing.T, data string) {
				if gjson.Get(data, "primaryLayers.#").Int() != 1 || gjson.Get(data, "primaryLayers.0.itemId").String() != "f1" {
					t.Errorf("primaryLayers = %s", gjson.Get(data, "primaryLayers").Raw)
				}
				if gjson.Get(data, "serviceUrl").Exists() {
					t.Error("serviceUrl should be dropped when primary layers are set")
				}
			},
		},
		{
			name:   "raster fallback",
			cfg:    `{"title":"Ridge","serviceUrl":"https://x/ImageServer","rasterIds":[3,4]}`,
			folder: "Ridge",
			check: func(t *testing.T, data string) {
				if gjson.Get(data, "serviceUrl").String() != "https://x/ImageServer" || gjson.Get(data, "rasterIds.#").Int() != 2 {
					t.Errorf("raster fields missing: %s", data)
				}
			},
		},
		{
			name:        "observation layers",
			cfg:         `{"title":"Ridge","primaryLayers":[{"itemId":"p"}],"observationLayers":[{"itemId":"o"}]}`,
			folder:      "Ridge",
			projectType: ObservationProjectType,
			check: func(t *testing.T, data string) {
				if gjson.Get(data, "observationLayers.0.itemId").String() != "o" {
					t.Errorf("observationLayers = %s", gjson.Get(data, "observationLayers").Raw)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cfg models.ProjectConfig
			if err := json.Unmarshal([]byte(tt.cfg), &cfg); err != nil {
				t.Fatal(err)
			}
			proj := BuildStandaloneProject(cfg)
			if proj.Folder != tt.folder {
				t.Errorf("folder = %q, want %q", proj.Folder, tt.folder)
			}
			if proj.Item.ProjectType != tt.projectType {
				t.Errorf("projectType = %q", proj.Item.ProjectType)
			}
			if proj.Item.Snippet == nil || *proj.Item.Snippet != "" {
				t.Errorf("snippet should default to empty")
			}
			if proj.Item.Status != DefaultProjectStatus {
				t.Errorf("status = %q", proj.Item.Status)
			}
			data, err := json.Marshal(proj.Data)
			if err != nil {
				t.Fatal(err)
			}
			tt.check(t, string(data))
		})
	}
}

func TestCreateProjectInNewFolder(t *testing.T) {
	portal, p := newProvisioner(t)
	cfg := models.ProjectConfig{
		Title:       "Ridge Fire",
		Summary:     strPtr("north flank"),
		Description: strPtr("Imagery over the ridge"),
		Status:      strPtr("StatusActive"),
	}

	id, err := p.CreateProject(context.Background(), cfg, Sharing{Org: true})
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}

	if n := len(portal.SearchQueries()); n != 0 {
		t.Errorf("duplicate search should be skipped for a new folder, got %d queries", n)
	}
	it, ok := portal.Item(id)
	if !ok {
		t.Fatalf("item %s not stored", id)
	}
	folders := portal.Folders()
	if len(folders) != 1 || folders[0].Title != "Ridge Fire" || it.Folder != folders[0].ID {
		t.Errorf("project not placed in its own folder: item folder %q, folders %+v", it.Folder, folders)
	}
	if it.Type != models.ItemTypeImageryProject || it.Snippet != "north flank" || it.Keywords != "StatusActive" {
		t.Errorf("unexpected item: %+v", it)
	}
	if it.Form["tags"] != ProjectTag || it.Form["description"] != "Imagery over the ridge" {
		t.Errorf("form = %v", it.Form)
	}
	if !it.Org {
		t.Error("project not shared with the organization")
	}
}

func TestCreateProjectWithoutSharing(t *testing.T) {
	portal, p := newProvisioner(t)
	if _, err := p.CreateProject(context.Background(), models.ProjectConfig{Title: "Quiet"}, Sharing{}); err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	if n := portal.CallCount("/shareItems"); n != 0 {
		t.Errorf("shareItems called %d times", n)
	}
}

func TestCreateProjectDuplicateInReusedFolder(t *testing.T) {
	portal, p := newProvisioner(t)
	folder := portal.AddFolder("Ridge Fire")
	portal.AddItem(testsupport.FakeItem{Title: "Ridge Fire", Type: models.ItemTypeImageryProject, Folder: folder})

	_, err := p.CreateProject(context.Background(), models.ProjectConfig{Title: "Ridge Fire"}, Sharing{})
	if !errors.Is(err, client.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
	if n := portal.CallCount("/addItem"); n != 0 {
		t.Errorf("addItem issued %d times before the duplicate was detected", n)
	}
	if n := len(portal.Folders()); n != 1 {
		t.Errorf("folder count = %d", n)
	}
}

func TestCreateProjectReusedFolderSimilarTitle(t *testing.T) {
	portal, p := newProvisioner(t)
	folder := portal.AddFolder("Ridge")
	portal.AddItem(testsupport.FakeItem{Title: "Ridge Fire 2", Type: models.ItemTypeImageryProject, Folder: folder})

	id, err := p.CreateProject(context.Background(), models.ProjectConfig{Title: "Ridge"}, Sharing{})
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	it, _ := portal.Item(id)
	if it.Folder != folder {
		t.Errorf("item folder = %q, want existing %q", it.Folder, folder)
	}
}

func TestCreateProjectRequiresTitle(t *testing.T) {
	portal, p := newProvisioner(t)
	_, err := p.CreateProject(context.Background(), models.ProjectConfig{}, Sharing{})
	if !errors.Is(err, client.ErrMissingArgument) {
		t.Fatalf("expected ErrMissingArgument, got %v", err)
	}
	if n := len(portal.Folders()); n != 0 {
		t.Errorf("folders created: %d", n)
	}
}

func TestLoadProjectConfig(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "ridge.json", `{"title":"Ridge","version":"4.0","webmapId":"wm1"}`)
	cfg, err := LoadProjectConfig(good)
	if err != nil {
		t.Fatalf("LoadProjectConfig: %v", err)
	}
	if cfg.Title != "Ridge" || cfg.WebmapID == nil || *cfg.WebmapID != "wm1" {
		t.Errorf("cfg = %+v", cfg)
	}

	untitled := writeFile(t, dir, "untitled.json", `{"summary":"x"}`)
	if _, err := LoadProjectConfig(untitled); !errors.Is(err, client.ErrMissingArgument) {
		t.Errorf("expected ErrMissingArgument, got %v", err)
	}
}
