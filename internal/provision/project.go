package provision

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"excalibur-cli/internal/client"
	"excalibur-cli/pkg/models"
)

const (
	DefaultProjectVersion = "4.0"
	DefaultProjectStatus  = "StatusDraft"
	// LegacyProjectFolder holds every version 1 project
	LegacyProjectFolder    = "Excalibur Imagery Projects"
	ProjectTag             = "Image Project"
	ObservationProjectType = "ObservationProject"
	VideoServiceType       = "video"
)

// LoadProjectConfig reads a project config file. The title is required.
func LoadProjectConfig(path string) (models.ProjectConfig, error) {
	var cfg models.ProjectConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read project config: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse project config %s: %w", path, err)
	}
	if cfg.Title == "" {
		return cfg, fmt.Errorf("%w: project config %s has no title", client.ErrMissingArgument, path)
	}
	return cfg, nil
}

// StandaloneProject holds what BuildStandaloneProject derives from a config.
type StandaloneProject struct {
	Folder string
	Item   models.ProjectItem
	Data   models.ProjectData
}

// BuildStandaloneProject applies the defaults used when a project is created
// on its own from a config file.
func BuildStandaloneProject(cfg models.ProjectConfig) StandaloneProject {
	item := models.ProjectItem{
		Title:       cfg.Title,
		Status:      DefaultProjectStatus,
		Description: "",
	}
	snippet := ""
	if cfg.Summary != nil {
		snippet = *cfg.Summary
	}
	item.Snippet = &snippet
	if cfg.Status != nil {
		item.Status = *cfg.Status
	}
	if cfg.Description != nil {
		item.Description = *cfg.Description
	}

	instructions := ""
	if cfg.Instructions != nil {
		instructions = *cfg.Instructions
	}
	data := models.ProjectData{
		Instructions: &instructions,
		Version:      DefaultProjectVersion,
		WebmapID:     cfg.WebmapID,
	}
	if cfg.Version != nil {
		data.Version = cfg.Version
	}

	folder := cfg.Title
	if isVersionOne(data.Version) {
		folder = LegacyProjectFolder
	}

	switch {
	case len(cfg.PrimaryLayers) > 0:
		data.PrimaryLayers = cfg.PrimaryLayers
	case len(cfg.FocusImageLayer) > 0:
		data.PrimaryLayers = json.RawMessage("[" + string(cfg.FocusImageLayer) + "]")
	default:
		data.ServiceURL = cfg.ServiceURL
		data.RasterIDs = cfg.RasterIDs
	}

	if len(cfg.ObservationLayers) > 0 {
		item.ProjectType = ObservationProjectType
		data.ObservationLayers = cfg.ObservationLayers
	}

	return StandaloneProject{Folder: folder, Item: item, Data: data}
}

// BuildLinkedProject builds a project whose single primary layer is a video
// service, shown over webmapID.
func BuildLinkedProject(cfg models.ProjectConfig, video models.VideoService, webmapID string) (models.ProjectItem, models.ProjectData, error) {
	item := models.ProjectItem{Title: cfg.Title, Snippet: cfg.Summary}

	layers, err := json.Marshal([]models.PrimaryLayer{{
		ItemID:      video.ItemID,
		ServiceURL:  video.URL,
		ServiceType: VideoServiceType,
	}})
	if err != nil {
		return item, models.ProjectData{}, fmt.Errorf("encode primary layers: %w", err)
	}

	data := models.ProjectData{
		Instructions:  cfg.Instructions,
		Version:       DefaultProjectVersion,
		WebmapID:      &webmapID,
		PrimaryLayers: layers,
	}
	return item, data, nil
}

func isVersionOne(v any) bool {
	switch n := v.(type) {
	case float64:
		return n == 1
	case int:
		return n == 1
	case json.Number:
		f, err := n.Float64()
		return err == nil && f == 1
	}
	return false
}

// CreateProject creates a standalone project item from cfg. Sharing happens
// only when a group or the organization is requested.
func (p *Provisioner) CreateProject(ctx context.Context, cfg models.ProjectConfig, share Sharing) (string, error) {
	if cfg.Title == "" {
		return "", fmt.Errorf("%w: project title", client.ErrMissingArgument)
	}
	proj := BuildStandaloneProject(cfg)

	keywords := []string{proj.Item.Status}
	if proj.Item.ProjectType != "" {
		keywords = append(keywords, proj.Item.ProjectType)
	}
	req := client.AddItemRequest{
		Title:        proj.Item.Title,
		Type:         models.ItemTypeImageryProject,
		Snippet:      proj.Item.Snippet,
		Description:  proj.Item.Description,
		Tags:         []string{ProjectTag},
		TypeKeywords: keywords,
	}

	itemID, err := p.createProjectItem(ctx, proj.Folder, models.ItemTypeImageryProject, req, proj.Data)
	if err != nil {
		return "", err
	}
	if share.GroupID != "" || share.Org {
		if err := p.share(ctx, itemID, share); err != nil {
			return itemID, err
		}
	}
	return itemID, nil
}

// CreateLinkedProject creates the project referencing a video service and a
// web map, then shares it.
func (p *Provisioner) CreateLinkedProject(ctx context.Context, cfg models.ProjectConfig, video models.VideoService, webmapID string, share Sharing) (string, error) {
	if cfg.Title == "" {
		return "", fmt.Errorf("%w: project title", client.ErrMissingArgument)
	}
	item, data, err := BuildLinkedProject(cfg, video, webmapID)
	if err != nil {
		return "", err
	}
	req := client.AddItemRequest{
		Title:   item.Title,
		Type:    models.ItemTypeImageryProject,
		Snippet: item.Snippet,
	}

	itemID, err := p.createProjectItem(ctx, cfg.Title, "", req, data)
	if err != nil {
		return "", err
	}
	if err := p.share(ctx, itemID, share); err != nil {
		return itemID, err
	}
	return itemID, nil
}

// createProjectItem resolves the folder, refuses a duplicate title in a
// reused folder, then adds the item.
func (p *Provisioner) createProjectItem(ctx context.Context, folderTitle, typeFilter string, req client.AddItemRequest, data models.ProjectData) (string, error) {
	folder, err := p.Portal.ResolveFolder(ctx, folderTitle)
	if err != nil {
		return "", fmt.Errorf("resolve folder %q: %w", folderTitle, err)
	}
	p.Logger.Info("project folder", "title", folderTitle, "id", folder.ID, "new", folder.New)

	if !folder.New {
		existing, err := p.Portal.FindItemInFolder(ctx, folder.ID, req.Title, typeFilter)
		if err != nil {
			return "", fmt.Errorf("check for existing project: %w", err)
		}
		if existing != nil {
			return "", fmt.Errorf("cannot create project %q: %w (item %s)", req.Title, client.ErrAlreadyExists, existing.ID)
		}
	}

	text, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("encode project data: %w", err)
	}
	req.Text = string(text)

	itemID, err := p.Portal.AddItem(ctx, folder.ID, req)
	if err != nil {
		return "", fmt.Errorf("create project item: %w", err)
	}
	p.Logger.Info("created project item", "id", itemID)
	p.step("Created project item %s in folder %s", itemID, folderTitle)
	return itemID, nil
}
