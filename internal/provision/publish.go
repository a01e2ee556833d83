package provision

import (
	"context"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"

	"excalibur-cli/internal/client"
	"excalibur-cli/internal/geojson"
	"excalibur-cli/pkg/models"
)

// GeoJSONFileType is the publish filetype for uploaded GeoJSON items.
const GeoJSONFileType = "geojson"

type PublishOptions struct {
	Sharing
	// WebMapID names the web map receiving the layer. When empty a web map
	// is created from WebMapTemplate.
	WebMapID       string
	WebMapTemplate string
}

type PublishResult struct {
	WebMapID      string
	WebMapCreated bool
	GeoJSONItemID string
	Service       models.PublishedService
	Layer         models.OperationalLayer
	Summary       geojson.Summary
}

// PublishGeoJSON uploads the file at path, publishes it as a hosted feature
// service named after the file and prepends it to a web map. The returned
// result holds whatever was created even when err is non-nil.
func (p *Provisioner) PublishGeoJSON(ctx context.Context, path string, opts PublishOptions) (PublishResult, error) {
	res := PublishResult{WebMapID: opts.WebMapID}
	if path == "" {
		return res, fmt.Errorf("%w: geojson file", client.ErrMissingArgument)
	}

	summary, err := geojson.Inspect(path)
	if err != nil {
		return res, err
	}
	res.Summary = summary
	name := summary.LayerName
	p.Logger.Debug("geojson inspected", "file", path, "features", summary.Features, "types", summary.GeometryTypes)

	if res.WebMapID == "" {
		id, err := p.createWebMap(ctx, name, opts.WebMapTemplate)
		if err != nil {
			return res, err
		}
		res.WebMapID = id
		res.WebMapCreated = true
	}
	if err := p.share(ctx, res.WebMapID, opts.Sharing); err != nil {
		return res, err
	}

	p.step("Uploading %s (%s, %d features)", path, humanize.Bytes(uint64(summary.Size)), summary.Features)
	itemID, err := p.Portal.UploadItem(ctx, "", path, name, models.ItemTypeGeoJSON)
	if err != nil {
		return res, fmt.Errorf("upload %s: %w", path, err)
	}
	res.GeoJSONItemID = itemID

	svc, err := p.Portal.PublishItem(ctx, itemID, GeoJSONFileType, name)
	if err != nil {
		return res, fmt.Errorf("publish %s: %w", name, err)
	}
	res.Service = svc
	p.Logger.Info("published feature service", "name", name, "item", svc.ServiceItemID, "url", svc.ServiceURL)
	p.step("Published feature service %s (%s)", name, svc.ServiceURL)

	if err := p.share(ctx, svc.ServiceItemID, opts.Sharing); err != nil {
		return res, err
	}

	res.Layer = models.NewFeatureLayer(name, svc.ServiceURL, svc.ServiceItemID)
	if err := p.Portal.AddLayerToWebMap(ctx, res.WebMapID, res.Layer); err != nil {
		return res, fmt.Errorf("add layer %s to web map %s: %w", name, res.WebMapID, err)
	}
	p.step("Added layer %s to web map %s", name, res.WebMapID)
	return res, nil
}

// createWebMap adds a web map item in the root folder whose data is the
// template file contents.
func (p *Provisioner) createWebMap(ctx context.Context, title, template string) (string, error) {
	if template == "" {
		return "", fmt.Errorf("%w: web map template", client.ErrMissingArgument)
	}
	text, err := os.ReadFile(template)
	if err != nil {
		return "", fmt.Errorf("read web map template: %w", err)
	}
	id, err := p.Portal.AddItem(ctx, "", client.AddItemRequest{
		Title: title,
		Type:  models.ItemTypeWebMap,
		Text:  string(text),
	})
	if err != nil {
		return "", fmt.Errorf("create web map %q: %w", title, err)
	}
	p.Logger.Info("created web map", "title", title, "id", id)
	p.step("Created web map %s (%s)", title, id)
	return id, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
