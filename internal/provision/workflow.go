package provision

import (
	"context"
	"fmt"

	"excalibur-cli/internal/client"
	"excalibur-cli/internal/geojson"
	"excalibur-cli/pkg/models"
)

// WorkflowInput drives RunWorkflow.
type WorkflowInput struct {
	GeoJSONPath    string
	Project        models.ProjectConfig
	StreamURL      string
	WebMapTemplate string
	Sharing
	StartStream bool
}

// WorkflowResult records every resource created, including on failure.
type WorkflowResult struct {
	Publish   PublishResult
	Video     models.VideoService
	ProjectID string
}

// RunWorkflow publishes the GeoJSON file into a web map, creates a video
// service named after the file and finally a project linking both.
func (p *Provisioner) RunWorkflow(ctx context.Context, in WorkflowInput) (WorkflowResult, error) {
	var res WorkflowResult
	if in.Project.Title == "" {
		return res, fmt.Errorf("%w: project title", client.ErrMissingArgument)
	}
	if in.StreamURL == "" {
		return res, fmt.Errorf("%w: video stream url", client.ErrMissingArgument)
	}
	if in.GeoJSONPath == "" || !fileExists(in.GeoJSONPath) {
		return res, fmt.Errorf("%w: geojson file %q", client.ErrMissingArgument, in.GeoJSONPath)
	}

	webmapID := ""
	if in.Project.WebmapID != nil {
		webmapID = *in.Project.WebmapID
	}

	p.step("*** Publishing GeoJSON %s ***", in.GeoJSONPath)
	pub, err := p.PublishGeoJSON(ctx, in.GeoJSONPath, PublishOptions{
		Sharing:        in.Sharing,
		WebMapID:       webmapID,
		WebMapTemplate: in.WebMapTemplate,
	})
	res.Publish = pub
	if err != nil {
		return res, err
	}

	p.step("*** Creating video service ***")
	video, err := p.CreateVideoService(ctx, geojson.LayerName(in.GeoJSONPath), in.StreamURL, VideoOptions{
		Sharing: in.Sharing,
		Start:   in.StartStream,
	})
	res.Video = video
	if err != nil {
		return res, err
	}

	p.step("*** Creating project %s ***", in.Project.Title)
	id, err := p.CreateLinkedProject(ctx, in.Project, video, pub.WebMapID, in.Sharing)
	res.ProjectID = id
	if err != nil {
		return res, err
	}
	return res, nil
}
