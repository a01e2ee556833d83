package provision

import (
	"context"
	"fmt"

	"excalibur-cli/internal/client"
	"excalibur-cli/pkg/models"
)

// VideoOptions controls what happens after the service shell is created.
type VideoOptions struct {
	Sharing
	// Start begins streaming immediately instead of on first request.
	Start bool
}

// CreateVideoService creates a livestream video service named name that
// pulls from streamURL. A taken name fails before anything is created.
func (p *Provisioner) CreateVideoService(ctx context.Context, name, streamURL string, opts VideoOptions) (models.VideoService, error) {
	var svc models.VideoService
	if name == "" {
		return svc, fmt.Errorf("%w: video service name", client.ErrMissingArgument)
	}
	if streamURL == "" {
		return svc, fmt.Errorf("%w: video stream url", client.ErrMissingArgument)
	}

	available, err := p.Portal.IsServiceNameAvailable(ctx, name)
	if err != nil {
		return svc, fmt.Errorf("check video service name %q: %w", name, err)
	}
	if !available {
		return svc, fmt.Errorf("video service %q: %w", name, client.ErrAlreadyExists)
	}

	created, err := p.Portal.CreateVideoService(ctx, name)
	if err != nil {
		return svc, fmt.Errorf("create video service %q: %w", name, err)
	}
	svc = models.VideoService{ItemID: created.ItemID, URL: created.ServiceURL}
	p.Logger.Info("created video service", "name", name, "item", svc.ItemID, "url", svc.URL)
	p.step("Created video service %s (%s)", name, svc.URL)

	if err := p.Portal.AddVideoLayer(ctx, svc.URL, models.NewLivestreamLayer(name, streamURL)); err != nil {
		p.Logger.Warn("video service left without a layer", "item", svc.ItemID, "url", svc.URL)
		return svc, fmt.Errorf("add stream layer to %s: %w", svc.URL, err)
	}
	p.step("Added livestream layer %s", streamURL)

	if err := p.share(ctx, svc.ItemID, opts.Sharing); err != nil {
		return svc, err
	}

	if opts.Start {
		if err := p.Portal.StartStream(ctx, svc.URL); err != nil {
			return svc, fmt.Errorf("start stream %s: %w", svc.URL, err)
		}
		p.step("Started stream on %s", svc.URL)
	}
	return svc, nil
}

// StartStream starts an existing video service.
func (p *Provisioner) StartStream(ctx context.Context, serviceURL string) error {
	if err := p.Portal.StartStream(ctx, serviceURL); err != nil {
		return fmt.Errorf("start stream %s: %w", serviceURL, err)
	}
	p.step("Started stream on %s", serviceURL)
	return nil
}
