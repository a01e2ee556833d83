// Package provision composes portal calls into the provisioning sequences
// exposed by the CLI. Every sequence is strictly ordered and stops at the
// first failure; nothing created before the failure is rolled back.
package provision

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"excalibur-cli/internal/client"
	"excalibur-cli/internal/logging"
	"excalibur-cli/pkg/models"
)

// Portal is the subset of the portal client the provisioner drives.
type Portal interface {
	ResolveFolder(ctx context.Context, title string) (models.FolderRef, error)
	FindItemInFolder(ctx context.Context, folderID, title, itemType string) (*models.Item, error)
	AddItem(ctx context.Context, folderID string, item client.AddItemRequest) (string, error)
	UploadItem(ctx context.Context, folderID, path, title, itemType string) (string, error)
	PublishItem(ctx context.Context, itemID, fileType, serviceName string) (models.PublishedService, error)
	AddLayerToWebMap(ctx context.Context, webmapID string, layer models.OperationalLayer) error
	ShareItem(ctx context.Context, itemID, groupID string, org bool) (models.ShareItemsResponse, error)
	IsServiceNameAvailable(ctx context.Context, name string) (bool, error)
	CreateVideoService(ctx context.Context, name string) (models.CreateServiceResponse, error)
	AddVideoLayer(ctx context.Context, serviceURL string, layer models.VideoLayer) error
	StartStream(ctx context.Context, serviceURL string) error
}

// Sharing selects who a created item is shared with.
type Sharing struct {
	GroupID string
	Org     bool
}

type Provisioner struct {
	Portal Portal
	Logger *log.Logger
	// Out receives one line per completed step.
	Out io.Writer
}

func New(portal Portal) *Provisioner {
	return &Provisioner{
		Portal: portal,
		Logger: logging.New("provision"),
		Out:    io.Discard,
	}
}

func (p *Provisioner) step(format string, args ...any) {
	fmt.Fprintf(p.Out, format+"\n", args...)
}

func (p *Provisioner) share(ctx context.Context, itemID string, s Sharing) error {
	if _, err := p.Portal.ShareItem(ctx, itemID, s.GroupID, s.Org); err != nil {
		return fmt.Errorf("share item %s: %w", itemID, err)
	}
	p.Logger.Debug("shared item", "item", itemID, "group", s.GroupID, "org", s.Org)
	return nil
}
