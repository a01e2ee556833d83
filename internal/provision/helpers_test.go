package provision

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"excalibur-cli/internal/client"
	"excalibur-cli/internal/logging"
	"excalibur-cli/internal/testsupport"
	"excalibur-cli/pkg/models"
)

const fireGeoJSON = `{
  "type": "FeatureCollection",
  "features": [{
    "type": "Feature",
    "properties": {"name": "perimeter"},
    "geometry": {
      "type": "Polygon",
      "coordinates": [[[-120.5, 38.1], [-120.4, 38.1], [-120.4, 38.2], [-120.5, 38.1]]]
    }
  }]
}`

const webMapTemplate = `{
  "operationalLayers": [],
  "baseMap": {"title": "Topographic", "baseMapLayers": []},
  "spatialReference": {"wkid": 102100},
  "version": "2.20"
}`

func newProvisioner(t *testing.T) (*testsupport.Portal, *Provisioner) {
	t.Helper()
	portal := testsupport.NewPortal(t)
	c := client.New(client.ClientConfig{
		SharingURL:     portal.SharingURL(),
		VideoServerURL: portal.VideoServerURL(),
		Username:       portal.Username,
		Password:       portal.Password,
	})
	c.Logger = logging.Discard()
	if _, err := c.Login(context.Background()); err != nil {
		t.Fatalf("login: %v", err)
	}
	p := New(c)
	p.Logger = logging.Discard()
	return portal, p
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func strPtr(s string) *string { return &s }

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func testsupportWebMap() testsupport.FakeItem {
	return testsupport.FakeItem{Title: "Operations", Type: models.ItemTypeWebMap, Text: `{"operationalLayers":[]}`}
}
