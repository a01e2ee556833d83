package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"excalibur-cli/pkg/models"
)

const operationalLayersKey = "operationalLayers"

var errInvalidWebMap = errors.New("invalid web map document")

// PrependOperationalLayer inserts layer at index 0 of the document's
// operationalLayers. Existing layers and every other key are kept verbatim.
func PrependOperationalLayer(webmap []byte, layer models.OperationalLayer) ([]byte, error) {
	if !gjson.ValidBytes(webmap) || !gjson.ParseBytes(webmap).IsObject() {
		return nil, errInvalidWebMap
	}

	layerJSON, err := json.Marshal(layer)
	if err != nil {
		return nil, fmt.Errorf("encode layer: %w", err)
	}

	parts := []string{string(layerJSON)}
	existing := gjson.GetBytes(webmap, operationalLayersKey)
	if existing.Exists() && existing.Type != gjson.Null {
		if !existing.IsArray() {
			return nil, fmt.Errorf("%w: %s is not a list", errInvalidWebMap, operationalLayersKey)
		}
		for _, l := range existing.Array() {
			parts = append(parts, l.Raw)
		}
	}

	out, err := sjson.SetRawBytes(webmap, operationalLayersKey, []byte("["+strings.Join(parts, ",")+"]"))
	if err != nil {
		return nil, fmt.Errorf("set %s: %w", operationalLayersKey, err)
	}
	return out, nil
}

// AddLayerToWebMap fetches the web map body, prepends layer and writes it back.
func (c *PortalClient) AddLayerToWebMap(ctx context.Context, webmapID string, layer models.OperationalLayer) error {
	if webmapID == "" {
		return fmt.Errorf("%w: web map id", ErrMissingArgument)
	}

	body, err := c.ItemData(ctx, webmapID)
	if err != nil {
		return err
	}
	updated, err := PrependOperationalLayer(body, layer)
	if err != nil {
		return fmt.Errorf("web map %s: %w", webmapID, err)
	}
	return c.UpdateItemText(ctx, webmapID, string(updated))
}
