package models

import "encoding/json"

// OperationalLayer is the descriptor prepended to a web map's operationalLayers.
type OperationalLayer struct {
	ID              string          `json:"id"`
	Title           string          `json:"title"`
	URL             string          `json:"url"`
	ItemID          string          `json:"itemId"`
	LayerType       string          `json:"layerType"`
	LayerDefinition json.RawMessage `json:"layerDefinition"`
}

// LayerIDSuffix is appended to the layer name to build the operational layer id
const LayerIDSuffix = "cal-fire"

// GeoJSONLayerDefinition draws published polygons with a translucent red
// fill and a dashed red outline.
var GeoJSONLayerDefinition = json.RawMessage(`{
  "drawingInfo": {
    "renderer": {
      "type": "simple",
      "symbol": {
        "type": "esriSFS",
        "color": [235, 21, 21, 38],
        "outline": {
          "type": "esriSLS",
          "color": [235, 21, 21, 255],
          "width": 1.448,
          "style": "esriSLSDash"
        },
        "style": "esriSFSSolid"
      }
    }
  }
}`)

// NewFeatureLayer builds the layer descriptor for a published feature service.
func NewFeatureLayer(name, serviceURL, itemID string) OperationalLayer {
	return OperationalLayer{
		ID:              name + LayerIDSuffix,
		Title:           name,
		URL:             serviceURL,
		ItemID:          itemID,
		LayerType:       "ArcGISFeatureLayer",
		LayerDefinition: GeoJSONLayerDefinition,
	}
}
