package models

import "encoding/json"

// ProjectConfig is the on-disk JSON describing an imagery project.
// Pointer fields distinguish an absent key from an empty value.
type ProjectConfig struct {
	Title             string          `json:"title"`
	Summary           *string         `json:"summary,omitempty"`
	Description       *string         `json:"description,omitempty"`
	Status            *string         `json:"status,omitempty"`
	Version           any             `json:"version,omitempty"` // "4.0" or a bare number
	WebmapID          *string         `json:"webmapId,omitempty"`
	Instructions      *string         `json:"instructions,omitempty"`
	PrimaryLayers     json.RawMessage `json:"primaryLayers,omitempty"`
	FocusImageLayer   json.RawMessage `json:"focusImageLayer,omitempty"`
	ServiceURL        *string         `json:"serviceUrl,omitempty"`
	RasterIDs         json.RawMessage `json:"rasterIds,omitempty"`
	ObservationLayers json.RawMessage `json:"observationLayers,omitempty"`
}

// ProjectItem holds the portal item attributes of a project.
type ProjectItem struct {
	Title       string
	Snippet     *string
	Description string
	Status      string
	ProjectType string
}

// ProjectData is serialized into the item's "text" field.
type ProjectData struct {
	Instructions      *string         `json:"instructions,omitempty"`
	Version           any             `json:"version"`
	WebmapID          *string         `json:"webmapId,omitempty"`
	PrimaryLayers     json.RawMessage `json:"primaryLayers,omitempty"`
	ServiceURL        *string         `json:"serviceUrl,omitempty"`
	RasterIDs         json.RawMessage `json:"rasterIds,omitempty"`
	ObservationLayers json.RawMessage `json:"observationLayers,omitempty"`
}

// PrimaryLayer references a service shown as the project's main layer.
type PrimaryLayer struct {
	ItemID      string `json:"itemId"`
	ServiceURL  string `json:"serviceUrl"`
	ServiceType string `json:"serviceType"`
}
