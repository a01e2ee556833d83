package models

import "encoding/json"

// NameAvailableResponse is returned by GET /rest/services/isServiceNameAvailable
type NameAvailableResponse struct {
	Available bool `json:"available"`
}

// CreateServiceParameters is JSON-encoded into the createParameters form field
type CreateServiceParameters struct {
	ServiceName string `json:"serviceName"`
}

// CreateServiceResponse is returned by POST /content/users/<user>/createService
type CreateServiceResponse struct {
	Success    bool   `json:"success"`
	ItemID     string `json:"itemId"`
	ServiceURL string `json:"serviceurl"`
	Name       string `json:"name"`
	Type       string `json:"type"`
}

// VideoLayer is JSON-encoded into the layer form field of <serviceUrl>/addLayer
type VideoLayer struct {
	BufferSize    int              `json:"bufferSize"`
	CameraInfo    *json.RawMessage `json:"cameraInfo"`
	Mode          string           `json:"mode"`
	Name          string           `json:"name"`
	RecordStream  bool             `json:"recordStream"`
	Start         string           `json:"start"`
	Stop          string           `json:"stop"`
	StreamAddress string           `json:"streamAddress"`
	Type          string           `json:"type"`
}

// NewLivestreamLayer returns the fixed buffering/record policy used for every stream.
func NewLivestreamLayer(name, streamAddress string) VideoLayer {
	return VideoLayer{
		BufferSize:    10,
		Mode:          "client",
		Name:          name,
		RecordStream:  true,
		Start:         "request",
		Stop:          "auto",
		StreamAddress: streamAddress,
		Type:          "livestream",
	}
}

// VideoService identifies a created livestream service
type VideoService struct {
	ItemID string `json:"serviceItemId"`
	URL    string `json:"serviceUrl"`
}

// ServiceListResponse is returned by GET /rest/services on the video server
type ServiceListResponse struct {
	Services []ServiceEntry `json:"services"`
}

type ServiceEntry struct {
	Name string `json:"name"`
	Type string `json:"type"`
}
