package models

// Portal item types used by the provisioning commands
const (
	ItemTypeImageryProject = "Excalibur Imagery Project"
	ItemTypeWebMap         = "Web Map"
	ItemTypeGeoJSON        = "GeoJson"
	ItemTypeFeatureService = "Feature Service"
	ItemTypeVideoService   = "Video Service"
)

type Item struct {
	ID           string   `json:"id"`
	Owner        string   `json:"owner,omitempty"`
	Title        string   `json:"title"`
	Type         string   `json:"type"`
	TypeKeywords []string `json:"typeKeywords,omitempty"`
	Snippet      string   `json:"snippet,omitempty"`
	URL          string   `json:"url,omitempty"`
	OwnerFolder  string   `json:"ownerFolder,omitempty"`
	Access       string   `json:"access,omitempty"`
	Size         int64    `json:"size,omitempty"`
	Modified     int64    `json:"modified,omitempty"`
}

// AddItemResponse is returned by POST .../addItem
type AddItemResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
	Folder  string `json:"folder"`
}

// UpdateItemResponse is returned by POST .../items/<id>/update
type UpdateItemResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
}

// SearchResponse is returned by GET /search
type SearchResponse struct {
	Query     string `json:"query"`
	Total     int    `json:"total"`
	Start     int    `json:"start"`
	Num       int    `json:"num"`
	NextStart int    `json:"nextStart"`
	Results   []Item `json:"results"`
}

// PublishResponse is returned by POST .../publish
type PublishResponse struct {
	Services []PublishedService `json:"services"`
}

type PublishedService struct {
	Type          string `json:"type"`
	ServiceURL    string `json:"serviceurl"` // lower case on the wire
	ServiceItemID string `json:"serviceItemId"`
	JobID         string `json:"jobId,omitempty"`
	Size          int64  `json:"size,omitempty"`
	Error         *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}
