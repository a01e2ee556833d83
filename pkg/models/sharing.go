package models

// ShareItemsResponse is returned by POST /content/users/<user>/shareItems
type ShareItemsResponse struct {
	Results []ShareResult `json:"results"`
}

type ShareResult struct {
	ItemID        string   `json:"itemId"`
	Success       bool     `json:"success"`
	NotSharedWith []string `json:"notSharedWith"`
}
