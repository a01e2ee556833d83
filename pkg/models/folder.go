package models

// UserContentResponse wraps GET /content/users/<user> (root folder listing)
type UserContentResponse struct {
	Username  string   `json:"username"`
	Total     int      `json:"total"`
	Start     int      `json:"start"`
	Num       int      `json:"num"`
	NextStart int      `json:"nextStart"`
	Items     []Item   `json:"items"`
	Folders   []Folder `json:"folders"`
}

// Folder is a per-user content namespace
type Folder struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Username string `json:"username,omitempty"`
	Created  int64  `json:"created,omitempty"`
}

// CreateFolderResponse is returned by POST /content/users/<user>/createFolder
type CreateFolderResponse struct {
	Success bool   `json:"success"`
	Folder  Folder `json:"folder"`
}

// FolderRef is the result of resolving a folder by title.
// New is true when the folder was created by the call.
type FolderRef struct {
	ID    string
	Title string
	New   bool
}
