package client

import (
	"context"
	"fmt"
	"strconv"

	"excalibur-cli/pkg/models"
)

// GetUserContent lists every item of a folder (root when folderID is empty)
// along with the user's folders, following nextStart in pages of num.
func (c *PortalClient) GetUserContent(ctx context.Context, folderID string, num int) (models.UserContentResponse, error) {
	if num <= 0 {
		num = 100
	}
	content, err := c.userContentPage(ctx, folderID, 1, num)
	if err != nil {
		return content, err
	}
	for next := content.NextStart; next > 0; {
		page, err := c.userContentPage(ctx, folderID, next, num)
		if err != nil {
			return content, err
		}
		content.Items = append(content.Items, page.Items...)
		if page.NextStart <= next || len(page.Items) == 0 {
			break
		}
		next = page.NextStart
	}
	content.Start, content.Num, content.NextStart = 1, len(content.Items), -1
	return content, nil
}

func (c *PortalClient) userContentPage(ctx context.Context, folderID string, start, num int) (models.UserContentResponse, error) {
	var respData models.UserContentResponse
	if err := c.requireUser(); err != nil {
		return respData, err
	}
	err := c.get(ctx, "list user content", c.contentPath(folderID), map[string]string{
		"start": strconv.Itoa(start),
		"num":   strconv.Itoa(num),
	}, &respData)
	return respData, err
}

// ListFolders returns every folder owned by the acting user. Folders come
// with the first page, so no item paging is done.
func (c *PortalClient) ListFolders(ctx context.Context) ([]models.Folder, error) {
	content, err := c.userContentPage(ctx, "", 1, 1)
	if err != nil {
		return nil, err
	}
	return content.Folders, nil
}

// CreateFolder creates a folder in the acting user's content
func (c *PortalClient) CreateFolder(ctx context.Context, title string) (models.Folder, error) {
	var respData models.CreateFolderResponse
	if err := c.requireUser(); err != nil {
		return models.Folder{}, err
	}

	const op = "create folder"
	if err := c.post(ctx, op, c.contentPath("createFolder"), map[string]string{
		"title": title,
	}, &respData); err != nil {
		return models.Folder{}, err
	}
	if !respData.Success || respData.Folder.ID == "" {
		return models.Folder{}, &RemoteError{Operation: op, StatusCode: 200, Message: "portal did not report success"}
	}
	return respData.Folder, nil
}

// ResolveFolder returns the folder titled exactly title, creating it when
// absent. New reports whether this call created it.
func (c *PortalClient) ResolveFolder(ctx context.Context, title string) (models.FolderRef, error) {
	if title == "" {
		return models.FolderRef{}, fmt.Errorf("%w: folder title", ErrMissingArgument)
	}

	folders, err := c.ListFolders(ctx)
	if err != nil {
		return models.FolderRef{}, err
	}
	for _, f := range folders {
		if f.Title == title {
			return models.FolderRef{ID: f.ID, Title: f.Title, New: false}, nil
		}
	}

	f, err := c.CreateFolder(ctx, title)
	if err != nil {
		return models.FolderRef{}, err
	}
	c.Logger.Debug("created folder", "title", title, "id", f.ID)
	return models.FolderRef{ID: f.ID, Title: title, New: true}, nil
}
