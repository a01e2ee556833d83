package client

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"excalibur-cli/pkg/models"
)

// AddItemRequest carries the addItem form fields. A nil Snippet is omitted.
type AddItemRequest struct {
	Title        string
	Type         string
	Snippet      *string
	Description  string
	Tags         []string
	TypeKeywords []string
	Text         string
}

func (r AddItemRequest) form() map[string]string {
	form := map[string]string{
		"title": r.Title,
		"type":  r.Type,
	}
	if r.Snippet != nil {
		form["snippet"] = *r.Snippet
	}
	if r.Description != "" {
		form["description"] = r.Description
	}
	if len(r.Tags) > 0 {
		form["tags"] = strings.Join(r.Tags, ",")
	}
	if len(r.TypeKeywords) > 0 {
		form["typeKeywords"] = strings.Join(r.TypeKeywords, ",")
	}
	if r.Text != "" {
		form["text"] = r.Text
	}
	return form
}

// AddItem registers an item in folderID (root when empty) and returns its id
func (c *PortalClient) AddItem(ctx context.Context, folderID string, item AddItemRequest) (string, error) {
	var respData models.AddItemResponse
	if err := c.requireUser(); err != nil {
		return "", err
	}
	if item.Title == "" || item.Type == "" {
		return "", fmt.Errorf("%w: item title and type", ErrMissingArgument)
	}

	op := "add " + item.Type + " item"
	if err := c.post(ctx, op, c.contentPath(folderID, "addItem"), item.form(), &respData); err != nil {
		return "", err
	}
	if respData.ID == "" {
		return "", &RemoteError{Operation: op, StatusCode: 200, Message: "portal returned no item id"}
	}
	return respData.ID, nil
}

// UploadItem adds an item whose content is the file at path
func (c *PortalClient) UploadItem(ctx context.Context, folderID, path, title, itemType string) (string, error) {
	var respData models.AddItemResponse
	if err := c.requireUser(); err != nil {
		return "", err
	}

	op := "upload " + itemType + " item"
	if err := c.upload(ctx, op, c.contentPath(folderID, "addItem"), "file", path, map[string]string{
		"title": title,
		"type":  itemType,
	}, &respData); err != nil {
		return "", err
	}
	if !respData.Success || respData.ID == "" {
		return "", &RemoteError{Operation: op, StatusCode: 200, Message: "upload was not successful"}
	}
	return respData.ID, nil
}

// PublishItem turns an uploaded file item into a hosted service
func (c *PortalClient) PublishItem(ctx context.Context, itemID, fileType, serviceName string) (models.PublishedService, error) {
	var respData models.PublishResponse
	if err := c.requireUser(); err != nil {
		return models.PublishedService{}, err
	}

	params, err := marshalString(map[string]string{"name": serviceName})
	if err != nil {
		return models.PublishedService{}, err
	}

	const op = "publish item"
	if err := c.post(ctx, op, c.contentPath("publish"), map[string]string{
		"itemId":            itemID,
		"filetype":          fileType,
		"publishParameters": params,
	}, &respData); err != nil {
		return models.PublishedService{}, err
	}
	if len(respData.Services) == 0 {
		return models.PublishedService{}, &RemoteError{Operation: op, StatusCode: 200, Message: "portal returned no services"}
	}

	svc := respData.Services[0]
	if svc.Error != nil {
		return models.PublishedService{}, &RemoteError{Operation: op, StatusCode: 200, Code: svc.Error.Code, Message: svc.Error.Message}
	}
	return svc, nil
}

// ItemData fetches the raw JSON body of an item
func (c *PortalClient) ItemData(ctx context.Context, itemID string) ([]byte, error) {
	var body []byte
	if itemID == "" {
		return nil, fmt.Errorf("%w: item id", ErrMissingArgument)
	}
	err := c.get(ctx, "get item data", "/content/items/"+url.PathEscape(itemID)+"/data", nil, &body)
	return body, err
}

// UpdateItemText replaces the JSON body of an item owned by the acting user
func (c *PortalClient) UpdateItemText(ctx context.Context, itemID, text string) error {
	var respData models.UpdateItemResponse
	if err := c.requireUser(); err != nil {
		return err
	}

	const op = "update item"
	if err := c.post(ctx, op, c.contentPath("items", url.PathEscape(itemID), "update"), map[string]string{
		"text": text,
	}, &respData); err != nil {
		return err
	}
	if !respData.Success {
		return &RemoteError{Operation: op, StatusCode: 200, Message: "update was not successful"}
	}
	return nil
}
