package client

import (
	"context"
	"fmt"
	"strconv"

	"excalibur-cli/pkg/models"
)

// ShareItem shares itemID with groupID (skipped when empty) and optionally
// the whole organization. Re-sharing an item is not an error.
func (c *PortalClient) ShareItem(ctx context.Context, itemID, groupID string, org bool) (models.ShareItemsResponse, error) {
	var respData models.ShareItemsResponse
	if err := c.requireUser(); err != nil {
		return respData, err
	}
	if itemID == "" {
		return respData, fmt.Errorf("%w: item id to share", ErrMissingArgument)
	}

	form := map[string]string{
		"items":    itemID,
		"org":      strconv.FormatBool(org),
		"everyone": "false",
	}
	if groupID != "" {
		form["groups"] = groupID
	}

	if err := c.post(ctx, "share item", c.contentPath("shareItems"), form, &respData); err != nil {
		return respData, err
	}
	for _, r := range respData.Results {
		if !r.Success || len(r.NotSharedWith) > 0 {
			c.Logger.Warn("item not fully shared", "item", r.ItemID, "notSharedWith", r.NotSharedWith)
		}
	}
	return respData, nil
}
