package client

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"excalibur-cli/pkg/models"
)

// Search runs a portal item query
func (c *PortalClient) Search(ctx context.Context, query string, num int) (models.SearchResponse, error) {
	return c.searchFrom(ctx, query, 1, num)
}

func (c *PortalClient) searchFrom(ctx context.Context, query string, start, num int) (models.SearchResponse, error) {
	var respData models.SearchResponse
	if num <= 0 {
		num = 10
	}
	err := c.get(ctx, "search", "/search", map[string]string{
		"q":     query,
		"start": strconv.Itoa(start),
		"num":   strconv.Itoa(num),
	}, &respData)
	return respData, err
}

// FindItemInFolder looks for an item titled exactly title inside folderID.
// itemType narrows the query when set. Returns nil when nothing matches.
func (c *PortalClient) FindItemInFolder(ctx context.Context, folderID, title, itemType string) (*models.Item, error) {
	q := fmt.Sprintf(`ownerfolder:%s title:"%s"`, folderID, escapeQuery(title))
	if itemType != "" {
		q += fmt.Sprintf(` type:"%s"`, escapeQuery(itemType))
	}

	// Portal title matching is fuzzy, so filter for the exact title here
	// across every result page.
	start := 1
	for {
		res, err := c.searchFrom(ctx, q, start, 100)
		if err != nil {
			return nil, err
		}
		for i := range res.Results {
			if res.Results[i].Title == title {
				return &res.Results[i], nil
			}
		}
		if res.NextStart <= start || len(res.Results) == 0 {
			return nil, nil
		}
		start = res.NextStart
	}
}

func escapeQuery(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}
