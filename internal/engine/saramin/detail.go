package saramin

import (
	"context"
)

// PostingHTML fetches the full detail page for a posting link, rewriting
// relay indirection first. Returns raw HTML; text reduction happens at the
// extraction layer.
func (c *Client) PostingHTML(ctx context.Context, link string) (string, error) {
	direct := DirectViewURL(c.BaseURL, link)
	body, err := c.get(ctx, direct)
	if err != nil {
		return "", err
	}
	return string(body), nil
}
