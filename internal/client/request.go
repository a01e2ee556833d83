package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-resty/resty/v2"
)

func (c *PortalClient) newRequest(ctx context.Context, op string) *resty.Request {
	if ctx == nil {
		ctx = context.Background()
	}
	return c.HTTP.R().
		SetContext(context.WithValue(ctx, operationKey{}, op)).
		SetQueryParam("f", "json")
}

// get issues a GET with the token as a query parameter.
func (c *PortalClient) get(ctx context.Context, op, url string, query map[string]string, out any) error {
	req := c.newRequest(ctx, op).SetQueryParams(query)
	if c.token != "" {
		req.SetQueryParam("token", c.token)
	}
	resp, err := req.Get(url)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return decode(op, resp, out)
}

// post issues a form-encoded POST with the token in the body.
func (c *PortalClient) post(ctx context.Context, op, url string, form map[string]string, out any) error {
	req := c.newRequest(ctx, op).SetFormData(form)
	if c.token != "" {
		req.SetFormData(map[string]string{"token": c.token})
	}
	resp, err := req.Post(url)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return decode(op, resp, out)
}

// upload issues a multipart POST carrying one file plus plain fields.
func (c *PortalClient) upload(ctx context.Context, op, url, fileField, path string, fields map[string]string, out any) error {
	req := c.newRequest(ctx, op).
		SetFile(fileField, path).
		SetMultipartFormData(fields)
	if c.token != "" {
		req.SetMultipartFormData(map[string]string{"token": c.token})
	}
	resp, err := req.Post(url)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return decode(op, resp, out)
}

func decode(op string, resp *resty.Response, out any) error {
	if err := checkResponse(op, resp); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if raw, ok := out.(*[]byte); ok {
		*raw = append((*raw)[:0], resp.Body()...)
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}

func marshalString(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode parameters: %w", err)
	}
	return string(b), nil
}
