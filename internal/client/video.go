package client

import (
	"context"
	"fmt"
	"strings"

	"excalibur-cli/pkg/models"
)

// IsServiceNameAvailable asks the video server whether name is free
func (c *PortalClient) IsServiceNameAvailable(ctx context.Context, name string) (bool, error) {
	var respData models.NameAvailableResponse
	u, err := c.videoServicesURL("/isServiceNameAvailable")
	if err != nil {
		return false, err
	}
	if err := c.get(ctx, "check service name", u, map[string]string{
		"serviceName": name,
	}, &respData); err != nil {
		return false, err
	}
	return respData.Available, nil
}

// CreateVideoService creates an empty video service shell owned by the acting user
func (c *PortalClient) CreateVideoService(ctx context.Context, name string) (models.CreateServiceResponse, error) {
	var respData models.CreateServiceResponse
	if err := c.requireUser(); err != nil {
		return respData, err
	}

	params, err := marshalString(models.CreateServiceParameters{ServiceName: name})
	if err != nil {
		return respData, err
	}

	const op = "create video service"
	if err := c.post(ctx, op, c.contentPath("createService"), map[string]string{
		"createParameters": params,
		"outputType":       "videoService",
	}, &respData); err != nil {
		return respData, err
	}
	if respData.ItemID == "" || respData.ServiceURL == "" {
		return respData, &RemoteError{Operation: op, StatusCode: 200, Message: "portal returned no service item id or url"}
	}
	respData.ServiceURL = strings.TrimRight(respData.ServiceURL, "/")
	return respData, nil
}

// AddVideoLayer attaches a streaming layer to a video service
func (c *PortalClient) AddVideoLayer(ctx context.Context, serviceURL string, layer models.VideoLayer) error {
	if serviceURL == "" {
		return fmt.Errorf("%w: service url", ErrMissingArgument)
	}
	params, err := marshalString(layer)
	if err != nil {
		return err
	}
	return c.post(ctx, "add video layer", strings.TrimRight(serviceURL, "/")+"/addLayer", map[string]string{
		"layer": params,
	}, nil)
}

// StartStream starts layer 0 of a video service. The stream runs until
// stopped by request.
func (c *PortalClient) StartStream(ctx context.Context, serviceURL string) error {
	if serviceURL == "" {
		return fmt.Errorf("%w: service url", ErrMissingArgument)
	}
	return c.post(ctx, "start stream", strings.TrimRight(serviceURL, "/")+"/0/start", map[string]string{
		"stopOn": "request",
	}, nil)
}

// ListVideoServices returns the services published on the video server
func (c *PortalClient) ListVideoServices(ctx context.Context) ([]models.ServiceEntry, error) {
	var respData models.ServiceListResponse
	u, err := c.videoServicesURL("")
	if err != nil {
		return nil, err
	}
	if err := c.get(ctx, "list video services", u, nil, &respData); err != nil {
		return nil, err
	}
	return respData.Services, nil
}
