package plaza

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const inboundsEndpoint = "/services/rest/inbounds"

// CreateInbound announces a shipment of stock to the bol.com warehouse
func (c *Client) CreateInbound(ctx context.Context, req InboundRequest) (*ProcessStatus, error) {
	body, err := marshalBody("create inbound", req, ServicesNamespace("1"))
	if err != nil {
		return nil, err
	}
	return getEntity[ProcessStatus](ctx, c, "create inbound", call{
		method:   http.MethodPost,
		endpoint: inboundsEndpoint,
		body:     body,
	})
}

// GetDeliveryWindows lists the delivery windows available on a date for the
// given number of items
func (c *Client) GetDeliveryWindows(ctx context.Context, date time.Time, itemsToSend int) ([]DeliveryWindowTimeSlot, error) {
	params := url.Values{}
	params.Set("delivery-date", date.Format(time.DateOnly))
	params.Set("items-to-send", strconv.Itoa(itemsToSend))
	return getCollection[DeliveryWindowTimeSlot](ctx, c, "get delivery windows", call{
		method:   http.MethodGet,
		endpoint: inboundsEndpoint + "/delivery-windows",
		params:   params,
	})
}

// GetSingleInbound retrieves the details of an inbound
func (c *Client) GetSingleInbound(ctx context.Context, id int64) (*Inbound, error) {
	return getEntity[Inbound](ctx, c, "get single inbound", call{
		method:   http.MethodGet,
		endpoint: fmt.Sprintf("%s/%d", inboundsEndpoint, id),
	})
}

// GetProductLabels renders product labels in the given format and returns
// the PDF document
func (c *Client) GetProductLabels(ctx context.Context, req InboundProductlabelsRequest, format string) ([]byte, error) {
	body, err := marshalBody("get product labels", req, ServicesNamespace("1"))
	if err != nil {
		return nil, err
	}
	resp, err := c.do(ctx, call{
		method:   http.MethodPost,
		endpoint: inboundsEndpoint + "/productlabels?format=" + url.QueryEscape(format),
		body:     body,
	})
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// GetPackingList returns the packing list PDF of an inbound
func (c *Client) GetPackingList(ctx context.Context, id int64) ([]byte, error) {
	resp, err := c.do(ctx, call{
		method:   http.MethodGet,
		endpoint: fmt.Sprintf("%s/%d/packinglistdetails", inboundsEndpoint, id),
	})
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// GetInboundList retrieves a page of inbounds
func (c *Client) GetInboundList(ctx context.Context, page int) (*Inbounds, error) {
	if page < 1 {
		page = 1
	}
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	return getEntity[Inbounds](ctx, c, "get inbound list", call{
		method:   http.MethodGet,
		endpoint: inboundsEndpoint,
		params:   params,
	})
}
