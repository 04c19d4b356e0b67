package plaza

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// Media types the order and shipment endpoints answer with
const (
	AcceptOrdersV21    = "application/vnd.orders-v2.1+xml"
	AcceptShipmentsV21 = "application/vnd.shipments-v2.1+xml"
)

// pageParams builds the page/fulfilment-method query shared by list endpoints
func pageParams(page int, fulfilmentMethod string) url.Values {
	if page < 1 {
		page = 1
	}
	if fulfilmentMethod == "" {
		fulfilmentMethod = FulfilmentByRetailer
	}
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("fulfilment-method", fulfilmentMethod)
	return params
}

// getEntity fetches a single entity of type T
func getEntity[T Entity](ctx context.Context, c *Client, op string, cl call) (*T, error) {
	resp, err := c.do(ctx, cl)
	if err != nil {
		return nil, err
	}
	out := new(T)
	if err := Unmarshal(resp.Body, any(out).(Entity)); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

// getCollection fetches every entity of type T in the response
func getCollection[T Entity](ctx context.Context, c *Client, op string, cl call) ([]T, error) {
	resp, err := c.do(ctx, cl)
	if err != nil {
		return nil, err
	}
	out, err := UnmarshalCollection[T](resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

// GetOrders retrieves a page of open orders. page defaults to 1 and
// fulfilmentMethod to FBR.
func (c *Client) GetOrders(ctx context.Context, page int, fulfilmentMethod string) ([]Order, error) {
	return getCollection[Order](ctx, c, "get orders", call{
		method:   http.MethodGet,
		endpoint: "/services/rest/orders/" + APIVersion,
		params:   pageParams(page, fulfilmentMethod),
		accept:   AcceptOrdersV21,
	})
}

// GetOrder retrieves a single order. It returns nil without error when the
// response holds no order.
func (c *Client) GetOrder(ctx context.Context, orderID string) (*Order, error) {
	orders, err := getCollection[Order](ctx, c, "get order", call{
		method:   http.MethodGet,
		endpoint: fmt.Sprintf("/services/rest/orders/%s/%s", APIVersion, url.PathEscape(orderID)),
		accept:   AcceptOrdersV21,
	})
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, nil
	}
	return &orders[0], nil
}

// GetShipments retrieves a page of shipments, optionally limited to one order
func (c *Client) GetShipments(ctx context.Context, page int, fulfilmentMethod, orderID string) ([]Shipment, error) {
	params := pageParams(page, fulfilmentMethod)
	if orderID != "" {
		params.Set("order-id", orderID)
	}
	return getCollection[Shipment](ctx, c, "get shipments", call{
		method:   http.MethodGet,
		endpoint: "/services/rest/shipments/" + APIVersion,
		params:   params,
		accept:   AcceptShipmentsV21,
	})
}

// GetReturnItems retrieves the unhandled customer returns
func (c *Client) GetReturnItems(ctx context.Context) ([]ReturnItem, error) {
	return getCollection[ReturnItem](ctx, c, "get return items", call{
		method:   http.MethodGet,
		endpoint: "/services/rest/return-items/" + APIVersion + "/unhandled",
	})
}

// GetPayments retrieves the payments of a period (yyyymm)
func (c *Client) GetPayments(ctx context.Context, period string) ([]Payment, error) {
	return getCollection[Payment](ctx, c, "get payments", call{
		method:   http.MethodGet,
		endpoint: fmt.Sprintf("/services/rest/payments/%s/%s", APIVersion, url.PathEscape(period)),
	})
}

// HandleReturnItem marks a return as handled
func (c *Client) HandleReturnItem(ctx context.Context, returnNumber string, status ReturnItemStatusUpdate) (*ProcessStatus, error) {
	body, err := marshalBody("handle return item", status, ServicesNamespace("2"))
	if err != nil {
		return nil, err
	}
	return getEntity[ProcessStatus](ctx, c, "handle return item", call{
		method:   http.MethodPut,
		endpoint: fmt.Sprintf("/services/rest/return-items/%s/%s/handle", APIVersion, url.PathEscape(returnNumber)),
		body:     body,
	})
}

// CancelOrderItem cancels a single order item
func (c *Client) CancelOrderItem(ctx context.Context, orderItemID string, cancellation Cancellation) (*ProcessStatus, error) {
	body, err := marshalBody("cancel order item", cancellation, ServicesNamespace("2"))
	if err != nil {
		return nil, err
	}
	return getEntity[ProcessStatus](ctx, c, "cancel order item", call{
		method:   http.MethodPut,
		endpoint: fmt.Sprintf("/services/rest/order-items/%s/%s/cancellation", APIVersion, url.PathEscape(orderItemID)),
		body:     body,
	})
}

// ChangeTransport updates the carrier or track and trace code of a transport
func (c *Client) ChangeTransport(ctx context.Context, transportID string, req ChangeTransportRequest) (*ProcessStatus, error) {
	body, err := marshalBody("change transport", req, ServicesNamespace("2"))
	if err != nil {
		return nil, err
	}
	return getEntity[ProcessStatus](ctx, c, "change transport", call{
		method:   http.MethodPut,
		endpoint: fmt.Sprintf("/services/rest/transports/%s/%s", APIVersion, url.PathEscape(transportID)),
		body:     body,
	})
}

// CreateShipment confirms the shipment of an order item
func (c *Client) CreateShipment(ctx context.Context, req ShipmentRequest) (*ProcessStatus, error) {
	body, err := marshalBody("create shipment", req, ServicesNamespace("2.1"))
	if err != nil {
		return nil, err
	}
	return getEntity[ProcessStatus](ctx, c, "create shipment", call{
		method:   http.MethodPost,
		endpoint: "/services/rest/shipments/" + APIVersion,
		body:     body,
		accept:   AcceptShipmentsV21,
	})
}

// GetProcessStatus retrieves the state of an asynchronous job
func (c *Client) GetProcessStatus(ctx context.Context, id string) (*ProcessStatus, error) {
	return getEntity[ProcessStatus](ctx, c, "get process status", call{
		method:   http.MethodGet,
		endpoint: fmt.Sprintf("/services/rest/process-status/%s/%s", APIVersion, url.PathEscape(id)),
	})
}
