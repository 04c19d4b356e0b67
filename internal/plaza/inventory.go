package plaza

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// InventoryQuery filters the FBB inventory. Zero values are left out of the
// request; Stock and State values outside their allowed sets are ignored.
type InventoryQuery struct {
	Page     int
	Quantity string
	Stock    string // sufficient or insufficient
	State    string // saleable or unsaleable
	Query    string
}

func (q InventoryQuery) values() url.Values {
	page := q.Page
	if page < 1 {
		page = 1
	}
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	if q.Quantity != "" {
		params.Set("quantity", q.Quantity)
	}
	switch q.Stock {
	case StockSufficient, StockInsufficient:
		params.Set("stock", q.Stock)
	}
	switch q.State {
	case StateSaleable, StateUnsaleable:
		params.Set("state", q.State)
	}
	if q.Query != "" {
		params.Set("query", q.Query)
	}
	return params
}

// GetInventory retrieves a page of the Fulfilment by bol.com inventory.
// Stock held by the seller is not part of it.
func (c *Client) GetInventory(ctx context.Context, q InventoryQuery) (*Inventory, error) {
	return getEntity[Inventory](ctx, c, "get inventory", call{
		method:   http.MethodGet,
		endpoint: "/services/rest/inventory",
		params:   q.values(),
	})
}
