package plaza

import (
	"context"
	"net/http"
	"net/url"
	"regexp"
	"strings"
)

var reductionsFilenamePattern = regexp.MustCompile(`\w+\.\w+`)

func offersEndpoint() string {
	return "/offers/" + OfferAPIVersion + "/"
}

// UpsertOffers creates or updates offers and returns the raw response body
func (c *Client) UpsertOffers(ctx context.Context, req UpsertRequest) (string, error) {
	body, err := marshalBody("upsert offers", req, OffersNamespace)
	if err != nil {
		return "", err
	}
	resp, err := c.do(ctx, call{
		method:   http.MethodPut,
		endpoint: offersEndpoint(),
		body:     body,
	})
	if err != nil {
		return "", err
	}
	return string(resp.Body), nil
}

// CreateOffer creates offers
func (c *Client) CreateOffer(ctx context.Context, req UpsertRequest) (string, error) {
	return c.UpsertOffers(ctx, req)
}

// UpdateOffer updates offers
func (c *Client) UpdateOffer(ctx context.Context, req UpsertRequest) (string, error) {
	return c.UpsertOffers(ctx, req)
}

// UpdateOfferStock updates the stock of offers
func (c *Client) UpdateOfferStock(ctx context.Context, req UpsertRequest) (string, error) {
	return c.UpsertOffers(ctx, req)
}

// DeleteOffers deletes offers in bulk and returns the raw response body
func (c *Client) DeleteOffers(ctx context.Context, req DeleteBulkRequest) (string, error) {
	body, err := marshalBody("delete offers", req, OffersNamespace)
	if err != nil {
		return "", err
	}
	resp, err := c.do(ctx, call{
		method:   http.MethodDelete,
		endpoint: offersEndpoint(),
		body:     body,
	})
	if err != nil {
		return "", err
	}
	return string(resp.Body), nil
}

// DeleteOffer deletes the offer for one EAN and condition
func (c *Client) DeleteOffer(ctx context.Context, ean, condition string) (string, error) {
	return c.DeleteOffers(ctx, DeleteBulkRequest{
		RetailerOfferIdentifiers: []RetailerOfferIdentifier{{EAN: ean, Condition: condition}},
	})
}

// GetSingleOffer retrieves the offers for an EAN, optionally for one condition only
func (c *Client) GetSingleOffer(ctx context.Context, ean, condition string) (*OfferResponse, error) {
	endpoint := offersEndpoint() + url.PathEscape(ean)
	if condition != "" {
		endpoint += "?condition=" + url.QueryEscape(condition)
	}
	return getEntity[OfferResponse](ctx, c, "get single offer", call{
		method:   http.MethodGet,
		endpoint: endpoint,
	})
}

// GetCommission retrieves the commission for an EAN. condition and price are
// optional and left out when empty.
func (c *Client) GetCommission(ctx context.Context, ean, condition, price string) (*Commission, error) {
	params := url.Values{}
	if condition != "" {
		params.Set("Condition", condition)
	}
	if price != "" {
		params.Set("price", price)
	}
	return getEntity[Commission](ctx, c, "get commission", call{
		method:   http.MethodGet,
		endpoint: "/commission/" + OfferAPIVersion + "/" + url.PathEscape(ean),
		params:   params,
	})
}

// GetOwnOffers requests an export of the seller's offers and returns the
// location of the generated file
func (c *Client) GetOwnOffers(ctx context.Context, filter string) (*OfferFile, error) {
	params := url.Values{}
	if filter != "" {
		params.Set("filter", filter)
	}
	return getEntity[OfferFile](ctx, c, "get own offers", call{
		method:   http.MethodGet,
		endpoint: offersEndpoint() + "export",
		params:   params,
	})
}

// GetOwnOffersResult downloads the offer export announced by GetOwnOffers.
// fileURL may be absolute; the API host is stripped off.
func (c *Client) GetOwnOffersResult(ctx context.Context, fileURL string) ([]byte, error) {
	endpoint := fileURL
	for _, host := range []string{c.baseURL, TestURL, LiveURL} {
		endpoint = strings.TrimPrefix(endpoint, host)
	}
	resp, err := c.do(ctx, call{
		method:   http.MethodGet,
		endpoint: endpoint,
	})
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// GetLatestReductionsFilename returns the name of the newest reductions file
func (c *Client) GetLatestReductionsFilename(ctx context.Context) (string, error) {
	resp, err := c.do(ctx, call{
		method:   http.MethodGet,
		endpoint: "/reductions/latest",
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(resp.Body)), nil
}

// GetReductions downloads the current reductions list. The file name is
// taken from the Content-Disposition header and is empty when absent.
func (c *Client) GetReductions(ctx context.Context) (*ReductionList, error) {
	resp, err := c.do(ctx, call{
		method:         http.MethodGet,
		endpoint:       "/reductions",
		captureHeaders: true,
	})
	if err != nil {
		return nil, err
	}
	return &ReductionList{
		Filename: reductionsFilenamePattern.FindString(resp.Header.Get("Content-Disposition")),
		Content:  resp.Body,
	}, nil
}
