// Package enrich resolves provider records against the Google Places API
// and attaches website, phone and location data to them. Results are
// cached by normalized address so repeat runs stay cheap.
package enrich

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"

	"github.com/civicdatadog/civicmap/internal/transport"
	"github.com/civicdatadog/civicmap/pkg/constants"
	"github.com/civicdatadog/civicmap/pkg/errors"
)

// DefaultBaseURL is the Places API web service root.
const DefaultBaseURL = "https://maps.googleapis.com/maps/api/place"

// detailsFields is the field mask requested from the details endpoint.
var detailsFields = strings.Join([]string{
	"place_id",
	"name",
	"formatted_address",
	"geometry/location",
	"website",
	"formatted_phone_number",
	"international_phone_number",
	"types",
	"business_status",
	"url",
	"rating",
	"user_ratings_total",
}, ",")

// SearchResult is the subset of a text search hit we keep.
type SearchResult struct {
	PlaceID          string      `json:"place_id"`
	Name             string      `json:"name"`
	FormattedAddress string      `json:"formatted_address"`
	BusinessStatus   string      `json:"business_status"`
	Rating           json.Number `json:"rating"`
	UserRatingsTotal json.Number `json:"user_ratings_total"`
}

// PlaceDetails is the subset of a place details result we keep.
type PlaceDetails struct {
	PlaceID          string `json:"place_id"`
	Name             string `json:"name"`
	FormattedAddress string `json:"formatted_address"`
	Geometry         struct {
		Location struct {
			Lat json.Number `json:"lat"`
			Lng json.Number `json:"lng"`
		} `json:"location"`
	} `json:"geometry"`
	Website                  string      `json:"website"`
	FormattedPhoneNumber     string      `json:"formatted_phone_number"`
	InternationalPhoneNumber string      `json:"international_phone_number"`
	Types                    []string    `json:"types"`
	BusinessStatus           string      `json:"business_status"`
	URL                      string      `json:"url"`
	Rating                   json.Number `json:"rating"`
	UserRatingsTotal         json.Number `json:"user_ratings_total"`
}

type searchResponse struct {
	Status  string         `json:"status"`
	Results []SearchResult `json:"results"`
}

type detailsResponse struct {
	Status string        `json:"status"`
	Result *PlaceDetails `json:"result"`
}

// Client is a minimal Places API web service client.
type Client struct {
	http    *transport.Client
	baseURL string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBaseURL overrides the API root, for testing.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// NewClient creates a Places client. The API key is sent as the key
// query parameter on every request.
func NewClient(apiKey string, opts ...ClientOption) (*Client, error) {
	if apiKey == "" {
		return nil, errors.ErrAPIKeyRequired
	}
	c := &Client{
		http: transport.New(
			transport.WithTimeout(constants.DefaultHTTPTimeout),
			transport.WithAuth(transport.QueryAuth{Param: "key", Key: apiKey}),
		),
		baseURL: DefaultBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// TextSearch runs a free-text place search and returns the top hit, or
// nil when the API reports no usable match.
func (c *Client) TextSearch(ctx context.Context, query string) (*SearchResult, error) {
	endpoint := c.baseURL + "/textsearch/json?" + url.Values{"query": {query}}.Encode()
	body, err := c.http.GetBody(ctx, "places", endpoint)
	if err != nil {
		return nil, err
	}

	var resp searchResponse
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		return nil, errors.WrapParse("json", endpoint, err)
	}
	if resp.Status != "OK" || len(resp.Results) == 0 {
		return nil, nil
	}
	return &resp.Results[0], nil
}

// Details fetches the detail record for a place ID, or nil when the API
// reports no result.
func (c *Client) Details(ctx context.Context, placeID string) (*PlaceDetails, error) {
	endpoint := c.baseURL + "/details/json?" + url.Values{
		"place_id": {placeID},
		"fields":   {detailsFields},
	}.Encode()
	body, err := c.http.GetBody(ctx, "places", endpoint)
	if err != nil {
		return nil, err
	}

	var resp detailsResponse
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		return nil, errors.WrapParse("json", endpoint, err)
	}
	if resp.Status != "OK" {
		return nil, nil
	}
	return resp.Result, nil
}
