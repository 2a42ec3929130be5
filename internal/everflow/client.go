// Package everflow wraps the subset of the Everflow affiliate-tracking API
// the portal consumes: advertiser and offer listings, read-only.  Calls fail
// fast; handlers that only enrich display data fall back to placeholder
// names instead of failing the request.
package everflow

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient builds a client for the given base URL and API key.  An empty
// API key yields a nil client; callers treat nil as "enrichment disabled".
func NewClient(baseURL, apiKey string) *Client {
	if apiKey == "" {
		return nil
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// Advertiser is one entry of the network advertiser listing.  Which id field
// is populated varies across Everflow API versions, so all three are decoded
// and ExternalID picks the first non-zero one.
type Advertiser struct {
	NetworkAdvertiserID int64  `json:"network_advertiser_id"`
	AdvertiserID        int64  `json:"advertiser_id"`
	ID                  int64  `json:"id"`
	Name                string `json:"name"`
	AccountStatus       string `json:"account_status"`
}

// ExternalID returns the platform id of the advertiser as a string, checking
// the possible field names in order.
func (a Advertiser) ExternalID() string {
	for _, id := range []int64{a.NetworkAdvertiserID, a.AdvertiserID, a.ID} {
		if id != 0 {
			return strconv.FormatInt(id, 10)
		}
	}
	return ""
}

type apiError struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// get issues an authenticated GET and decodes the JSON body into out.
func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("X-Eflow-API-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var ae apiError
		_ = json.NewDecoder(resp.Body).Decode(&ae)
		msg := ae.Message
		if msg == "" {
			msg = ae.Error
		}
		return fmt.Errorf("everflow: %s %s: status %d: %s", http.MethodGet, path, resp.StatusCode, msg)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// ListAdvertisers fetches the full advertiser list.  Everflow has no
// by-id advertiser endpoint, so callers search the list themselves.
func (c *Client) ListAdvertisers(ctx context.Context) ([]Advertiser, error) {
	var body struct {
		Advertisers []Advertiser `json:"advertisers"`
	}
	if err := c.get(ctx, "/networks/advertisers", &body); err != nil {
		return nil, err
	}
	return body.Advertisers, nil
}

// FindAdvertiser scans the advertiser list for a matching external id.
func (c *Client) FindAdvertiser(ctx context.Context, externalID string) (Advertiser, bool, error) {
	advs, err := c.ListAdvertisers(ctx)
	if err != nil {
		return Advertiser{}, false, err
	}
	for _, a := range advs {
		if a.ExternalID() == externalID {
			return a, true, nil
		}
	}
	return Advertiser{}, false, nil
}

// OfferName resolves an offer id to its display name.
func (c *Client) OfferName(ctx context.Context, offerID string) (string, error) {
	var body struct {
		NetworkOfferID int64  `json:"network_offer_id"`
		Name           string `json:"name"`
	}
	if err := c.get(ctx, "/networks/offers/"+offerID, &body); err != nil {
		return "", err
	}
	return body.Name, nil
}

// PlaceholderOfferName is the deterministic fallback used when no API key is
// configured or a lookup fails.
func PlaceholderOfferName(offerID string) string {
	return "Offer #" + offerID
}
