package ups

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// transactionSrc is the fixed client-source tag sent with every tracking
// request.
const transactionSrc = "parcel-monitor"

// NoTrackingInfo is the sentinel status used when UPS returns a payload
// without the trackResponse wrapper. Absence of data is not an error.
const NoTrackingInfo = "No tracking info"

// Client is the UPS track API client.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient creates a new UPS API client.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// SetHTTPClient sets a custom HTTP client (useful for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// Token performs the OAuth client-credentials grant and returns a bearer
// token. Tokens are not cached; each poll pass requests a fresh one.
func (c *Client) Token(ctx context.Context) (string, error) {
	cc := clientcredentials.Config{
		ClientID:     c.cfg.ClientID,
		ClientSecret: c.cfg.ClientSecret,
		TokenURL:     c.cfg.AuthURL,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	tok, err := cc.Token(ctx)
	if err != nil {
		return "", &AuthError{Err: err}
	}
	return tok.AccessToken, nil
}

// Track fetches the tracking payload for one shipment and reduces it to a
// status/location snapshot. Each call carries a freshly generated transId
// correlation identifier and the fixed transactionSrc tag.
//
// A payload without the trackResponse wrapper yields the NoTrackingInfo
// sentinel snapshot. A malformed payload yields an ErrorSnapshot rather
// than an error, so one bad shipment never aborts a pass. Only transport
// failures and non-success HTTP statuses are returned as errors.
func (c *Client) Track(ctx context.Context, trackingNumber, token string) (Snapshot, error) {
	number := strings.TrimSpace(trackingNumber)
	reqURL := fmt.Sprintf("%s/%s", strings.TrimRight(c.cfg.TrackURL, "/"), url.PathEscape(number))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("transId", uuid.NewString())
	req.Header.Set("transactionSrc", transactionSrc)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Snapshot{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Snapshot{}, &UpstreamError{StatusCode: resp.StatusCode, Body: excerpt(body)}
	}

	var payload trackDetailResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return ErrorSnapshot(err), nil
	}
	if payload.TrackResponse == nil {
		return Snapshot{Status: NoTrackingInfo, Location: NoLocation}, nil
	}

	return reduce(payload.TrackResponse), nil
}

// reduce selects the first activity of the first package of the first
// shipment entry as the canonical latest event. If the latest event has
// no usable location, older events are tried in their given order.
func reduce(tr *TrackResponse) Snapshot {
	if len(tr.Shipment) == 0 {
		return ErrorSnapshot(fmt.Errorf("no shipment entries"))
	}
	if len(tr.Shipment[0].Package) == 0 {
		return ErrorSnapshot(fmt.Errorf("no packages in shipment"))
	}
	activities := tr.Shipment[0].Package[0].Activity
	if len(activities) == 0 {
		return ErrorSnapshot(fmt.Errorf("no activity in package"))
	}

	latest := activities[0]
	location := ExtractLocation(latest)
	if location == NoLocation {
		for _, act := range activities[1:] {
			if loc := ExtractLocation(act); loc != NoLocation {
				location = loc
				break
			}
		}
	}

	return Snapshot{Status: latest.Status.Description, Location: location}
}

// ErrorSnapshot folds a fetch or parse failure into a snapshot so the
// failure is visible to the user as the shipment's status text.
func ErrorSnapshot(cause error) Snapshot {
	return Snapshot{
		Status:   fmt.Sprintf("Error parsing: %v", cause),
		Location: NoLocation,
	}
}

func excerpt(body []byte) string {
	const max = 200
	s := string(body)
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
