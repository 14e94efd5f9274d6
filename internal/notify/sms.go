package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// SMSConfig holds the settings for the SMS gateway transport.
type SMSConfig struct {
	AccountSID string
	AuthToken  string
	From       string
	To         string
	BaseURL    string
}

// SMS delivers notifications through a Twilio-style messages endpoint.
type SMS struct {
	cfg        SMSConfig
	httpClient *http.Client
}

// NewSMS creates a new SMS gateway transport.
func NewSMS(cfg SMSConfig) *SMS {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.twilio.com"
	}
	return &SMS{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// SetHTTPClient sets a custom HTTP client (useful for testing).
func (s *SMS) SetHTTPClient(client *http.Client) {
	s.httpClient = client
}

// Send posts the text to the gateway's messages endpoint.
func (s *SMS) Send(ctx context.Context, text string) error {
	form := url.Values{}
	form.Set("From", s.cfg.From)
	form.Set("To", s.cfg.To)
	form.Set("Body", text)

	reqURL := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", s.cfg.BaseURL, s.cfg.AccountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, strings.NewReader(form.Encode()))
	if err != nil {
		return &DeliveryError{Transport: "sms", Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(s.cfg.AccountSID, s.cfg.AuthToken)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return &DeliveryError{Transport: "sms", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return &DeliveryError{
			Transport: "sms",
			Err:       fmt.Errorf("gateway returned status %d: %s", resp.StatusCode, string(body)),
		}
	}
	return nil
}
