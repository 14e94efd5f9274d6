package ups

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "client-id" || pass != "client-secret" {
			t.Errorf("missing or wrong basic auth: %s / %s", user, pass)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if got := r.PostForm.Get("grant_type"); got != "client_credentials" {
			t.Errorf("expected grant_type client_credentials, got %q", got)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "test-token",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	}))
	defer server.Close()

	client := NewClient(Config{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		AuthURL:      server.URL,
	})

	token, err := client.Token(context.Background())
	if err != nil {
		t.Fatalf("Token failed: %v", err)
	}
	if token != "test-token" {
		t.Errorf("expected test-token, got %q", token)
	}
}

func TestTokenFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid_client"}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(Config{ClientID: "bad", ClientSecret: "bad", AuthURL: server.URL})

	_, err := client.Token(context.Background())
	if err == nil {
		t.Fatal("expected error for rejected credentials")
	}
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Errorf("expected *AuthError, got %T", err)
	}
}

func trackPayload(activities []Activity) trackDetailResponse {
	return trackDetailResponse{
		TrackResponse: &TrackResponse{
			Shipment: []TrackedShipment{{
				Package: []Package{{Activity: activities}},
			}},
		},
	}
}

func TestTrack(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("expected bearer auth, got %q", got)
		}
		if r.Header.Get("transId") == "" {
			t.Error("missing transId header")
		}
		if got := r.Header.Get("transactionSrc"); got != "parcel-monitor" {
			t.Errorf("expected transactionSrc parcel-monitor, got %q", got)
		}
		if !strings.HasSuffix(r.URL.Path, "/1Z999") {
			t.Errorf("expected trimmed tracking number in path, got %s", r.URL.Path)
		}

		json.NewEncoder(w).Encode(trackPayload([]Activity{{
			Status: ActivityStatus{Description: "Delivered"},
			Location: &ActivityLocation{
				Address: &Address{City: "Toronto", StateProvince: "ON", Country: "CA"},
			},
		}}))
	}))
	defer server.Close()

	client := NewClient(Config{TrackURL: server.URL})

	snap, err := client.Track(context.Background(), "  1Z999  ", "test-token")
	if err != nil {
		t.Fatalf("Track failed: %v", err)
	}
	if snap.Status != "Delivered" {
		t.Errorf("expected status Delivered, got %q", snap.Status)
	}
	if snap.Location != "Toronto, ON, CA" {
		t.Errorf("expected location Toronto, ON, CA, got %q", snap.Location)
	}
}

func TestTrackFreshCorrelationIDPerCall(t *testing.T) {
	var ids []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ids = append(ids, r.Header.Get("transId"))
		json.NewEncoder(w).Encode(trackPayload([]Activity{{
			Status: ActivityStatus{Description: "In Transit"},
		}}))
	}))
	defer server.Close()

	client := NewClient(Config{TrackURL: server.URL})
	for i := 0; i < 2; i++ {
		if _, err := client.Track(context.Background(), "1Z999", "tok"); err != nil {
			t.Fatalf("Track failed: %v", err)
		}
	}

	if len(ids) != 2 || ids[0] == "" || ids[0] == ids[1] {
		t.Errorf("expected two distinct non-empty correlation ids, got %v", ids)
	}
}

func TestTrackNoTrackingWrapper(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"response":{"errors":[]}}`))
	}))
	defer server.Close()

	client := NewClient(Config{TrackURL: server.URL})

	snap, err := client.Track(context.Background(), "1Z999", "tok")
	if err != nil {
		t.Fatalf("Track failed: %v", err)
	}
	if snap.Status != NoTrackingInfo {
		t.Errorf("expected %q, got %q", NoTrackingInfo, snap.Status)
	}
	if snap.Location != NoLocation {
		t.Errorf("expected %q, got %q", NoLocation, snap.Location)
	}
}

func TestTrackFallsBackToOlderEvents(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(trackPayload([]Activity{
			{Status: ActivityStatus{Description: "Out For Delivery"}},
			{Status: ActivityStatus{Description: "Arrived at Facility"}},
			{
				Status: ActivityStatus{Description: "Origin Scan"},
				Location: &ActivityLocation{
					Address: &Address{City: "Burnaby", StateProvince: "BC", Country: "CA"},
				},
			},
		}))
	}))
	defer server.Close()

	client := NewClient(Config{TrackURL: server.URL})

	snap, err := client.Track(context.Background(), "1Z999", "tok")
	if err != nil {
		t.Fatalf("Track failed: %v", err)
	}
	// Status comes from the latest event, location from the first older
	// event that yields one.
	if snap.Status != "Out For Delivery" {
		t.Errorf("expected latest status, got %q", snap.Status)
	}
	if snap.Location != "Burnaby, BC, CA" {
		t.Errorf("expected fallback location, got %q", snap.Location)
	}
}

func TestTrackUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(Config{TrackURL: server.URL})

	_, err := client.Track(context.Background(), "1Z999", "tok")
	var upstreamErr *UpstreamError
	if !errors.As(err, &upstreamErr) {
		t.Fatalf("expected *UpstreamError, got %v", err)
	}
	if upstreamErr.StatusCode != http.StatusBadGateway {
		t.Errorf("expected status 502, got %d", upstreamErr.StatusCode)
	}
}

func TestTrackMalformedPayloadBecomesStatus(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{"trackResponse": [}`},
		{"no shipment entries", `{"trackResponse":{"shipment":[]}}`},
		{"no packages", `{"trackResponse":{"shipment":[{"package":[]}]}}`},
		{"no activity", `{"trackResponse":{"shipment":[{"package":[{"activity":[]}]}]}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewClient(Config{TrackURL: server.URL})

			snap, err := client.Track(context.Background(), "1Z999", "tok")
			if err != nil {
				t.Fatalf("parse failures must not be errors, got: %v", err)
			}
			if !strings.HasPrefix(snap.Status, "Error parsing: ") {
				t.Errorf("expected Error parsing status, got %q", snap.Status)
			}
			if snap.Location != NoLocation {
				t.Errorf("expected %q, got %q", NoLocation, snap.Location)
			}
		})
	}
}
