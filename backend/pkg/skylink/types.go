package skylink

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrUnavailable wraps transport failures (connection refused, timeout, DNS).
// Login falls back to local credentials only on this error or a 5xx.
var ErrUnavailable = errors.New("skylink unavailable")

// APIError is a non-2xx answer from Skylink. Body is the raw response text.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("skylink returned %d: %s", e.StatusCode, e.Body)
}

// ServerSide reports whether the upstream failed on its own side.
func (e *APIError) ServerSide() bool { return e.StatusCode >= 500 }

// AsAPIError unwraps err into an *APIError.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// Profile is the subset of the Skylink account the service relies on.
type Profile struct {
	ID    FlexString `json:"id"`
	Name  string     `json:"name"`
	Email string     `json:"email"`
}

// LoginResult is the outcome of a successful Skylink login.
type LoginResult struct {
	AccessToken string   `json:"access_token"`
	CSRFToken   string   `json:"csrf_token"`
	User        *Profile `json:"user,omitempty"`
}

// Shipment is one row of the pending shipment listing.
type Shipment struct {
	ID           uint       `json:"id"`
	SchoolName   string     `json:"school_name"`
	SchoolID     FlexString `json:"school_id"`
	ResiNumber   string     `json:"resi_number"`
	BappNumber   string     `json:"bapp_number"`
	StarlinkID   string     `json:"starlink_id"`
	ReceivedDate string     `json:"received_date"`
	Status       string     `json:"status"`
}

// ReceivedAt parses ReceivedDate. It returns nil for empty or unparseable values.
func (s *Shipment) ReceivedAt() *time.Time {
	v := strings.TrimSpace(s.ReceivedDate)
	if v == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, v); err == nil {
			return &t
		}
	}
	return nil
}

// ShipmentList is the envelope of GET /api/v1/shipments.
type ShipmentList struct {
	Data []Shipment `json:"data"`
}

// StatusUpdate is the PATCH body for a shipment status change.
type StatusUpdate struct {
	Status             string `json:"status"`
	ClientRejectReason string `json:"client_reject_reason,omitempty"`
	EvidenceIDs        []uint `json:"evidence_ids,omitempty"`
}

const defaultRejectReason = "No reason provided"

// payload returns the body Skylink expects: rejected updates always carry a
// reason and an evidence list, everything else carries only the status.
func (u StatusUpdate) payload() any {
	if u.Status != "REJECTED" {
		return map[string]string{"status": u.Status}
	}
	reason := u.ClientRejectReason
	if reason == "" {
		reason = defaultRejectReason
	}
	ids := u.EvidenceIDs
	if ids == nil {
		ids = []uint{}
	}
	return struct {
		Status             string `json:"status"`
		ClientRejectReason string `json:"client_reject_reason"`
		EvidenceIDs        []uint `json:"evidence_ids"`
	}{u.Status, reason, ids}
}

// StaticFile is an evidence file served from /api/v1/static.
type StaticFile struct {
	ContentType string
	Body        []byte
}

// FlexString accepts both JSON strings and numbers; Skylink is not consistent
// about school_id and user ids.
type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("flex string: %w", err)
	}
	*f = FlexString(n.String())
	return nil
}

func (f FlexString) String() string { return string(f) }
