package skylink

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/One-Window-Operations-OwO/owo-internet/backend/config"
)

const (
	maxErrorBody        = 64 << 10
	defaultMaxFileBytes = 32 << 20
)

// Client talks to the Skylink REST API.
type Client struct {
	baseURL      string
	http         *http.Client
	maxFileBytes int64
}

// NewClient builds a client from config. A nil httpClient gets one with cfg.Timeout.
func NewClient(cfg *config.SkylinkConfig, httpClient *http.Client) *Client {
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	maxFile := cfg.MaxFileBytes
	if maxFile <= 0 {
		maxFile = defaultMaxFileBytes
	}
	return &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		http:         httpClient,
		maxFileBytes: maxFile,
	}
}

// Login exchanges credentials for an upstream bearer token.
// The csrf token is taken from the body or, failing that, from Set-Cookie.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	body, _ := json.Marshal(map[string]string{"email": email, "password": password})
	req, err := c.newRequest(ctx, http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var result LoginResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode login response: %w", err)
	}
	if result.CSRFToken == "" {
		for _, ck := range resp.Cookies() {
			if ck.Name == "csrf_token" {
				result.CSRFToken = ck.Value
				break
			}
		}
	}
	if result.AccessToken == "" {
		return nil, &APIError{StatusCode: http.StatusBadGateway, Body: "login response has no access_token"}
	}
	return &result, nil
}

// Me returns the profile behind token.
func (c *Client) Me(ctx context.Context, token string) (*Profile, error) {
	var p Profile
	if err := c.getJSON(ctx, token, "/api/v1/auth/me", &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListShipments returns shipments in the given status.
func (c *Client) ListShipments(ctx context.Context, token, status string, limit, offset int) ([]Shipment, error) {
	q := url.Values{}
	q.Set("status", status)
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))

	var list ShipmentList
	if err := c.getJSON(ctx, token, "/api/v1/shipments?"+q.Encode(), &list); err != nil {
		return nil, err
	}
	return list.Data, nil
}

// GetShipment returns the raw shipment document.
func (c *Client) GetShipment(ctx context.Context, token string, id uint) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.getJSON(ctx, token, "/api/v1/shipments/"+strconv.FormatUint(uint64(id), 10), &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// ListEvidences returns the raw evidence listing of a shipment.
func (c *Client) ListEvidences(ctx context.Context, token string, shipmentID uint) (json.RawMessage, error) {
	var raw json.RawMessage
	path := "/api/v1/evidences?shipment_id=" + strconv.FormatUint(uint64(shipmentID), 10)
	if err := c.getJSON(ctx, token, path, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// UpdateShipmentStatus PATCHes the shipment status. Skylink checks the csrf token
// both as header and cookie. A 204 answer yields a nil body.
func (c *Client) UpdateShipmentStatus(ctx context.Context, token, csrf string, id uint, update StatusUpdate) (json.RawMessage, error) {
	body, err := json.Marshal(update.payload())
	if err != nil {
		return nil, err
	}
	path := "/api/v1/shipments/" + strconv.FormatUint(uint64(id), 10) + "/status"
	req, err := c.newRequest(ctx, http.MethodPatch, path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-CSRF-Token", csrf)
	req.Header.Set("Cookie", "auth_token="+token+"; csrf_token="+csrf)

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read status response: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 || !json.Valid(data) {
		return nil, nil
	}
	return data, nil
}

// FetchStatic downloads an evidence file. path is relative to /api/v1/static.
func (c *Client) FetchStatic(ctx context.Context, path string) (*StaticFile, error) {
	clean, err := cleanStaticPath(path)
	if err != nil {
		return nil, err
	}
	req, err := c.newRequest(ctx, http.MethodGet, "/api/v1/static/"+clean, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.ContentLength > c.maxFileBytes {
		return nil, ErrFileTooLarge
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxFileBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read static file: %v", ErrUnavailable, err)
	}
	if int64(len(data)) > c.maxFileBytes {
		return nil, ErrFileTooLarge
	}
	ct := resp.Header.Get("Content-Type")
	if ct == "" {
		ct = "application/octet-stream"
	}
	return &StaticFile{ContentType: ct, Body: data}, nil
}

var (
	// ErrBadPath is returned by FetchStatic for paths that could escape the static root.
	ErrBadPath = errors.New("invalid static path")
	// ErrFileTooLarge is returned by FetchStatic when the file exceeds skylink.max_file_bytes.
	ErrFileTooLarge = errors.New("static file too large")
)

func cleanStaticPath(p string) (string, error) {
	p = strings.TrimLeft(strings.TrimSpace(p), "/")
	if p == "" || strings.Contains(p, "://") {
		return "", ErrBadPath
	}
	segments := strings.Split(p, "/")
	for i, s := range segments {
		if s == "" || s == "." || s == ".." {
			return "", ErrBadPath
		}
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/"), nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build skylink request: %w", err)
	}
	req.Header.Set("Accept", "*/*")
	return req, nil
}

func (c *Client) getJSON(ctx context.Context, token, path string, out any) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// do sends req and turns transport errors and non-2xx answers into typed errors.
// On success the caller owns resp.Body.
func (c *Client) do(req *http.Request) (*http.Response, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return resp, nil
}
