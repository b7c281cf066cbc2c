package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// CallError is returned for any row operation the store rejected
type CallError struct {
	Op     string
	Table  string
	Status int
	Body   string
}

func (e *CallError) Error() string {
	return fmt.Sprintf("remote %s %s: status %d: %s", e.Op, e.Table, e.Status, e.Body)
}

// Client talks to the external row-level data store. All reads and writes are
// plain row operations (select/insert/upsert/update/delete) with equality
// filters, authorized by the anon key plus an optional per-session bearer token.
type Client struct {
	baseURL string
	anonKey string
	token   string
	http    *http.Client
	logger  *zap.Logger
}

func NewClient(baseURL, anonKey string, logger *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		anonKey: anonKey,
		http:    &http.Client{Timeout: 15 * time.Second},
		logger:  logger,
	}
}

// WithToken returns a copy of the client authorized as the session owner
func (c *Client) WithToken(token string) *Client {
	authed := *c
	authed.token = token
	return &authed
}

// Filters are equality filters applied to a row operation, column -> value
type Filters map[string]string

func (c *Client) rowURL(table, sel string, filters Filters) string {
	q := url.Values{}
	if sel != "" {
		q.Set("select", sel)
	}
	for col, val := range filters {
		q.Set(col, "eq."+val)
	}
	u := c.baseURL + "/rest/v1/" + table
	if encoded := q.Encode(); encoded != "" {
		u += "?" + encoded
	}
	return u
}

func (c *Client) do(ctx context.Context, op, method, table string, u string, payload any, prefer string) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("%s %s: encode payload: %w", op, table, err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: build request: %w", op, table, err)
	}

	req.Header.Set("apikey", c.anonKey)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	} else {
		req.Header.Set("Authorization", "Bearer "+c.anonKey)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", op, table, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: read response: %w", op, table, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		callErr := &CallError{Op: op, Table: table, Status: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
		c.logger.Warn("Remote call failed",
			zap.String("op", op),
			zap.String("table", table),
			zap.Int("status", resp.StatusCode),
		)
		return nil, callErr
	}

	return raw, nil
}

// Select fetches rows matching the filters and decodes them into dest
func (c *Client) Select(ctx context.Context, table, sel string, filters Filters, dest any) error {
	raw, err := c.do(ctx, "select", http.MethodGet, table, c.rowURL(table, sel, filters), nil, "")
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("select %s: decode rows: %w", table, err)
	}
	return nil
}

// Insert appends rows to the table
func (c *Client) Insert(ctx context.Context, table string, payload any) error {
	_, err := c.do(ctx, "insert", http.MethodPost, table, c.rowURL(table, "", nil), payload, "return=minimal")
	return err
}

// Upsert inserts a row, merging with an existing one on key collision
func (c *Client) Upsert(ctx context.Context, table string, payload any) error {
	_, err := c.do(ctx, "upsert", http.MethodPost, table, c.rowURL(table, "", nil), payload, "resolution=merge-duplicates,return=minimal")
	return err
}

// Update patches rows matching the filters
func (c *Client) Update(ctx context.Context, table string, patch any, filters Filters) error {
	_, err := c.do(ctx, "update", http.MethodPatch, table, c.rowURL(table, "", filters), patch, "return=minimal")
	return err
}

// Delete removes rows matching the filters
func (c *Client) Delete(ctx context.Context, table string, filters Filters) error {
	_, err := c.do(ctx, "delete", http.MethodDelete, table, c.rowURL(table, "", filters), nil, "")
	return err
}
