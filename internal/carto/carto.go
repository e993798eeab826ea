// Package carto reads service requests from a CARTO SQL API endpoint.
package carto

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"phl311.app/bot/common/logger"
	"phl311.app/bot/core/config"
	"phl311.app/bot/internal/model"
)

var ErrUnexpectedResponse = errors.New("unexpected carto response")

// columns selected for every service request query.
var columns = []string{
	"service_request_id",
	"status",
	"service_name",
	"agency_responsible",
	"address",
	"requested_datetime",
	"expected_datetime",
	"updated_datetime",
	"service_notes",
	"lat",
	"lon",
}

type Client struct {
	http    *retryablehttp.Client
	baseURL string
	table   string
	apiKey  string
}

func New(cfg config.CartoConfig) *Client {
	httpClient := retryablehttp.NewClient()
	httpClient.RetryMax = cfg.RetryMax
	httpClient.Logger = slog.Default()
	if cfg.Timeout > 0 {
		httpClient.HTTPClient.Timeout = cfg.Timeout
	}

	return &Client{
		http:    httpClient,
		baseURL: cfg.URL,
		table:   cfg.Table,
		apiKey:  cfg.APIKey,
	}
}

type sqlResponse[T any] struct {
	Rows      []T      `json:"rows"`
	TotalRows int      `json:"total_rows"`
	Error     []string `json:"error"`
}

type requestRow struct {
	ServiceRequestID  int64      `json:"service_request_id"`
	Status            *string    `json:"status"`
	ServiceName       *string    `json:"service_name"`
	AgencyResponsible *string    `json:"agency_responsible"`
	Address           *string    `json:"address"`
	RequestedDatetime *time.Time `json:"requested_datetime"`
	ExpectedDatetime  *time.Time `json:"expected_datetime"`
	UpdatedDatetime   *time.Time `json:"updated_datetime"`
	ServiceNotes      *string    `json:"service_notes"`
	Lat               *float64   `json:"lat"`
	Lon               *float64   `json:"lon"`
}

type countRow struct {
	Count int `json:"count"`
}

// Query returns the service requests matching where. where may be empty and
// may or may not start with the WHERE keyword.
func (c *Client) Query(ctx context.Context, where string) ([]model.ServiceRequest, error) {
	sql := fmt.Sprintf("SELECT %s FROM %s%s", strings.Join(columns, ", "), c.table, whereSuffix(where))

	var resp sqlResponse[requestRow]
	if err := c.do(ctx, sql, &resp); err != nil {
		return nil, err
	}

	requests := make([]model.ServiceRequest, 0, len(resp.Rows))
	for _, row := range resp.Rows {
		requests = append(requests, row.toModel())
	}
	return requests, nil
}

// Count returns the number of rows matching where.
func (c *Client) Count(ctx context.Context, where string) (int, error) {
	sql := fmt.Sprintf("SELECT COUNT(*) AS count FROM %s%s", c.table, whereSuffix(where))

	var resp sqlResponse[countRow]
	if err := c.do(ctx, sql, &resp); err != nil {
		return 0, err
	}
	if len(resp.Rows) != 1 {
		return 0, fmt.Errorf("%w: count returned %d rows", ErrUnexpectedResponse, len(resp.Rows))
	}
	return resp.Rows[0].Count, nil
}

func (c *Client) do(ctx context.Context, sql string, out any) error {
	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "phl311.carto"})

	params := url.Values{}
	params.Set("q", sql)
	if c.apiKey != "" {
		params.Set("api_key", c.apiKey)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("building carto request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("calling carto: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading carto response: %w", err)
	}

	slog.DebugContext(ctx, "carto query finished",
		"sql", logger.Truncate(sql, 200),
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds())

	if resp.StatusCode != http.StatusOK {
		var errResp sqlResponse[json.RawMessage]
		if json.Unmarshal(body, &errResp) == nil && len(errResp.Error) > 0 {
			return fmt.Errorf("%w: status %d: %s", ErrUnexpectedResponse, resp.StatusCode, strings.Join(errResp.Error, "; "))
		}
		return fmt.Errorf("%w: status %d", ErrUnexpectedResponse, resp.StatusCode)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding carto response: %w", err)
	}
	return nil
}

func whereSuffix(where string) string {
	where = strings.TrimSpace(where)
	if len(where) >= 6 && strings.EqualFold(where[:6], "where ") {
		where = strings.TrimSpace(where[6:])
	}
	if where == "" {
		return ""
	}
	return " WHERE " + where
}

func (r requestRow) toModel() model.ServiceRequest {
	return model.ServiceRequest{
		ID:                r.ServiceRequestID,
		Status:            deref(r.Status),
		ServiceName:       deref(r.ServiceName),
		AgencyResponsible: deref(r.AgencyResponsible),
		Address:           deref(r.Address),
		RequestedAt:       r.RequestedDatetime,
		ExpectedAt:        r.ExpectedDatetime,
		UpdatedAt:         r.UpdatedDatetime,
		Notes:             r.ServiceNotes,
		Lat:               r.Lat,
		Lon:               r.Lon,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
