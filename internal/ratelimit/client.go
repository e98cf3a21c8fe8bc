// Package ratelimit is a typed client for the remote rate limit service.
package ratelimit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sudobility/ratelimit-client/internal/network"
)

const (
	actionGetConfig  = "get rate limits config"
	actionGetHistory = "get rate limit history"

	entitySlugParam = "entitySlug"
)

// Addressing selects how the caller identifier reaches the server.
type Addressing int

const (
	// AddressingPath embeds the identifier as a path segment:
	// /ratelimits/{identifier}/history/{period}.
	AddressingPath Addressing = iota
	// AddressingQuery passes it as ?entitySlug={identifier}.
	AddressingQuery
)

func (a Addressing) String() string {
	switch a {
	case AddressingQuery:
		return "query"
	default:
		return "path"
	}
}

// ParseAddressing maps "path" (or "") and "query" to an Addressing.
func ParseAddressing(value string) (Addressing, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "path":
		return AddressingPath, nil
	case "query":
		return AddressingQuery, nil
	default:
		return AddressingPath, fmt.Errorf("unsupported addressing %q (expected path or query)", value)
	}
}

// Config holds the construction inputs of a Client.
type Config struct {
	BaseURL       string
	NetworkClient network.Client
	Addressing    Addressing
	// PathPrefix is prepended to every route, e.g. "/api/v1".
	PathPrefix string
}

// Client issues authenticated requests against the rate limit endpoints.
type Client struct {
	baseURL    string
	prefix     string
	network    network.Client
	addressing Addressing
}

// NewClient validates cfg and returns a client.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("base url is required")
	}
	if cfg.NetworkClient == nil {
		return nil, errors.New("network client is required")
	}

	prefix := strings.TrimSpace(cfg.PathPrefix)
	if prefix != "" {
		prefix = "/" + strings.Trim(prefix, "/")
	}

	return &Client{
		baseURL:    strings.TrimSpace(cfg.BaseURL),
		prefix:     prefix,
		network:    cfg.NetworkClient,
		addressing: cfg.Addressing,
	}, nil
}

// Addressing returns the configured addressing scheme.
func (c *Client) Addressing() Addressing {
	return c.addressing
}

// GetRateLimitsConfig fetches the current limits and usage.
//
// A transport failure is returned unchanged. A non-2xx status or a missing
// body yields an *APIError. Otherwise the envelope is returned as sent; its
// Success flag is left for the caller to inspect.
func (c *Client) GetRateLimitsConfig(ctx context.Context, token, identifier string) (*BaseResponse[RateLimitsConfigData], error) {
	return get[RateLimitsConfigData](ctx, c, c.ConfigURL(identifier), token, actionGetConfig)
}

// GetRateLimitHistory fetches usage buckets for periodType. The period is
// not validated locally.
func (c *Client) GetRateLimitHistory(ctx context.Context, periodType PeriodType, token, identifier string) (*BaseResponse[RateLimitHistoryData], error) {
	return get[RateLimitHistoryData](ctx, c, c.HistoryURL(periodType, identifier), token, actionGetHistory)
}

// ConfigURL returns the fully qualified config endpoint for identifier.
func (c *Client) ConfigURL(identifier string) string {
	path := c.prefix + "/ratelimits"
	if identifier != "" && c.addressing == AddressingPath {
		path += "/" + EncodeURIComponent(identifier)
	}
	return BuildURL(c.baseURL, path) + c.query(identifier)
}

// HistoryURL returns the fully qualified history endpoint.
func (c *Client) HistoryURL(periodType PeriodType, identifier string) string {
	path := c.prefix + "/ratelimits"
	if identifier != "" && c.addressing == AddressingPath {
		path += "/" + EncodeURIComponent(identifier)
	}
	path += "/history/" + EncodeURIComponent(string(periodType))
	return BuildURL(c.baseURL, path) + c.query(identifier)
}

func (c *Client) query(identifier string) string {
	if c.addressing != AddressingQuery || identifier == "" {
		return ""
	}
	return BuildQueryString(QueryParams{{Key: entitySlugParam, Value: identifier}})
}

func get[T any](ctx context.Context, c *Client, url, token, action string) (*BaseResponse[T], error) {
	if ctx == nil {
		ctx = context.Background()
	}

	resp, err := c.network.Get(ctx, url, network.RequestOptions{Headers: CreateAuthHeaders(token)})
	if err != nil {
		return nil, err
	}
	if resp == nil || !resp.OK || !resp.HasData() {
		return nil, HandleAPIError(resp, action)
	}

	var envelope BaseResponse[T]
	if err := json.Unmarshal(resp.Data, &envelope); err != nil {
		return nil, &APIError{
			Action:     action,
			Detail:     "decode response: " + err.Error(),
			StatusCode: resp.StatusCode,
			Err:        err,
		}
	}
	return &envelope, nil
}
