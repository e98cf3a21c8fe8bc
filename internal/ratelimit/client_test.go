package ratelimit

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sudobility/ratelimit-client/internal/network/networktest"
)

const (
	testBaseURL = "https://api.example.com"
	testToken   = "test-firebase-token"
)

func newTestClient(t *testing.T, mock *networktest.MockClient, addressing Addressing) *Client {
	t.Helper()
	client, err := NewClient(Config{
		BaseURL:       testBaseURL,
		NetworkClient: mock,
		Addressing:    addressing,
		PathPrefix:    "/api/v1",
	})
	require.NoError(t, err)
	return client
}

func configFixture() map[string]any {
	return map[string]any{
		"limits": map[string]any{
			"hour":  map[string]any{"limit": 100, "remaining": 50, "resetAt": "2024-01-01T01:00:00Z"},
			"day":   map[string]any{"limit": 1000, "remaining": 500, "resetAt": "2024-01-02T00:00:00Z"},
			"month": map[string]any{"limit": 10000, "remaining": 5000, "resetAt": "2024-02-01T00:00:00Z"},
		},
	}
}

func TestNewClientValidates(t *testing.T) {
	_, err := NewClient(Config{NetworkClient: networktest.NewMockClient()})
	require.Error(t, err)

	_, err = NewClient(Config{BaseURL: testBaseURL})
	require.Error(t, err)
}

func TestGetRateLimitsConfig(t *testing.T) {
	url := "https://api.example.com/api/v1/ratelimits/my-entity"

	t.Run("Success", func(t *testing.T) {
		mock := networktest.NewMockClient()
		mock.SetJSON(url, true, http.StatusOK, map[string]any{"success": true, "data": configFixture()})

		resp, err := newTestClient(t, mock, AddressingPath).GetRateLimitsConfig(context.Background(), testToken, "my-entity")
		require.NoError(t, err)
		require.True(t, mock.WasURLCalled(url))

		last, ok := mock.LastRequest()
		require.True(t, ok)
		require.Equal(t, "Bearer test-firebase-token", last.Options.Headers["Authorization"])
		require.Equal(t, "application/json", last.Options.Headers["Accept"])

		require.True(t, resp.Success)
		require.NotNil(t, resp.Data)
		hour := resp.Data.Limits[PeriodHour]
		require.Equal(t, 100, hour.Limit)
		require.Equal(t, 50, hour.Remaining)
		require.Equal(t, time.Date(2024, 1, 1, 1, 0, 0, 0, time.UTC), hour.ResetAt.UTC())
		require.Len(t, resp.Data.Limits, 3)
	})

	t.Run("NotOK", func(t *testing.T) {
		mock := networktest.NewMockClient()
		mock.SetJSON(url, false, http.StatusUnauthorized, map[string]any{"error": "Unauthorized"})

		_, err := newTestClient(t, mock, AddressingPath).GetRateLimitsConfig(context.Background(), testToken, "my-entity")
		require.EqualError(t, err, "Failed to get rate limits config: Unauthorized")

		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr))
		require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	})

	t.Run("MissingData", func(t *testing.T) {
		mock := networktest.NewMockClient()
		mock.SetJSON(url, true, http.StatusOK, nil)

		_, err := newTestClient(t, mock, AddressingPath).GetRateLimitsConfig(context.Background(), testToken, "my-entity")
		require.EqualError(t, err, "Failed to get rate limits config: Unknown error")
	})

	t.Run("EnvelopeFailureIsPassedThrough", func(t *testing.T) {
		mock := networktest.NewMockClient()
		mock.SetJSON(url, true, http.StatusOK, map[string]any{"success": false, "error": "Rate limit exceeded"})

		resp, err := newTestClient(t, mock, AddressingPath).GetRateLimitsConfig(context.Background(), testToken, "my-entity")
		require.NoError(t, err)
		require.False(t, resp.Success)
		require.Nil(t, resp.Data)
		require.Equal(t, "Rate limit exceeded", resp.Error)
	})

	t.Run("RejectionPropagates", func(t *testing.T) {
		mock := networktest.NewMockClient()
		cause := errors.New("connection refused")
		mock.SetError(url, cause)

		_, err := newTestClient(t, mock, AddressingPath).GetRateLimitsConfig(context.Background(), testToken, "my-entity")
		require.Same(t, cause, err)
	})

	t.Run("InvalidBody", func(t *testing.T) {
		mock := networktest.NewMockClient()
		mock.SetJSON(url, true, http.StatusOK, "not an envelope")

		_, err := newTestClient(t, mock, AddressingPath).GetRateLimitsConfig(context.Background(), testToken, "my-entity")
		require.ErrorContains(t, err, "Failed to get rate limits config: decode response: ")

		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr))
		require.Error(t, apiErr.Unwrap())
	})

	t.Run("EncodesIdentifier", func(t *testing.T) {
		encoded := "https://api.example.com/api/v1/ratelimits/my%20org%2Ftest"
		mock := networktest.NewMockClient()
		mock.SetJSON(encoded, true, http.StatusOK, map[string]any{"success": true, "data": configFixture()})

		_, err := newTestClient(t, mock, AddressingPath).GetRateLimitsConfig(context.Background(), testToken, "my org/test")
		require.NoError(t, err)
		require.True(t, mock.WasURLCalled(encoded))
	})
}

func TestGetRateLimitHistory(t *testing.T) {
	for _, period := range Periods() {
		t.Run(string(period), func(t *testing.T) {
			url := "https://api.example.com/api/v1/ratelimits/my-entity/history/" + string(period)
			mock := networktest.NewMockClient()
			mock.SetJSON(url, true, http.StatusOK, map[string]any{
				"success": true,
				"data": map[string]any{
					"periodType": string(period),
					"history": []map[string]any{
						{"timestamp": "2024-01-01T00:00:00Z", "usage": 10},
						{"timestamp": "2024-01-01T01:00:00Z", "usage": 15},
					},
				},
			})

			resp, err := newTestClient(t, mock, AddressingPath).GetRateLimitHistory(context.Background(), period, testToken, "my-entity")
			require.NoError(t, err)
			require.True(t, mock.WasURLCalled(url))
			require.Equal(t, period, resp.Data.PeriodType)
			require.Len(t, resp.Data.History, 2)
			require.Equal(t, 10, resp.Data.History[0].Usage)
			require.Equal(t, 15, resp.Data.History[1].Usage)
		})
	}

	t.Run("NotOKUsesMessage", func(t *testing.T) {
		url := "https://api.example.com/api/v1/ratelimits/my-entity/history/hour"
		mock := networktest.NewMockClient()
		mock.SetJSON(url, false, http.StatusBadRequest, map[string]any{"message": "Invalid period type"})

		_, err := newTestClient(t, mock, AddressingPath).GetRateLimitHistory(context.Background(), PeriodHour, testToken, "my-entity")
		require.EqualError(t, err, "Failed to get rate limit history: Invalid period type")
	})

	t.Run("MissingData", func(t *testing.T) {
		url := "https://api.example.com/api/v1/ratelimits/my-entity/history/hour"
		mock := networktest.NewMockClient()
		mock.SetJSON(url, true, http.StatusOK, nil)

		_, err := newTestClient(t, mock, AddressingPath).GetRateLimitHistory(context.Background(), PeriodHour, testToken, "my-entity")
		require.ErrorContains(t, err, "Failed to get rate limit history")
	})

	t.Run("EncodesIdentifierAndPeriod", func(t *testing.T) {
		url := "https://api.example.com/api/v1/ratelimits/test%2Forg/history/a%20b"
		mock := networktest.NewMockClient()
		mock.SetJSON(url, true, http.StatusOK, map[string]any{"success": true, "data": map[string]any{"periodType": "day", "history": []any{}}})

		_, err := newTestClient(t, mock, AddressingPath).GetRateLimitHistory(context.Background(), PeriodType("a b"), testToken, "test/org")
		require.NoError(t, err)
		require.True(t, mock.WasURLCalled(url))
	})
}

func TestClientURLs(t *testing.T) {
	mock := networktest.NewMockClient()

	t.Run("PathAddressing", func(t *testing.T) {
		client := newTestClient(t, mock, AddressingPath)
		require.Equal(t, "https://api.example.com/api/v1/ratelimits", client.ConfigURL(""))
		require.Equal(t, "https://api.example.com/api/v1/ratelimits/acme", client.ConfigURL("acme"))
		require.Equal(t, "https://api.example.com/api/v1/ratelimits/history/day", client.HistoryURL(PeriodDay, ""))
		require.Equal(t, "https://api.example.com/api/v1/ratelimits/acme/history/day", client.HistoryURL(PeriodDay, "acme"))
	})

	t.Run("QueryAddressing", func(t *testing.T) {
		client := newTestClient(t, mock, AddressingQuery)
		require.Equal(t, AddressingQuery, client.Addressing())
		require.Equal(t, "https://api.example.com/api/v1/ratelimits", client.ConfigURL(""))
		require.Equal(t, "https://api.example.com/api/v1/ratelimits?entitySlug=my%20org%2Ftest", client.ConfigURL("my org/test"))
		require.Equal(t, "https://api.example.com/api/v1/ratelimits/history/month?entitySlug=acme", client.HistoryURL(PeriodMonth, "acme"))
	})

	t.Run("NoPrefixTrailingSlashBase", func(t *testing.T) {
		client, err := NewClient(Config{BaseURL: "https://api.example.com/", NetworkClient: mock})
		require.NoError(t, err)
		require.Equal(t, "https://api.example.com/ratelimits", client.ConfigURL(""))
	})

	t.Run("PrefixNormalized", func(t *testing.T) {
		client, err := NewClient(Config{BaseURL: "https://api.example.com", NetworkClient: mock, PathPrefix: "api/v1/"})
		require.NoError(t, err)
		require.Equal(t, "https://api.example.com/api/v1/ratelimits", client.ConfigURL(""))
	})
}
