// Package networktest provides an in-memory network.Client for tests.
package networktest

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/sudobility/ratelimit-client/internal/network"
)

// Request records a call made through MockClient.
type Request struct {
	URL     string
	Options network.RequestOptions
}

// MockClient answers GET requests from canned responses keyed by URL.
// Unknown URLs fail with an error.
type MockClient struct {
	mu        sync.Mutex
	responses map[string]*network.Response
	errs      map[string]error
	requests  []Request
	// Hook, when set, runs before the canned answer is returned.
	Hook func(ctx context.Context, url string)
}

// NewMockClient returns an empty mock.
func NewMockClient() *MockClient {
	return &MockClient{
		responses: make(map[string]*network.Response),
		errs:      make(map[string]error),
	}
}

// SetResponse registers the response returned for url.
func (m *MockClient) SetResponse(url string, resp *network.Response) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.errs, url)
	m.responses[url] = resp
}

// SetJSON registers a response whose body is the JSON encoding of body.
// A nil body produces a response without data.
func (m *MockClient) SetJSON(url string, ok bool, status int, body any) {
	resp := &network.Response{OK: ok, StatusCode: status}
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			panic(fmt.Sprintf("networktest: marshal body: %v", err))
		}
		resp.Data = data
	}
	m.SetResponse(url, resp)
}

// SetError makes requests to url fail with err.
func (m *MockClient) SetError(url string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.responses, url)
	m.errs[url] = err
}

// Get implements network.Client.
func (m *MockClient) Get(ctx context.Context, url string, opts network.RequestOptions) (*network.Response, error) {
	m.mu.Lock()
	m.requests = append(m.requests, Request{URL: url, Options: opts})
	hook := m.Hook
	m.mu.Unlock()

	if hook != nil {
		hook(ctx, url)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.errs[url]; ok {
		return nil, err
	}
	if resp, ok := m.responses[url]; ok {
		clone := *resp
		return &clone, nil
	}
	return nil, fmt.Errorf("no mock response for %s", url)
}

// WasURLCalled reports whether url was requested at least once.
func (m *MockClient) WasURLCalled(url string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, req := range m.requests {
		if req.URL == url {
			return true
		}
	}
	return false
}

// LastRequest returns the most recent request, if any.
func (m *MockClient) LastRequest() (Request, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		return Request{}, false
	}
	return m.requests[len(m.requests)-1], true
}

// Requests returns a copy of every recorded request.
func (m *MockClient) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.requests))
	copy(out, m.requests)
	return out
}
