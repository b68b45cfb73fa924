package llm

import (
	"context"
	"encoding/json"
	"sync"
)

// MockResponse is a canned response for the MockProvider.
type MockResponse struct {
	Content json.RawMessage
	Usage   Usage
	Err     error
}

// MockProvider is a deterministic Provider for tests. Responses queued
// for a purpose with OnPurpose are served to calls carrying that purpose;
// everything else is served from the shared FIFO queue.
type MockProvider struct {
	mu        sync.Mutex
	responses []MockResponse
	byPurpose map[string][]MockResponse

	Calls    []Request
	Purposes []string
}

// NewMockProvider creates a MockProvider with the given canned responses.
func NewMockProvider(responses ...MockResponse) *MockProvider {
	return &MockProvider{responses: responses, byPurpose: map[string][]MockResponse{}}
}

// Generate returns the next canned response or ErrProviderUnavailable if
// nothing is queued for the call.
func (m *MockProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	purpose := PurposeFrom(ctx)
	m.Calls = append(m.Calls, req)
	m.Purposes = append(m.Purposes, purpose)

	resp, ok := m.next(purpose)
	if !ok {
		return nil, &ErrProviderUnavailable{}
	}
	if resp.Err != nil {
		return nil, resp.Err
	}

	return &Response{
		Content:    resp.Content,
		Usage:      resp.Usage,
		Model:      "mock",
		StopReason: stopEnd,
	}, nil
}

func (m *MockProvider) next(purpose string) (MockResponse, bool) {
	if q := m.byPurpose[purpose]; len(q) > 0 {
		m.byPurpose[purpose] = q[1:]
		return q[0], true
	}
	if len(m.responses) == 0 {
		return MockResponse{}, false
	}
	resp := m.responses[0]
	m.responses = m.responses[1:]
	return resp, true
}

// ModelID returns "mock".
func (m *MockProvider) ModelID() string {
	return "mock"
}

// AddResponse appends a canned response to the shared queue.
func (m *MockProvider) AddResponse(resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, resp)
}

// OnPurpose queues responses for calls labelled with purpose.
func (m *MockProvider) OnPurpose(purpose string, resps ...MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byPurpose[purpose] = append(m.byPurpose[purpose], resps...)
}

// CallCount returns the number of Generate calls made.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
