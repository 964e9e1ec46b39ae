package gateway

import (
	"context"
	"sync"

	"github.com/ltrain81/TwelveLabs-on-bedrock-demo/internal/app/model"
)

// MockGateway is a scriptable Gateway for tests. Each operation either
// returns the configured value or the configured error; asynchronous status
// checks step through their status slices one call at a time, sticking on
// the last entry.
type MockGateway struct {
	mu sync.Mutex

	InvokeResult UnderstandingResult
	InvokeErr    error

	UnderstandingStatuses []UnderstandingStatus
	understandingCalls    int
	CheckUnderstandingErr error

	StartHandle string
	StartErr    error

	EmbeddingStatuses []EmbeddingStatus
	embeddingCalls    int
	CheckEmbeddingErr error

	TextVector []float32
	TextErr    error
	EmbedCalls int
}

// NewMockGateway returns a mock with a deterministic 4-value text vector.
func NewMockGateway() *MockGateway {
	return &MockGateway{
		StartHandle: "arn:mock:invocation/embed-1",
		TextVector:  []float32{0.1, 0.2, 0.3, 0.4},
	}
}

func (m *MockGateway) Invoke(_ context.Context, _ model.VideoReference, _ string) (UnderstandingResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.InvokeErr != nil {
		return UnderstandingResult{}, m.InvokeErr
	}
	return m.InvokeResult, nil
}

func (m *MockGateway) CheckUnderstanding(_ context.Context, _ string) (UnderstandingStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CheckUnderstandingErr != nil {
		return UnderstandingStatus{}, m.CheckUnderstandingErr
	}
	if len(m.UnderstandingStatuses) == 0 {
		return UnderstandingStatus{Phase: PhaseRunning}, nil
	}
	i := m.understandingCalls
	if i >= len(m.UnderstandingStatuses) {
		i = len(m.UnderstandingStatuses) - 1
	}
	m.understandingCalls++
	return m.UnderstandingStatuses[i], nil
}

func (m *MockGateway) StartVideoEmbedding(_ context.Context, _ model.VideoReference, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.StartErr != nil {
		return "", m.StartErr
	}
	return m.StartHandle, nil
}

func (m *MockGateway) CheckVideoEmbedding(_ context.Context, _ string) (EmbeddingStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CheckEmbeddingErr != nil {
		return EmbeddingStatus{}, m.CheckEmbeddingErr
	}
	if len(m.EmbeddingStatuses) == 0 {
		return EmbeddingStatus{Phase: PhaseRunning}, nil
	}
	i := m.embeddingCalls
	if i >= len(m.EmbeddingStatuses) {
		i = len(m.EmbeddingStatuses) - 1
	}
	m.embeddingCalls++
	return m.EmbeddingStatuses[i], nil
}

func (m *MockGateway) EmbedText(_ context.Context, _ string) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.EmbedCalls++
	if m.TextErr != nil {
		return nil, m.TextErr
	}
	return m.TextVector, nil
}

func (m *MockGateway) ProviderInfo() ProviderInfo {
	return ProviderInfo{Name: "mock", Model: "mock-embed", Dimension: len(m.TextVector)}
}
