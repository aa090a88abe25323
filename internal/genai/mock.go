package genai

import (
	"context"
	"io"
	"sync"
)

// MockGenerator is a scripted Generator for tests and local debugging. It
// never calls an external model. TextFn returns the full text a stream
// should deliver; it is chunked into increments of ChunkSize runes (whole
// text at once when zero) so callers can be exercised against arbitrary
// delta granularity.
type MockGenerator struct {
	TextFn    func(req TextRequest) (string, error)
	ImageFn   func(req ImageRequest) (string, error)
	ChunkSize int

	mu         sync.Mutex
	textCalls  []TextRequest
	imageCalls []ImageRequest
}

func (m *MockGenerator) StreamText(_ context.Context, req TextRequest) (Stream, error) {
	m.mu.Lock()
	m.textCalls = append(m.textCalls, req)
	m.mu.Unlock()

	text, err := m.TextFn(req)
	if err != nil {
		return nil, err
	}
	return &mockStream{chunks: chunk(text, m.ChunkSize)}, nil
}

func (m *MockGenerator) Image(_ context.Context, req ImageRequest) (string, error) {
	m.mu.Lock()
	m.imageCalls = append(m.imageCalls, req)
	m.mu.Unlock()

	if m.ImageFn == nil {
		return "", nil
	}
	return m.ImageFn(req)
}

// TextCalls returns the structured-text requests seen so far.
func (m *MockGenerator) TextCalls() []TextRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]TextRequest(nil), m.textCalls...)
}

// ImageCalls returns the image requests seen so far.
func (m *MockGenerator) ImageCalls() []ImageRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ImageRequest(nil), m.imageCalls...)
}

func chunk(text string, size int) []string {
	if size <= 0 {
		return []string{text}
	}
	runes := []rune(text)
	var chunks []string
	for start := 0; start < len(runes); start += size {
		end := min(start+size, len(runes))
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}

type mockStream struct {
	chunks []string
	next   int
	closed bool
}

func (s *mockStream) Recv() (string, error) {
	if s.next >= len(s.chunks) {
		return "", io.EOF
	}
	delta := s.chunks[s.next]
	s.next++
	return delta, nil
}

func (s *mockStream) Close() error {
	s.closed = true
	return nil
}
