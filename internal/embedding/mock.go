package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"sync"
)

// MockProvider is a deterministic in-process provider for tests and for
// deployments without a real embedding backend wired up yet. Its vectors
// are derived from a content hash and carry no semantic signal. It is
// the provider internal/config's Default() selects until an "http"
// endpoint is configured.
type MockProvider struct {
	mu          sync.Mutex
	dimensions  int
	closeCalled bool
	closeErr    error
	embedErr    error
}

// NewMockProvider creates a mock provider producing D-dimensional,
// unit-norm vectors derived deterministically from text content.
func NewMockProvider(dimensions int) *MockProvider {
	if dimensions <= 0 {
		dimensions = 384
	}
	return &MockProvider{dimensions: dimensions}
}

// SetEmbedError configures Embed to fail, for exercising NetworkError paths.
func (p *MockProvider) SetEmbedError(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.embedErr = err
}

// SetCloseError configures Close to fail.
func (p *MockProvider) SetCloseError(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closeErr = err
}

func (p *MockProvider) Embed(ctx context.Context, texts []string, mode Mode) ([][]float32, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.embedErr != nil {
		return nil, p.embedErr
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = Normalize(hashVector(string(mode)+"\x00"+text, p.dimensions))
	}
	return out, nil
}

func (p *MockProvider) Dimensions() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dimensions
}

func (p *MockProvider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closeCalled = true
	return p.closeErr
}

// IsClosed reports whether Close has been called, for test assertions.
func (p *MockProvider) IsClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closeCalled
}

func hashVector(text string, dimensions int) []float32 {
	hash := sha256.Sum256([]byte(text))
	v := make([]float32, dimensions)
	for j := 0; j < dimensions; j++ {
		offset := (j * 4) % len(hash)
		chunk := make([]byte, 4)
		for k := 0; k < 4; k++ {
			chunk[k] = hash[(offset+k)%len(hash)]
		}
		val := binary.BigEndian.Uint32(chunk)
		v[j] = (float32(val)/float32(1<<32))*2.0 - 1.0
	}
	return v
}
