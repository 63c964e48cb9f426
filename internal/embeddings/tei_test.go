package embeddings

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTEITestServer(t *testing.T, dimension int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/embed", r.URL.Path)

		var req teiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		count := 1
		if inputs, ok := req.Inputs.([]interface{}); ok {
			count = len(inputs)
		}
		vectors := make([][]float32, count)
		for i := range vectors {
			vectors[i] = make([]float32, dimension)
			vectors[i][0] = 1
		}
		require.NoError(t, json.NewEncoder(w).Encode(vectors))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestTEIService_EmbedDocuments(t *testing.T) {
	srv := newTEITestServer(t, 4)
	svc, err := NewTEIService(Config{BaseURL: srv.URL})
	require.NoError(t, err)

	vectors, err := svc.EmbedDocuments(context.Background(), []string{"one", "two"})
	require.NoError(t, err)
	require.Len(t, vectors, 2)
	assert.Len(t, vectors[0], 4)
}

func TestTEIService_EmbedQuery(t *testing.T) {
	srv := newTEITestServer(t, 4)
	svc, err := NewTEIService(Config{BaseURL: srv.URL})
	require.NoError(t, err)

	vector, err := svc.EmbedQuery(context.Background(), "query")
	require.NoError(t, err)
	assert.Len(t, vector, 4)
}

func TestTEIService_EmptyInput(t *testing.T) {
	svc, err := NewTEIService(Config{BaseURL: "http://localhost:0"})
	require.NoError(t, err)

	_, err = svc.EmbedDocuments(context.Background(), nil)
	assert.ErrorIs(t, err, ErrEmptyInput)

	_, err = svc.EmbedQuery(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestTEIService_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	svc, err := NewTEIService(Config{BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = svc.EmbedQuery(context.Background(), "query")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestTEIService_ContextCancellation(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	t.Cleanup(func() {
		close(block)
		srv.Close()
	})

	svc, err := NewTEIService(Config{BaseURL: srv.URL})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = svc.EmbedQuery(ctx, "query")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestConfig_Validate(t *testing.T) {
	assert.ErrorIs(t, Config{}.Validate(), ErrInvalidConfig)
	assert.ErrorIs(t, Config{BaseURL: "http://x", Provider: "bogus"}.Validate(), ErrInvalidConfig)
	assert.NoError(t, Config{BaseURL: "http://x"}.Validate())
	assert.NoError(t, Config{BaseURL: "http://x", Provider: "tei"}.Validate())
}

// countingEmbedder tracks the level of concurrent calls.
type countingEmbedder struct {
	mu      sync.Mutex
	current int
	peak    int
	release chan struct{}
}

func (c *countingEmbedder) enter() {
	c.mu.Lock()
	c.current++
	if c.current > c.peak {
		c.peak = c.current
	}
	c.mu.Unlock()
	<-c.release
	c.mu.Lock()
	c.current--
	c.mu.Unlock()
}

func (c *countingEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	c.enter()
	return make([][]float32, len(texts)), nil
}

func (c *countingEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	c.enter()
	return []float32{1}, nil
}

func TestLimit_BoundsConcurrency(t *testing.T) {
	inner := &countingEmbedder{release: make(chan struct{})}
	embedder := Limit(inner, 2)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = embedder.EmbedQuery(context.Background(), "q")
		}()
	}

	// Let goroutines pile up against the semaphore, then drain.
	time.Sleep(100 * time.Millisecond)
	close(inner.release)
	wg.Wait()

	inner.mu.Lock()
	defer inner.mu.Unlock()
	assert.LessOrEqual(t, inner.peak, 2)
	assert.Positive(t, inner.peak)
}

func TestLimit_CancellationWhileWaiting(t *testing.T) {
	inner := &countingEmbedder{release: make(chan struct{})}
	embedder := Limit(inner, 1)

	// Occupy the only slot.
	go func() { _, _ = embedder.EmbedQuery(context.Background(), "hold") }()
	time.Sleep(50 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := embedder.EmbedQuery(ctx, "blocked")
	assert.ErrorIs(t, err, context.Canceled)

	close(inner.release)
}
