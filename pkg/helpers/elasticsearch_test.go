package helpers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type indexServer struct {
	mu      sync.Mutex
	exists  bool
	created []string
}

func (s *indexServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")
	s.mu.Lock()
	defer s.mu.Unlock()
	switch r.Method {
	case http.MethodHead:
		if s.exists {
			w.WriteHeader(http.StatusOK)
		} else {
			w.WriteHeader(http.StatusNotFound)
		}
	case http.MethodPut:
		b, _ := io.ReadAll(r.Body)
		s.created = append(s.created, string(b))
		s.exists = true
		_, _ = io.WriteString(w, `{"acknowledged":true}`)
	default:
		_, _ = io.WriteString(w, `{"version":{"number":"8.19.0"}}`)
	}
}

func TestEnsureCommunityIndex(t *testing.T) {
	fake := &indexServer{}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	es, err := NewESClient([]string{srv.URL}, "", "")
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, EnsureCommunityIndex(ctx, es, "communities"))
	require.NoError(t, EnsureCommunityIndex(ctx, es, "communities"))

	fake.mu.Lock()
	defer fake.mu.Unlock()
	require.Len(t, fake.created, 1, "second call sees the existing index")
	assert.Contains(t, fake.created[0], `"name"`)
}
