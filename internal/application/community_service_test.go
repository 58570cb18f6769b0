package application_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-community-leaderboard/internal/application"
	"github.com/oksasatya/go-community-leaderboard/internal/domain/entity"
	"github.com/oksasatya/go-community-leaderboard/internal/testutil"
	"github.com/oksasatya/go-community-leaderboard/pkg/helpers"
)

// fakeES answers just enough of the Elasticsearch API for indexing and search.
type fakeES struct {
	mu       sync.Mutex
	indexed  map[string]entity.Community
	searches []map[string]any
}

func newFakeES(t *testing.T) (*fakeES, *httptest.Server) {
	t.Helper()
	f := &fakeES{indexed: map[string]entity.Community{}}
	srv := httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeES) serve(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")
	body, _ := io.ReadAll(r.Body)

	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case strings.HasSuffix(r.URL.Path, "/_search"):
		var q map[string]any
		_ = json.Unmarshal(body, &q)
		f.searches = append(f.searches, q)

		type hit struct {
			ID     string           `json:"_id"`
			Source entity.Community `json:"_source"`
		}
		hits := make([]hit, 0, len(f.indexed))
		for id, c := range f.indexed {
			hits = append(hits, hit{ID: id, Source: c})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"hits": map[string]any{"hits": hits}})
	case strings.Contains(r.URL.Path, "/_doc/"):
		var c entity.Community
		_ = json.Unmarshal(body, &c)
		f.indexed[c.ID] = c
		_, _ = io.WriteString(w, `{"result":"created"}`)
	default:
		_, _ = io.WriteString(w, `{"version":{"number":"8.19.0","build_flavor":"default"},"tagline":"You Know, for Search"}`)
	}
}

func newCommunityService(t *testing.T, f *fixture, up application.ObjectUploader) *application.CommunityService {
	t.Helper()
	logger, _ := test.NewNullLogger()
	return application.NewCommunityService(f.communities, up, nil, logger, nil, "")
}

func TestCommunityService_CreateGetList(t *testing.T) {
	f := newFixture(t)
	svc := newCommunityService(t, f, nil)
	ctx := context.Background()

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)

	c, err := svc.Create(ctx, application.CreateCommunityInput{Name: "Gophers", Logo: "https://cdn.test/g.png"})
	require.NoError(t, err)
	require.True(t, entity.ValidIDs(c.ID))

	_, err = svc.Create(ctx, application.CreateCommunityInput{Name: "Gophers"})
	assert.ErrorIs(t, err, application.ErrDuplicateName)
	_, err = svc.Create(ctx, application.CreateCommunityInput{})
	assert.ErrorIs(t, err, application.ErrInvalidAggregate)

	got, err := svc.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c, got)

	_, err = svc.Get(ctx, "not-an-id")
	assert.ErrorIs(t, err, application.ErrInvalidIdentifier)
	_, err = svc.Get(ctx, entity.NewID())
	assert.ErrorIs(t, err, application.ErrCommunityNotFound)

	list, err = svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []entity.Community{*c}, list)
}

func TestCommunityService_Leaderboard(t *testing.T) {
	f := newFixture(t)
	svc := newCommunityService(t, f, nil)
	ctx := context.Background()

	rows, err := svc.Leaderboard(ctx)
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)

	a, b := f.community(t, "A"), f.community(t, "B")
	f.community(t, "C")
	f.user(t, testutil.NewUserBuilder().WithCommunity(a.ID).WithPoints(10).Build())
	f.user(t, testutil.NewUserBuilder().WithCommunity(a.ID).WithPoints(20).Build())
	f.user(t, testutil.NewUserBuilder().WithCommunity(b.ID).WithPoints(5).Build())

	rows, err = svc.Leaderboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, []entity.LeaderboardEntry{
		{CommunityID: a.ID, TotalPoints: 30, Logo: a.Logo, Name: "A", UserCount: 2},
		{CommunityID: b.ID, TotalPoints: 5, Logo: b.Logo, Name: "B", UserCount: 1},
	}, rows)

	again, err := svc.Leaderboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, rows, again)

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = svc.Leaderboard(canceled)
	assert.ErrorIs(t, err, application.ErrStorageFailure)
}

func TestCommunityService_UploadLogo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.community(t, "Gophers")

	up := &fakeUploader{}
	svc := newCommunityService(t, f, up)
	got, err := svc.UploadLogo(ctx, c.ID, strings.NewReader("svg"), "logo.svg", "image/svg+xml")
	require.NoError(t, err)
	require.Len(t, up.paths, 1)
	assert.True(t, strings.HasPrefix(up.paths[0], "logos/"+c.ID+"/"), up.paths[0])
	assert.Equal(t, "https://cdn.test/"+up.paths[0], got.Logo)

	stored, err := f.store.Communities().GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, got.Logo, stored.Logo)

	_, err = newCommunityService(t, f, nil).UploadLogo(ctx, c.ID, strings.NewReader("svg"), "logo.svg", "image/svg+xml")
	assert.ErrorIs(t, err, application.ErrStorageNotConfigured)
}

func TestCommunityService_SearchWithoutElasticsearch(t *testing.T) {
	f := newFixture(t)
	svc := newCommunityService(t, f, nil)

	hits, err := svc.Search(context.Background(), "go", 5)
	require.NoError(t, err)
	assert.NotNil(t, hits)
	assert.Empty(t, hits)
}

func TestCommunityService_IndexAndSearch(t *testing.T) {
	f := newFixture(t)
	es, srv := newFakeES(t)
	client, err := helpers.NewESClient([]string{srv.URL}, "", "")
	require.NoError(t, err)

	logger, _ := test.NewNullLogger()
	svc := application.NewCommunityService(f.communities, nil, nil, logger, client, "communities")
	ctx := context.Background()

	c, err := svc.Create(ctx, application.CreateCommunityInput{Name: "Gophers", Logo: "https://cdn.test/g.png"})
	require.NoError(t, err)

	es.mu.Lock()
	assert.Equal(t, *c, es.indexed[c.ID])
	es.mu.Unlock()

	tests := []struct {
		name     string
		size     int
		wantSize float64
	}{
		{"explicit size", 5, 5},
		{"zero falls back", 0, 10},
		{"too large falls back", 51, 10},
		{"upper bound", 50, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hits, err := svc.Search(ctx, "gophers", tt.size)
			require.NoError(t, err)
			assert.Equal(t, []entity.Community{*c}, hits)

			es.mu.Lock()
			last := es.searches[len(es.searches)-1]
			es.mu.Unlock()
			assert.Equal(t, tt.wantSize, last["size"])
		})
	}
}
