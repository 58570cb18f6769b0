package application

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-community-leaderboard/internal/domain/entity"
	repo "github.com/oksasatya/go-community-leaderboard/internal/domain/repository"
)

const (
	defaultSearchSize = 10
	maxSearchSize     = 50
)

type CommunityService struct {
	Communities repo.CommunityRepository
	Uploader    ObjectUploader
	Cache       *LeaderboardCache
	Logger      *logrus.Logger
	ES          *elasticsearch.Client
	ESIndex     string
}

func NewCommunityService(communities repo.CommunityRepository, uploader ObjectUploader, cache *LeaderboardCache, logger *logrus.Logger, es *elasticsearch.Client, esIndex string) *CommunityService {
	return &CommunityService{
		Communities: communities,
		Uploader:    uploader,
		Cache:       cache,
		Logger:      logger,
		ES:          es,
		ESIndex:     esIndex,
	}
}

type CreateCommunityInput struct {
	Name string
	Logo string
}

func (s *CommunityService) Create(ctx context.Context, in CreateCommunityInput) (*entity.Community, error) {
	a := NewCommunityAccessor(s.Communities).Construct(entity.Community{Name: in.Name, Logo: in.Logo})
	if err := a.Save(ctx); err != nil {
		return nil, err
	}
	c, _ := a.Object()
	_ = s.indexCommunity(ctx, c)
	return c, nil
}

func (s *CommunityService) Get(ctx context.Context, id string) (*entity.Community, error) {
	a := NewCommunityAccessor(s.Communities)
	if err := a.LoadByID(ctx, id); err != nil {
		return nil, err
	}
	return a.Object()
}

func (s *CommunityService) List(ctx context.Context) ([]entity.Community, error) {
	list, err := s.Communities.List(ctx)
	if err != nil {
		return nil, storageFailure(err)
	}
	if list == nil {
		list = []entity.Community{}
	}
	return list, nil
}

// Leaderboard serves the cached ranking when present and recomputes it
// otherwise.
func (s *CommunityService) Leaderboard(ctx context.Context) ([]entity.LeaderboardEntry, error) {
	if rows, ok := s.Cache.Get(ctx); ok {
		return rows, nil
	}
	rows, err := s.Communities.Leaderboard(ctx)
	if err != nil {
		return nil, storageFailure(err)
	}
	if rows == nil {
		rows = []entity.LeaderboardEntry{}
	}
	s.Cache.Set(ctx, rows)
	return rows, nil
}

// UploadLogo stores the image under logos/<id>/ and points the community
// at it.
func (s *CommunityService) UploadLogo(ctx context.Context, id string, r io.Reader, filename, contentType string) (*entity.Community, error) {
	a := NewCommunityAccessor(s.Communities)
	if err := a.LoadByID(ctx, id); err != nil {
		return nil, err
	}
	url, err := upload(ctx, s.Uploader, "logos", id, r, filename, contentType)
	if err != nil {
		return nil, err
	}
	if err := a.SetLogo(url); err != nil {
		return nil, err
	}
	if err := a.Save(ctx); err != nil {
		return nil, err
	}
	c, _ := a.Object()
	s.Cache.Invalidate(ctx)
	_ = s.indexCommunity(ctx, c)
	return c, nil
}

func (s *CommunityService) indexCommunity(ctx context.Context, c *entity.Community) error {
	if s.ES == nil || s.ESIndex == "" {
		return nil
	}
	b, err := json.Marshal(c)
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{Index: s.ESIndex, DocumentID: c.ID, Body: strings.NewReader(string(b)), Refresh: "false"}
	cctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(cctx, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("community_id", c.ID).Warn("es index failed")
		}
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("community_id", c.ID).Warn("es index response error")
	}
	return nil
}

// Search runs a match query on community names. Size outside 1..50 falls
// back to 10. Without Elasticsearch it returns no hits.
func (s *CommunityService) Search(ctx context.Context, q string, size int) ([]entity.Community, error) {
	if s.ES == nil || s.ESIndex == "" {
		return []entity.Community{}, nil
	}
	if size <= 0 || size > maxSearchSize {
		size = defaultSearchSize
	}
	query := map[string]any{
		"query": map[string]any{
			"match": map[string]any{
				"name": map[string]any{"query": q, "fuzziness": "AUTO"},
			},
		},
		"size": size,
	}
	b, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}

	cctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(
		s.ES.Search.WithContext(cctx),
		s.ES.Search.WithIndex(s.ESIndex),
		s.ES.Search.WithBody(strings.NewReader(string(b))),
	)
	if err != nil {
		return nil, fmt.Errorf("es search: %w", err)
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, fmt.Errorf("es search: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string           `json:"_id"`
				Source entity.Community `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode es response: %w", err)
	}

	out := make([]entity.Community, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		c := h.Source
		if c.ID == "" {
			c.ID = h.ID
		}
		out = append(out, c)
	}
	return out, nil
}
