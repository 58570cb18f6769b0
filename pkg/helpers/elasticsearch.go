package helpers

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// NewESClient creates an Elasticsearch client with short timeouts and optional basic auth.
func NewESClient(addrs []string, username, password string) (*elasticsearch.Client, error) {
	cfg := elasticsearch.Config{
		Addresses:  addrs,
		Username:   username,
		Password:   password,
		MaxRetries: 2,
		Transport: &http.Transport{
			MaxIdleConnsPerHost:   10,
			ResponseHeaderTimeout: 5 * time.Second,
			TLSClientConfig:       &tls.Config{MinVersion: tls.VersionTLS12},
			DialContext:           (&net.Dialer{Timeout: 5 * time.Second}).DialContext,
		},
	}
	return elasticsearch.NewClient(cfg)
}

// communityMapping indexes names for fuzzy match and keeps logos unindexed.
const communityMapping = `{
  "mappings": {
    "properties": {
      "id":   {"type": "keyword"},
      "name": {"type": "text", "fields": {"raw": {"type": "keyword"}}},
      "logo": {"type": "keyword", "index": false}
    }
  }
}`

// EnsureCommunityIndex creates index with the community mapping unless it exists.
func EnsureCommunityIndex(ctx context.Context, es *elasticsearch.Client, index string) error {
	exists, err := esapi.IndicesExistsRequest{Index: []string{index}}.Do(ctx, es)
	if err != nil {
		return fmt.Errorf("check index %s: %w", index, err)
	}
	_ = exists.Body.Close()
	if exists.StatusCode == http.StatusOK {
		return nil
	}

	res, err := esapi.IndicesCreateRequest{Index: index, Body: strings.NewReader(communityMapping)}.Do(ctx, es)
	if err != nil {
		return fmt.Errorf("create index %s: %w", index, err)
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("create index %s: %s", index, res.Status())
	}
	return nil
}
