package container

import (
	"context"

	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-community-leaderboard/config"
	"github.com/oksasatya/go-community-leaderboard/internal/domain/repository"
	"github.com/oksasatya/go-community-leaderboard/pkg/helpers"
)

// app-level container to share constructed components across packages
// Router auto-wires modules from these singletons.

// Store is the selected storage backend, as far as health checks care.
type Store interface {
	Ping(ctx context.Context) error
}

var (
	cfg         *config.Config
	logger      *logrus.Logger
	store       Store
	userRepo    repository.UserRepository
	commRepo    repository.CommunityRepository
	redisClient *redis.Client
	gcsClient   *storage.Client
	rabbitPub   *helpers.RabbitPublisher
	esClient    *elasticsearch.Client
)

func SetConfig(c *config.Config) { cfg = c }
func GetConfig() *config.Config  { return cfg }
func SetLogger(l *logrus.Logger) { logger = l }
func GetLogger() *logrus.Logger  { return logger }

// SetStore registers the backend and the repositories built on it.
func SetStore(s Store, users repository.UserRepository, communities repository.CommunityRepository) {
	store, userRepo, commRepo = s, users, communities
}
func GetStore() Store                                  { return store }
func GetUserRepo() repository.UserRepository           { return userRepo }
func GetCommunityRepo() repository.CommunityRepository { return commRepo }

func SetRedis(r *redis.Client)                { redisClient = r }
func GetRedis() *redis.Client                 { return redisClient }
func SetGCS(s *storage.Client)                { gcsClient = s }
func GetGCS() *storage.Client                 { return gcsClient }
func SetRabbitPub(p *helpers.RabbitPublisher) { rabbitPub = p }
func GetRabbitPub() *helpers.RabbitPublisher  { return rabbitPub }
func SetES(c *elasticsearch.Client)           { esClient = c }
func GetES() *elasticsearch.Client            { return esClient }

// Reset clears every singleton. Tests use it between engines.
func Reset() {
	cfg, logger, store, userRepo, commRepo = nil, nil, nil, nil, nil
	redisClient, gcsClient, rabbitPub, esClient = nil, nil, nil, nil
}
