package router

import (
	"time"

	"github.com/oksasatya/go-community-leaderboard/internal/application"
	"github.com/oksasatya/go-community-leaderboard/internal/container"
	handlers "github.com/oksasatya/go-community-leaderboard/internal/interface/http"
	"github.com/oksasatya/go-community-leaderboard/internal/interface/middleware"
	"github.com/oksasatya/go-community-leaderboard/internal/router/modules"
	"github.com/oksasatya/go-community-leaderboard/pkg/helpers"
)

type Services struct {
	Users       *application.UserService
	Communities *application.CommunityService
	Membership  *application.MembershipService
}

func buildServices() Services {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	users, communities := container.GetUserRepo(), container.GetCommunityRepo()

	cache := application.NewLeaderboardCache(container.GetRedis(), cfg.LeaderboardCacheTTL, logger)

	// interfaces stay nil unless the client exists
	var uploader application.ObjectUploader
	if gcs := container.GetGCS(); gcs != nil && cfg.GCSBucket != "" {
		uploader = helpers.NewGCSUploader(gcs, cfg.GCSBucket)
	}
	var events application.EventPublisher
	if pub := container.GetRabbitPub(); pub != nil {
		events = pub
	}

	return Services{
		Users:       application.NewUserService(users, communities, uploader, cache, logger),
		Communities: application.NewCommunityService(communities, uploader, cache, logger, container.GetES(), cfg.ESCommunitiesIndex),
		Membership:  application.NewMembershipService(users, communities, cache, events, logger),
	}
}

// InitModules builds services from the container and registers every module.
// Call once during startup, after the container is populated.
func InitModules(r *Registry) Services {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	svc := buildServices()

	var allow middleware.AllowFunc
	if cfg.RateLimitSkipPrivate {
		allow = middleware.AllowPrivateIP()
	}
	limit := middleware.RateLimit(container.GetRedis(), cfg.RateLimitPerMinute, time.Minute, middleware.KeyByRoute(), allow)

	r.Add(modules.NewHealthModule(handlers.NewHealthHandler(container.GetStore())))
	r.Add(modules.NewUserModule(handlers.NewUserHandler(svc.Users, svc.Membership, logger), limit))
	r.Add(modules.NewCommunityModule(handlers.NewCommunityHandler(svc.Communities, logger), limit))
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule(middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByIP(), nil)))
	}
	return svc
}
