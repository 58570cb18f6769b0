package main

import (
	"context"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"github.com/oksasatya/go-community-leaderboard/config"
	"github.com/oksasatya/go-community-leaderboard/internal/application"
	"github.com/oksasatya/go-community-leaderboard/internal/infrastructure"
	"github.com/oksasatya/go-community-leaderboard/pkg/helpers"
)

type seedUser struct {
	email     string
	community string
	awards    []int
}

var (
	seedCommunities = []application.CreateCommunityInput{
		{Name: "Gophers", Logo: "https://storage.googleapis.com/leaderboard-assets/logos/gophers.png"},
		{Name: "Rustaceans", Logo: "https://storage.googleapis.com/leaderboard-assets/logos/rustaceans.png"},
		{Name: "Pythonistas", Logo: "https://storage.googleapis.com/leaderboard-assets/logos/pythonistas.png"},
	}
	seedUsers = []seedUser{
		{email: "ana@example.com", community: "Gophers", awards: []int{120, 45, 30}},
		{email: "ben@example.com", community: "Gophers", awards: []int{80}},
		{email: "cleo@example.com", community: "Rustaceans", awards: []int{150, 60}},
		{email: "dev@example.com", community: "Pythonistas", awards: []int{25, 25, 25}},
		{email: "eli@example.com", awards: []int{10}},
		{email: "fay@example.com", community: "Rustaceans"},
	}
)

const seedPassword = "password123"

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)
	ctx := context.Background()

	backend, err := infrastructure.Open(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("failed to open %s store: %v", cfg.StoreDriver, err)
	}
	defer func() { _ = backend.Close(ctx) }()

	users := application.NewUserService(backend.Users, backend.Communities, nil, nil, logger)
	communities := application.NewCommunityService(backend.Communities, nil, nil, logger, nil, "")
	membership := application.NewMembershipService(backend.Users, backend.Communities, nil, nil, logger)

	existing, err := communities.List(ctx)
	if err != nil {
		log.Fatalf("failed to list communities: %v", err)
	}
	if len(existing) > 0 {
		fmt.Printf("store already has %d communities; nothing to seed\n", len(existing))
		return
	}

	ids := make(map[string]string, len(seedCommunities))
	for _, in := range seedCommunities {
		c, err := communities.Create(ctx, in)
		if err != nil {
			log.Fatalf("failed to seed community %s: %v", in.Name, err)
		}
		ids[c.Name] = c.ID
		fmt.Printf("seeded community: id=%s name=%s\n", c.ID, c.Name)
	}

	for _, su := range seedUsers {
		u, err := users.Register(ctx, application.RegisterInput{Email: su.email, Password: seedPassword})
		if err != nil {
			log.Fatalf("failed to seed user %s: %v", su.email, err)
		}
		for _, p := range su.awards {
			if _, err := users.AwardExperience(ctx, u.ID, p); err != nil {
				log.Fatalf("failed to award %d to %s: %v", p, su.email, err)
			}
		}
		if su.community != "" {
			if err := membership.Join(ctx, u.ID, ids[su.community]); err != nil {
				log.Fatalf("failed to join %s to %s: %v", su.email, su.community, err)
			}
		}
		fmt.Printf("seeded user: id=%s email=%s community=%s password=%s\n", u.ID, su.email, su.community, seedPassword)
	}

	board, err := communities.Leaderboard(ctx)
	if err != nil {
		log.Fatalf("failed to read leaderboard: %v", err)
	}
	for i, row := range board {
		fmt.Printf("%d. %s points=%d users=%d\n", i+1, row.Name, row.TotalPoints, row.UserCount)
	}
}
