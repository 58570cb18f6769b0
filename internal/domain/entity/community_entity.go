package entity

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// CommunityNameMaxLen bounds Community.Name in characters.
const CommunityNameMaxLen = 50

// Community is a group users can join. Name is unique across communities.
type Community struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Logo string `json:"logo,omitempty"`
}

func (c *Community) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return errors.New("name is required")
	}
	if utf8.RuneCountInString(c.Name) > CommunityNameMaxLen {
		return errors.New("name must be at most 50 characters long")
	}
	return nil
}

func (c *Community) Clone() *Community {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}

// LeaderboardEntry is one row of the community ranking. It is computed on
// demand and never stored.
type LeaderboardEntry struct {
	CommunityID string `json:"communityId"`
	TotalPoints int    `json:"totalPoints"`
	Logo        string `json:"logo"`
	Name        string `json:"name"`
	UserCount   int    `json:"userCount"`
}
