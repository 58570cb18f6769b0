package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublicURL(t *testing.T) {
	assert.Equal(t,
		"https://storage.googleapis.com/leaderboard-assets/avatars/u1/a.png",
		PublicURL("leaderboard-assets", "avatars/u1/a.png"),
	)
}
