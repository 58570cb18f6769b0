package validation_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"

	"github.com/oksasatya/go-community-leaderboard/pkg/validation"
)

type joinRequest struct {
	CommunityID string `json:"communityId" binding:"required,objectid"`
	Points      int    `json:"points" binding:"nonzero"`
	Password    string `json:"password" binding:"omitempty,pwd"`
	Name        string `json:"name" binding:"omitempty,communityname"`
}

func TestToDetails(t *testing.T) {
	validation.Init()

	tests := []struct {
		name string
		req  joinRequest
		want map[string]string
	}{
		{
			name: "valid",
			req:  joinRequest{CommunityID: "507f1f77bcf86cd799439011", Points: 5},
		},
		{
			name: "every custom tag",
			req:  joinRequest{CommunityID: "xyz", Points: 0, Password: "short", Name: string(make([]byte, 51))},
			want: map[string]string{
				"communityId": "must be a 24 character hex id",
				"points":      "must not be zero",
				"password":    "min length 8",
				"name":        "must be at most 50 characters long",
			},
		},
		{
			name: "required",
			req:  joinRequest{Points: -1},
			want: map[string]string{"communityId": "is required"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := binding.Validator.ValidateStruct(&tt.req)
			if tt.want == nil {
				assert.NoError(t, err)
				assert.Nil(t, validation.ToDetails(err))
				return
			}
			assert.Equal(t, tt.want, validation.ToDetails(err))
		})
	}
}

func TestToDetails_JSONErrors(t *testing.T) {
	var v joinRequest
	err := json.Unmarshal([]byte(`{"points":"many"}`), &v)
	assert.Equal(t, map[string]string{"payload": "invalid json"}, validation.ToDetails(err))

	err = json.Unmarshal([]byte(`{`), &v)
	assert.Equal(t, map[string]string{"payload": "invalid json"}, validation.ToDetails(err))

	assert.Equal(t, map[string]string{"payload": "invalid payload"}, validation.ToDetails(errors.New("EOF")))
}
