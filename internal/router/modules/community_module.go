package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-community-leaderboard/internal/interface/http"
)

type CommunityModule struct {
	Handler *handlers.CommunityHandler
	Limit   gin.HandlerFunc
}

func NewCommunityModule(h *handlers.CommunityHandler, limit gin.HandlerFunc) *CommunityModule {
	return &CommunityModule{Handler: h, Limit: limit}
}

func (m *CommunityModule) Register(rg *gin.RouterGroup) {
	rg.GET("/community", m.Handler.List)
	rg.GET("/community/leaderboard", m.Handler.Leaderboard)
	rg.GET("/community/search", m.Handler.Search)
	rg.GET("/community/:id", m.Handler.Get)

	w := rg.Group("/community")
	if m.Limit != nil {
		w.Use(m.Limit)
	}
	{
		w.POST("", m.Handler.Create)
		w.PUT("/:id/logo", m.Handler.UploadLogo)
	}
}
