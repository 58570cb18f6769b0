package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-community-leaderboard/internal/interface/http"
)

// UserModule wires user routes.
// Public reads: GET /user, GET /user/:id
// Rate-limited writes: registration, experience awards, picture upload, join/leave
type UserModule struct {
	Handler *handlers.UserHandler
	Limit   gin.HandlerFunc
}

func NewUserModule(h *handlers.UserHandler, limit gin.HandlerFunc) *UserModule {
	return &UserModule{Handler: h, Limit: limit}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	rg.GET("/user", m.Handler.List)
	rg.GET("/user/:id", m.Handler.Get)

	w := rg.Group("/user")
	if m.Limit != nil {
		w.Use(m.Limit)
	}
	{
		w.POST("", m.Handler.Register)
		w.POST("/:id/experience", m.Handler.AwardExperience)
		w.PUT("/:id/picture", m.Handler.UploadPicture)
		w.POST("/:id/join/:communityId", m.Handler.Join)
		w.DELETE("/:id/leave", m.Handler.Leave)
	}
}
