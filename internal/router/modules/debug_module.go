package modules

import (
	"expvar"

	"github.com/gin-gonic/gin"
)

// DebugModule exposes expvar counters (membership_joins, membership_leaves).
type DebugModule struct {
	Limit gin.HandlerFunc
}

func NewDebugModule(limit gin.HandlerFunc) *DebugModule { return &DebugModule{Limit: limit} }

func (m *DebugModule) Register(rg *gin.RouterGroup) {
	handlers := []gin.HandlerFunc{gin.WrapH(expvar.Handler())}
	if m.Limit != nil {
		handlers = append([]gin.HandlerFunc{m.Limit}, handlers...)
	}
	rg.GET("/debug/vars", handlers...)
}
