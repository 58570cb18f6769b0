package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-community-leaderboard/internal/application"
	"github.com/oksasatya/go-community-leaderboard/pkg/response"
	"github.com/oksasatya/go-community-leaderboard/pkg/validation"
)

type CommunityHandler struct {
	Communities *application.CommunityService
	Logger      *logrus.Logger
}

func NewCommunityHandler(communities *application.CommunityService, logger *logrus.Logger) *CommunityHandler {
	return &CommunityHandler{Communities: communities, Logger: logger}
}

type createCommunityRequest struct {
	Name string `json:"name" binding:"required,communityname"`
	Logo string `json:"logo" binding:"omitempty,url"`
}

type searchQuery struct {
	Q    string `form:"q" binding:"required"`
	Size int    `form:"size" binding:"omitempty,min=1,max=50"`
}

func (h *CommunityHandler) List(c *gin.Context) {
	list, err := h.Communities.List(c.Request.Context())
	if err != nil {
		failWith(c, h.Logger, err, http.StatusInternalServerError, msgInternal)
		return
	}
	response.JSON(c, http.StatusOK, list)
}

func (h *CommunityHandler) Get(c *gin.Context) {
	community, err := h.Communities.Get(c.Request.Context(), c.Param("id"))
	switch {
	case err == nil:
		response.JSON(c, http.StatusOK, community)
	case errors.Is(err, application.ErrInvalidIdentifier), errors.Is(err, application.ErrCommunityNotFound):
		response.Error(c, http.StatusNotFound, "Community not found", nil)
	default:
		fail(c, h.Logger, err)
	}
}

func (h *CommunityHandler) Leaderboard(c *gin.Context) {
	rows, err := h.Communities.Leaderboard(c.Request.Context())
	if err != nil {
		failWith(c, h.Logger, err, http.StatusInternalServerError, msgInternal)
		return
	}
	response.JSON(c, http.StatusOK, rows)
}

func (h *CommunityHandler) Create(c *gin.Context) {
	var req createCommunityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid payload", validation.ToDetails(err))
		return
	}
	community, err := h.Communities.Create(c.Request.Context(), application.CreateCommunityInput{Name: req.Name, Logo: req.Logo})
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.JSON(c, http.StatusCreated, community)
}

func (h *CommunityHandler) UploadLogo(c *gin.Context) {
	f, fh, ok := openImage(c)
	if !ok {
		return
	}
	defer func() { _ = f.Close() }()

	community, err := h.Communities.UploadLogo(c.Request.Context(), c.Param("id"), f, fh.Filename, fh.Header.Get("Content-Type"))
	if err != nil {
		if errors.Is(err, application.ErrInvalidIdentifier) {
			response.Error(c, http.StatusBadRequest, "Invalid community ID", nil)
			return
		}
		fail(c, h.Logger, err)
		return
	}
	response.JSON(c, http.StatusOK, community)
}

// Search proxies a name query to the search index.
func (h *CommunityHandler) Search(c *gin.Context) {
	var q searchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid query", validation.ToDetails(err))
		return
	}
	hits, err := h.Communities.Search(c.Request.Context(), q.Q, q.Size)
	if err != nil {
		failWith(c, h.Logger, err, http.StatusBadGateway, "Search unavailable")
		return
	}
	response.JSON(c, http.StatusOK, hits)
}
