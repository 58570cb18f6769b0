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

type UserHandler struct {
	Users      *application.UserService
	Membership *application.MembershipService
	Logger     *logrus.Logger
}

func NewUserHandler(users *application.UserService, membership *application.MembershipService, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Users: users, Membership: membership, Logger: logger}
}

type registerRequest struct {
	Email          string `json:"email" binding:"required,email"`
	Password       string `json:"password" binding:"required,pwd,max=72"`
	ProfilePicture string `json:"profilePicture" binding:"omitempty,url"`
}

type awardRequest struct {
	Points int `json:"points" binding:"nonzero"`
}

// List returns every user with awards and their point totals.
func (h *UserHandler) List(c *gin.Context) {
	rows, err := h.Users.ListWithPoints(c.Request.Context())
	if err != nil {
		failWith(c, h.Logger, err, http.StatusInternalServerError, msgInternal)
		return
	}
	response.JSON(c, http.StatusOK, rows)
}

// Get returns the stored user. ?populate=community resolves the community.
func (h *UserHandler) Get(c *gin.Context) {
	id := c.Param("id")
	ctx := c.Request.Context()

	var (
		body any
		err  error
	)
	if c.Query("populate") == "community" {
		body, err = h.Users.GetPopulated(ctx, id)
	} else {
		body, err = h.Users.Get(ctx, id)
	}
	switch {
	case err == nil:
		response.JSON(c, http.StatusOK, body)
	case errors.Is(err, application.ErrInvalidIdentifier):
		response.Error(c, http.StatusNotFound, "Invalid user ID", nil)
	default:
		fail(c, h.Logger, err)
	}
}

func (h *UserHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid payload", validation.ToDetails(err))
		return
	}
	u, err := h.Users.Register(c.Request.Context(), application.RegisterInput{
		Email:          req.Email,
		Password:       req.Password,
		ProfilePicture: req.ProfilePicture,
	})
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.JSON(c, http.StatusCreated, u)
}

func (h *UserHandler) AwardExperience(c *gin.Context) {
	var req awardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid payload", validation.ToDetails(err))
		return
	}
	u, err := h.Users.AwardExperience(c.Request.Context(), c.Param("id"), req.Points)
	if err != nil {
		if errors.Is(err, application.ErrInvalidIdentifier) {
			response.Error(c, http.StatusBadRequest, "Invalid user ID", nil)
			return
		}
		fail(c, h.Logger, err)
		return
	}
	response.JSON(c, http.StatusOK, u)
}

func (h *UserHandler) UploadPicture(c *gin.Context) {
	f, fh, ok := openImage(c)
	if !ok {
		return
	}
	defer func() { _ = f.Close() }()

	u, err := h.Users.UploadProfilePicture(c.Request.Context(), c.Param("id"), f, fh.Filename, fh.Header.Get("Content-Type"))
	if err != nil {
		if errors.Is(err, application.ErrInvalidIdentifier) {
			response.Error(c, http.StatusBadRequest, "Invalid user ID", nil)
			return
		}
		fail(c, h.Logger, err)
		return
	}
	response.JSON(c, http.StatusOK, u)
}

// Join answers 400 for every caller mistake, missing records included.
func (h *UserHandler) Join(c *gin.Context) {
	userID, communityID := c.Param("id"), c.Param("communityId")
	err := h.Membership.Join(c.Request.Context(), userID, communityID)
	switch {
	case err == nil:
		response.Message(c, http.StatusOK, "User joined community")
	case errors.Is(err, application.ErrInvalidIdentifier):
		response.Error(c, http.StatusBadRequest, "Invalid user or community ID", nil)
	case errors.Is(err, application.ErrUserNotFound):
		response.Error(c, http.StatusBadRequest, "User not found for id:"+userID, nil)
	case errors.Is(err, application.ErrCommunityNotFound):
		response.Error(c, http.StatusBadRequest, "Community not found for id:"+communityID, nil)
	case errors.Is(err, application.ErrAlreadyInCommunity):
		response.Error(c, http.StatusBadRequest, "User already in community", nil)
	default:
		failWith(c, h.Logger, err, http.StatusInternalServerError, msgInternal)
	}
}

func (h *UserHandler) Leave(c *gin.Context) {
	userID := c.Param("id")
	err := h.Membership.Leave(c.Request.Context(), userID)
	switch {
	case err == nil:
		response.Message(c, http.StatusOK, "User left community")
	case errors.Is(err, application.ErrInvalidIdentifier):
		response.Error(c, http.StatusBadRequest, "Invalid user ID", nil)
	case errors.Is(err, application.ErrUserNotFound):
		response.Error(c, http.StatusBadRequest, "User not found for id:"+userID, nil)
	case errors.Is(err, application.ErrNotInCommunity):
		response.Error(c, http.StatusBadRequest, "User not in community", nil)
	default:
		failWith(c, h.Logger, err, http.StatusInternalServerError, msgInternal)
	}
}
