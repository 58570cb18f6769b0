package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-community-leaderboard/internal/application"
	"github.com/oksasatya/go-community-leaderboard/pkg/response"
)

const msgInternal = "Internal server error"

// statusFor maps application errors to an HTTP status and a default message.
// Anything unclassified is a 500.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, application.ErrInvalidIdentifier):
		return http.StatusBadRequest, "Invalid identifier"
	case errors.Is(err, application.ErrUserNotFound):
		return http.StatusNotFound, "User not found"
	case errors.Is(err, application.ErrCommunityNotFound):
		return http.StatusNotFound, "Community not found"
	case errors.Is(err, application.ErrAlreadyInCommunity):
		return http.StatusBadRequest, "User already in community"
	case errors.Is(err, application.ErrNotInCommunity):
		return http.StatusBadRequest, "User not in community"
	case errors.Is(err, application.ErrInvalidAggregate), errors.Is(err, application.ErrInvalidPoints):
		return http.StatusBadRequest, "Invalid payload"
	case errors.Is(err, application.ErrDuplicateName):
		return http.StatusConflict, "Community name already taken"
	case errors.Is(err, application.ErrStorageNotConfigured):
		return http.StatusServiceUnavailable, "File uploads are not configured"
	default:
		return http.StatusInternalServerError, msgInternal
	}
}

// fail writes err using its default mapping. 5xx errors are logged.
func fail(c *gin.Context, logger *logrus.Logger, err error) {
	status, msg := statusFor(err)
	failWith(c, logger, err, status, msg)
}

func failWith(c *gin.Context, logger *logrus.Logger, err error, status int, msg string) {
	if status >= http.StatusInternalServerError && logger != nil {
		logger.WithError(err).WithFields(logrus.Fields{
			"request_id": c.GetString("request_id"),
			"path":       c.FullPath(),
		}).Error("request failed")
	}
	response.Error(c, status, msg, nil)
}
