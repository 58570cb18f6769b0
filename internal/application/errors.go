package application

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidIdentifier = errors.New("invalid identifier")
	ErrNotFound          = errors.New("not found")
	ErrUserNotFound      = fmt.Errorf("user %w", ErrNotFound)
	ErrCommunityNotFound = fmt.Errorf("community %w", ErrNotFound)

	// ErrUninitializedAggregate guards accessor calls made before Construct
	// or LoadByID.
	ErrUninitializedAggregate = errors.New("aggregate not initialized")

	ErrAlreadyInCommunity = errors.New("user already in community")
	ErrNotInCommunity     = errors.New("user not in community")

	ErrStorageFailure       = errors.New("storage failure")
	ErrInvalidAggregate     = errors.New("invalid aggregate")
	ErrDuplicateName        = errors.New("community name already taken")
	ErrInvalidPoints        = errors.New("points must be non-zero")
	ErrStorageNotConfigured = errors.New("object storage not configured")
)

func storageFailure(err error) error {
	return fmt.Errorf("%w: %w", ErrStorageFailure, err)
}
