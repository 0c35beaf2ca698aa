package repository

import (
	"context"

	"houseselect/internal/domain"
)

// SessionsRepo persists whole sessions as single records.
type SessionsRepo interface {
	Save(ctx context.Context, s *domain.Session) error
	// Load returns (nil, nil) when there is no saved session; a missing
	// or unreadable record is never fatal.
	Load(ctx context.Context, id string) (*domain.Session, error)
	Delete(ctx context.Context, id string) error
}
