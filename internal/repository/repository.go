package repository

import (
	"context"

	"github.com/sakif/thinktank/internal/model"
)

// UserRepository is the storage contract for user accounts and their
// refresh-token sets. The MongoDB implementation lives in
// repository/mongodb; service tests use in-memory fakes.
//
// Reads exclude the password hash unless the method name says otherwise —
// login is the only caller that needs it.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByEmailWithPassword(ctx context.Context, email string) (*model.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	AddRefreshToken(ctx context.Context, userID, token string) error
	RemoveRefreshToken(ctx context.Context, userID, token string) error
	RemoveAllRefreshTokens(ctx context.Context, userID string) error
	HasRefreshToken(ctx context.Context, userID, token string) (bool, error)
}
