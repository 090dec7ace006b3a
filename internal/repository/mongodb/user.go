package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sakif/thinktank/internal/apperror"
	"github.com/sakif/thinktank/internal/model"
	"github.com/sakif/thinktank/internal/repository"
)

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

// excludePassword is the default read projection. The hash only leaves the
// database through FindByEmailWithPassword.
var excludePassword = options.FindOne().SetProjection(bson.M{"password": 0})

// Create inserts a new user document. The caller (service layer) has
// already assigned the ID, hash, and timestamps.
//
// A duplicate-key error on the unique email index is translated to
// apperror.ErrConflict so concurrent registrations for the same email
// surface as 409 rather than 500.
func (db *DB) Create(ctx context.Context, user *model.User) error {
	if _, err := db.users.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperror.Conflict("user", user.Email)
		}
		return fmt.Errorf("mongodb: inserting user %s: %w", user.Email, err)
	}
	return nil
}

// FindByID retrieves a user by internal ID, password excluded.
// Returns apperror.ErrNotFound if no such user exists.
func (db *DB) FindByID(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	err := db.users.FindOne(ctx, bson.M{"_id": id}, excludePassword).Decode(&u)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperror.NotFound("user", id)
		}
		return nil, fmt.Errorf("mongodb: finding user %s: %w", id, err)
	}
	return &u, nil
}

// FindByEmail retrieves a user by email, password excluded.
func (db *DB) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	err := db.users.FindOne(ctx, bson.M{"email": email}, excludePassword).Decode(&u)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperror.NotFound("user", email)
		}
		return nil, fmt.Errorf("mongodb: finding user by email: %w", err)
	}
	return &u, nil
}

// FindByEmailWithPassword retrieves a user by email INCLUDING the password
// hash. Only login calls this.
func (db *DB) FindByEmailWithPassword(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	err := db.users.FindOne(ctx, bson.M{"email": email}).Decode(&u)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperror.NotFound("user", email)
		}
		return nil, fmt.Errorf("mongodb: finding user by email: %w", err)
	}
	return &u, nil
}

// ExistsByEmail reports whether any user has the given email.
func (db *DB) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	count, err := db.users.CountDocuments(ctx, bson.M{"email": email},
		options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("mongodb: counting users by email: %w", err)
	}
	return count > 0, nil
}

// AddRefreshToken appends a refresh token to the user's stored set.
func (db *DB) AddRefreshToken(ctx context.Context, userID, token string) error {
	res, err := db.users.UpdateByID(ctx, userID,
		bson.M{"$push": bson.M{"refreshTokens": token}})
	if err != nil {
		return fmt.Errorf("mongodb: adding refresh token for %s: %w", userID, err)
	}
	if res.MatchedCount == 0 {
		return apperror.NotFound("user", userID)
	}
	return nil
}

// RemoveRefreshToken pulls a refresh token from the user's stored set.
// Removing a token that isn't present is not an error, so logout stays
// idempotent.
func (db *DB) RemoveRefreshToken(ctx context.Context, userID, token string) error {
	_, err := db.users.UpdateByID(ctx, userID,
		bson.M{"$pull": bson.M{"refreshTokens": token}})
	if err != nil {
		return fmt.Errorf("mongodb: removing refresh token for %s: %w", userID, err)
	}
	return nil
}

// RemoveAllRefreshTokens clears the user's token set, logging out every
// session at once.
func (db *DB) RemoveAllRefreshTokens(ctx context.Context, userID string) error {
	_, err := db.users.UpdateByID(ctx, userID,
		bson.M{"$set": bson.M{"refreshTokens": []string{}}})
	if err != nil {
		return fmt.Errorf("mongodb: clearing refresh tokens for %s: %w", userID, err)
	}
	return nil
}

// HasRefreshToken reports whether the given token is in the user's stored
// set. Checked on refresh: a syntactically valid token that has been
// rotated out (or belongs to a logged-out session) must be rejected.
func (db *DB) HasRefreshToken(ctx context.Context, userID, token string) (bool, error) {
	count, err := db.users.CountDocuments(ctx,
		bson.M{"_id": userID, "refreshTokens": token},
		options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("mongodb: checking refresh token for %s: %w", userID, err)
	}
	return count > 0, nil
}
