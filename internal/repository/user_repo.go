package repository

import (
	"context"
	"errors"

	"github.com/sihotmehalev/JCE-Community-Project-sub001/internal/models"
	"github.com/sihotmehalev/JCE-Community-Project-sub001/internal/store"
)

const usersCollection = "users"

// ErrUserNotFound is returned when a lookup matches no user
var ErrUserNotFound = errors.New("user not found")

type UserRepository struct {
	store store.Store
}

func NewUserRepository(st store.Store) *UserRepository {
	return &UserRepository{store: st}
}

// CreateUser creates a new user document
func (r *UserRepository) CreateUser(ctx context.Context, user *models.User) error {
	return r.store.Set(ctx, usersCollection+"/"+user.UserID, user, false)
}

// GetUserByID retrieves a user by their ID
func (r *UserRepository) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	snap, err := r.store.Get(ctx, usersCollection+"/"+userID)
	if err != nil {
		return nil, err
	}
	if !snap.Exists {
		return nil, ErrUserNotFound
	}

	var user models.User
	if err := snap.DataTo(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by their email address
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	snaps, err := r.store.Query(ctx, store.Query{Collection: usersCollection, Limit: 1}.
		Where("email", "==", email))
	if err != nil {
		return nil, err
	}
	if len(snaps) == 0 {
		return nil, ErrUserNotFound
	}

	var user models.User
	if err := snaps[0].DataTo(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateExpoToken updates the user's push token
func (r *UserRepository) UpdateExpoToken(ctx context.Context, userID, expoToken string) error {
	return r.store.Update(ctx, usersCollection+"/"+userID, []store.Update{
		{Path: "expoToken", Value: expoToken},
	})
}

// SetApproved flips the user's approval flag
func (r *UserRepository) SetApproved(ctx context.Context, userID string, approved bool) error {
	return r.store.Update(ctx, usersCollection+"/"+userID, []store.Update{
		{Path: "approved", Value: approved},
	})
}

// UpdateProfileFields updates individual profile fields by field path.
// Protected account fields never pass through here; the service layer guards
// them before calling.
func (r *UserRepository) UpdateProfileFields(ctx context.Context, userID string, fields map[string]interface{}) error {
	updates := make([]store.Update, 0, len(fields))
	for key, value := range fields {
		updates = append(updates, store.Update{Path: "profile." + key, Value: value})
	}
	return r.store.Update(ctx, usersCollection+"/"+userID, updates)
}

// CreateProfileDoc creates the role-collection profile document probed during
// role resolution.
func (r *UserRepository) CreateProfileDoc(ctx context.Context, collection, userID string, fields map[string]interface{}) error {
	data := store.Fields{"userId": userID}
	for k, v := range fields {
		data[k] = v
	}
	return r.store.Set(ctx, collection+"/"+userID, data, false)
}

// ListAll returns every registered user
func (r *UserRepository) ListAll(ctx context.Context) ([]*models.User, error) {
	snaps, err := r.store.Query(ctx, store.Query{Collection: usersCollection})
	if err != nil {
		return nil, err
	}

	users := make([]*models.User, 0, len(snaps))
	for _, snap := range snaps {
		var user models.User
		if err := snap.DataTo(&user); err != nil {
			continue
		}
		users = append(users, &user)
	}
	return users, nil
}

// ListApproved returns all approved users
func (r *UserRepository) ListApproved(ctx context.Context) ([]*models.User, error) {
	snaps, err := r.store.Query(ctx, store.Query{Collection: usersCollection}.
		Where("approved", "==", true))
	if err != nil {
		return nil, err
	}

	users := make([]*models.User, 0, len(snaps))
	for _, snap := range snaps {
		var user models.User
		if err := snap.DataTo(&user); err != nil {
			continue
		}
		users = append(users, &user)
	}
	return users, nil
}
