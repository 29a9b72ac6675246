// internal/database/user_repository.go
package database

import (
	"context"
	"fmt"
	"time"

	"swapmeet/internal/models"
	"swapmeet/internal/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserDocument represents the MongoDB schema for a user
type UserDocument struct {
	ID             string     `bson:"_id"`            // MongoDB primary key
	Name           string     `bson:"name"`           // Display name
	Email          string     `bson:"email"`          // Email address
	HashedPassword string     `bson:"hashedPassword"` // Hashed password
	IsOnline       bool       `bson:"isOnline"`       // Explicit presence flag
	LastSeenAt     *time.Time `bson:"lastSeenAt"`     // Last activity timestamp
	CreatedAt      time.Time  `bson:"createdAt"`      // Account creation timestamp
}

func userFromDocument(doc *UserDocument) (*models.User, error) {
	userID, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID in database: %v", err)
	}

	return &models.User{
		ID:             userID,
		Name:           doc.Name,
		Email:          doc.Email,
		HashedPassword: doc.HashedPassword,
		IsOnline:       doc.IsOnline,
		LastSeenAt:     doc.LastSeenAt,
		CreatedAt:      doc.CreatedAt,
	}, nil
}

// SaveUser creates or updates a user in MongoDB
func (m *MongoDB) SaveUser(ctx context.Context, user *models.User) error {
	doc := UserDocument{
		ID:             user.ID.String(),
		Name:           user.Name,
		Email:          user.Email,
		HashedPassword: user.HashedPassword,
		IsOnline:       user.IsOnline,
		LastSeenAt:     user.LastSeenAt,
		CreatedAt:      user.CreatedAt,
	}

	opts := options.Update().SetUpsert(true)
	filter := bson.M{"_id": user.ID.String()}
	update := bson.M{"$set": doc}

	_, err := m.Users.UpdateOne(ctx, filter, update, opts)
	if mongo.IsDuplicateKeyError(err) {
		return utils.NewAppError(utils.ErrUserAlreadyExists, "Email already registered", err)
	}
	return err
}

// GetUser retrieves a user from MongoDB by their ID
func (m *MongoDB) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var doc UserDocument

	err := m.Users.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewAppError(utils.ErrUserNotFound, "User not found", err)
	}
	if err != nil {
		return nil, err
	}

	return userFromDocument(&doc)
}

// GetUserByEmail retrieves a user from MongoDB by their email address
func (m *MongoDB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var doc UserDocument

	err := m.Users.FindOne(ctx, bson.M{"email": email}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewAppError(utils.ErrUserNotFound, "User not found", err)
	}
	if err != nil {
		return nil, err
	}

	return userFromDocument(&doc)
}

// SearchUsers retrieves users whose name matches the query,
// case-insensitive, newest accounts first. An empty query lists everyone.
func (m *MongoDB) SearchUsers(ctx context.Context, query string, limit, offset int) ([]*models.User, error) {
	filter := bson.M{}
	if query != "" {
		filter["name"] = bson.M{"$regex": primitive.Regex{Pattern: query, Options: "i"}}
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(int64(offset))

	cursor, err := m.Users.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %v", err)
	}
	defer cursor.Close(ctx)

	var users []*models.User
	for cursor.Next(ctx) {
		var doc UserDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode user: %v", err)
		}
		user, err := userFromDocument(&doc)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	return users, nil
}

// CountUsers returns the total number of registered users
func (m *MongoDB) CountUsers(ctx context.Context) (int, error) {
	count, err := m.Users.CountDocuments(ctx, bson.M{})
	return int(count), err
}

// SetUserPresence writes the explicit online flag and refreshes the
// last seen timestamp in one single-document update.
func (m *MongoDB) SetUserPresence(ctx context.Context, id uuid.UUID, online bool) error {
	filter := bson.M{"_id": id.String()}
	update := bson.M{"$set": bson.M{
		"isOnline":   online,
		"lastSeenAt": time.Now(),
	}}

	result, err := m.Users.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return utils.NewAppError(utils.ErrUserNotFound, "User not found", nil)
	}
	return nil
}

// TouchUser refreshes last seen, but only while the stored flag is true:
// incidental activity must not reactivate a user who logged out.
func (m *MongoDB) TouchUser(ctx context.Context, id uuid.UUID) error {
	filter := bson.M{"_id": id.String(), "isOnline": true}
	update := bson.M{"$set": bson.M{"lastSeenAt": time.Now()}}

	// A zero match count here just means the user is offline or unknown;
	// neither is an error for a touch.
	_, err := m.Users.UpdateOne(ctx, filter, update)
	return err
}
