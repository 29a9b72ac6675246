package database

import (
	"context"
	"fmt"
	"time"

	"swapmeet/internal/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MessageDocument represents the MongoDB document structure for direct messages
type MessageDocument struct {
	ID         string    `bson:"_id"`
	SenderID   string    `bson:"senderId"`
	ReceiverID string    `bson:"receiverId"`
	Text       string    `bson:"text"`
	CreatedAt  time.Time `bson:"createdAt"`
}

func messageFromDocument(doc *MessageDocument) (*models.Message, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid message ID in database: %v", err)
	}
	senderID, err := uuid.Parse(doc.SenderID)
	if err != nil {
		return nil, fmt.Errorf("invalid sender ID in database: %v", err)
	}
	receiverID, err := uuid.Parse(doc.ReceiverID)
	if err != nil {
		return nil, fmt.Errorf("invalid receiver ID in database: %v", err)
	}

	return &models.Message{
		ID:         id,
		SenderID:   senderID,
		ReceiverID: receiverID,
		Text:       doc.Text,
		CreatedAt:  doc.CreatedAt,
	}, nil
}

// SaveMessage appends a new direct message. Messages are never updated
// or deleted afterwards.
func (m *MongoDB) SaveMessage(ctx context.Context, message *models.Message) error {
	doc := MessageDocument{
		ID:         message.ID.String(),
		SenderID:   message.SenderID.String(),
		ReceiverID: message.ReceiverID.String(),
		Text:       message.Text,
		CreatedAt:  message.CreatedAt,
	}

	_, err := m.Messages.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("failed to save message: %v", err)
	}

	return nil
}

// GetMessagesBetweenUsers retrieves all messages exchanged between two
// users in either direction, oldest first. Equal timestamps are broken
// by message id so the sequence is deterministic.
func (m *MongoDB) GetMessagesBetweenUsers(ctx context.Context, userA, userB uuid.UUID) ([]*models.Message, error) {
	a, b := userA.String(), userB.String()

	filter := bson.M{
		"$or": []bson.M{
			{"senderId": a, "receiverId": b},
			{"senderId": b, "receiverId": a},
		},
	}
	opts := options.Find().SetSort(bson.D{
		{Key: "createdAt", Value: 1},
		{Key: "_id", Value: 1},
	})

	return m.findMessages(ctx, filter, opts)
}

// GetMessagesByUser retrieves all messages where the user is sender or
// receiver, newest first. Feeds the conversation aggregation.
func (m *MongoDB) GetMessagesByUser(ctx context.Context, userID uuid.UUID) ([]*models.Message, error) {
	userIDStr := userID.String()

	filter := bson.M{
		"$or": []bson.M{
			{"senderId": userIDStr},
			{"receiverId": userIDStr},
		},
	}
	opts := options.Find().SetSort(bson.D{
		{Key: "createdAt", Value: -1},
		{Key: "_id", Value: -1},
	})

	return m.findMessages(ctx, filter, opts)
}

func (m *MongoDB) findMessages(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*models.Message, error) {
	cursor, err := m.Messages.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to get messages: %v", err)
	}
	defer cursor.Close(ctx)

	var messages []*models.Message
	for cursor.Next(ctx) {
		var doc MessageDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode message: %v", err)
		}
		msg, err := messageFromDocument(&doc)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}

	return messages, nil
}

// CountMessages returns the total number of stored messages
func (m *MongoDB) CountMessages(ctx context.Context) (int, error) {
	count, err := m.Messages.CountDocuments(ctx, bson.M{})
	return int(count), err
}
