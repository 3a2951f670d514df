package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kyzmat/marketplace/internal/core/domain"
)

const (
	collectionConversations = "conversations"
	collectionMessages      = "messages"
)

// ChatRepository stores conversations and messages in separate collections.
type ChatRepository struct {
	convs *mongo.Collection
	msgs  *mongo.Collection
}

func NewChatRepository(db *mongo.Database) *ChatRepository {
	return &ChatRepository{
		convs: db.Collection(collectionConversations),
		msgs:  db.Collection(collectionMessages),
	}
}

func (r *ChatRepository) CreateConversation(ctx context.Context, c *domain.Conversation) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.convs.InsertOne(ctx, c); err != nil {
		return fmt.Errorf("insert conversation: %w", err)
	}
	return nil
}

func (r *ChatRepository) findConversation(ctx context.Context, filter bson.M) (*domain.Conversation, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var c domain.Conversation
	if err := r.convs.FindOne(ctx, filter).Decode(&c); err != nil {
		return nil, notFound(err, domain.ErrConversationNotFound)
	}
	return &c, nil
}

func (r *ChatRepository) FindConversation(ctx context.Context, id string) (*domain.Conversation, error) {
	return r.findConversation(ctx, bson.M{"_id": id})
}

func (r *ChatRepository) FindConversationByParticipants(ctx context.Context, jobID, clientID, executorID string) (*domain.Conversation, error) {
	return r.findConversation(ctx, bson.M{"job_id": jobID, "client_id": clientID, "executor_id": executorID})
}

func (r *ChatRepository) ListConversations(ctx context.Context, userID string) ([]*domain.Conversation, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"$or": bson.A{bson.M{"client_id": userID}, bson.M{"executor_id": userID}}}
	cur, err := r.convs.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Conversation, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AppendMessage inserts msg and applies it to the conversation with a single
// update, so the last message and the unread counter never diverge.
func (r *ChatRepository) AppendMessage(ctx context.Context, msg *domain.Message) (*domain.Conversation, error) {
	conv, err := r.FindConversation(ctx, msg.ConversationID)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.msgs.InsertOne(ctx, msg); err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}

	counter := "client_unread"
	if msg.SenderID == conv.ClientID {
		counter = "executor_unread"
	}
	update := bson.M{
		"$set": bson.M{"last_message": msg, "updated_at": msg.Timestamp},
		"$inc": bson.M{counter: 1},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated domain.Conversation
	if err := r.convs.FindOneAndUpdate(ctx, bson.M{"_id": conv.ID}, update, opts).Decode(&updated); err != nil {
		return nil, notFound(err, domain.ErrConversationNotFound)
	}
	return &updated, nil
}

func (r *ChatRepository) ListMessages(ctx context.Context, conversationID string) ([]*domain.Message, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.msgs.Find(ctx, bson.M{"conversation_id": conversationID}, options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}}))
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Message, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ChatRepository) MarkRead(ctx context.Context, conversationID, readerID string) (*domain.Conversation, error) {
	conv, err := r.FindConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err = r.msgs.UpdateMany(ctx,
		bson.M{"conversation_id": conversationID, "sender_id": bson.M{"$ne": readerID}, "is_read": false},
		bson.M{"$set": bson.M{"is_read": true}},
	)
	if err != nil {
		return nil, fmt.Errorf("mark messages read: %w", err)
	}

	set := bson.M{}
	switch readerID {
	case conv.ClientID:
		set["client_unread"] = 0
	case conv.ExecutorID:
		set["executor_unread"] = 0
	}
	if conv.LastMessage != nil && conv.LastMessage.SenderID != readerID {
		set["last_message.is_read"] = true
	}
	if len(set) == 0 {
		return conv, nil
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated domain.Conversation
	if err := r.convs.FindOneAndUpdate(ctx, bson.M{"_id": conversationID}, bson.M{"$set": set}, opts).Decode(&updated); err != nil {
		return nil, notFound(err, domain.ErrConversationNotFound)
	}
	return &updated, nil
}

func (r *ChatRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.convs.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "client_id", Value: 1}, {Key: "updated_at", Value: -1}}},
		{Keys: bson.D{{Key: "executor_id", Value: 1}, {Key: "updated_at", Value: -1}}},
		{
			Keys:    bson.D{{Key: "job_id", Value: 1}, {Key: "client_id", Value: 1}, {Key: "executor_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
	if err != nil {
		return err
	}
	_, err = r.msgs.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "conversation_id", Value: 1}, {Key: "timestamp", Value: 1}},
	})
	return err
}
