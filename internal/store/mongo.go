// Agora - Social Networking Realtime Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agora

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/tomtom215/agora/internal/logging"
	"github.com/tomtom215/agora/internal/models"
)

// Collection names.
const (
	usersCollection         = "users"
	chatsCollection         = "chats"
	messagesCollection      = "messages"
	notificationsCollection = "notifications"
)

const (
	defaultMaxPoolSize = 100
	defaultMaxRetry    = 3
)

// MongoConfig holds connection settings for MongoStore.
type MongoConfig struct {
	URI            string
	Database       string
	MaxPoolSize    uint64
	ConnectTimeout time.Duration
	MaxRetry       int
}

// MongoStore implements Store on MongoDB.
type MongoStore struct {
	client        *mongo.Client
	users         *mongo.Collection
	chats         *mongo.Collection
	messages      *mongo.Collection
	notifications *mongo.Collection
}

var _ Store = (*MongoStore)(nil)

// NewMongoStore connects, pings and ensures indexes. Connection attempts are
// retried up to cfg.MaxRetry times unless the server rejects authentication.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.URI == "" {
		return nil, errors.New("mongo uri is required")
	}
	if cfg.Database == "" {
		return nil, errors.New("mongo database is required")
	}
	if cfg.MaxPoolSize == 0 {
		cfg.MaxPoolSize = defaultMaxPoolSize
	}
	if cfg.MaxRetry <= 0 {
		cfg.MaxRetry = defaultMaxRetry
	}

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetMaxPoolSize(cfg.MaxPoolSize).
		SetAppName("agora")
	if cfg.ConnectTimeout > 0 {
		opts.SetConnectTimeout(cfg.ConnectTimeout).SetServerSelectionTimeout(cfg.ConnectTimeout)
	}

	var (
		client *mongo.Client
		err    error
	)
	for attempt := 1; attempt <= cfg.MaxRetry; attempt++ {
		client, err = connectMongo(ctx, opts)
		if err == nil || !shouldRetry(ctx, err) {
			break
		}
		logging.Warn().Err(err).Int("attempt", attempt).Msg("MongoDB connection failed, retrying")
		time.Sleep(500 * time.Millisecond)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	db := client.Database(cfg.Database)
	s := &MongoStore{
		client:        client,
		users:         db.Collection(usersCollection),
		chats:         db.Collection(chatsCollection),
		messages:      db.Collection(messagesCollection),
		notifications: db.Collection(notificationsCollection),
	}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	logging.Info().Str("database", cfg.Database).Msg("Connected to MongoDB")
	return s, nil
}

func connectMongo(ctx context.Context, opts *options.ClientOptions) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return client, nil
}

// shouldRetry reports whether a connection error is worth another attempt.
// Codes 13 (Unauthorized) and 18 (AuthenticationFailed) are final.
func shouldRetry(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.Code != 13 && cmdErr.Code != 18
	}
	return true
}

func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	indexes := map[*mongo.Collection][]mongo.IndexModel{
		s.users: {
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		s.chats: {
			{Keys: bson.D{{Key: "users", Value: 1}}},
			{Keys: bson.D{{Key: "owner", Value: 1}}},
		},
		s.messages: {
			{Keys: bson.D{{Key: "chat", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		s.notifications: {
			{Keys: bson.D{{Key: "receiver", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
	}
	for coll, idx := range indexes {
		if _, err := coll.Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("create indexes on %s: %w", coll.Name(), err)
		}
	}
	return nil
}

// findOne decodes the document matching filter into out, mapping
// mongo.ErrNoDocuments to ErrNotFound.
func findOne(ctx context.Context, coll *mongo.Collection, filter interface{}, out interface{}) error {
	err := coll.FindOne(ctx, filter).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("find in %s: %w", coll.Name(), err)
	}
	return nil
}

func deleteByID(ctx context.Context, coll *mongo.Collection, id primitive.ObjectID) error {
	res, err := coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete from %s: %w", coll.Name(), err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func insert(ctx context.Context, coll *mongo.Collection, doc interface{}) error {
	if _, err := coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("insert into %s: %w", coll.Name(), ErrDuplicate)
		}
		return fmt.Errorf("insert into %s: %w", coll.Name(), err)
	}
	return nil
}

func (s *MongoStore) UserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := findOne(ctx, s.users, bson.M{"_id": id}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *MongoStore) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	if err := findOne(ctx, s.users, bson.M{"username": username}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *MongoStore) UsersByUsernames(ctx context.Context, usernames []string) ([]models.User, error) {
	if len(usernames) == 0 {
		return []models.User{}, nil
	}
	cursor, err := s.users.Find(ctx, bson.M{"username": bson.M{"$in": usernames}})
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return users, nil
}

func (s *MongoStore) ChatByID(ctx context.Context, id primitive.ObjectID) (*models.Chat, error) {
	var c models.Chat
	if err := findOne(ctx, s.chats, bson.M{"_id": id}, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// ReplaceChatUsers performs the member-list swap as a single conditional
// update. The filter matches the whole users array, so any concurrent
// change makes the update match nothing.
func (s *MongoStore) ReplaceChatUsers(ctx context.Context, chatID primitive.ObjectID, expected, next []primitive.ObjectID) error {
	filter := bson.M{"_id": chatID, "users": nonNilIDs(expected)}
	update := bson.M{"$set": bson.M{"users": nonNilIDs(next), "updatedAt": time.Now().UTC()}}

	res, err := s.chats.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("update chat users: %w", err)
	}
	if res.MatchedCount > 0 {
		return nil
	}

	n, err := s.chats.CountDocuments(ctx, bson.M{"_id": chatID})
	if err != nil {
		return fmt.Errorf("count chats: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return ErrConflict
}

func (s *MongoStore) MessageByID(ctx context.Context, id primitive.ObjectID) (*models.Message, error) {
	var m models.Message
	if err := findOne(ctx, s.messages, bson.M{"_id": id}, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *MongoStore) DeleteMessage(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, s.messages, id)
}

func (s *MongoStore) NotificationByID(ctx context.Context, id primitive.ObjectID) (*models.Notification, error) {
	var n models.Notification
	if err := findOne(ctx, s.notifications, bson.M{"_id": id}, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

func (s *MongoStore) DeleteNotification(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, s.notifications, id)
}

func (s *MongoStore) InsertUser(ctx context.Context, u *models.User) error {
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	return insert(ctx, s.users, u)
}

func (s *MongoStore) InsertChat(ctx context.Context, c *models.Chat) error {
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	c.Users = nonNilIDs(c.Users)
	return insert(ctx, s.chats, c)
}

func (s *MongoStore) InsertMessage(ctx context.Context, m *models.Message) error {
	if m.ID.IsZero() {
		m.ID = primitive.NewObjectID()
	}
	return insert(ctx, s.messages, m)
}

func (s *MongoStore) InsertNotification(ctx context.Context, n *models.Notification) error {
	if n.ID.IsZero() {
		n.ID = primitive.NewObjectID()
	}
	return insert(ctx, s.notifications, n)
}

// Ping checks the primary is reachable.
func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
