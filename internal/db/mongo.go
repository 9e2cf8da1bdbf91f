package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"yuvai/internal/models"
)

// MongoStore implements Store on a MongoDB database with the collections
// users, history and corrections.
type MongoStore struct {
	client      *mongo.Client
	users       *mongo.Collection
	history     *mongo.Collection
	corrections *mongo.Collection
}

// historyDoc and correctionDoc store ids as strings so documents stay readable.
type historyDoc struct {
	ID        string    `bson:"_id"`
	Username  string    `bson:"username"`
	Claim     string    `bson:"claim"`
	Lang      string    `bson:"lang"`
	Verdict   string    `bson:"verdict"`
	Score     int       `bson:"score"`
	CreatedAt time.Time `bson:"created_at"`
}

type correctionDoc struct {
	ID               string    `bson:"_id"`
	Username         string    `bson:"username"`
	Claim            string    `bson:"claim"`
	SuggestedVerdict string    `bson:"suggested_verdict"`
	Note             string    `bson:"note,omitempty"`
	EvidenceURL      string    `bson:"evidence_url,omitempty"`
	CreatedAt        time.Time `bson:"created_at"`
}

// NewMongoStore connects, pings and ensures indexes.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to create mongo client: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	mdb := client.Database(database)
	s := &MongoStore{
		client:      client,
		users:       mdb.Collection("users"),
		history:     mdb.Collection("history"),
		corrections: mdb.Collection("corrections"),
	}

	if err := s.ensureIndexes(ctx); err != nil {
		client.Disconnect(context.Background())
		return nil, err
	}

	return s, nil
}

func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	if _, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("failed to create users index: %w", err)
	}
	if _, err := s.history.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "username", Value: 1}, {Key: "created_at", Value: -1}},
	}); err != nil {
		return fmt.Errorf("failed to create history index: %w", err)
	}
	return nil
}

// GetAccount retrieves an account by username.
func (s *MongoStore) GetAccount(ctx context.Context, username string) (*models.Account, error) {
	var acct models.Account
	err := s.users.FindOne(ctx, bson.D{{Key: "username", Value: username}}).Decode(&acct)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	return &acct, nil
}

// PutAccount inserts a new account; the unique index rejects duplicates.
func (s *MongoStore) PutAccount(ctx context.Context, acct *models.Account) error {
	stampTime(&acct.CreatedAt)
	if acct.Role == "" {
		acct.Role = models.RoleUser
	}

	_, err := s.users.InsertOne(ctx, acct)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateUsername
	}
	return err
}

// CountAccounts returns the number of stored accounts.
func (s *MongoStore) CountAccounts(ctx context.Context) (int, error) {
	n, err := s.users.CountDocuments(ctx, bson.D{})
	return int(n), err
}

// AppendHistory records a completed analysis.
func (s *MongoStore) AppendHistory(ctx context.Context, e *models.HistoryEntry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	stampTime(&e.CreatedAt)

	_, err := s.history.InsertOne(ctx, historyDoc{
		ID:        e.ID.String(),
		Username:  e.Username,
		Claim:     e.Claim,
		Lang:      e.Lang,
		Verdict:   e.Verdict,
		Score:     e.Score,
		CreatedAt: e.CreatedAt,
	})
	return err
}

// ListHistory returns a user's most recent analyses, newest first.
func (s *MongoStore) ListHistory(ctx context.Context, username string, limit int) ([]models.HistoryEntry, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))

	cur, err := s.history.Find(ctx, bson.D{{Key: "username", Value: username}}, opts)
	if err != nil {
		return nil, err
	}

	var docs []historyDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}

	out := make([]models.HistoryEntry, 0, len(docs))
	for _, d := range docs {
		id, _ := uuid.Parse(d.ID)
		out = append(out, models.HistoryEntry{
			ID:        id,
			Username:  d.Username,
			Claim:     d.Claim,
			Lang:      d.Lang,
			Verdict:   d.Verdict,
			Score:     d.Score,
			CreatedAt: d.CreatedAt,
		})
	}
	return out, nil
}

// PruneHistory deletes entries created before the cutoff.
func (s *MongoStore) PruneHistory(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.history.DeleteMany(ctx, bson.D{{Key: "created_at", Value: bson.D{{Key: "$lt", Value: before}}}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// AddCorrection stores a user-submitted correction.
func (s *MongoStore) AddCorrection(ctx context.Context, c *models.Correction) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	stampTime(&c.CreatedAt)

	_, err := s.corrections.InsertOne(ctx, correctionDoc{
		ID:               c.ID.String(),
		Username:         c.Username,
		Claim:            c.Claim,
		SuggestedVerdict: c.SuggestedVerdict,
		Note:             c.Note,
		EvidenceURL:      c.EvidenceURL,
		CreatedAt:        c.CreatedAt,
	})
	return err
}

// ListCorrections returns the most recent corrections, newest first.
func (s *MongoStore) ListCorrections(ctx context.Context, limit int) ([]models.Correction, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))

	cur, err := s.corrections.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, err
	}

	var docs []correctionDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}

	out := make([]models.Correction, 0, len(docs))
	for _, d := range docs {
		id, _ := uuid.Parse(d.ID)
		out = append(out, models.Correction{
			ID:               id,
			Username:         d.Username,
			Claim:            d.Claim,
			SuggestedVerdict: d.SuggestedVerdict,
			Note:             d.Note,
			EvidenceURL:      d.EvidenceURL,
			CreatedAt:        d.CreatedAt,
		})
	}
	return out, nil
}

// Ping checks the server is reachable.
func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// Close disconnects the client.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
