package database

import (
	"context"
	"errors"
	"time"

	"github.com/anjiri1684/studlyf_network/apperrors"
	"github.com/anjiri1684/studlyf_network/models"
	"github.com/anjiri1684/studlyf_network/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const mongoTimeout = 5 * time.Second

type messageDocument struct {
	ID        string    `bson:"_id"`
	From      string    `bson:"from"`
	To        string    `bson:"to"`
	Type      string    `bson:"type"`
	Text      string    `bson:"text,omitempty"`
	MediaURL  string    `bson:"mediaUrl,omitempty"`
	MediaType string    `bson:"mediaType,omitempty"`
	FileName  string    `bson:"fileName,omitempty"`
	FileSize  *int64    `bson:"fileSize,omitempty"`
	ForwardOf *string   `bson:"forwardOf,omitempty"`
	Read      bool      `bson:"read"`
	CreatedAt time.Time `bson:"createdAt"`
}

func toDocument(m *models.Message) messageDocument {
	f := models.FieldsOf(m.Content)
	doc := messageDocument{
		ID:        m.ID,
		From:      m.From,
		To:        m.To,
		Type:      string(f.Type),
		Text:      f.Text,
		MediaURL:  f.MediaURL,
		MediaType: f.MediaType,
		FileName:  f.FileName,
		ForwardOf: m.ForwardOf,
		Read:      m.Read,
		CreatedAt: m.CreatedAt,
	}
	if f.Type == models.TypeFile {
		size := f.FileSize
		doc.FileSize = &size
	}
	return doc
}

func (d *messageDocument) toMessage() (models.Message, error) {
	f := models.ContentFields{
		Type:      models.MessageType(d.Type),
		Text:      d.Text,
		MediaURL:  d.MediaURL,
		MediaType: d.MediaType,
		FileName:  d.FileName,
	}
	if d.FileSize != nil {
		f.FileSize = *d.FileSize
	}
	content, err := f.Content()
	if err != nil {
		return models.Message{}, apperrors.Internal(err, "stored message "+d.ID+" is corrupt")
	}
	return models.Message{
		ID:        d.ID,
		From:      d.From,
		To:        d.To,
		Content:   content,
		ForwardOf: d.ForwardOf,
		Read:      d.Read,
		CreatedAt: d.CreatedAt.UTC(),
	}, nil
}

// MongoMessageStore keeps messages in a collection with a native TTL index.
// The index only evicts lazily, so reads still filter on the retention cutoff.
type MongoMessageStore struct {
	coll      *mongo.Collection
	retention Retention
}

func NewMongoMessageStore(ctx context.Context, db *mongo.Database, retention Retention) (*MongoMessageStore, error) {
	s := &MongoMessageStore{coll: db.Collection("messages"), retention: retention}

	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "createdAt", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(int32(retention.ttl() / time.Second)),
		},
		{
			Keys: bson.D{{Key: "from", Value: 1}, {Key: "to", Value: 1}, {Key: "createdAt", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "to", Value: 1}, {Key: "read", Value: 1}, {Key: "from", Value: 1}},
		},
	})
	if err != nil {
		return nil, apperrors.Internal(err, "failed to create message indexes")
	}
	return s, nil
}

func (s *MongoMessageStore) Create(ctx context.Context, m *models.Message) (*models.Message, error) {
	out, err := prepareMessage(m, s.retention, utils.NewID())
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()
	if _, err := s.coll.InsertOne(ctx, toDocument(out)); err != nil {
		return nil, apperrors.Internal(err, "failed to store message")
	}
	return out, nil
}

func (s *MongoMessageStore) FindByPair(ctx context.Context, a, b string) ([]models.Message, error) {
	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()

	filter := bson.M{
		"$or": []bson.M{
			{"from": a, "to": b},
			{"from": b, "to": a},
		},
		"createdAt": bson.M{"$gt": s.retention.Cutoff()},
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, apperrors.Internal(err, "failed to fetch messages")
	}
	defer cur.Close(ctx)

	out := []models.Message{}
	for cur.Next(ctx) {
		var d messageDocument
		if err := cur.Decode(&d); err != nil {
			return nil, apperrors.Internal(err, "failed to decode message")
		}
		m, err := d.toMessage()
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := cur.Err(); err != nil {
		return nil, apperrors.Internal(err, "failed to fetch messages")
	}
	return out, nil
}

func (s *MongoMessageStore) FindByID(ctx context.Context, id string) (*models.Message, error) {
	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()

	var d messageDocument
	err := s.coll.FindOne(ctx, bson.M{"_id": id, "createdAt": bson.M{"$gt": s.retention.Cutoff()}}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.NotFound("message %s not found", id)
	}
	if err != nil {
		return nil, apperrors.Internal(err, "failed to fetch message")
	}
	m, err := d.toMessage()
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *MongoMessageStore) MarkReadBulk(ctx context.Context, peer, reader string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()

	res, err := s.coll.UpdateMany(ctx,
		bson.M{"from": peer, "to": reader, "read": false, "createdAt": bson.M{"$gt": s.retention.Cutoff()}},
		bson.M{"$set": bson.M{"read": true}},
	)
	if err != nil {
		return 0, apperrors.Internal(err, "failed to mark messages read")
	}
	return res.ModifiedCount, nil
}

func (s *MongoMessageStore) CountUnreadGroupedBySender(ctx context.Context, reader string) (map[string]int64, error) {
	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"to": reader, "read": false, "createdAt": bson.M{"$gt": s.retention.Cutoff()}}}},
		{{Key: "$group", Value: bson.M{"_id": "$from", "count": bson.M{"$sum": 1}}}},
	}
	cur, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, apperrors.Internal(err, "failed to count unread messages")
	}
	defer cur.Close(ctx)

	counts := map[string]int64{}
	for cur.Next(ctx) {
		var row struct {
			From  string `bson:"_id"`
			Count int64  `bson:"count"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, apperrors.Internal(err, "failed to decode unread count")
		}
		counts[row.From] = row.Count
	}
	if err := cur.Err(); err != nil {
		return nil, apperrors.Internal(err, "failed to count unread messages")
	}
	return counts, nil
}

func (s *MongoMessageStore) DeleteExpired(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()

	res, err := s.coll.DeleteMany(ctx, bson.M{"createdAt": bson.M{"$lte": s.retention.Cutoff()}})
	if err != nil {
		return 0, apperrors.Internal(err, "failed to delete expired messages")
	}
	return res.DeletedCount, nil
}
