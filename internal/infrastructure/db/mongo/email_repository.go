package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/companyos/portal-api/internal/core/domain"
)

const emailHistoryCollection = "email_history"

// EmailRepository implements ports.EmailRepository on MongoDB.
type EmailRepository struct {
	coll *mongo.Collection
}

func NewEmailRepository(db *mongo.Database) *EmailRepository {
	return &EmailRepository{coll: db.Collection(emailHistoryCollection)}
}

type mongoEmailLog struct {
	ID             primitive.ObjectID      `bson:"_id,omitempty"`
	Sender         domain.UserSummary      `bson:"sender"`
	Business       string                  `bson:"business"`
	Subject        string                  `bson:"subject"`
	Content        string                  `bson:"content"`
	Recipients     []domain.EmailRecipient `bson:"recipients"`
	RecipientCount int                     `bson:"recipient_count"`
	SentAt         time.Time               `bson:"sent_at"`
	Results        []domain.DeliveryResult `bson:"results"`
}

func (r *EmailRepository) Insert(ctx context.Context, log *domain.EmailLog) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoEmailLog{
		Sender:         log.Sender,
		Business:       log.Business,
		Subject:        log.Subject,
		Content:        log.Content,
		Recipients:     log.Recipients,
		RecipientCount: log.RecipientCount,
		SentAt:         log.SentAt,
		Results:        log.Results,
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("insert email log: %w", err)
	}
	log.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return nil
}

func (r *EmailRepository) History(ctx context.Context, filter domain.EmailHistoryFilter) ([]*domain.EmailLog, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := bson.M{}
	if filter.Business != "" {
		query["business"] = filter.Business
	}
	if filter.Sender != "" {
		query["sender.name"] = bson.M{"$regex": filter.Sender, "$options": "i"}
	}
	if !filter.From.IsZero() || !filter.To.IsZero() {
		sentAt := bson.M{}
		if !filter.From.IsZero() {
			sentAt["$gte"] = filter.From
		}
		if !filter.To.IsZero() {
			sentAt["$lte"] = filter.To
		}
		query["sent_at"] = sentAt
	}

	opts := options.Find().SetSort(bson.D{{Key: "sent_at", Value: -1}})
	cur, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("email history: %w", err)
	}
	defer cur.Close(ctx)

	var logs []*domain.EmailLog
	for cur.Next(ctx) {
		var ml mongoEmailLog
		if err := cur.Decode(&ml); err != nil {
			return nil, fmt.Errorf("decode email log: %w", err)
		}
		logs = append(logs, &domain.EmailLog{
			ID:             ml.ID.Hex(),
			Sender:         ml.Sender,
			Business:       ml.Business,
			Subject:        ml.Subject,
			Content:        ml.Content,
			Recipients:     ml.Recipients,
			RecipientCount: ml.RecipientCount,
			SentAt:         ml.SentAt,
			Results:        ml.Results,
		})
	}
	return logs, cur.Err()
}

func (r *EmailRepository) CountSentSince(ctx context.Context, since time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.coll.CountDocuments(ctx, bson.M{"sent_at": bson.M{"$gte": since}})
	if err != nil {
		return 0, fmt.Errorf("count emails: %w", err)
	}
	return n, nil
}

// EnsureIndexes creates the history sort index.
func (r *EmailRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "sent_at", Value: -1}},
	})
	return err
}
