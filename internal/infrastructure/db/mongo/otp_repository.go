package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/companyos/portal-api/internal/core/domain"
)

const otpsCollection = "otps"

// OTPRepository implements ports.OTPRepository on MongoDB. Validity is always
// decided by the query filter (unused + unexpired); the TTL index on
// expires_at only reclaims storage.
type OTPRepository struct {
	coll *mongo.Collection
}

func NewOTPRepository(db *mongo.Database) *OTPRepository {
	return &OTPRepository{coll: db.Collection(otpsCollection)}
}

type mongoOTP struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Email     string             `bson:"email"`
	Code      string             `bson:"otp"`
	ExpiresAt time.Time          `bson:"expires_at"`
	Used      bool               `bson:"used"`
	CreatedAt time.Time          `bson:"created_at"`
}

func (r *OTPRepository) Create(ctx context.Context, rec *domain.OTPRecord) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoOTP{
		Email:     rec.Email,
		Code:      rec.Code,
		ExpiresAt: rec.ExpiresAt,
		Used:      rec.Used,
		CreatedAt: rec.CreatedAt,
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("insert otp: %w", err)
	}
	rec.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return nil
}

func validFilter(email, code string, now time.Time) bson.M {
	return bson.M{
		"email":      email,
		"otp":        code,
		"used":       false,
		"expires_at": bson.M{"$gt": now},
	}
}

func (r *OTPRepository) MatchValid(ctx context.Context, email, code string, now time.Time) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	err := r.coll.FindOne(ctx, validFilter(email, code, now)).Err()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil
		}
		return false, fmt.Errorf("match otp: %w", err)
	}
	return true, nil
}

// ConsumeIfValid flips used on the matching record in one conditional update.
// The used:false clause in the filter makes the flip atomic: two racing
// consumers cannot both match the same document.
func (r *OTPRepository) ConsumeIfValid(ctx context.Context, email, code string, now time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	err := r.coll.FindOneAndUpdate(ctx,
		validFilter(email, code, now),
		bson.M{"$set": bson.M{"used": true}},
	).Err()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.ErrInvalidOTP
		}
		return fmt.Errorf("consume otp: %w", err)
	}
	return nil
}

// EnsureIndexes creates the match index and the TTL reaper on expires_at.
func (r *OTPRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}, {Key: "otp", Value: 1}}},
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}
