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

const attendanceCollection = "attendance"

// AttendanceRepository implements ports.AttendanceRepository on MongoDB.
// The unique (user_id, date) index is the arbiter for concurrent check-ins.
type AttendanceRepository struct {
	coll *mongo.Collection
}

func NewAttendanceRepository(db *mongo.Database) *AttendanceRepository {
	return &AttendanceRepository{coll: db.Collection(attendanceCollection)}
}

type mongoAttendance struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	UserID      primitive.ObjectID `bson:"user_id"`
	Date        time.Time          `bson:"date"`
	CheckIn     *time.Time         `bson:"check_in"`
	CheckOut    *time.Time         `bson:"check_out"`
	Status      string             `bson:"status"`
	HoursWorked float64            `bson:"hours_worked"`
	CreatedAt   time.Time          `bson:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at"`
}

func (ma *mongoAttendance) toDomain() *domain.AttendanceRecord {
	return &domain.AttendanceRecord{
		ID:          ma.ID.Hex(),
		UserID:      ma.UserID.Hex(),
		Date:        ma.Date,
		CheckIn:     ma.CheckIn,
		CheckOut:    ma.CheckOut,
		Status:      domain.AttendanceStatus(ma.Status),
		HoursWorked: ma.HoursWorked,
		CreatedAt:   ma.CreatedAt,
		UpdatedAt:   ma.UpdatedAt,
	}
}

func (r *AttendanceRepository) CreateIfAbsent(ctx context.Context, rec *domain.AttendanceRecord) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(rec.UserID)
	if err != nil {
		return domain.ErrUserNotFound
	}

	doc := mongoAttendance{
		UserID:      oid,
		Date:        rec.Date,
		CheckIn:     rec.CheckIn,
		CheckOut:    rec.CheckOut,
		Status:      string(rec.Status),
		HoursWorked: rec.HoursWorked,
		CreatedAt:   rec.CreatedAt,
		UpdatedAt:   rec.UpdatedAt,
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrAlreadyCheckedIn
		}
		return fmt.Errorf("insert attendance: %w", err)
	}
	rec.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return nil
}

func (r *AttendanceRepository) FindByUserAndDay(ctx context.Context, userID string, day time.Time) (*domain.AttendanceRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}

	start, end := domain.DayBounds(day)
	filter := bson.M{
		"user_id": oid,
		"date":    bson.M{"$gte": start, "$lt": end},
	}

	var ma mongoAttendance
	if err := r.coll.FindOne(ctx, filter).Decode(&ma); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAttendanceNotFound
		}
		return nil, fmt.Errorf("find attendance: %w", err)
	}
	return ma.toDomain(), nil
}

// SetCheckOut completes the day. Filtering on check_out:null makes the write
// conditional; a record already completed by a racing request matches nothing
// and the caller sees ErrAlreadyCheckedOut.
func (r *AttendanceRepository) SetCheckOut(ctx context.Context, id string, checkOut time.Time, hours float64, status domain.AttendanceStatus) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrAttendanceNotFound
	}

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": oid, "check_out": nil},
		bson.M{"$set": bson.M{
			"check_out":    checkOut,
			"hours_worked": hours,
			"status":       string(status),
			"updated_at":   checkOut,
		}},
	)
	if err != nil {
		return fmt.Errorf("set check-out: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrAlreadyCheckedOut
	}
	return nil
}

func (r *AttendanceRepository) FindRecent(ctx context.Context, userID string, from time.Time) ([]*domain.AttendanceRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}

	filter := bson.M{"user_id": oid, "date": bson.M{"$gte": from}}
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})

	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find recent attendance: %w", err)
	}
	defer cur.Close(ctx)

	var records []*domain.AttendanceRecord
	for cur.Next(ctx) {
		var ma mongoAttendance
		if err := cur.Decode(&ma); err != nil {
			return nil, fmt.Errorf("decode attendance: %w", err)
		}
		records = append(records, ma.toDomain())
	}
	return records, cur.Err()
}

// Logs joins attendance to users with a $lookup. The per-day uniqueness
// invariant plus $unwind on a unique _id join key guarantees the pipeline
// never yields duplicate rows for one calendar day.
func (r *AttendanceRepository) Logs(ctx context.Context, filter domain.AttendanceFilter) ([]*domain.AttendanceLogEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	match := bson.M{}
	if filter.UserID != "" {
		oid, err := primitive.ObjectIDFromHex(filter.UserID)
		if err != nil {
			return nil, domain.ErrUserNotFound
		}
		match["user_id"] = oid
	}
	if !filter.Day.IsZero() {
		start, end := domain.DayBounds(filter.Day)
		match["date"] = bson.M{"$gte": start, "$lt": end}
	}
	if filter.Status != "" {
		match["status"] = string(filter.Status)
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$lookup", Value: bson.M{
			"from":         usersCollection,
			"localField":   "user_id",
			"foreignField": "_id",
			"as":           "user",
		}}},
		{{Key: "$unwind", Value: "$user"}},
		{{Key: "$sort", Value: bson.D{{Key: "date", Value: -1}}}},
	}

	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("attendance logs: %w", err)
	}
	defer cur.Close(ctx)

	type joinedRow struct {
		mongoAttendance `bson:",inline"`
		User            mongoUser `bson:"user"`
	}

	var entries []*domain.AttendanceLogEntry
	for cur.Next(ctx) {
		var row joinedRow
		if err := cur.Decode(&row); err != nil {
			return nil, fmt.Errorf("decode log entry: %w", err)
		}
		entries = append(entries, &domain.AttendanceLogEntry{
			AttendanceRecord: *row.mongoAttendance.toDomain(),
			User: domain.UserSummary{
				ID:    row.User.ID.Hex(),
				Name:  row.User.Name,
				Email: row.User.Email,
				Role:  row.User.JobTitle,
			},
		})
	}
	return entries, cur.Err()
}

func (r *AttendanceRepository) CountCheckedIn(ctx context.Context, day time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	start, end := domain.DayBounds(day)
	n, err := r.coll.CountDocuments(ctx, bson.M{
		"date":     bson.M{"$gte": start, "$lt": end},
		"check_in": bson.M{"$ne": nil},
	})
	if err != nil {
		return 0, fmt.Errorf("count checked-in: %w", err)
	}
	return n, nil
}

// EnsureIndexes creates the unique per-day key that arbitrates check-in races.
func (r *AttendanceRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "date", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
