package bookingRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"servicehub/apperrors"
	"servicehub/database"
	servicemanRepo "servicehub/database/repository/serviceman"
	"servicehub/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CollectionName = "bookings"

var errStaleVersion = errors.New("booking version is stale")

// MongoBookingRepo implements BookingRepository using MongoDB.
type MongoBookingRepo struct {
	client         *mongo.Client
	bookingColl    *mongo.Collection
	servicemanColl *mongo.Collection
}

// NewMongoBookingRepo binds the repository to db and ensures its indexes.
func NewMongoBookingRepo(db *mongo.Database) (*MongoBookingRepo, error) {
	r := &MongoBookingRepo{
		client:         db.Client(),
		bookingColl:    db.Collection(CollectionName),
		servicemanColl: db.Collection(servicemanRepo.CollectionName),
	}
	if err := r.ensureIndexes(); err != nil {
		return nil, err
	}
	return r, nil
}

// Create inserts a new booking at version 1.
func (r *MongoBookingRepo) Create(ctx context.Context, b *models.Booking) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	b.Version = 1
	if _, err := r.bookingColl.InsertOne(ctx, b); err != nil {
		b.Version = 0
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.Conflict("booking %s already exists", b.ID)
		}
		return fmt.Errorf("error creating booking: %w", err)
	}
	return nil
}

func (r *MongoBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var b models.Booking
	if err := r.bookingColl.FindOne(ctx, bson.M{"id": id}).Decode(&b); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("booking %s not found", id)
		}
		return nil, fmt.Errorf("error fetching booking with id %s: %w", id, err)
	}
	return &b, nil
}

func (r *MongoBookingRepo) SaveAssignment(ctx context.Context, b *models.Booking) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := r.replaceVersioned(ctx, b); err != nil {
		return r.classify(ctx, b.ID, err)
	}
	return nil
}

func (r *MongoBookingRepo) CommitTransition(ctx context.Context, b *models.Booking, effects TransitionEffects) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if effects.ReleaseServiceman == "" {
		if err := r.replaceVersioned(ctx, b); err != nil {
			return r.classify(ctx, b.ID, err)
		}
		return nil
	}

	expected := b.Version
	err := database.WithTransaction(ctx, r.client, func(sc mongo.SessionContext) error {
		b.Version = expected
		if err := r.replaceVersioned(sc, b); err != nil {
			return err
		}
		return servicemanRepo.ReleaseIn(sc, r.servicemanColl, effects.ReleaseServiceman, b.ID, effects.CountCompletion)
	})
	if err != nil {
		b.Version = expected
		return r.classify(ctx, b.ID, fmt.Errorf("booking transition transaction failed: %w", err))
	}
	return nil
}

func (r *MongoBookingRepo) ListUnassignedPending(ctx context.Context, limit int) ([]*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	filter := bson.M{
		"status":     models.StatusPending,
		"assignment": bson.M{"$exists": false},
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: 1}}).
		SetLimit(int64(limit))
	cursor, err := r.bookingColl.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error finding unassigned bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*models.Booking
	for cursor.Next(ctx) {
		var b models.Booking
		if err := cursor.Decode(&b); err != nil {
			return nil, fmt.Errorf("error decoding booking: %w", err)
		}
		bookings = append(bookings, &b)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return bookings, nil
}

// ListQuery translates f into a bookings filter.
func ListQuery(f ListFilter) bson.M {
	q := bson.M{}
	if f.CustomerID != "" {
		q["$or"] = bson.A{
			bson.M{"customer": f.CustomerID},
			bson.M{"requestedBy.id": f.CustomerID},
		}
	}
	if f.OrganizationID != "" {
		q["organization"] = f.OrganizationID
	}
	if f.BranchID != "" {
		q["branch"] = f.BranchID
	}
	if f.ServicemanID != "" {
		q["assignment.serviceman"] = f.ServicemanID
	}
	if f.Status != "" {
		q["status"] = f.Status
	}
	return q
}

func (r *MongoBookingRepo) List(ctx context.Context, f ListFilter) ([]*models.Booking, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	filter := ListQuery(f)
	total, err := r.bookingColl.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("error counting bookings: %w", err)
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "id", Value: 1}}).
		SetSkip(int64(f.Offset)).
		SetLimit(int64(f.Limit))
	cursor, err := r.bookingColl.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing bookings: %w", err)
	}
	defer cursor.Close(ctx)

	bookings := []*models.Booking{}
	for cursor.Next(ctx) {
		var b models.Booking
		if err := cursor.Decode(&b); err != nil {
			return nil, 0, fmt.Errorf("error decoding booking: %w", err)
		}
		bookings = append(bookings, &b)
	}
	if err := cursor.Err(); err != nil {
		return nil, 0, fmt.Errorf("cursor error: %w", err)
	}
	return bookings, total, nil
}

// VersionedFilter matches booking id only while its stored version equals expected.
func VersionedFilter(id string, expected int64) bson.M {
	return bson.M{"id": id, "version": expected}
}

// replaceVersioned writes b at Version+1 only when the stored version still equals b.Version.
func (r *MongoBookingRepo) replaceVersioned(ctx context.Context, b *models.Booking) error {
	expected := b.Version
	b.Version = expected + 1
	res, err := r.bookingColl.ReplaceOne(ctx, VersionedFilter(b.ID, expected), b)
	if err != nil {
		b.Version = expected
		return err
	}
	if res.MatchedCount == 0 {
		b.Version = expected
		return errStaleVersion
	}
	return nil
}

// classify maps a failed versioned write to the error taxonomy.
func (r *MongoBookingRepo) classify(ctx context.Context, id string, err error) error {
	switch {
	case errors.Is(err, errStaleVersion):
		n, cerr := r.bookingColl.CountDocuments(ctx, bson.M{"id": id})
		if cerr == nil && n == 0 {
			return apperrors.NotFound("booking %s not found", id)
		}
		return apperrors.Conflict("booking %s was modified concurrently", id)
	case database.IsWriteConflict(err):
		return apperrors.Wrap(apperrors.KindConflict, err, "booking %s", id)
	default:
		return fmt.Errorf("error updating booking %s: %w", id, err)
	}
}
