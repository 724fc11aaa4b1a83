package servicemanRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"servicehub/apperrors"
	"servicehub/database"
	"servicehub/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CollectionName = "servicemen"

// MongoServicemanRepo implements ServicemanRepository using MongoDB.
type MongoServicemanRepo struct {
	coll *mongo.Collection
}

// NewMongoServicemanRepo binds the repository to db and ensures its indexes.
func NewMongoServicemanRepo(db *mongo.Database) (*MongoServicemanRepo, error) {
	r := &MongoServicemanRepo{coll: db.Collection(CollectionName)}
	if err := r.ensureIndexes(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *MongoServicemanRepo) Create(ctx context.Context, s *models.Serviceman) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if s.Workload.CurrentBookings == nil {
		s.Workload.CurrentBookings = []string{}
	}
	if _, err := r.coll.InsertOne(ctx, s); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.Conflict("serviceman %s already exists", s.ID)
		}
		return fmt.Errorf("failed to create serviceman: %w", err)
	}
	return nil
}

func (r *MongoServicemanRepo) GetByID(ctx context.Context, id string) (*models.Serviceman, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var s models.Serviceman
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&s); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("serviceman %s not found", id)
		}
		return nil, fmt.Errorf("failed to fetch serviceman with id %s: %w", id, err)
	}
	return &s, nil
}

func (r *MongoServicemanRepo) FindBySkill(ctx context.Context, serviceID string) ([]models.Serviceman, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"skills.serviceId": serviceID,
		"status":           models.ServicemanAvailable,
	}
	opts := options.Find().SetSort(bson.D{{Key: "id", Value: 1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find servicemen for service %s: %w", serviceID, err)
	}
	defer cursor.Close(ctx)

	var servicemen []models.Serviceman
	for cursor.Next(ctx) {
		var s models.Serviceman
		if err := cursor.Decode(&s); err != nil {
			return nil, fmt.Errorf("failed to decode serviceman: %w", err)
		}
		servicemen = append(servicemen, s)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return servicemen, nil
}

// UpdateAvailability replaces the availability only while the bookings the
// serviceman already holds fit the new daily cap.
func (r *MongoServicemanRepo) UpdateAvailability(ctx context.Context, id string, availability models.Availability) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{"availability": availability, "updatedAt": time.Now().UTC()}}
	res, err := r.coll.UpdateOne(ctx, AvailabilityFilter(id, availability), update)
	if err != nil {
		if database.IsWriteConflict(err) {
			return apperrors.Wrap(apperrors.KindConflict, err, "update availability of %s", id)
		}
		return fmt.Errorf("failed to update availability of serviceman %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		s, err := r.GetByID(ctx, id)
		if err != nil {
			return err
		}
		return apperrors.Conflict("serviceman %s holds %d bookings, more than the new daily cap of %d",
			id, len(s.Workload.CurrentBookings), models.Serviceman{Availability: availability}.MaxBookingsPerDay())
	}
	return nil
}

func (r *MongoServicemanRepo) UpdateProfile(ctx context.Context, id string, p models.ServicemanProfile) error {
	fields := ProfileFields(p)
	if len(fields) == 0 {
		return apperrors.Validation("nothing to update")
	}
	return r.set(ctx, id, fields)
}

func (r *MongoServicemanRepo) UpdateStatus(ctx context.Context, id string, status models.ServicemanStatus) error {
	return r.set(ctx, id, bson.M{"status": status})
}

func (r *MongoServicemanRepo) set(ctx context.Context, id string, fields bson.M) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	fields["updatedAt"] = time.Now().UTC()
	res, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("failed to update serviceman %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return apperrors.NotFound("serviceman %s not found", id)
	}
	return nil
}

// ProfileFields lists the $set fields for the profile attributes present in p.
func ProfileFields(p models.ServicemanProfile) bson.M {
	fields := bson.M{}
	if p.Name != nil {
		fields["name"] = *p.Name
	}
	if p.Phone != nil {
		fields["phone"] = *p.Phone
	}
	if p.Skills != nil {
		fields["skills"] = p.Skills
	}
	if p.Location != nil {
		fields["location"] = *p.Location
	}
	return fields
}
