package servicemanRepo

import (
	"context"
	"fmt"
	"time"

	"servicehub/apperrors"
	"servicehub/database"
	"servicehub/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// capExpr is the daily cap with the default applied when the preference is unset.
var capExpr = bson.M{"$cond": bson.A{
	bson.M{"$gt": bson.A{"$availability.preferences.maxBookingsPerDay", 0}},
	"$availability.preferences.maxBookingsPerDay",
	models.DefaultMaxBookingsPerDay,
}}

// ReserveFilter matches a serviceman only while bookingID is not held and a slot is free.
func ReserveFilter(servicemanID, bookingID string) bson.M {
	return bson.M{
		"id":                       servicemanID,
		"workload.currentBookings": bson.M{"$ne": bookingID},
		"$expr": bson.M{"$lt": bson.A{
			bson.M{"$size": bson.M{"$ifNull": bson.A{"$workload.currentBookings", bson.A{}}}},
			capExpr,
		}},
	}
}

// AvailabilityFilter matches a serviceman only while the bookings already held
// fit within the daily cap carried by a.
func AvailabilityFilter(servicemanID string, a models.Availability) bson.M {
	limit := models.Serviceman{Availability: a}.MaxBookingsPerDay()
	return bson.M{
		"id": servicemanID,
		"$expr": bson.M{"$lte": bson.A{
			bson.M{"$size": bson.M{"$ifNull": bson.A{"$workload.currentBookings", bson.A{}}}},
			limit,
		}},
	}
}

// ReleaseFilter matches a serviceman only while bookingID is held.
func ReleaseFilter(servicemanID, bookingID string) bson.M {
	return bson.M{"id": servicemanID, "workload.currentBookings": bookingID}
}

// ReleaseUpdate pulls bookingID and bumps the workload version. When completed is
// set the completion counter is bumped too.
func ReleaseUpdate(bookingID string, completed bool, now time.Time) bson.M {
	inc := bson.M{"workload.version": 1}
	if completed {
		inc["workload.completedBookings"] = 1
	}
	return bson.M{
		"$pull": bson.M{"workload.currentBookings": bookingID},
		"$inc":  inc,
		"$set":  bson.M{"updatedAt": now},
	}
}

// ReserveSlot adds bookingID to the serviceman's workload in a single conditional update.
func (r *MongoServicemanRepo) ReserveSlot(ctx context.Context, servicemanID, bookingID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{
		"$push": bson.M{"workload.currentBookings": bookingID},
		"$inc":  bson.M{"workload.version": 1},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}
	res, err := r.coll.UpdateOne(ctx, ReserveFilter(servicemanID, bookingID), update)
	if err != nil {
		if database.IsWriteConflict(err) {
			return false, apperrors.Wrap(apperrors.KindConflict, err, "reserve slot on %s", servicemanID)
		}
		return false, fmt.Errorf("failed to reserve slot on serviceman %s: %w", servicemanID, err)
	}
	if res.MatchedCount == 0 {
		n, err := r.coll.CountDocuments(ctx, bson.M{"id": servicemanID})
		if err != nil {
			return false, fmt.Errorf("failed to check serviceman %s: %w", servicemanID, err)
		}
		if n == 0 {
			return false, apperrors.NotFound("serviceman %s not found", servicemanID)
		}
		return false, nil
	}
	return true, nil
}

// ReleaseSlot removes bookingID from the serviceman's workload.
func (r *MongoServicemanRepo) ReleaseSlot(ctx context.Context, servicemanID, bookingID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := ReleaseIn(ctx, r.coll, servicemanID, bookingID, false); err != nil {
		if database.IsWriteConflict(err) {
			return apperrors.Wrap(apperrors.KindConflict, err, "release slot on %s", servicemanID)
		}
		return err
	}
	return nil
}

// ReleaseIn pulls bookingID from the serviceman's workload using ctx, which may be
// a session context. When completed is set the completion counter is bumped too.
// Releasing a booking that is not held is a no-op.
func ReleaseIn(ctx context.Context, coll *mongo.Collection, servicemanID, bookingID string, completed bool) error {
	if _, err := coll.UpdateOne(ctx, ReleaseFilter(servicemanID, bookingID), ReleaseUpdate(bookingID, completed, time.Now().UTC())); err != nil {
		return fmt.Errorf("failed to release slot on serviceman %s: %w", servicemanID, err)
	}
	return nil
}
