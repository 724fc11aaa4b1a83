package repository

import (
	"fmt"
	"time"

	bookingRepo "servicehub/database/repository/booking"
	directoryRepo "servicehub/database/repository/directory"
	servicemanRepo "servicehub/database/repository/serviceman"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Re-export the repository interfaces.
type BookingRepository = bookingRepo.BookingRepository

type ServicemanRepository = servicemanRepo.ServicemanRepository

type Directory = directoryRepo.Directory

// Repositories is the full set of stores the booking core runs on.
type Repositories struct {
	Bookings   *bookingRepo.MongoBookingRepo
	Servicemen *servicemanRepo.MongoServicemanRepo
	Directory  Directory
}

// Open builds every repository on db and ensures their indexes. When cache is non-nil
// directory reads go through it.
func Open(db *mongo.Database, cache *redis.Client, cacheTTL time.Duration, logger *zap.Logger) (*Repositories, error) {
	servicemen, err := servicemanRepo.NewMongoServicemanRepo(db)
	if err != nil {
		return nil, fmt.Errorf("serviceman repository: %w", err)
	}
	bookings, err := bookingRepo.NewMongoBookingRepo(db)
	if err != nil {
		return nil, fmt.Errorf("booking repository: %w", err)
	}

	var directory Directory = directoryRepo.NewMongoDirectory(db)
	if cache != nil {
		directory = directoryRepo.NewCachedDirectory(directory, cache, cacheTTL, logger)
	}
	return &Repositories{Bookings: bookings, Servicemen: servicemen, Directory: directory}, nil
}
