// Package directoryRepo is the read-only service and organization directory.
package directoryRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"servicehub/apperrors"
	"servicehub/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Directory resolves referenced services and organizations.
type Directory interface {
	GetService(ctx context.Context, id string) (*models.Service, error)
	GetOrganization(ctx context.Context, id string) (*models.Organization, error)
}

// MongoDirectory reads the services and organizations collections.
type MongoDirectory struct {
	serviceColl *mongo.Collection
	orgColl     *mongo.Collection
}

func NewMongoDirectory(db *mongo.Database) *MongoDirectory {
	return &MongoDirectory{
		serviceColl: db.Collection("services"),
		orgColl:     db.Collection("organizations"),
	}
}

func (d *MongoDirectory) GetService(ctx context.Context, id string) (*models.Service, error) {
	var s models.Service
	if err := findByID(ctx, d.serviceColl, id, &s); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("service %s not found", id)
		}
		return nil, fmt.Errorf("failed to fetch service %s: %w", id, err)
	}
	return &s, nil
}

func (d *MongoDirectory) GetOrganization(ctx context.Context, id string) (*models.Organization, error) {
	var o models.Organization
	if err := findByID(ctx, d.orgColl, id, &o); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("organization %s not found", id)
		}
		return nil, fmt.Errorf("failed to fetch organization %s: %w", id, err)
	}
	return &o, nil
}

func findByID(ctx context.Context, coll *mongo.Collection, id string, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return coll.FindOne(ctx, bson.M{"id": id}).Decode(out)
}
