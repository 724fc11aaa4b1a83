package models

// Service is a bookable offering of an organization.
type Service struct {
	ID             string       `bson:"id" json:"id"`
	OrganizationID string       `bson:"organizationId" json:"organizationId"`
	Name           string       `bson:"name" json:"name"`
	Category       string       `bson:"category,omitempty" json:"category,omitempty"`
	Duration       int          `bson:"duration" json:"duration"` // minutes
	BasePrice      float64      `bson:"basePrice" json:"basePrice"`
	Currency       string       `bson:"currency,omitempty" json:"currency,omitempty"`
	Active         bool         `bson:"active" json:"active"`
	Availability   Availability `bson:"availability" json:"availability"`
}

// Organization owns services and branches.
type Organization struct {
	ID     string `bson:"id" json:"id"`
	Name   string `bson:"name" json:"name"`
	Active bool   `bson:"active" json:"active"`
}
