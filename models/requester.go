package models

import "fmt"

type Role string

const (
	RoleCustomer    Role = "customer"
	RoleClientAdmin Role = "client_admin"
	RoleProvider    Role = "provider"
	RoleSuperAdmin  Role = "super_admin"
	RoleSystem      Role = "system"
)

// Actor is whoever performs a lifecycle operation, as resolved by the identity layer.
type Actor struct {
	ID             string `json:"id"`
	Role           Role   `json:"role"`
	OrganizationID string `json:"organizationId,omitempty"`
}

// SystemActor is used for transitions the engine performs on its own.
var SystemActor = Actor{ID: "system", Role: RoleSystem}

// Requester is the closed set of identities allowed to request a booking.
// Only Customer and ClientAdmin implement it.
type Requester interface {
	RequesterID() string
	Role() Role
	// CanRequestFor reports whether this requester may book on behalf of organizationID.
	CanRequestFor(organizationID string) bool
	sealed()
}

// Customer books for themself with any organization.
type Customer struct {
	ID string
}

func (c Customer) RequesterID() string       { return c.ID }
func (c Customer) Role() Role                { return RoleCustomer }
func (c Customer) CanRequestFor(string) bool { return true }
func (Customer) sealed()                     {}

// ClientAdmin books on behalf of customers of the organization they administer.
type ClientAdmin struct {
	ID             string
	OrganizationID string
}

func (a ClientAdmin) RequesterID() string { return a.ID }
func (a ClientAdmin) Role() Role          { return RoleClientAdmin }
func (a ClientAdmin) CanRequestFor(organizationID string) bool {
	return a.OrganizationID != "" && a.OrganizationID == organizationID
}
func (ClientAdmin) sealed() {}

// NewRequester resolves a role discriminator into a Requester.
func NewRequester(role Role, id, organizationID string) (Requester, error) {
	if id == "" {
		return nil, fmt.Errorf("requester id is required")
	}
	switch role {
	case RoleCustomer:
		return Customer{ID: id}, nil
	case RoleClientAdmin:
		return ClientAdmin{ID: id, OrganizationID: organizationID}, nil
	default:
		return nil, fmt.Errorf("role %q cannot request bookings", role)
	}
}

// RequesterRecord is the persisted form of a Requester.
type RequesterRecord struct {
	Role           Role   `bson:"role" json:"role"`
	ID             string `bson:"id" json:"id"`
	OrganizationID string `bson:"organizationId,omitempty" json:"organizationId,omitempty"`
}

func recordOf(r Requester) RequesterRecord {
	switch v := r.(type) {
	case Customer:
		return RequesterRecord{Role: RoleCustomer, ID: v.ID}
	case ClientAdmin:
		return RequesterRecord{Role: RoleClientAdmin, ID: v.ID, OrganizationID: v.OrganizationID}
	}
	return RequesterRecord{}
}

func (r RequesterRecord) requester() (Requester, error) {
	return NewRequester(r.Role, r.ID, r.OrganizationID)
}
