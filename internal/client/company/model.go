// Package company implements the client area's Company records: the entity,
// its forms, persistence, lifecycle events and the HTTP request handler.
package company

import "time"

// Company is a client organisation managed from the client area.
type Company struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Website   string    `json:"website,omitempty"`
	Address   string    `json:"address,omitempty"`
	Zipcode   string    `json:"zipcode,omitempty"`
	City      string    `json:"city,omitempty"`
	Country   string    `json:"country,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsNew reports whether the company has not been persisted yet.
func (c Company) IsNew() bool {
	return c.ID == 0
}
