package model

import "time"

const StatusOpen = "Open"

const StatusClosed = "Closed"

// ServiceRequest is one 311 case as returned by the city's open data API.
// Empty strings and nil pointers mean the source row had no value.
type ServiceRequest struct {
	ID                int64      `json:"service_request_id"`
	Status            string     `json:"status,omitempty"`
	ServiceName       string     `json:"service_name,omitempty"`
	AgencyResponsible string     `json:"agency_responsible,omitempty"`
	Address           string     `json:"address,omitempty"`
	RequestedAt       *time.Time `json:"requested_datetime,omitempty"`
	ExpectedAt        *time.Time `json:"expected_datetime,omitempty"`
	UpdatedAt         *time.Time `json:"updated_datetime,omitempty"`
	Notes             *string    `json:"service_notes,omitempty"`
	Lat               *float64   `json:"lat,omitempty"`
	Lon               *float64   `json:"lon,omitempty"`
}

// IsDelayed reports whether the request is still open past its expected date.
func (r ServiceRequest) IsDelayed(now time.Time) bool {
	return r.Status == StatusOpen && r.ExpectedAt != nil && r.ExpectedAt.Before(now)
}

// HasLocation reports whether the request carries both coordinates.
func (r ServiceRequest) HasLocation() bool {
	return r.Lat != nil && r.Lon != nil
}
