package domain

import "time"

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted:
		return true
	}
	return false
}

type PassportServiceType string

const (
	PassportServiceNew     PassportServiceType = "new"
	PassportServiceRenewal PassportServiceType = "renewal"
	PassportServiceLost    PassportServiceType = "lost"
)

func (p PassportServiceType) Valid() bool {
	switch p {
	case PassportServiceNew, PassportServiceRenewal, PassportServiceLost:
		return true
	}
	return false
}

// Reference id prefixes by service family.
const (
	RefPrefixGeneral  = "RIM"
	RefPrefixPassport = "PAS"
)

// Appointment is the single persisted entity. Date holds an ISO calendar
// date (YYYY-MM-DD) and TimeSlot one of the configured slot labels; the
// pair addresses a capacity-bounded slot. PassportServiceType and
// PassportPhoto are present only for passport-family bookings and are
// ignored by allocation.
type Appointment struct {
	ID                  string              `json:"id"`
	ServiceID           string              `json:"serviceId"`
	Name                string              `json:"name"`
	PassportNumber      string              `json:"passportNumber"`
	Phone               string              `json:"phone"`
	Email               string              `json:"email"`
	Date                string              `json:"date"`
	TimeSlot            string              `json:"time"`
	Status              Status              `json:"status"`
	CreatedAt           time.Time           `json:"createdAt"`
	PassportServiceType PassportServiceType `json:"passportServiceType,omitempty"`
	PassportPhoto       string              `json:"passportPhoto,omitempty"`
}
