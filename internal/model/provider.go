package model

import (
	"github.com/google/uuid"
)

type ProviderStatus string

const (
	ProviderStatusActive   ProviderStatus = "active"
	ProviderStatusInactive ProviderStatus = "inactive"
)

// Provider is a salonist: the resource the engine schedules against.
// Profile management is out of engine scope; the resolver only reads
// identity, salon association and active status.
type Provider struct {
	Base
	SalonID     uuid.UUID      `db:"salon_id" json:"salon_id"`
	Name        string         `db:"name" json:"name"`
	Title       string         `db:"title" json:"title,omitempty"`
	Status      ProviderStatus `db:"status" json:"status"`
	ServiceIDs  []uuid.UUID    `db:"-" json:"service_ids,omitempty"`
	PhoneNumber string         `db:"phone_number" json:"phone_number,omitempty"`
	Email       string         `db:"email" json:"email,omitempty"`
}

func (p *Provider) IsActive() bool {
	return p.Status == ProviderStatusActive && p.DeletedAt == nil
}
