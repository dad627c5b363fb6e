package model

import (
	"github.com/google/uuid"
)

// AvailabilityState classifies a provider's day at a glance.
type AvailabilityState string

const (
	StateUnscheduled     AvailabilityState = "unscheduled"
	StateOnLeave         AvailabilityState = "on_leave"
	StatePartialLeave    AvailabilityState = "partial_leave"
	StateFullyBooked     AvailabilityState = "fully_booked"
	StateMostlyBooked    AvailabilityState = "mostly_booked"
	StatePartiallyBooked AvailabilityState = "partially_booked"
	StateAvailable       AvailabilityState = "available"
)

// DayStatus is the resolver's rich classification of one provider-date.
type DayStatus struct {
	ProviderID     uuid.UUID         `json:"provider_id"`
	Date           string            `json:"date"`
	State          AvailabilityState `json:"state"`
	Reason         string            `json:"reason,omitempty"`
	AvailableCount int               `json:"available_count"`
	TotalValid     int               `json:"total_valid_count"`
}

// SlotReason explains why one template slot is not bookable.
type SlotReason string

const (
	ReasonBooked       SlotReason = "booked"
	ReasonOnLeave      SlotReason = "on_leave"
	ReasonPast         SlotReason = "past"
	ReasonNotScheduled SlotReason = "not_scheduled"
	ReasonUnavailable  SlotReason = "unavailable"
)

// SlotUnavailability pairs a reason with optional detail, e.g. the service
// name of the blocking booking or a leave window.
type SlotUnavailability struct {
	Reason SlotReason `json:"reason"`
	Detail string     `json:"detail,omitempty"`
}
