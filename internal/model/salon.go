package model

type SalonStatus string

const (
	SalonStatusActive   SalonStatus = "active"
	SalonStatusInactive SalonStatus = "inactive"
)

// Salon groups providers; the engine only reads it to answer
// "which providers of this salon have slots on date D".
type Salon struct {
	Base
	Name     string      `db:"name" json:"name"`
	Address  string      `db:"address" json:"address,omitempty"`
	City     string      `db:"city" json:"city,omitempty"`
	Timezone string      `db:"timezone" json:"timezone,omitempty"`
	Status   SalonStatus `db:"status" json:"status"`
}
