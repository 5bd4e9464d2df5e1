package clients

import "time"

type WarrantyStatus string

const (
	WarrantyActive  WarrantyStatus = "active"
	WarrantyExpired WarrantyStatus = "expired"
)

type ClientMachine struct {
	ID            string    `json:"id"`
	Model         string    `json:"model"`
	SerialNumber  string    `json:"serialNumber"`
	InstallDate   time.Time `json:"installDate"`
	WarrantyUntil time.Time `json:"warrantyUntil"`
}

// Warranty derives the display status against now; it is never stored.
func (m *ClientMachine) Warranty(now time.Time) WarrantyStatus {
	if m.WarrantyUntil.Before(now) {
		return WarrantyExpired
	}
	return WarrantyActive
}

type Client struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Address       string          `json:"address"`
	ContactPerson string          `json:"contactPerson"`
	Phone         string          `json:"phone"`
	Machines      []ClientMachine `json:"machines"`
}
