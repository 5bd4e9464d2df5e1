package clients

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWarranty(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	active := ClientMachine{WarrantyUntil: now.AddDate(1, 0, 0)}
	assert.Equal(t, WarrantyActive, active.Warranty(now))

	expired := ClientMachine{WarrantyUntil: now.AddDate(-1, 0, 0)}
	assert.Equal(t, WarrantyExpired, expired.Warranty(now))

	// The boundary instant still counts as active.
	exact := ClientMachine{WarrantyUntil: now}
	assert.Equal(t, WarrantyActive, exact.Warranty(now))
}
