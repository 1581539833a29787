package database

import (
	"gorm.io/gorm"
)

// MigrateConstraints adds indexes the reservation paths depend on beyond
// what AutoMigrate derives from struct tags.
func MigrateConstraints(db *gorm.DB) error {
	// Sweeper scans by status + deadline on every operation
	err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_seats_hold_expiry
		ON seats (status, hold_until);
	`).Error
	if err != nil {
		return err
	}

	// Claim lookup is trip-scoped by code
	err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_seats_trip_claim_code
		ON seats (trip_id, claim_code);
	`).Error
	if err != nil {
		return err
	}

	// Quota counting per session token within a trip
	err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_seats_trip_hold_token
		ON seats (trip_id, hold_token);
	`).Error
	if err != nil {
		return err
	}

	return nil
}
