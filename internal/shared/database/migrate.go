package database

import (
	"buslane/internal/seats"
	"buslane/internal/trips"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&trips.Trip{},
		&seats.Seat{},
	); err != nil {
		return err
	}
	return MigrateConstraints(db)
}
