package repository

import "gorm.io/gorm"

// AutoMigrate creates or updates the schema for every table this
// subsystem touches.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&userModel{},
		&serviceModel{},
		&bookingModel{},
		&bookingDetailModel{},
		&bookingServiceModel{},
		&notificationModel{},
	)
}
