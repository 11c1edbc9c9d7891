package dao

import "gorm.io/gorm"

func InitTables(db *gorm.DB) error {
	err := db.AutoMigrate(
		&Event{},
		&Team{},
		&Order{},
		&OrderItem{},
		&DrinkSale{},
		&OrderLog{},
		&ShotLog{},
	)
	if err != nil {
		return err
	}

	// At most one event may be active. Both postgres and sqlite support
	// partial indexes.
	return db.Exec(
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_events_single_active ON events (is_active) WHERE is_active = true",
	).Error
}
