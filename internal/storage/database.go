package storage

import (
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/clashwarriors/clash-warriors-sub000/internal/game"
)

// OpenAndMigrate opens the sqlite database at the given path and keeps the
// schema updated via AutoMigrate. Match records are transient rows that live
// for the duration of a match plus a short grace window; player profiles are
// long lived.
func OpenAndMigrate(dataSourceName string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dataSourceName), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&game.MatchRecord{}, &game.User{}); err != nil {
		return nil, err
	}
	return db, nil
}
