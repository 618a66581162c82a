package storage

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/clashwarriors/clash-warriors-sub000/internal/game"
)

type sqliteRepository struct {
	db *gorm.DB
}

func NewSQLiteRepository(db *gorm.DB) Repository {
	return &sqliteRepository{db: db}
}

func (r *sqliteRepository) CreateMatch(rec *game.MatchRecord) error {
	return r.db.Create(rec).Error
}

func (r *sqliteRepository) GetMatchByID(matchID string) (*game.MatchRecord, error) {
	var rec game.MatchRecord
	if err := r.db.Where("match_id = ?", matchID).First(&rec).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *sqliteRepository) FindMatchesByPlayer(telegramID int64) ([]game.MatchRecord, error) {
	var recs []game.MatchRecord
	err := r.db.Where("telegram_id = ? AND cancelled = ?", telegramID, false).
		Order("created_at DESC").Find(&recs).Error
	return recs, err
}

func (r *sqliteRepository) ListActiveMatches() ([]game.MatchRecord, error) {
	var recs []game.MatchRecord
	err := r.db.Where("cancelled = ?", false).Find(&recs).Error
	return recs, err
}

func (r *sqliteRepository) ListMatches() ([]game.MatchRecord, error) {
	var recs []game.MatchRecord
	err := r.db.Find(&recs).Error
	return recs, err
}

func (r *sqliteRepository) UpdateMatch(rec *game.MatchRecord) error {
	return r.db.Save(rec).Error
}

func (r *sqliteRepository) DeleteMatch(matchID string) error {
	return r.db.Where("match_id = ?", matchID).Delete(&game.MatchRecord{}).Error
}

func (r *sqliteRepository) UpsertUser(telegramID int64, username string) error {
	u := game.User{TelegramID: telegramID, Username: username}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "telegram_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"username"}),
	}).Create(&u).Error
}

func (r *sqliteRepository) GetUserByTelegramID(telegramID int64) (*game.User, error) {
	var u game.User
	if err := r.db.Where("telegram_id = ?", telegramID).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *sqliteRepository) CreditMatchResult(telegramID int64, reward int64, won bool) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var u game.User
		if err := tx.Where("telegram_id = ?", telegramID).First(&u).Error; err != nil {
			return err
		}
		u.Coins += reward
		u.GamesPlayed++
		if won {
			u.Wins++
		}
		return tx.Save(&u).Error
	})
}

func (r *sqliteRepository) GetTopPlayers(limit int) ([]game.User, error) {
	var users []game.User
	err := r.db.Order("coins DESC").Limit(limit).Find(&users).Error
	return users, err
}
