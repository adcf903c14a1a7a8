package persist

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/mesa-rpg/battlemap-backend/internal/token"
)

type roomSnapshot struct {
	RoomCode  string `gorm:"primaryKey"`
	Tokens    []byte
	UpdatedAt time.Time
}

func (roomSnapshot) TableName() string { return "room_snapshots" }

// PostgresStore persists one row per room, the serialized sequence as a
// blob. Same replace-the-whole-snapshot contract as the file store; the
// database is a durability upgrade, not a different data model.
type PostgresStore struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewPostgresStore(dsn string, log *zap.Logger) (*PostgresStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.AutoMigrate(&roomSnapshot{}); err != nil {
		return nil, fmt.Errorf("migrate snapshots table: %w", err)
	}
	return &PostgresStore{db: db, log: log}, nil
}

func (p *PostgresStore) Load(room string) ([]token.Token, error) {
	var row roomSnapshot
	err := p.db.First(&row, "room_code = ?", room).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		p.log.Warn("snapshot row unreadable, starting empty",
			zap.String("room", room), zap.Error(err))
		return nil, nil
	}
	var tokens []token.Token
	if err := json.Unmarshal(row.Tokens, &tokens); err != nil {
		p.log.Warn("snapshot row corrupt, starting empty",
			zap.String("room", room), zap.Error(err))
		return nil, nil
	}
	return tokens, nil
}

func (p *PostgresStore) Save(room string, tokens []token.Token) error {
	if tokens == nil {
		tokens = []token.Token{}
	}
	raw, err := json.Marshal(tokens)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	row := roomSnapshot{RoomCode: room, Tokens: raw, UpdatedAt: time.Now()}
	err = p.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "room_code"}},
		DoUpdates: clause.AssignmentColumns([]string{"tokens", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("upsert snapshot: %w", err)
	}
	return nil
}
