package store

import (
	"context"
	"database/sql"
	errs "errors"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/DaanHessen/fanlife/internal/util"
)

var (
	ErrNoChange = errs.New("no change")
	ErrNotFound = errs.New("save not found")
)

// Backend is a key-value store holding one serialized world per key.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, payload []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// OpenBackend connects the backend named in cfg.
func OpenBackend(ctx context.Context, cfg util.Config, log *zap.Logger) (Backend, error) {
	switch strings.ToLower(cfg.Backend) {
	case "postgres":
		db, err := Open(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return NewPostgresBackend(db), nil
	case "redis":
		return NewRedisBackend(ctx, cfg)
	case "", "memory":
		log.Warn("using in-memory saves; progress is lost on exit")
		return NewMemoryBackend(), nil
	}
	return nil, errors.Errorf("unknown backend %q", cfg.Backend)
}

// DB wraps gorm.DB and exposes Close.
type DB struct {
	gorm *gorm.DB
	sql  *sql.DB
}

func (d *DB) Close() error   { return d.sql.Close() }
func (d *DB) Gorm() *gorm.DB { return d.gorm }

// Open connects to Postgres per config.
func Open(ctx context.Context, cfg util.Config) (*DB, error) {
	if cfg.DSN == "" {
		return nil, errors.New("missing DSN")
	}
	gdb, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{})
	if err != nil {
		return nil, wrap(err, "open postgres")
	}
	sdb, err := gdb.DB()
	if err != nil {
		return nil, wrap(err, "sql handle")
	}
	sdb.SetConnMaxLifetime(30 * time.Minute)
	sdb.SetMaxOpenConns(10)
	sdb.SetMaxIdleConns(5)
	if err := sdb.PingContext(ctx); err != nil {
		return nil, wrap(err, "ping postgres")
	}
	return &DB{gorm: gdb, sql: sdb}, nil
}

// saveRecord is one row of the saves table.
type saveRecord struct {
	Key       string `gorm:"primaryKey"`
	Version   int
	Payload   []byte `gorm:"type:jsonb"`
	UpdatedAt time.Time
}

func (saveRecord) TableName() string { return "saves" }

// PostgresBackend stores saves as JSONB rows.
type PostgresBackend struct{ db *DB }

func NewPostgresBackend(db *DB) *PostgresBackend { return &PostgresBackend{db: db} }

func (p *PostgresBackend) Get(ctx context.Context, key string) ([]byte, error) {
	var rec saveRecord
	err := p.db.gorm.WithContext(ctx).Where("key = ?", key).Take(&rec).Error
	if errs.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, wrap(err, "select save")
	}
	return rec.Payload, nil
}

func (p *PostgresBackend) Put(ctx context.Context, key string, payload []byte) error {
	rec := saveRecord{Key: key, Version: payloadVersion(payload), Payload: payload, UpdatedAt: time.Now().UTC()}
	err := p.db.gorm.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"version", "payload", "updated_at"}),
	}).Create(&rec).Error
	return wrap(err, "upsert save")
}

func (p *PostgresBackend) Delete(ctx context.Context, key string) error {
	err := p.db.gorm.WithContext(ctx).Where("key = ?", key).Delete(&saveRecord{}).Error
	return wrap(err, "delete save")
}

func (p *PostgresBackend) Close() error { return p.db.Close() }

// wrap annotates err with pkg/errors and passes nil through.
func wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(err, msg)
}
