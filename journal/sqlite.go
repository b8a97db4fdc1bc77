package journal

import (
	"context"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type sqliteJournal struct {
	db *gorm.DB
}

func openSqlite(path string) (*sqliteJournal, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite journal: %w", err)
	}

	// One connection keeps writers from tripping over each other.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&Entry{}); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("migrate sqlite journal: %w", err)
	}
	return &sqliteJournal{db: db}, nil
}

func (j *sqliteJournal) Record(ctx context.Context, entry *Entry) error {
	return j.db.WithContext(ctx).Create(entry).Error
}

func (j *sqliteJournal) Recent(ctx context.Context, limit int) ([]*Entry, error) {
	var entries []*Entry
	if err := j.db.WithContext(ctx).
		Order("started_at desc").Order("id desc").
		Limit(limit).
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (j *sqliteJournal) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res := j.db.WithContext(ctx).
		Where("started_at < ?", cutoff.UTC()).
		Delete(&Entry{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (j *sqliteJournal) Close() error {
	sqlDB, err := j.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
