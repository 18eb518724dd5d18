package journal

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"region-sync/core/database"

	"gorm.io/gorm"
)

// Outcomes of an applied change event.
const (
	OutcomeApplied    = "applied"
	OutcomeSuppressed = "suppressed"
	OutcomeSkipped    = "skipped"
	OutcomeFailed     = "failed"
)

// DefaultLimit is used by Recent when no positive limit is given.
const DefaultLimit = 50

// maxDetail matches the size of the detail column in bytes.
const maxDetail = 512

// Entry is one change event handled by the replication session.
type Entry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Kind      string    `gorm:"size:16;not null" json:"kind"`
	World     string    `gorm:"size:64;index" json:"world"`
	Region    string    `gorm:"size:128" json:"region"`
	ObjectID  string    `gorm:"size:24" json:"object_id"`
	Position  string    `gorm:"size:32" json:"position"`
	Outcome   string    `gorm:"size:16;not null" json:"outcome"`
	Detail    string    `gorm:"size:512" json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the journal table name.
func (Entry) TableName() string {
	return "replication_journal"
}

// Journal stores entries through GORM.
type Journal struct {
	db *gorm.DB
}

// New creates a journal over db.
func New(db *gorm.DB) *Journal {
	return &Journal{db: db}
}

// Migrate creates or updates the journal table and checks that the columns
// written by Record are present.
func (j *Journal) Migrate(ctx context.Context) error {
	if err := j.db.WithContext(ctx).AutoMigrate(&Entry{}); err != nil {
		return fmt.Errorf("failed to migrate journal: %w", err)
	}
	missing, err := database.MissingColumns(j.db.WithContext(ctx), Entry{}.TableName(),
		[]string{"id", "kind", "world", "region", "object_id", "position", "outcome", "detail", "created_at"})
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return fmt.Errorf("journal table is missing columns %v", missing)
	}
	return nil
}

// Record appends an entry.
func (j *Journal) Record(ctx context.Context, e Entry) error {
	e.Detail = truncate(e.Detail, maxDetail)
	if err := j.db.WithContext(ctx).Create(&e).Error; err != nil {
		return fmt.Errorf("failed to record journal entry: %w", err)
	}
	return nil
}

// Recent returns the newest entries first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	var entries []Entry
	if err := j.db.WithContext(ctx).Order("id desc").Limit(limit).Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to read journal: %w", err)
	}
	return entries, nil
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
