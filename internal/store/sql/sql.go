// Package sql stores bookmarks in a relational database through gorm.
// SQLite (pure Go driver) and PostgreSQL are supported.
package sql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	_ "modernc.org/sqlite"

	"github.com/MrSnakeDoc/linksaver/internal/domain"
	"github.com/MrSnakeDoc/linksaver/internal/logger"
	"github.com/MrSnakeDoc/linksaver/internal/store"
)

var _ store.Store = (*Store)(nil)

// bookmarkRow is the table layout. (owner_key, url) is unique, which also
// settles concurrent creates of the same URL.
type bookmarkRow struct {
	ID        string    `gorm:"primaryKey;size:36"`
	OwnerKey  string    `gorm:"size:320;not null;uniqueIndex:idx_bookmarks_owner_url,priority:1"`
	URL       string    `gorm:"size:2048;not null;uniqueIndex:idx_bookmarks_owner_url,priority:2"`
	Title     string    `gorm:"size:1024"`
	Favicon   string    `gorm:"size:2048"`
	Summary   string    `gorm:"type:text"`
	Tags      []string  `gorm:"type:text;serializer:json"`
	Position  *int      `gorm:"index"`
	CreatedAt time.Time `gorm:"autoCreateTime:false;not null"`
	UpdatedAt time.Time `gorm:"autoUpdateTime:false;not null"`
}

func (bookmarkRow) TableName() string { return "bookmarks" }

const listOrder = "position IS NULL, position ASC, created_at DESC, id ASC"

// Store is the gorm backed store.
type Store struct {
	db  *gorm.DB
	now func() time.Time
}

// Open connects to dsn and migrates the schema. DSNs starting with
// postgres:// or postgresql:// select PostgreSQL, anything else is handed to
// the SQLite driver.
func Open(dsn string, log logger.Logger) (*Store, error) {
	dialector, isSQLite := dialectorFor(dsn)

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if isSQLite {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get sql handle: %w", err)
		}
		// SQLite allows a single writer.
		sqlDB.SetMaxOpenConns(1)
	}

	s, err := New(db)
	if err != nil {
		return nil, err
	}
	log.Info("sql store ready",
		logger.String("dialect", db.Dialector.Name()))
	return s, nil
}

// New wraps an open gorm handle and migrates the schema.
func New(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&bookmarkRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate bookmarks table: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

func dialectorFor(dsn string) (gorm.Dialector, bool) {
	lower := strings.ToLower(dsn)
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return postgres.Open(dsn), false
	}
	return gormsqlite.Dialector{DriverName: "sqlite", DSN: dsn}, true
}

// Insert writes b, assigning ID and timestamps when unset.
func (s *Store) Insert(ctx context.Context, b *domain.Bookmark) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	now := s.now()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	if b.UpdatedAt.IsZero() {
		b.UpdatedAt = b.CreatedAt
	}
	b.Tags = domain.NormalizeTags(b.Tags)

	row := toRow(b)
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isDuplicate(err) {
			return fmt.Errorf("%w: %s", domain.ErrDuplicate, b.URL)
		}
		return fmt.Errorf("%w: failed to insert bookmark: %v", domain.ErrStore, err)
	}
	return nil
}

// Find returns the matching records in listing order.
func (s *Store) Find(ctx context.Context, f store.Filter) ([]domain.Bookmark, error) {
	var rows []bookmarkRow
	if err := s.scope(ctx, f).Order(listOrder).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("%w: failed to find bookmarks: %v", domain.ErrStore, err)
	}

	out := make([]domain.Bookmark, 0, len(rows))
	for i := range rows {
		b := fromRow(&rows[i])
		// tags are stored as JSON, so the tag filter runs here
		if f.Tag != "" && !domain.HasTag(b.Tags, f.Tag) {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

// UpdateOne applies u to one record matching f.
func (s *Store) UpdateOne(ctx context.Context, f store.Filter, u store.Update) (bool, error) {
	values := map[string]interface{}{}
	if u.Position != nil {
		values["position"] = *u.Position
	}
	if u.Tags != nil {
		values["tags"] = tagsJSON(domain.NormalizeTags(*u.Tags))
	}
	if !u.UpdatedAt.IsZero() {
		values["updated_at"] = u.UpdatedAt.UTC()
	}

	target, ok, err := s.pinOne(ctx, f)
	if err != nil || !ok {
		return false, err
	}
	if len(values) == 0 {
		n, err := s.Count(ctx, target)
		return n > 0, err
	}

	res := s.scope(ctx, target).Model(&bookmarkRow{}).Updates(values)
	if res.Error != nil {
		return false, fmt.Errorf("%w: failed to update bookmark: %v", domain.ErrStore, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// DeleteOne removes one record matching f.
func (s *Store) DeleteOne(ctx context.Context, f store.Filter) (bool, error) {
	target, ok, err := s.pinOne(ctx, f)
	if err != nil || !ok {
		return false, err
	}

	res := s.scope(ctx, target).Delete(&bookmarkRow{})
	if res.Error != nil {
		return false, fmt.Errorf("%w: failed to delete bookmark: %v", domain.ErrStore, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Count returns the number of matching records.
func (s *Store) Count(ctx context.Context, f store.Filter) (int, error) {
	if f.Tag != "" {
		records, err := s.Find(ctx, f)
		if err != nil {
			return 0, err
		}
		return len(records), nil
	}

	var n int64
	if err := s.scope(ctx, f).Model(&bookmarkRow{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("%w: failed to count bookmarks: %v", domain.ErrStore, err)
	}
	return int(n), nil
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// scope builds the WHERE clause for every filter field except Tag.
func (s *Store) scope(ctx context.Context, f store.Filter) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&bookmarkRow{}).Where("owner_key = ?", f.OwnerKey)
	if f.ID != "" {
		q = q.Where("id = ?", f.ID)
	}
	if f.URL != "" {
		q = q.Where("url = ?", f.URL)
	}
	if f.MissingPosition {
		q = q.Where("position IS NULL")
	}
	return q
}

// pinOne narrows f to a single record id. Filters that already carry an id
// and no tag are returned as they are, so the write itself re-checks every
// guard.
func (s *Store) pinOne(ctx context.Context, f store.Filter) (store.Filter, bool, error) {
	if f.ID != "" && f.Tag == "" {
		return f, true, nil
	}
	records, err := s.Find(ctx, f)
	if err != nil {
		return f, false, err
	}
	if len(records) == 0 {
		return f, false, nil
	}
	pinned := f
	pinned.ID = records[0].ID
	pinned.Tag = ""
	return pinned, true, nil
}

func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}

// tagsJSON encodes tags the way the json serializer stores them. Map based
// updates bypass the serializer.
func tagsJSON(tags []string) string {
	data, _ := json.Marshal(tags)
	return string(data)
}

func toRow(b *domain.Bookmark) bookmarkRow {
	return bookmarkRow{
		ID:        b.ID,
		OwnerKey:  b.OwnerKey,
		URL:       b.URL,
		Title:     b.Title,
		Favicon:   b.Favicon,
		Summary:   b.Summary,
		Tags:      b.Tags,
		Position:  b.Position,
		CreatedAt: b.CreatedAt.UTC(),
		UpdatedAt: b.UpdatedAt.UTC(),
	}
}

func fromRow(r *bookmarkRow) domain.Bookmark {
	tags := r.Tags
	if tags == nil {
		tags = []string{}
	}
	return domain.Bookmark{
		ID:        r.ID,
		OwnerKey:  r.OwnerKey,
		URL:       r.URL,
		Title:     r.Title,
		Favicon:   r.Favicon,
		Summary:   r.Summary,
		Tags:      tags,
		Position:  r.Position,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}
