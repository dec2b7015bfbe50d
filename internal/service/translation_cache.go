package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"go-newspulse/internal/metrics"
	"go-newspulse/internal/model"
)

const translationKeyRunes = 1000

// OpenDB opens the sqlite database holding persisted state and migrates it.
func OpenDB(path string) (*gorm.DB, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", path, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&model.TranslationRecord{}); err != nil {
		return nil, fmt.Errorf("migrating database: %w", err)
	}
	return db, nil
}

// TranslationKey hashes the language pair and the first 1000 runes of text.
func TranslationKey(text, sourceLang, targetLang string) string {
	r := []rune(text)
	if len(r) > translationKeyRunes {
		r = r[:translationKeyRunes]
	}
	sum := sha256.Sum256([]byte(sourceLang + "-" + targetLang + "-" + string(r)))
	return hex.EncodeToString(sum[:])
}

// TranslationCache persists translations keyed by content hash. It never calls a provider.
type TranslationCache struct {
	db  *gorm.DB
	now func() time.Time
}

func NewTranslationCache(db *gorm.DB) *TranslationCache {
	return &TranslationCache{db: db, now: time.Now}
}

// Get returns an unexpired record and bumps its access count. Expiry is left untouched.
func (c *TranslationCache) Get(ctx context.Context, text, sourceLang, targetLang string) (*model.TranslationRecord, bool, error) {
	key := TranslationKey(text, sourceLang, targetLang)
	now := c.now().UTC()

	var rec model.TranslationRecord
	err := c.db.WithContext(ctx).
		Where("content_hash = ? AND expires_at > ?", key, now).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		metrics.TranslationCacheRequests.WithLabelValues("miss").Inc()
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading translation %s: %w", key, err)
	}

	err = c.db.WithContext(ctx).Model(&model.TranslationRecord{}).
		Where("content_hash = ?", key).
		Updates(map[string]any{
			"access_count":  gorm.Expr("access_count + ?", 1),
			"last_accessed": now,
		}).Error
	if err != nil {
		return nil, false, fmt.Errorf("touching translation %s: %w", key, err)
	}
	rec.AccessCount++
	rec.LastAccessed = now

	metrics.TranslationCacheRequests.WithLabelValues("hit").Inc()
	return &rec, true, nil
}

// Put upserts a translation; the last write wins. ttl fixes ExpiresAt at write time.
func (c *TranslationCache) Put(ctx context.Context, text, translated, sourceLang, targetLang, provider string, ttl time.Duration) (*model.TranslationRecord, error) {
	now := c.now().UTC()
	rec := &model.TranslationRecord{
		ContentHash:    TranslationKey(text, sourceLang, targetLang),
		SourceText:     text,
		TranslatedText: translated,
		SourceLang:     sourceLang,
		TargetLang:     targetLang,
		Provider:       provider,
		CreatedAt:      now,
		LastAccessed:   now,
		ExpiresAt:      now.Add(ttl),
	}
	err := c.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "content_hash"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"source_text", "translated_text", "provider", "last_accessed", "expires_at",
		}),
	}).Create(rec).Error
	if err != nil {
		return nil, fmt.Errorf("storing translation: %w", err)
	}
	return rec, nil
}

// Sweep deletes every record past its expiry and returns how many were removed.
func (c *TranslationCache) Sweep(ctx context.Context) (int64, error) {
	res := c.db.WithContext(ctx).
		Where("expires_at <= ?", c.now().UTC()).
		Delete(&model.TranslationRecord{})
	if res.Error != nil {
		return 0, fmt.Errorf("sweeping translations: %w", res.Error)
	}
	metrics.TranslationsSwept.Add(float64(res.RowsAffected))
	return res.RowsAffected, nil
}

func (c *TranslationCache) Stats(ctx context.Context) (*model.TranslationStats, error) {
	db := c.db.WithContext(ctx).Model(&model.TranslationRecord{})
	now := c.now().UTC()
	stats := &model.TranslationStats{
		ByProvider:     make(map[string]int64),
		ByLanguagePair: make(map[string]int64),
	}

	if err := db.Count(&stats.TotalRecords).Error; err != nil {
		return nil, fmt.Errorf("counting translations: %w", err)
	}
	if err := c.db.WithContext(ctx).Model(&model.TranslationRecord{}).
		Where("expires_at <= ?", now).Count(&stats.ExpiredRecords).Error; err != nil {
		return nil, fmt.Errorf("counting expired translations: %w", err)
	}
	stats.ActiveRecords = stats.TotalRecords - stats.ExpiredRecords

	if err := c.db.WithContext(ctx).Model(&model.TranslationRecord{}).
		Select("COALESCE(SUM(access_count), 0)").Scan(&stats.TotalAccesses).Error; err != nil {
		return nil, fmt.Errorf("summing accesses: %w", err)
	}

	var byProvider []struct {
		Provider string
		Count    int64
	}
	if err := c.db.WithContext(ctx).Model(&model.TranslationRecord{}).
		Select("provider, COUNT(*) AS count").Group("provider").Scan(&byProvider).Error; err != nil {
		return nil, fmt.Errorf("grouping by provider: %w", err)
	}
	for _, row := range byProvider {
		stats.ByProvider[row.Provider] = row.Count
	}

	var byPair []struct {
		SourceLang string
		TargetLang string
		Count      int64
	}
	if err := c.db.WithContext(ctx).Model(&model.TranslationRecord{}).
		Select("source_lang, target_lang, COUNT(*) AS count").
		Group("source_lang, target_lang").Scan(&byPair).Error; err != nil {
		return nil, fmt.Errorf("grouping by language pair: %w", err)
	}
	for _, row := range byPair {
		stats.ByLanguagePair[row.SourceLang+"->"+row.TargetLang] = row.Count
	}
	return stats, nil
}

func (c *TranslationCache) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
