package model

import "time"

type TranslationRecord struct {
	ContentHash    string    `gorm:"primaryKey;size:64" json:"content_hash"`
	SourceText     string    `gorm:"type:text;not null" json:"source_text"`
	TranslatedText string    `gorm:"type:text;not null" json:"translated_text"`
	SourceLang     string    `gorm:"size:16;index:idx_translation_pair" json:"source_lang"`
	TargetLang     string    `gorm:"size:16;index:idx_translation_pair" json:"target_lang"`
	Provider       string    `gorm:"size:50" json:"provider"`
	AccessCount    int64     `gorm:"default:0" json:"access_count"`
	CreatedAt      time.Time `json:"created_at"`
	LastAccessed   time.Time `json:"last_accessed"`
	ExpiresAt      time.Time `gorm:"index" json:"expires_at"`
}

// TranslationStats summarizes the translation cache table.
type TranslationStats struct {
	TotalRecords   int64            `json:"total_records"`
	ActiveRecords  int64            `json:"active_records"`
	ExpiredRecords int64            `json:"expired_records"`
	TotalAccesses  int64            `json:"total_accesses"`
	ByProvider     map[string]int64 `json:"by_provider"`
	ByLanguagePair map[string]int64 `json:"by_language_pair"`
}
