package models

import "time"

type User struct {
	ID           uint64 `gorm:"primaryKey"`
	Name         string `gorm:"size:64;not null"`
	Email        string `gorm:"size:256;unique;not null"`
	PasswordHash string `gorm:"size:128;not null"`
	CreatedAt    time.Time
}

// Verification is one completed run. Records are written once after
// aggregation and never updated or deleted.
type Verification struct {
	ID         uint64   `gorm:"primaryKey"`
	UserID     uint64   `gorm:"index;not null"`
	InputType  string   `gorm:"size:16;not null"` // url|file
	Input      string   `gorm:"size:255"`
	Transcript string   `gorm:"type:text"`
	Claims     []string `gorm:"serializer:json;type:text"`
	Score      int      `gorm:"not null"` // 0-100
	Details    []VerificationClaim
	CreatedAt  time.Time
}

// VerificationClaim is the per-claim detail embedded in a run: the claim
// text, its 0-10 sub-score and the raw evidence snippets it was judged on.
type VerificationClaim struct {
	ID             uint64 `gorm:"primaryKey"`
	VerificationID uint64 `gorm:"index;not null"`
	Position       int    `gorm:"not null"`
	Claim          string `gorm:"type:text;not null"`
	Score          int    `gorm:"not null"` // 0-10
	Snippets       string `gorm:"type:text"`
}
