package specification

import "gorm.io/gorm"

// BySourceID selects every chunk of one corpus item.
type BySourceID struct {
	SourceID string
}

func (s BySourceID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("source_id = ?", s.SourceID)
}

type BySessionID struct {
	SessionID string
}

func (s BySessionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("session_id = ?", s.SessionID)
}

// SafetyViolations selects transcripts of turns the guardrail refused.
type SafetyViolations struct{}

func (s SafetyViolations) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("safety_violation = ?", true)
}
