package engine

import (
	"time"

	"gorm.io/gorm"

	"github.com/choretab/choretab/models"
)

// Ledger is the append-only points log and the sole source of truth for
// earned points. There is deliberately no update or delete path: corrections
// are compensating entries.
type Ledger struct {
	db *gorm.DB
}

// NewLedger creates a ledger over db.
func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

// Append writes one entry within tx. Negative deltas require the
// administrative override flag. The caller stamps CreatedAt from its clock;
// the ledger never reads the wall clock itself.
func (l *Ledger) Append(tx *gorm.DB, entry *models.PointsEntry, adminOverride bool) error {
	if entry.Delta < 0 && !adminOverride {
		return &ValidationError{Field: "delta", Reason: "negative delta requires admin override"}
	}
	if entry.Reason == "" {
		return &ValidationError{Field: "reason", Reason: "must not be empty"}
	}
	if entry.CreatedAt.IsZero() {
		return &ValidationError{Field: "created_at", Reason: "must be set by the caller"}
	}
	if err := tx.Create(entry).Error; err != nil {
		return storeErr("append ledger entry", err)
	}
	return nil
}

// SumFor returns the sum of deltas for a user, optionally bounded to
// [from, to). It is a pure read and never blocks concurrent appends.
func (l *Ledger) SumFor(userID uint, from, to *time.Time) (int, error) {
	q := l.db.Model(&models.PointsEntry{}).Where("user_id = ?", userID)
	if from != nil {
		q = q.Where("created_at >= ?", *from)
	}
	if to != nil {
		q = q.Where("created_at < ?", *to)
	}
	var sum int64
	if err := q.Select("COALESCE(SUM(delta),0)").Scan(&sum).Error; err != nil {
		return 0, storeErr("sum ledger entries", err)
	}
	return int(sum), nil
}

// EntriesFor returns all entries for a user, newest first.
func (l *Ledger) EntriesFor(userID uint) ([]models.PointsEntry, error) {
	var entries []models.PointsEntry
	if err := l.db.Where("user_id = ?", userID).Order("created_at DESC, id DESC").Find(&entries).Error; err != nil {
		return nil, storeErr("list ledger entries", err)
	}
	return entries, nil
}
