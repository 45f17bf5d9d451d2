package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PriceHistory is a time-bounded unit price for exactly one Part.
// EndDate nil means the price is open-ended. IsActive is a manual
// eligibility flag, independent of the date range.
type PriceHistory struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PartID       uuid.UUID       `gorm:"type:uuid;not null;index;index:idx_price_part_start"`
	Price        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	StartDate    time.Time       `gorm:"type:date;not null;index:idx_price_part_start"`
	EndDate      *time.Time      `gorm:"type:date"`
	IsActive     bool            `gorm:"not null;default:true;index"`
	ChangeReason string
	QuoteKey     *string `gorm:"size:500"` // opaque blob-store key, quotes/{partNumber}/{YYYY}/{MM}/{filename}
	Notes        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	CreatedByID  *uuid.UUID `gorm:"type:uuid"`

	Part      *Part `gorm:"foreignKey:PartID"`
	CreatedBy *User `gorm:"foreignKey:CreatedByID;constraint:OnDelete:SET NULL"`
}

func (PriceHistory) TableName() string { return "price_histories" }

// DateOnly truncates t to midnight UTC so DATE columns and wall-clock
// timestamps compare consistently.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Overlaps reports whether the validity ranges of h and other intersect.
// Ranges are inclusive on both ends; a nil end date means unbounded.
func (h *PriceHistory) Overlaps(other *PriceHistory) bool {
	if h.EndDate == nil {
		if other.EndDate == nil {
			return true
		}
		return !DateOnly(*other.EndDate).Before(DateOnly(h.StartDate))
	}
	if other.EndDate == nil {
		return !DateOnly(*h.EndDate).Before(DateOnly(other.StartDate))
	}
	return !DateOnly(h.StartDate).After(DateOnly(*other.EndDate)) &&
		!DateOnly(*h.EndDate).Before(DateOnly(other.StartDate))
}

// IsCurrent reports whether the row prices "today": active, started, and not
// past its end date (end date inclusive).
func (h *PriceHistory) IsCurrent(today time.Time) bool {
	today = DateOnly(today)
	if !h.IsActive {
		return false
	}
	if DateOnly(h.StartDate).After(today) {
		return false
	}
	if h.EndDate != nil && DateOnly(*h.EndDate).Before(today) {
		return false
	}
	return true
}

// IsFuture reports whether the row only starts after today.
func (h *PriceHistory) IsFuture(today time.Time) bool {
	return DateOnly(h.StartDate).After(DateOnly(today))
}

// IsExpired reports whether the row's end date has passed.
func (h *PriceHistory) IsExpired(today time.Time) bool {
	return h.EndDate != nil && DateOnly(*h.EndDate).Before(DateOnly(today))
}

// ApplyExpiry force-clears IsActive when the end date has passed. Runs on
// every save, overriding an explicit active=true from the caller.
func (h *PriceHistory) ApplyExpiry(today time.Time) {
	if h.IsExpired(today) {
		h.IsActive = false
	}
}

// ConflictRange formats the validity range for overlap error messages.
func (h *PriceHistory) ConflictRange() (start, end string) {
	start = DateOnly(h.StartDate).Format("2006-01-02")
	end = "unbounded"
	if h.EndDate != nil {
		end = DateOnly(*h.EndDate).Format("2006-01-02")
	}
	return start, end
}
