package infra

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestQuoteKey(t *testing.T) {
	uploadedAt := time.Date(2026, 6, 15, 9, 30, 0, 0, time.UTC)

	assert.Equal(t, "quotes/BRKT-001/2026/06/quote.pdf",
		QuoteKey("BRKT-001", "quote.pdf", uploadedAt))

	// A missing part number collapses cleanly instead of producing a double slash.
	assert.Equal(t, "quotes/2026/06/quote.pdf",
		QuoteKey("", "quote.pdf", uploadedAt))
}
