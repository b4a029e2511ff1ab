package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumberSequenceNext(t *testing.T) {
	march2026 := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		sequence NumberSequence
		now      time.Time
		expected string
	}{
		{
			name: "increments last number",
			sequence: NumberSequence{
				Template:          "[INV]-###",
				IncrementTemplate: "###",
				LastNumber:        "[INV]-001",
			},
			now:      march2026,
			expected: "[INV]-002",
		},
		{
			name: "starts at one when no last number",
			sequence: NumberSequence{
				Template:          "[INV]-###",
				IncrementTemplate: "###",
			},
			now:      march2026,
			expected: "[INV]-001",
		},
		{
			name: "pads to the increment width",
			sequence: NumberSequence{
				Template:          "INV-#####",
				IncrementTemplate: "#####",
				LastNumber:        "INV-00041",
			},
			now:      march2026,
			expected: "INV-00042",
		},
		{
			name: "grows beyond the pad width",
			sequence: NumberSequence{
				Template:          "INV-##",
				IncrementTemplate: "##",
				LastNumber:        "INV-99",
			},
			now:      march2026,
			expected: "INV-100",
		},
		{
			name: "renders year tokens",
			sequence: NumberSequence{
				Template:          "INV-YYYY-####",
				IncrementTemplate: "####",
				LastNumber:        "INV-2026-0007",
			},
			now:      march2026,
			expected: "INV-2026-0008",
		},
		{
			name: "resets on year rollover",
			sequence: NumberSequence{
				Template:          "INV-YYYY-####",
				IncrementTemplate: "####",
				LastNumber:        "INV-2025-0131",
			},
			now:      march2026,
			expected: "INV-2026-0001",
		},
		{
			name: "resets on month rollover",
			sequence: NumberSequence{
				Template:          "YYMM-###",
				IncrementTemplate: "###",
				LastNumber:        "2602-044",
			},
			now:      march2026,
			expected: "2603-001",
		},
		{
			name: "resets when template changed",
			sequence: NumberSequence{
				Template:          "R-####",
				IncrementTemplate: "####",
				LastNumber:        "[INV]-001",
			},
			now:      march2026,
			expected: "R-0001",
		},
		{
			name: "derives the increment run from the template",
			sequence: NumberSequence{
				Template:   "INV-####",
				LastNumber: "INV-0009",
			},
			now:      march2026,
			expected: "INV-0010",
		},
		{
			name: "suffix after the increment portion",
			sequence: NumberSequence{
				Template:          "###/YYYY",
				IncrementTemplate: "###",
				LastNumber:        "012/2026",
			},
			now:      march2026,
			expected: "013/2026",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.sequence.Next(tt.now)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestNumberSequenceNextIsPure(t *testing.T) {
	seq := NumberSequence{Template: "INV-###", IncrementTemplate: "###", LastNumber: "INV-004"}
	now := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)

	first, err := seq.Next(now)
	require.NoError(t, err)
	second, err := seq.Next(now)
	require.NoError(t, err)

	assert.Equal(t, "INV-005", first)
	assert.Equal(t, first, second, "Next must not mutate the sequence")
	assert.Equal(t, "INV-004", seq.LastNumber)
}

func TestNumberSequenceNextInvalidTemplate(t *testing.T) {
	tests := []struct {
		name     string
		sequence NumberSequence
	}{
		{name: "no increment portion", sequence: NumberSequence{Template: "INV-YYYY"}},
		{name: "increment template not in template", sequence: NumberSequence{Template: "INV-##", IncrementTemplate: "####"}},
		{name: "increment template with literals", sequence: NumberSequence{Template: "INV-##", IncrementTemplate: "#x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.sequence.Next(time.Now())
			require.Error(t, err)
		})
	}
}

func TestBillingSettingsNextNumberAdvances(t *testing.T) {
	settings := NewBillingSettings(newTestTenantID())
	settings.InvoiceNumbers = NumberSequence{Template: "[INV]-###", IncrementTemplate: "###", LastNumber: "[INV]-001"}
	settings.OfferNumbers = NumberSequence{Template: "OFF-###", IncrementTemplate: "###"}
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	first, err := settings.NextNumber(DocumentKindInvoice, now)
	require.NoError(t, err)
	second, err := settings.NextNumber(DocumentKindInvoice, now)
	require.NoError(t, err)

	assert.Equal(t, "[INV]-002", first)
	assert.Equal(t, "[INV]-003", second)
	assert.Equal(t, "[INV]-003", settings.InvoiceNumbers.LastNumber)

	offer, err := settings.NextNumber(DocumentKindOffer, now)
	require.NoError(t, err)
	assert.Equal(t, "OFF-001", offer)
	assert.Equal(t, "OFF-001", settings.OfferNumbers.LastNumber)
}
