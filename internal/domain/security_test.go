package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSecurity(t *testing.T) {
	tests := []struct {
		name    string
		symbol  string
		class   Classification
		par     int64
		rate    int64
		wantErr bool
	}{
		{"preferred with rate", "GIN", Preferred, 100, 2, false},
		{"common without rate", "TEA", Common, 100, 0, false},
		{"common ignores rate", "POP", Common, 100, 8, false},
		{"empty symbol", "", Common, 100, 0, true},
		{"unknown classification", "TST", Classification(7), 100, 0, true},
		{"zero classification", "TST", 0, 100, 0, true},
		{"zero par value", "TST", Common, 0, 0, true},
		{"negative par value", "TST", Common, -1, 0, true},
		{"preferred missing rate", "TST", Preferred, 1, 0, true},
		{"negative rate", "TST", Common, 1, -1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sec, err := NewSecurity(tt.symbol, tt.class, tt.par, tt.rate)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidArgument)
				assert.True(t, sec.IsZero(), "expected zero Security on error")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.symbol, sec.Symbol())
			assert.Equal(t, tt.class, sec.Classification())
			assert.Equal(t, tt.par, sec.ParValue())
			assert.Equal(t, tt.rate, sec.FixedDividendRate())
		})
	}
}

func TestParseClassification(t *testing.T) {
	for in, want := range map[string]Classification{
		"common":     Common,
		"COMMON":     Common,
		" Preferred": Preferred,
	} {
		got, err := ParseClassification(in)
		require.NoError(t, err, "ParseClassification(%q)", in)
		assert.Equal(t, want, got, "ParseClassification(%q)", in)
	}

	_, err := ParseClassification("ordinary")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestSecurityListing_RoundTrip(t *testing.T) {
	sec, err := NewSecurity("GIN", Preferred, 100, 2)
	require.NoError(t, err)

	back, err := ListingFromSecurity(sec).Security()
	require.NoError(t, err)
	assert.Equal(t, sec, back)

	bad := SecurityListing{Symbol: "BAD", Classification: "ordinary", ParValue: 1}
	_, err = bad.Security()
	assert.ErrorIs(t, err, ErrInvalidArgument)
}
