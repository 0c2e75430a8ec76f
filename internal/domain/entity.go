package domain

import (
	"time"
)

// SecurityListing is the catalog record for a security (reference data only, no trades)
type SecurityListing struct {
	Symbol            string    `gorm:"primaryKey" json:"symbol" yaml:"symbol"`
	Classification    string    `json:"classification" yaml:"classification"`
	ParValue          int64     `json:"par_value" yaml:"par_value"`
	FixedDividendRate int64     `json:"fixed_dividend_rate" yaml:"fixed_dividend_rate"`
	CreatedAt         time.Time `json:"created_at" yaml:"-"`
	UpdatedAt         time.Time `json:"updated_at" yaml:"-"`
}

// ListingFromSecurity converts a Security into its catalog record.
func ListingFromSecurity(s Security) SecurityListing {
	return SecurityListing{
		Symbol:            s.Symbol(),
		Classification:    s.Classification().String(),
		ParValue:          s.ParValue(),
		FixedDividendRate: s.FixedDividendRate(),
	}
}

// Security validates the listing and converts it back to a Security.
func (l SecurityListing) Security() (Security, error) {
	class, err := ParseClassification(l.Classification)
	if err != nil {
		return Security{}, NewInvalidArgument("listing", l.Symbol, "unknown classification "+l.Classification)
	}
	return NewSecurity(l.Symbol, class, l.ParValue, l.FixedDividendRate)
}
