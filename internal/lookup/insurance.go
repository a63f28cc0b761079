package lookup

import (
	"context"
	"strings"
)

// StaticInsurance estimates premiums from the dwelling profile when no live
// insurer integration is configured.
type StaticInsurance struct{}

// NewStaticInsurance creates the estimator-backed insurance client.
func NewStaticInsurance() *StaticInsurance {
	return &StaticInsurance{}
}

// Quote derives an indicative premium from floor area and bedroom count.
// Apartments over older multi-unit structures are the usual decline case for
// investor policies; everything else quotes.
func (s *StaticInsurance) Quote(ctx context.Context, address string, details PropertyDetails) (InsuranceQuote, error) {
	if err := ctx.Err(); err != nil {
		return InsuranceQuote{}, err
	}

	floorArea := details.FloorArea
	if floorArea <= 0 {
		floorArea = 110
	}

	premium := 1_200 + floorArea*7
	if details.Bathrooms > 1 {
		premium += 150 * float64(details.Bathrooms-1)
	}

	propertyType := strings.ToLower(details.PropertyType)
	if strings.Contains(propertyType, "apartment") {
		return InsuranceQuote{
			Insurable: false,
			Note:      "multi-unit dwellings need a body-corporate policy",
		}, nil
	}

	return InsuranceQuote{
		Insurable:     true,
		AnnualPremium: premium,
		Insurer:       "indicative",
	}, nil
}
