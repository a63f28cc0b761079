package lookup

import (
	"context"
	"strings"

	"github.com/harbourstone/dealscout/internal/model"
)

// SliceSales serves comparable-sales queries from an in-memory sale set,
// typically the nearby-sales block captured with the listing.
type SliceSales struct {
	sales []model.Sale
}

// NewSliceSales creates a comparable-sales source over the given sales.
func NewSliceSales(sales []model.Sale) *SliceSales {
	return &SliceSales{sales: sales}
}

// Search filters the sale set by the query criteria. A RegionWide query
// keeps only the bedroom and recency filters.
func (s *SliceSales) Search(ctx context.Context, q CompQuery) ([]model.Sale, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []model.Sale
	for _, sale := range s.sales {
		if sale.Price <= 50_000 {
			continue // unparsed or section-only records
		}
		if !q.Since.IsZero() && sale.SoldAt.Before(q.Since) {
			continue
		}
		if q.Bedrooms > 0 && sale.Bedrooms > 0 && sale.Bedrooms != q.Bedrooms {
			continue
		}
		if q.RegionWide {
			if q.Region != "" && !strings.EqualFold(sale.Region, q.Region) {
				continue
			}
			out = append(out, sale)
			continue
		}
		if q.Suburb != "" && !strings.EqualFold(sale.Suburb, q.Suburb) {
			continue
		}
		if q.LandArea > 0 && q.LandBandPct > 0 && sale.LandArea > 0 {
			band := q.LandArea * q.LandBandPct
			if sale.LandArea < q.LandArea-band || sale.LandArea > q.LandArea+band {
				continue
			}
		}
		out = append(out, sale)
	}
	return out, nil
}
