package lookup

import (
	"context"
	"strings"
)

// bondRow aggregates tenancy bond lodgements for a district.
type bondRow struct {
	threeBedMedian float64 // weekly rent for the 3-bedroom reference class
	samples        int
}

// District medians derived from published bond lodgement tables. The
// 3-bedroom figure is the reference; other sizes scale off it.
var bondRows = map[string]bondRow{
	"auckland":          {680, 240},
	"christchurch":      {560, 150},
	"wellington":        {650, 110},
	"hamilton":          {580, 95},
	"tauranga":          {640, 80},
	"dunedin":           {520, 75},
	"lower hutt":        {620, 60},
	"whangarei":         {560, 45},
	"palmerston north":  {510, 55},
	"hastings":          {560, 40},
	"new plymouth":      {530, 38},
	"rotorua":           {530, 30},
	"napier":            {570, 35},
	"invercargill":      {430, 28},
	"whanganui":         {450, 22},
	"gisborne":          {500, 14},
	"timaru":            {440, 16},
	"waitaki":           {420, 6},
	"buller":            {340, 2},
	"kawerau":           {390, 1},
}

// Region medians for the widened search.
var regionBondRows = map[string]bondRow{
	"auckland":        {670, 320},
	"canterbury":      {540, 210},
	"wellington":      {620, 170},
	"waikato":         {550, 140},
	"bay of plenty":   {600, 120},
	"otago":           {520, 100},
	"manawatu-whanganui": {480, 80},
	"hawke's bay":     {550, 70},
	"northland":       {540, 60},
	"taranaki":        {510, 50},
	"southland":       {420, 40},
	"west coast":      {360, 10},
}

// bedroomScale adjusts the 3-bedroom median for other dwelling sizes.
var bedroomScale = map[int]float64{
	1: 0.64, 2: 0.82, 3: 1.0, 4: 1.18, 5: 1.36, 6: 1.55,
}

// StaticTenancy serves bond medians from the embedded tables.
type StaticTenancy struct{}

// NewStaticTenancy creates the table-backed tenancy client.
func NewStaticTenancy() *StaticTenancy {
	return &StaticTenancy{}
}

// BondRents resolves the median weekly rent for a query. District rows are
// used unless RegionWide is set or the district is unknown.
func (s *StaticTenancy) BondRents(ctx context.Context, q RentQuery) (RentData, error) {
	if err := ctx.Err(); err != nil {
		return RentData{}, err
	}

	var row bondRow
	var ok bool
	if !q.RegionWide {
		row, ok = bondRows[normalizeArea(q.District)]
	}
	if !ok {
		row, ok = regionBondRows[strings.ToLower(strings.TrimSpace(q.Region))]
	}
	if !ok {
		return RentData{}, ErrUnavailable
	}

	scale, known := bedroomScale[q.Bedrooms]
	if !known {
		if q.Bedrooms > 6 {
			scale = bedroomScale[6]
		} else {
			scale = 1.0
		}
	}

	return RentData{
		MedianWeeklyRent: row.threeBedMedian * scale,
		Samples:          row.samples,
	}, nil
}
