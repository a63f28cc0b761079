// Package report renders ranked analyses into a spreadsheet for offline
// review. One workbook, a summary sheet ordered by rank and a component
// breakdown sheet behind it.
package report

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/harbourstone/dealscout/internal/model"
	"github.com/harbourstone/dealscout/internal/store"
)

var summaryHeader = []string{
	"Rank", "Address", "Suburb", "District", "Asking Price",
	"Score", "Verdict", "Strategy", "Flip ROI %", "Rental Yield %",
	"ARV", "Reno Cost", "Timeline (wk)", "Weekly Rent",
	"Subdivision Net Add", "Confidence", "Flags",
}

var componentHeader = []string{
	"Rank", "Address", "ROI", "Timeline", "Confidence",
	"Subdivision", "Location", "Insurability",
}

// Exporter writes ranked analyses to disk.
type Exporter struct {
	store   store.Store
	printer *message.Printer
}

func NewExporter(st store.Store) *Exporter {
	return &Exporter{store: st, printer: message.NewPrinter(language.English)}
}

// ExportXLSX writes the top ranked analyses to an xlsx workbook at path.
// limit <= 0 exports everything the store returns by default.
func (e *Exporter) ExportXLSX(ctx context.Context, path string, limit int) error {
	analyses, err := e.store.ListRanked(ctx, limit)
	if err != nil {
		return err
	}
	if len(analyses) == 0 {
		return eris.New("report: no scored analyses to export")
	}

	file := xlsx.NewFile()
	summary, err := file.AddSheet("Ranked Deals")
	if err != nil {
		return eris.Wrap(err, "report: add summary sheet")
	}
	components, err := file.AddSheet("Score Components")
	if err != nil {
		return eris.Wrap(err, "report: add components sheet")
	}

	writeRow(summary, summaryHeader...)
	writeRow(components, componentHeader...)

	for _, a := range analyses {
		l, err := e.store.GetListing(ctx, a.ListingID)
		if err != nil {
			return eris.Wrapf(err, "report: listing %s", a.ListingID)
		}
		e.writeSummaryRow(summary, *l, a)
		e.writeComponentRow(components, *l, a)
	}

	if err := file.Save(path); err != nil {
		return eris.Wrap(err, "report: save workbook")
	}
	zap.L().Info("report: exported",
		zap.String("path", path),
		zap.Int("analyses", len(analyses)),
	)
	return nil
}

func (e *Exporter) writeSummaryRow(sheet *xlsx.Sheet, l model.Listing, a model.Analysis) {
	row := sheet.AddRow()
	row.AddCell().SetInt(a.Rank)
	row.AddCell().SetString(l.Address)
	row.AddCell().SetString(l.Suburb)
	row.AddCell().SetString(l.District)
	row.AddCell().SetString(e.money(l.EffectivePrice()))

	score := a.Score
	row.AddCell().SetFloatWithFormat(score.Score, "0.0")
	row.AddCell().SetString(string(score.Verdict))

	strategy := ""
	flipROI, rentalYield := 0.0, 0.0
	if a.Decision != nil {
		strategy = a.Decision.Recommended
		flipROI = a.Decision.FlipROI
		rentalYield = a.Decision.RentalYield
	}
	row.AddCell().SetString(strategy)
	row.AddCell().SetFloatWithFormat(flipROI, "0.0")
	row.AddCell().SetFloatWithFormat(rentalYield, "0.0")

	var arv, reno float64
	var weeks int
	if a.ARV != nil {
		arv = a.ARV.Value
	}
	if a.Renovation != nil {
		reno = a.Renovation.Total
	}
	if a.Timeline != nil {
		weeks = a.Timeline.Weeks
	}
	row.AddCell().SetString(e.money(arv))
	row.AddCell().SetString(e.money(reno))
	row.AddCell().SetInt(weeks)

	var rent float64
	if a.RentalIncome != nil {
		rent = a.RentalIncome.WeeklyRent
	}
	row.AddCell().SetString(e.money(rent))

	var subdiv float64
	if a.Subdivision != nil && a.Subdivision.Potential {
		subdiv = a.Subdivision.NetValueAdd
	}
	row.AddCell().SetString(e.money(subdiv))

	row.AddCell().SetString(score.ConfidenceLevel)
	row.AddCell().SetString(strings.Join(score.Flags, "; "))
}

func (e *Exporter) writeComponentRow(sheet *xlsx.Sheet, l model.Listing, a model.Analysis) {
	c := a.Score.Components
	row := sheet.AddRow()
	row.AddCell().SetInt(a.Rank)
	row.AddCell().SetString(l.Address)
	row.AddCell().SetFloatWithFormat(c.ROI, "0.0")
	row.AddCell().SetFloatWithFormat(c.Timeline, "0.0")
	row.AddCell().SetFloatWithFormat(c.Confidence, "0.0")
	row.AddCell().SetFloatWithFormat(c.Subdivision, "0.0")
	row.AddCell().SetFloatWithFormat(c.Location, "0.0")
	row.AddCell().SetFloatWithFormat(c.Insurability, "0.0")
}

func (e *Exporter) money(v float64) string {
	if v == 0 {
		return ""
	}
	return e.printer.Sprintf("$%.0f", v)
}

func writeRow(sheet *xlsx.Sheet, cells ...string) {
	row := sheet.AddRow()
	for _, c := range cells {
		row.AddCell().SetString(c)
	}
}
