// Package finance implements the two deterministic deal models, flip and
// rental hold, and the strategy decision between them. The models are pure:
// same inputs and constants, same breakdown.
package finance

import (
	"math"

	"github.com/harbourstone/dealscout/internal/config"
	"github.com/harbourstone/dealscout/internal/model"
)

// Inputs collects the estimate outputs the models consume.
type Inputs struct {
	PurchasePrice   float64
	RenovationCost  float64
	ARV             float64
	TimelineWeeks   int
	AnnualRates     float64
	AnnualInsurance float64
	WeeklyRent      float64
}

// Flip models the buy-renovate-sell scenario over the estimated timeline.
func Flip(in Inputs, cfg config.FlipConfig, roiTargetPct float64) *model.FinancialScenario {
	if in.PurchasePrice <= 0 {
		return &model.FinancialScenario{Strategy: model.StrategyFlip, InterestRate: cfg.InterestRate}
	}

	salePrice := in.ARV
	if salePrice <= 0 {
		salePrice = in.PurchasePrice * (1 + cfg.DefaultUplift)
	}

	gstRefund := in.RenovationCost * cfg.GSTRefundPct
	netReno := in.RenovationCost - gstRefund

	months := float64(in.TimelineWeeks) / cfg.WeeksPerMonth
	holdYears := months / 12
	interest := in.PurchasePrice * cfg.InterestRate * holdYears
	insurance := cfg.AnnualInsurance * holdYears
	rates := in.AnnualRates * holdYears

	commission := salePrice * cfg.CommissionPct

	totalExpenses := in.PurchasePrice + cfg.PurchaseCosts + netReno +
		interest + insurance + rates +
		commission + cfg.LegalSell + cfg.Marketing + cfg.Accounting

	grossProfit := salePrice - totalExpenses
	var tax float64
	if grossProfit > 0 {
		tax = grossProfit * cfg.TaxRate
	}
	netProfit := grossProfit - tax

	cashInvested := in.PurchasePrice + cfg.PurchaseCosts + in.RenovationCost
	var roi float64
	if cashInvested > 0 {
		roi = netProfit / cashInvested * 100
	}

	return &model.FinancialScenario{
		Strategy:       model.StrategyFlip,
		PurchasePrice:  round2(in.PurchasePrice),
		PurchaseCosts:  cfg.PurchaseCosts,
		RenovationCost: round2(in.RenovationCost),
		SalePrice:      round2(salePrice),
		GSTRefund:      round2(gstRefund),
		NetRenoCost:    round2(netReno),
		TimelineWeeks:  in.TimelineWeeks,
		TimelineMonths: math.Round(months*10) / 10,
		InterestRate:   cfg.InterestRate,
		InterestCost:   round2(interest),
		InsuranceCost:  round2(insurance),
		RatesCost:      round2(rates),
		Commission:     round2(commission),
		LegalSell:      cfg.LegalSell,
		Marketing:      cfg.Marketing,
		Accounting:     cfg.Accounting,
		TotalExpenses:  round2(totalExpenses),
		GrossProfit:    round2(grossProfit),
		Tax:            round2(tax),
		NetProfit:      round2(netProfit),
		CashInvested:   round2(cashInvested),
		ROI:            round2(roi),
		MeetsROITarget: roi >= roiTargetPct,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
