package finance

import (
	"github.com/harbourstone/dealscout/internal/config"
	"github.com/harbourstone/dealscout/internal/model"
)

// Rental models the first full year of a buy-renovate-hold scenario on 100%
// debt funding.
func Rental(in Inputs, cfg config.HoldConfig, yieldTargetPct float64) *model.FinancialScenario {
	if in.PurchasePrice <= 0 || in.WeeklyRent <= 0 {
		return &model.FinancialScenario{Strategy: model.StrategyRental, InterestRate: cfg.InterestRate}
	}

	totalInvested := in.PurchasePrice + cfg.PurchaseCosts + in.RenovationCost
	annualRent := in.WeeklyRent * cfg.RentWeeks

	annualInterest := totalInvested * cfg.InterestRate
	deductible := annualInterest * cfg.DeductiblePct
	mgmt := annualRent*cfg.ManagementPct + cfg.LettingFee*cfg.LettingFeeGSTMul

	totalExpenses := cfg.Accounting + in.AnnualInsurance + deductible +
		mgmt + in.AnnualRates + cfg.Repairs

	netCashSurplus := annualRent - totalExpenses
	chattels := in.RenovationCost * cfg.ChattelsDeprPct

	taxable := netCashSurplus - chattels
	var taxRefund, taxOwed float64
	if taxable < 0 {
		taxRefund = -taxable * cfg.TaxRate
	} else {
		taxOwed = taxable * cfg.TaxRate
	}
	annualCashflow := netCashSurplus + taxRefund - taxOwed

	grossYield := annualRent / totalInvested * 100
	netYield := annualCashflow / totalInvested * 100

	return &model.FinancialScenario{
		Strategy:             model.StrategyRental,
		PurchasePrice:        round2(in.PurchasePrice),
		PurchaseCosts:        cfg.PurchaseCosts,
		RenovationCost:       round2(in.RenovationCost),
		TotalInvested:        round2(totalInvested),
		WeeklyRent:           round2(in.WeeklyRent),
		AnnualRent:           round2(annualRent),
		Accounting:           cfg.Accounting,
		AnnualInsurance:      round2(in.AnnualInsurance),
		InterestRate:         cfg.InterestRate,
		AnnualInterest:       round2(annualInterest),
		DeductibleInterest:   round2(deductible),
		PropertyManagement:   round2(mgmt),
		AnnualRates:          round2(in.AnnualRates),
		Repairs:              cfg.Repairs,
		TotalExpenses:        round2(totalExpenses),
		NetCashSurplus:       round2(netCashSurplus),
		ChattelsDepreciation: round2(chattels),
		TaxableIncome:        round2(taxable),
		TaxRefund:            round2(taxRefund),
		Tax:                  round2(taxOwed),
		AnnualCashflow:       round2(annualCashflow),
		GrossYield:           round2(grossYield),
		NetYield:             round2(netYield),
		MeetsYieldTarget:     grossYield >= yieldTargetPct,
	}
}
