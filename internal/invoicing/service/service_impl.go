package service

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/faktura/internal/config"
	"github.com/smallbiznis/faktura/internal/invoicing/domain"
	catalogdomain "github.com/smallbiznis/faktura/internal/servicecatalog/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const numberPrefix = "RE"

var (
	oneHundred  = decimal.NewFromInt(100)
	overageUnit = 15 * time.Minute
)

type Params struct {
	fx.In

	Log    *zap.Logger
	Holder *config.InvoicingConfigHolder
	Disamb domain.DisambiguatorSource `optional:"true"`
}

type Service struct {
	log    *zap.Logger
	holder *config.InvoicingConfigHolder
	disamb domain.DisambiguatorSource
}

func New(p Params) domain.Service {
	disamb := p.Disamb
	if disamb == nil {
		disamb = RandomSource{}
	}
	return &Service{
		log:    p.Log.Named("invoicing.service"),
		holder: p.Holder,
		disamb: disamb,
	}
}

// RandomSource draws the two-digit invoice number disambiguator from the
// shared PRNG. Collisions are acceptable here; the invoice service enforces
// uniqueness against stored numbers.
type RandomSource struct{}

func (RandomSource) Next() int { return rand.IntN(90) + 10 }

func (s *Service) rates() domain.RateTable {
	settings := s.holder.Current()
	rates := make(map[catalogdomain.TaxCode]decimal.Decimal, len(settings.TaxRates))
	for code, pct := range settings.TaxRates {
		rates[catalogdomain.TaxCode(code)] = decimal.NewFromFloat(pct)
	}
	return domain.NewRateTable(rates)
}

func (s *Service) Price(def catalogdomain.ServiceDefinition, duration time.Duration, surchargeQty decimal.Decimal) (decimal.Decimal, error) {
	if def.FlatFeeThreshold <= 0 {
		return decimal.Decimal{}, domain.ErrInvalidThreshold
	}
	if duration < 0 {
		return decimal.Decimal{}, domain.ErrInvalidDuration
	}
	if surchargeQty.IsNegative() {
		return decimal.Decimal{}, domain.ErrInvalidQuantity
	}
	if def.FlatFee.IsNegative() || def.OverageRate15Min.IsNegative() {
		return decimal.Decimal{}, domain.ErrInvalidAmount
	}

	surcharge := decimal.Zero
	if def.HasSurcharge && surchargeQty.IsPositive() {
		amount, err := surchargeAmount(def.Surcharge, surchargeQty)
		if err != nil {
			return decimal.Decimal{}, err
		}
		surcharge = amount
	}

	// Threshold is inclusive: a duration exactly on it bills no overage.
	if duration <= def.FlatFeeThreshold {
		return def.FlatFee.Add(surcharge).Round(2), nil
	}

	overage := duration - def.FlatFeeThreshold
	units := int64(overage / overageUnit)
	if overage%overageUnit != 0 {
		units++
	}
	total := def.FlatFee.Add(decimal.NewFromInt(units).Mul(def.OverageRate15Min))
	return total.Add(surcharge).Round(2), nil
}

// surchargeAmount bills ceil(qty/unitSize) units. An exact multiple of the
// unit size yields exactly that multiple, never one more. The amount is
// rounded before it joins the fee total, which is rounded again.
func surchargeAmount(rule catalogdomain.SurchargeRule, qty decimal.Decimal) (decimal.Decimal, error) {
	if !rule.UnitSize.IsPositive() || rule.PricePerUnit.IsNegative() {
		return decimal.Decimal{}, domain.ErrInvalidSurcharge
	}
	units := qty.Div(rule.UnitSize).Ceil()
	return units.Mul(rule.PricePerUnit).Round(2), nil
}

func (s *Service) BuildLineItems(rendered []domain.RenderedService, surchargeQty decimal.Decimal) ([]domain.LineItem, error) {
	if len(rendered) == 0 {
		return nil, domain.ErrNoLineItems
	}

	rates := s.rates()
	items := make([]domain.LineItem, 0, len(rendered))
	for i, perf := range rendered {
		if perf.Quantity.IsNegative() {
			return nil, domain.ErrInvalidQuantity
		}
		if !domain.ValidPercent(perf.DiscountPercent) {
			return nil, domain.ErrInvalidPercent
		}

		unitPrice, err := s.Price(perf.Definition, perf.Duration, surchargeQty)
		if err != nil {
			return nil, err
		}

		rate, err := rates.Rate(perf.Definition.TaxCode)
		if err != nil {
			return nil, err
		}

		quantity := perf.Quantity
		if quantity.IsZero() {
			quantity = decimal.NewFromInt(1)
		}

		items = append(items, domain.LineItem{
			ServiceID:       perf.Definition.ID,
			Name:            perf.Definition.Name,
			Description:     perf.Definition.Description,
			Quantity:        quantity,
			UnitPrice:       unitPrice,
			TaxCode:         perf.Definition.TaxCode,
			TaxRate:         rate,
			DiscountPercent: perf.DiscountPercent,
			Unit:            perf.Definition.Unit,
			Position:        i + 1,
		})
	}
	return items, nil
}

func (s *Service) Aggregate(items []domain.LineItem, discountPct, earlyPaymentPct decimal.Decimal) (domain.Totals, error) {
	if len(items) == 0 {
		return domain.Totals{}, domain.ErrNoLineItems
	}
	if !domain.ValidPercent(discountPct) || !domain.ValidPercent(earlyPaymentPct) {
		return domain.Totals{}, domain.ErrInvalidPercent
	}

	var netSum, grossSum, taxSum decimal.Decimal
	for _, item := range items {
		netSum = netSum.Add(item.Net())
		grossSum = grossSum.Add(item.Gross())
		taxSum = taxSum.Add(item.TaxAmount())
	}
	netSum = netSum.Round(2)
	grossSum = grossSum.Round(2)
	taxSum = taxSum.Round(2)

	// The discount is computed against the net sum but subtracted from the
	// gross sum; the early-payment discount is computed against the gross
	// amount after the discount. Each step rounds its own result so errors
	// never compound through an unrounded running value.
	discountAmount := netSum.Mul(discountPct).Div(oneHundred).Round(2)
	grossAfterDiscount := grossSum.Sub(discountAmount).Round(2)
	earlyPaymentAmount := grossAfterDiscount.Mul(earlyPaymentPct).Div(oneHundred).Round(2)
	payable := grossAfterDiscount.Sub(earlyPaymentAmount)

	totals := domain.Totals{
		NetSum:                     netSum,
		GrossSum:                   grossSum,
		TaxSum:                     taxSum,
		DiscountAmount:             discountAmount,
		GrossAfterDiscount:         grossAfterDiscount,
		EarlyPaymentDiscountAmount: earlyPaymentAmount,
		PayableAmount:              payable,
	}

	if netSum.IsNegative() || grossSum.IsNegative() || taxSum.IsNegative() {
		s.log.Error("aggregation produced a negative sum",
			zap.String("net_sum", netSum.String()),
			zap.String("gross_sum", grossSum.String()),
			zap.String("tax_sum", taxSum.String()))
		return domain.Totals{}, domain.ErrInvariantViolation
	}

	return totals, nil
}

func (s *Service) Number(ts time.Time, operatorCode string) string {
	operatorCode = strings.TrimSpace(operatorCode)
	if operatorCode == "" {
		operatorCode = s.holder.Current().DefaultOperatorCode
	}
	return fmt.Sprintf("%s-%s-%02d-%s", numberPrefix, ts.UTC().Format("20060102150405"), s.disamb.Next(), operatorCode)
}
