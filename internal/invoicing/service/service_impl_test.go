package service

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/faktura/internal/config"
	"github.com/smallbiznis/faktura/internal/invoicing/domain"
	catalogdomain "github.com/smallbiznis/faktura/internal/servicecatalog/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixedSource struct{ value int }

func (s fixedSource) Next() int { return s.value }

func newTestService(t *testing.T) *Service {
	t.Helper()
	svc := New(Params{
		Log:    zap.NewNop(),
		Holder: config.NewStaticInvoicingHolder(config.DefaultInvoicingSettings()),
		Disamb: fixedSource{value: 42},
	})
	return svc.(*Service)
}

func metered(flatFee int64, threshold time.Duration, overageRate int64) catalogdomain.ServiceDefinition {
	return catalogdomain.ServiceDefinition{
		Name:             "Systemwartung",
		FlatFee:          decimal.NewFromInt(flatFee),
		FlatFeeThreshold: threshold,
		OverageRate15Min: decimal.NewFromInt(overageRate),
		TaxCode:          catalogdomain.TaxCodeStandard,
		Unit:             catalogdomain.UnitService,
	}
}

func TestPrice(t *testing.T) {
	svc := newTestService(t)

	t.Run("within threshold bills the flat fee only", func(t *testing.T) {
		price, err := svc.Price(metered(100, time.Hour, 20), 30*time.Minute, decimal.Zero)
		require.NoError(t, err)
		assert.Equal(t, "100.00", price.StringFixed(2))
	})

	t.Run("threshold is inclusive", func(t *testing.T) {
		price, err := svc.Price(metered(100, time.Hour, 20), time.Hour, decimal.Zero)
		require.NoError(t, err)
		assert.Equal(t, "100.00", price.StringFixed(2))
	})

	t.Run("one second over the threshold bills one overage unit", func(t *testing.T) {
		price, err := svc.Price(metered(100, time.Hour, 20), time.Hour+time.Second, decimal.Zero)
		require.NoError(t, err)
		assert.Equal(t, "120.00", price.StringFixed(2))
	})

	t.Run("30 minutes of overage bills two units", func(t *testing.T) {
		price, err := svc.Price(metered(100, time.Hour, 20), 90*time.Minute, decimal.Zero)
		require.NoError(t, err)
		assert.Equal(t, "140.00", price.StringFixed(2))
	})

	t.Run("overage one second past a unit boundary starts the next unit", func(t *testing.T) {
		price, err := svc.Price(metered(100, time.Hour, 20), 90*time.Minute+time.Second, decimal.Zero)
		require.NoError(t, err)
		assert.Equal(t, "160.00", price.StringFixed(2))
	})

	t.Run("surcharge on exact multiple bills exactly quantity/unitSize units", func(t *testing.T) {
		def := metered(100, time.Hour, 20)
		def.HasSurcharge = true
		def.Surcharge = catalogdomain.SurchargeRule{
			Kind:         catalogdomain.SurchargeKindStorage,
			UnitSize:     decimal.NewFromInt(5),
			PricePerUnit: decimal.NewFromInt(10),
		}
		price, err := svc.Price(def, 30*time.Minute, decimal.NewFromInt(10))
		require.NoError(t, err)
		assert.Equal(t, "120.00", price.StringFixed(2))
	})

	t.Run("surcharge rounds up partial units", func(t *testing.T) {
		def := metered(100, time.Hour, 20)
		def.HasSurcharge = true
		def.Surcharge = catalogdomain.SurchargeRule{
			UnitSize:     decimal.NewFromInt(5),
			PricePerUnit: decimal.NewFromInt(10),
		}
		price, err := svc.Price(def, 30*time.Minute, decimal.NewFromInt(11))
		require.NoError(t, err)
		assert.Equal(t, "130.00", price.StringFixed(2))
	})

	t.Run("surcharge is rounded before joining the fee total", func(t *testing.T) {
		def := metered(100, time.Hour, 20)
		def.HasSurcharge = true
		def.Surcharge = catalogdomain.SurchargeRule{
			UnitSize:     decimal.NewFromInt(3),
			PricePerUnit: decimal.RequireFromString("0.333"),
		}
		// ceil(7/3)=3 units -> 0.999 -> 1.00 before the final round
		price, err := svc.Price(def, 30*time.Minute, decimal.NewFromInt(7))
		require.NoError(t, err)
		assert.Equal(t, "101.00", price.StringFixed(2))
	})

	t.Run("surcharge ignored without a positive quantity", func(t *testing.T) {
		def := metered(100, time.Hour, 20)
		def.HasSurcharge = true
		def.Surcharge = catalogdomain.SurchargeRule{
			UnitSize:     decimal.NewFromInt(5),
			PricePerUnit: decimal.NewFromInt(10),
		}
		price, err := svc.Price(def, 30*time.Minute, decimal.Zero)
		require.NoError(t, err)
		assert.Equal(t, "100.00", price.StringFixed(2))
	})

	t.Run("rejects invalid input instead of clamping", func(t *testing.T) {
		def := metered(100, time.Hour, 20)

		_, err := svc.Price(def, -time.Minute, decimal.Zero)
		assert.ErrorIs(t, err, domain.ErrInvalidDuration)

		_, err = svc.Price(metered(100, 0, 20), 30*time.Minute, decimal.Zero)
		assert.ErrorIs(t, err, domain.ErrInvalidThreshold)

		_, err = svc.Price(def, 30*time.Minute, decimal.NewFromInt(-1))
		assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

		bad := metered(100, time.Hour, 20)
		bad.HasSurcharge = true
		bad.Surcharge = catalogdomain.SurchargeRule{UnitSize: decimal.Zero, PricePerUnit: decimal.NewFromInt(1)}
		_, err = svc.Price(bad, 30*time.Minute, decimal.NewFromInt(1))
		assert.ErrorIs(t, err, domain.ErrInvalidSurcharge)
	})
}

func TestLineItemDerivedAmounts(t *testing.T) {
	t.Run("discounted line", func(t *testing.T) {
		item := domain.LineItem{
			Quantity:        decimal.NewFromInt(2),
			UnitPrice:       decimal.NewFromInt(50),
			TaxRate:         decimal.NewFromInt(19),
			DiscountPercent: decimal.NewFromInt(10),
		}
		assert.Equal(t, "90.00", item.Net().StringFixed(2))
		assert.Equal(t, "17.10", item.TaxAmount().StringFixed(2))
		assert.Equal(t, "107.10", item.Gross().StringFixed(2))
	})

	t.Run("plain line", func(t *testing.T) {
		item := domain.LineItem{
			Quantity:  decimal.NewFromInt(1),
			UnitPrice: decimal.NewFromInt(100),
			TaxRate:   decimal.NewFromInt(19),
		}
		assert.Equal(t, "100.00", item.Net().StringFixed(2))
		assert.Equal(t, "19.00", item.TaxAmount().StringFixed(2))
		assert.Equal(t, "119.00", item.Gross().StringFixed(2))
	})

	t.Run("tax is rounded from net, not derived from gross minus net", func(t *testing.T) {
		item := domain.LineItem{
			Quantity:  decimal.NewFromInt(3),
			UnitPrice: decimal.RequireFromString("33.33"),
			TaxRate:   decimal.NewFromInt(19),
		}
		net := item.Net()
		assert.Equal(t, net.Mul(decimal.NewFromInt(19)).Div(decimal.NewFromInt(100)).Round(2).String(), item.TaxAmount().String())
	})
}

func TestBuildLineItems(t *testing.T) {
	svc := newTestService(t)

	t.Run("assigns positions and resolves tax rates", func(t *testing.T) {
		first := metered(100, time.Hour, 20)
		second := metered(80, time.Hour, 15)
		second.TaxCode = catalogdomain.TaxCodeReduced

		items, err := svc.BuildLineItems([]domain.RenderedService{
			{Definition: first, Duration: 30 * time.Minute},
			{Definition: second, Duration: 90 * time.Minute},
		}, decimal.Zero)
		require.NoError(t, err)
		require.Len(t, items, 2)

		assert.Equal(t, 1, items[0].Position)
		assert.Equal(t, 2, items[1].Position)
		assert.Equal(t, "1", items[0].Quantity.String())
		assert.Equal(t, "19", items[0].TaxRate.String())
		assert.Equal(t, "7", items[1].TaxRate.String())
		assert.Equal(t, "100.00", items[0].UnitPrice.StringFixed(2))
		assert.Equal(t, "110.00", items[1].UnitPrice.StringFixed(2))
	})

	t.Run("rejects an empty list", func(t *testing.T) {
		_, err := svc.BuildLineItems(nil, decimal.Zero)
		assert.ErrorIs(t, err, domain.ErrNoLineItems)
	})

	t.Run("rejects an unknown tax code", func(t *testing.T) {
		def := metered(100, time.Hour, 20)
		def.TaxCode = catalogdomain.TaxCode("luxury")
		_, err := svc.BuildLineItems([]domain.RenderedService{
			{Definition: def, Duration: 30 * time.Minute},
		}, decimal.Zero)
		assert.ErrorIs(t, err, domain.ErrUnknownTaxCode)
	})

	t.Run("rejects an out-of-range line discount", func(t *testing.T) {
		_, err := svc.BuildLineItems([]domain.RenderedService{
			{Definition: metered(100, time.Hour, 20), Duration: 30 * time.Minute, DiscountPercent: decimal.NewFromInt(101)},
		}, decimal.Zero)
		assert.ErrorIs(t, err, domain.ErrInvalidPercent)
	})
}

func aggregateFixture() []domain.LineItem {
	return []domain.LineItem{
		{
			Quantity:        decimal.NewFromInt(2),
			UnitPrice:       decimal.NewFromInt(50),
			TaxRate:         decimal.NewFromInt(19),
			DiscountPercent: decimal.NewFromInt(10),
			Position:        1,
		},
		{
			Quantity:  decimal.NewFromInt(1),
			UnitPrice: decimal.NewFromInt(100),
			TaxRate:   decimal.NewFromInt(19),
			Position:  2,
		},
	}
}

func TestAggregate(t *testing.T) {
	svc := newTestService(t)

	t.Run("mandated calculation order", func(t *testing.T) {
		totals, err := svc.Aggregate(aggregateFixture(), decimal.NewFromInt(10), decimal.NewFromInt(2))
		require.NoError(t, err)

		assert.Equal(t, "190.00", totals.NetSum.StringFixed(2))
		assert.Equal(t, "226.10", totals.GrossSum.StringFixed(2))
		assert.Equal(t, "36.10", totals.TaxSum.StringFixed(2))
		// discount against net, subtracted from gross
		assert.Equal(t, "19.00", totals.DiscountAmount.StringFixed(2))
		assert.Equal(t, "207.10", totals.GrossAfterDiscount.StringFixed(2))
		// early-payment discount against the already-discounted gross
		assert.Equal(t, "4.14", totals.EarlyPaymentDiscountAmount.StringFixed(2))
		assert.Equal(t, "202.96", totals.PayableAmount.StringFixed(2))
	})

	t.Run("reordering the discount chain changes the payable amount", func(t *testing.T) {
		totals, err := svc.Aggregate(aggregateFixture(), decimal.NewFromInt(10), decimal.NewFromInt(2))
		require.NoError(t, err)

		// Early-payment discount taken against the undiscounted gross sum.
		hundred := decimal.NewFromInt(100)
		swappedEarlyPayment := totals.GrossSum.Mul(decimal.NewFromInt(2)).Div(hundred).Round(2)
		swappedPayable := totals.GrossSum.Sub(totals.DiscountAmount).Sub(swappedEarlyPayment)

		assert.False(t, swappedPayable.Equal(totals.PayableAmount),
			"swapped order must not produce the mandated payable amount")
	})

	t.Run("aggregation is idempotent", func(t *testing.T) {
		first, err := svc.Aggregate(aggregateFixture(), decimal.NewFromInt(10), decimal.NewFromInt(2))
		require.NoError(t, err)
		second, err := svc.Aggregate(aggregateFixture(), decimal.NewFromInt(10), decimal.NewFromInt(2))
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("every total has at most two decimal digits", func(t *testing.T) {
		items := []domain.LineItem{
			{
				Quantity:        decimal.RequireFromString("3"),
				UnitPrice:       decimal.RequireFromString("33.37"),
				TaxRate:         decimal.NewFromInt(19),
				DiscountPercent: decimal.RequireFromString("3.5"),
			},
			{
				Quantity:  decimal.RequireFromString("7"),
				UnitPrice: decimal.RequireFromString("14.99"),
				TaxRate:   decimal.NewFromInt(7),
			},
		}
		totals, err := svc.Aggregate(items, decimal.RequireFromString("2.5"), decimal.RequireFromString("1.5"))
		require.NoError(t, err)

		for name, amount := range map[string]decimal.Decimal{
			"net_sum":                       totals.NetSum,
			"gross_sum":                     totals.GrossSum,
			"tax_sum":                       totals.TaxSum,
			"discount_amount":               totals.DiscountAmount,
			"gross_after_discount":          totals.GrossAfterDiscount,
			"early_payment_discount_amount": totals.EarlyPaymentDiscountAmount,
			"payable_amount":                totals.PayableAmount,
		} {
			assert.True(t, amount.Exponent() >= -2, "%s has more than two decimals: %s", name, amount.String())
		}
	})

	t.Run("zero percentages leave the gross sum payable", func(t *testing.T) {
		totals, err := svc.Aggregate(aggregateFixture(), decimal.Zero, decimal.Zero)
		require.NoError(t, err)
		assert.Equal(t, totals.GrossSum.StringFixed(2), totals.PayableAmount.StringFixed(2))
	})

	t.Run("rejects empty input and out-of-range percentages", func(t *testing.T) {
		_, err := svc.Aggregate(nil, decimal.Zero, decimal.Zero)
		assert.ErrorIs(t, err, domain.ErrNoLineItems)

		_, err = svc.Aggregate(aggregateFixture(), decimal.NewFromInt(101), decimal.Zero)
		assert.ErrorIs(t, err, domain.ErrInvalidPercent)

		_, err = svc.Aggregate(aggregateFixture(), decimal.Zero, decimal.NewFromInt(-1))
		assert.ErrorIs(t, err, domain.ErrInvalidPercent)
	})
}

func TestNumber(t *testing.T) {
	svc := newTestService(t)
	ts := time.Date(2025, 10, 25, 14, 30, 5, 0, time.UTC)

	t.Run("formats prefix, timestamp, disambiguator and operator", func(t *testing.T) {
		assert.Equal(t, "RE-20251025143005-42-AB", svc.Number(ts, "AB"))
	})

	t.Run("falls back to the configured operator code", func(t *testing.T) {
		assert.Equal(t, "RE-20251025143005-42-CS", svc.Number(ts, ""))
		assert.Equal(t, "RE-20251025143005-42-CS", svc.Number(ts, "   "))
	})

	t.Run("numbers sort by timestamp", func(t *testing.T) {
		earlier := svc.Number(ts, "AB")
		later := svc.Number(ts.Add(time.Second), "AB")
		assert.Less(t, earlier, later)
	})
}
