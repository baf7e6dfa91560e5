package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// InvoicingSettings are the operator-tunable invoicing parameters. Tax rates
// are an explicit code→percentage table so a changed or fractional rate is a
// config edit, not a code change.
type InvoicingSettings struct {
	TaxRates            map[string]float64 `mapstructure:"taxRates"`
	PaymentTermsText    string             `mapstructure:"paymentTermsText"`
	DueDays             int                `mapstructure:"dueDays"`
	DefaultOperatorCode string             `mapstructure:"defaultOperatorCode"`
	Currency            string             `mapstructure:"currency"`
}

func DefaultInvoicingSettings() InvoicingSettings {
	return InvoicingSettings{
		TaxRates: map[string]float64{
			"standard": 19,
			"reduced":  7,
			"exempt":   0,
		},
		PaymentTermsText:    "Bitte überweisen Sie den Rechnungsbetrag innerhalb von 14 Tagen ohne Abzug.",
		DueDays:             14,
		DefaultOperatorCode: "CS",
		Currency:            "EUR",
	}
}

// InvoicingConfigHolder serves the current settings and hot-reloads them when
// the config file changes. Invalid updates are ignored, not applied.
type InvoicingConfigHolder struct {
	current atomic.Value // holds InvoicingSettings
}

func NewInvoicingConfigHolder() (*InvoicingConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("invoicing")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/faktura/config") // Volume-mounted config
	v.AddConfigPath("/etc/faktura")            // System config
	v.AddConfigPath(".")                       // Current directory (dev mode)

	v.SetEnvPrefix("FAKTURA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultInvoicingSettings()
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		v.SetDefault("invoicing.taxRates", defaults.TaxRates)
		v.SetDefault("invoicing.paymentTermsText", defaults.PaymentTermsText)
		v.SetDefault("invoicing.dueDays", defaults.DueDays)
		v.SetDefault("invoicing.defaultOperatorCode", defaults.DefaultOperatorCode)
		v.SetDefault("invoicing.currency", defaults.Currency)
	}

	var settings InvoicingSettings
	if err := v.UnmarshalKey("invoicing", &settings); err != nil {
		return nil, err
	}
	if err := validateInvoicingSettings(settings); err != nil {
		return nil, err
	}

	holder := &InvoicingConfigHolder{}
	holder.current.Store(settings)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated InvoicingSettings
		if err := v.UnmarshalKey("invoicing", &updated); err != nil {
			log.Printf("[invoicing-config] reload failed: %v", err)
			return
		}
		if err := validateInvoicingSettings(updated); err != nil {
			log.Printf("[invoicing-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[invoicing-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

// NewStaticInvoicingHolder returns a holder pinned to the given settings.
// Tests use it to avoid touching the filesystem.
func NewStaticInvoicingHolder(settings InvoicingSettings) *InvoicingConfigHolder {
	holder := &InvoicingConfigHolder{}
	holder.current.Store(settings)
	return holder
}

func (h *InvoicingConfigHolder) Current() InvoicingSettings {
	return h.current.Load().(InvoicingSettings)
}

func validateInvoicingSettings(settings InvoicingSettings) error {
	if len(settings.TaxRates) == 0 {
		return errors.New("invoicing.taxRates cannot be empty")
	}
	for code, rate := range settings.TaxRates {
		if rate < 0 || rate > 100 {
			return errors.New("invoicing.taxRates." + code + " must be between 0 and 100")
		}
	}
	if settings.DueDays <= 0 {
		return errors.New("invoicing.dueDays must be positive")
	}
	if strings.TrimSpace(settings.DefaultOperatorCode) == "" {
		return errors.New("invoicing.defaultOperatorCode cannot be empty")
	}
	return nil
}
