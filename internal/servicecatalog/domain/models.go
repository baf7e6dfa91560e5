// Package domain contains the billable service catalog models.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// TaxCode tags a catalog entry with a tax class. The percentage applied
// for a code comes from the configured rate table, never from the tag itself.
type TaxCode string

const (
	TaxCodeStandard TaxCode = "standard"
	TaxCodeReduced  TaxCode = "reduced"
	TaxCodeExempt   TaxCode = "exempt"
)

// DisplayUnit is the UN/ECE unit code printed on an invoice line.
type DisplayUnit string

const (
	UnitHour     DisplayUnit = "HUR"
	UnitDay      DisplayUnit = "DAY"
	UnitMonth    DisplayUnit = "MON"
	UnitService  DisplayUnit = "E48"
	UnitPiece    DisplayUnit = "C62"
	UnitFlatRate DisplayUnit = "LS"
	UnitUser     DisplayUnit = "IE"
)

// SurchargeKind describes what a supplemental surcharge is staggered by.
type SurchargeKind string

const (
	SurchargeKindStorage  SurchargeKind = "STORAGE_TIER"
	SurchargeKindUsers    SurchargeKind = "USER_TIER"
	SurchargeKindLicenses SurchargeKind = "LICENSE_TIER"
	SurchargeKindStandard SurchargeKind = "STANDARD"
)

// SurchargeRule is a per-unit supplemental charge. A usage quantity is
// billed in whole units of UnitSize, rounded up.
type SurchargeRule struct {
	Kind         SurchargeKind   `gorm:"type:text" json:"kind,omitempty"`
	UnitSize     decimal.Decimal `gorm:"type:numeric(12,4)" json:"unit_size"`
	PricePerUnit decimal.Decimal `gorm:"type:numeric(12,2)" json:"price_per_unit"`
}

// ServiceDefinition is a read-only catalog entry describing how a rendered
// service is priced: a flat fee up to a duration threshold, then a rate per
// started 15-minute block, plus an optional supplemental surcharge.
type ServiceDefinition struct {
	ID                snowflake.ID      `gorm:"primaryKey" json:"id"`
	Code              string            `gorm:"uniqueIndex;not null" json:"code"`
	Name              string            `gorm:"not null" json:"name"`
	Description       string            `gorm:"type:text" json:"description,omitempty"`
	ReferenceDuration time.Duration     `gorm:"not null;default:0" json:"reference_duration"`
	FlatFee           decimal.Decimal   `gorm:"type:numeric(12,2);not null" json:"flat_fee"`
	FlatFeeThreshold  time.Duration     `gorm:"not null" json:"flat_fee_threshold"`
	OverageRate15Min  decimal.Decimal   `gorm:"column:overage_rate_15min;type:numeric(12,2);not null" json:"overage_rate_15min"`
	OnSite            bool              `gorm:"not null;default:false" json:"on_site"`
	HasSurcharge      bool              `gorm:"not null;default:false" json:"has_surcharge"`
	Surcharge         SurchargeRule     `gorm:"embedded;embeddedPrefix:surcharge_" json:"surcharge,omitempty"`
	TaxCode           TaxCode           `gorm:"type:text;not null;default:'standard'" json:"tax_code"`
	Unit              DisplayUnit       `gorm:"type:text;not null;default:'E48'" json:"unit"`
	Metadata          datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata,omitempty"`
	CreatedAt         time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt         time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (ServiceDefinition) TableName() string { return "service_definitions" }

// ValidTaxCode reports whether code is a known tax class. Callers at the
// system boundary validate once; the engine only ever sees valid tags.
func ValidTaxCode(code TaxCode) bool {
	switch code {
	case TaxCodeStandard, TaxCodeReduced, TaxCodeExempt:
		return true
	default:
		return false
	}
}

// ValidDisplayUnit reports whether unit is a known unit code.
func ValidDisplayUnit(unit DisplayUnit) bool {
	switch unit {
	case UnitHour, UnitDay, UnitMonth, UnitService, UnitPiece, UnitFlatRate, UnitUser:
		return true
	default:
		return false
	}
}

// ValidSurchargeKind reports whether kind is a known surcharge stagger.
func ValidSurchargeKind(kind SurchargeKind) bool {
	switch kind {
	case SurchargeKindStorage, SurchargeKindUsers, SurchargeKindLicenses, SurchargeKindStandard:
		return true
	default:
		return false
	}
}
