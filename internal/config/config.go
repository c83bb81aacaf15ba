package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"RevBridge/internal/bridge"
)

// Canonical column names every input must map onto.
const (
	ColCustomerID  = "customer_id"
	ColProductID   = "product_id"
	ColMonth       = "month"
	ColARR         = "arr"
	ColIsRecurring = "is_recurring"
)

// Date formats accepted for the month column.
const (
	DateFormatUK = "UK" // dd/mm/yyyy
	DateFormatUS = "US" // mm/dd/yyyy
)

// Config is the full run configuration, loaded once and treated as read-only
// after Load returns.
type Config struct {
	Constants struct {
		CRBType      string `yaml:"crb_type"`
		MonthPeriod  int    `yaml:"month_period"`
		FYStartMonth int    `yaml:"fy_start_month"`
	} `yaml:"constants"`

	Columns struct {
		// InitialMapping renames raw input headers (normalized) onto
		// canonical names, e.g. "mrr" -> "arr".
		InitialMapping    map[string]string `yaml:"initial_mapping"`
		RequiredColumns   []string          `yaml:"required_columns"`
		PrimaryKeyColumns []string          `yaml:"primary_key_columns"`
		// DimensionColumns maps canonical input names onto display names
		// carried through to the flat output, e.g. "country" -> "Country".
		DimensionColumns map[string]string `yaml:"dimension_columns"`
		DateFormat       string            `yaml:"date_format"`
	} `yaml:"column_headers"`

	Files struct {
		PathIn           string `yaml:"path_in"`
		FlatPathOut      string `yaml:"flat_path_out"`
		WaterfallPathOut string `yaml:"waterfall_path_out"`
		WorkbookPathOut  string `yaml:"workbook_path_out"`
	} `yaml:"file_locations"`

	Service struct {
		Port     int    `yaml:"port"`
		Schedule string `yaml:"schedule"`
	} `yaml:"service"`

	Database struct {
		Enabled bool   `yaml:"enabled"`
		Schema  string `yaml:"schema"`
	} `yaml:"database"`
}

// Load reads and validates the YAML config. All cross-field rules are
// enforced here so the pipeline never has to re-check them.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Constants.CRBType {
	case bridge.TypeNumberOfMonths:
		if c.Constants.MonthPeriod < 1 {
			return &bridge.ConfigurationError{Field: "month_period", Reason: fmt.Sprintf("must be >= 1 for crb_type %s, got %d", bridge.TypeNumberOfMonths, c.Constants.MonthPeriod)}
		}
	case bridge.TypeYTD, bridge.TypeQTD:
		// fiscal year start is fixed to January for the plain variants
	case bridge.TypeFYTD, bridge.TypeFQTD:
		if c.Constants.FYStartMonth < 1 || c.Constants.FYStartMonth > 12 {
			return &bridge.ConfigurationError{Field: "fy_start_month", Reason: fmt.Sprintf("must be 1-12 for crb_type %s, got %d", c.Constants.CRBType, c.Constants.FYStartMonth)}
		}
	default:
		return &bridge.ConfigurationError{Field: "crb_type", Reason: fmt.Sprintf("must be one of %s, %s, %s, %s, %s",
			bridge.TypeNumberOfMonths, bridge.TypeYTD, bridge.TypeQTD, bridge.TypeFYTD, bridge.TypeFQTD)}
	}

	required := make(map[string]bool, len(c.Columns.RequiredColumns))
	for _, col := range c.Columns.RequiredColumns {
		required[col] = true
	}
	for _, col := range []string{ColCustomerID, ColProductID, ColMonth, ColARR} {
		if !required[col] {
			return &bridge.ConfigurationError{Field: "required_columns", Reason: fmt.Sprintf("must include %s", col)}
		}
	}

	if len(c.Columns.PrimaryKeyColumns) == 0 {
		return &bridge.ConfigurationError{Field: "primary_key_columns", Reason: "must not be empty"}
	}
	hasCustomer := false
	for _, col := range c.Columns.PrimaryKeyColumns {
		if col == ColCustomerID {
			hasCustomer = true
		}
		if col == ColMonth || col == ColARR {
			return &bridge.ConfigurationError{Field: "primary_key_columns", Reason: fmt.Sprintf("%s cannot be part of the primary key", col)}
		}
	}
	if !hasCustomer {
		return &bridge.ConfigurationError{Field: "primary_key_columns", Reason: "must include customer_id"}
	}

	switch strings.ToUpper(c.Columns.DateFormat) {
	case DateFormatUK, DateFormatUS:
	case "":
		c.Columns.DateFormat = DateFormatUK
	default:
		return &bridge.ConfigurationError{Field: "date_format", Reason: fmt.Sprintf("must be %s or %s, got %q", DateFormatUK, DateFormatUS, c.Columns.DateFormat)}
	}
	c.Columns.DateFormat = strings.ToUpper(c.Columns.DateFormat)

	if c.Database.Enabled && c.Database.Schema == "" {
		c.Database.Schema = "revbridge"
	}
	return nil
}

// Policy builds the period policy the constants describe. Constructed once
// here and passed explicitly to everything downstream.
func (c *Config) Policy() (bridge.PeriodPolicy, error) {
	if c.Constants.CRBType == bridge.TypeNumberOfMonths {
		w, err := bridge.NewFixedWindow(c.Constants.MonthPeriod)
		if err != nil {
			return nil, err
		}
		return w, nil
	}
	w, err := bridge.NewCalendarWindow(c.Constants.CRBType, c.Constants.FYStartMonth)
	if err != nil {
		return nil, err
	}
	return w, nil
}
