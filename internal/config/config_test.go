package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RevBridge/internal/bridge"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

const validYAML = `
constants:
  crb_type: number_of_months
  month_period: 12
column_headers:
  initial_mapping:
    revenue: arr
  required_columns: [customer_id, product_id, month, arr]
  primary_key_columns: [customer_id, product_id]
  dimension_columns:
    country: Country
  date_format: UK
file_locations:
  path_in: data/in.csv
  flat_path_out: out/flat.csv
  waterfall_path_out: out/waterfall.csv
`

func TestLoadValid(t *testing.T) {
	cfg, err := Load(writeConfig(t, validYAML))
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.Constants.MonthPeriod)
	assert.Equal(t, "arr", cfg.Columns.InitialMapping["revenue"])
	assert.Equal(t, DateFormatUK, cfg.Columns.DateFormat)

	policy, err := cfg.Policy()
	require.NoError(t, err)
	assert.True(t, policy.Static())
	assert.Equal(t, 12, policy.Lookback())
}

func TestLoadCalendarPolicy(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
constants:
  crb_type: FQTD
  fy_start_month: 2
column_headers:
  required_columns: [customer_id, product_id, month, arr]
  primary_key_columns: [customer_id, product_id]
`))
	require.NoError(t, err)
	policy, err := cfg.Policy()
	require.NoError(t, err)
	assert.False(t, policy.Static())
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"unknown crb_type": `
constants:
  crb_type: rolling
column_headers:
  required_columns: [customer_id, product_id, month, arr]
  primary_key_columns: [customer_id]
`,
		"fixed window without month_period": `
constants:
  crb_type: number_of_months
column_headers:
  required_columns: [customer_id, product_id, month, arr]
  primary_key_columns: [customer_id]
`,
		"fiscal year month out of range": `
constants:
  crb_type: FYTD
  fy_start_month: 13
column_headers:
  required_columns: [customer_id, product_id, month, arr]
  primary_key_columns: [customer_id]
`,
		"required columns missing arr": `
constants:
  crb_type: YTD
column_headers:
  required_columns: [customer_id, product_id, month]
  primary_key_columns: [customer_id]
`,
		"primary key without customer_id": `
constants:
  crb_type: YTD
column_headers:
  required_columns: [customer_id, product_id, month, arr]
  primary_key_columns: [product_id]
`,
		"month in primary key": `
constants:
  crb_type: YTD
column_headers:
  required_columns: [customer_id, product_id, month, arr]
  primary_key_columns: [customer_id, month]
`,
		"bad date format": `
constants:
  crb_type: YTD
column_headers:
  required_columns: [customer_id, product_id, month, arr]
  primary_key_columns: [customer_id]
  date_format: EU
`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			var cfgErr *bridge.ConfigurationError
			require.ErrorAs(t, err, &cfgErr, "expected a configuration error")
		})
	}
}

func TestLoadDefaultsDateFormat(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
constants:
  crb_type: QTD
column_headers:
  required_columns: [customer_id, product_id, month, arr]
  primary_key_columns: [customer_id, product_id]
`))
	require.NoError(t, err)
	assert.Equal(t, DateFormatUK, cfg.Columns.DateFormat)
}
