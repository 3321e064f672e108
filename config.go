package etfflow

import "errors"

// Config gathers every knob the components need. It is built once at the
// boundary (see cmd) and passed in explicitly; defaults are applied once by
// ApplyDefaults rather than scattered through the call graph.
type Config struct {
	// BaseURL overrides the upstream base URL; empty selects the default of
	// the active credential mode.
	BaseURL string

	// ClientID and ClientSecret select the paired-credential (v2) mode.
	// When both are set they take priority over APIKey.
	ClientID     string
	ClientSecret string
	// APIKey selects the single-token (v1) mode.
	APIKey string

	// Webhook is the outbound delivery URL. Required.
	Webhook string

	// SendETH enables the second asset kind.
	SendETH bool

	// MonthlyCeiling caps upstream calls per UTC calendar month.
	MonthlyCeiling int
	// MaxFields caps the number of records shown per notification.
	MaxFields int

	// StatePath locates the persisted state blob.
	StatePath string
	// DumpPath receives the most recent raw upstream body, for operators.
	DumpPath string
}

const (
	DefaultMonthlyCeiling = 1000
	DefaultStatePath      = "efs_state.json"
	DefaultDumpPath       = "last_payload.json"
)

// ApplyDefaults fills the zero fields that have defaults.
func (c *Config) ApplyDefaults() {
	if c.MonthlyCeiling == 0 {
		c.MonthlyCeiling = DefaultMonthlyCeiling
	}
	if c.MaxFields == 0 {
		c.MaxFields = DefaultMaxFields
	}
	if c.StatePath == "" {
		c.StatePath = DefaultStatePath
	}
	if c.DumpPath == "" {
		c.DumpPath = DefaultDumpPath
	}
}

// Assets returns the asset kinds this configuration tracks.
func (c *Config) Assets() []Asset {
	assets := []Asset{BTC}
	if c.SendETH {
		assets = append(assets, ETH)
	}
	return assets
}

// Validate checks the parts of the configuration that must be present before
// any network call is attempted.
func (c *Config) Validate() error {
	if c.Webhook == "" {
		return errors.New("delivery webhook is not configured (set DISCORD_WEBHOOK)")
	}
	if (c.ClientID == "" || c.ClientSecret == "") && c.APIKey == "" {
		return errors.New("no upstream credential configured (set SOSO_CLIENT_ID/SOSO_CLIENT_SECRET or SOSO_API_KEY)")
	}
	return nil
}
