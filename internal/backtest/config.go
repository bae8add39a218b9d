package backtest

import (
	"encoding/json"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"github.com/moznion/go-optional"
	"github.com/tidemark-labs/tidemark/internal/backtest/commission"
	"github.com/tidemark-labs/tidemark/internal/types"
	"github.com/tidemark-labs/tidemark/internal/version"
	"github.com/tidemark-labs/tidemark/pkg/errors"
)

// Mode selects what kind of data point drives the replay.
type Mode string

const (
	ModeBar  Mode = "bar"
	ModeTick Mode = "tick"
)

// Instrument selects the trading rules of the simulated venue. Spot
// venues reject the SHORT side; futures venues are fully symmetric.
type Instrument string

const (
	InstrumentFutures Instrument = "futures"
	InstrumentSpot    Instrument = "spot"
)

var (
	allModes       = []any{ModeBar, ModeTick}
	allInstruments = []any{InstrumentFutures, InstrumentSpot}
)

// Config is the engine run configuration, parsed from a YAML document
// passed to Engine.Initialize.
type Config struct {
	Symbols    []string       `yaml:"symbols" json:"symbols" jsonschema:"title=Symbols,description=Symbols to replay,minItems=1" validate:"required,min=1,dive,required"`
	Exchange   string         `yaml:"exchange" json:"exchange" jsonschema:"title=Exchange,description=Exchange label stamped on orders and trades"`
	Interval   types.Interval `yaml:"interval" json:"interval" jsonschema:"title=Interval,description=Bar aggregation period of the input series"`
	Mode       Mode           `yaml:"mode" json:"mode" jsonschema:"title=Mode,description=Replay on bars or on ticks" validate:"omitempty,oneof=bar tick"`
	Instrument Instrument     `yaml:"instrument" json:"instrument" jsonschema:"title=Instrument,description=Venue rules to simulate" validate:"omitempty,oneof=futures spot"`
	// Start is optional; data points strictly before it become the
	// warm-up prefix visible to the strategy but never replayed.
	Start optional.Option[time.Time] `yaml:"start" json:"start" jsonschema:"title=Start,description=Optional start of the replay period"`
	// End is optional and truncates the replay, inclusive.
	End optional.Option[time.Time] `yaml:"end" json:"end" jsonschema:"title=End,description=Optional end of the replay period"`
	// Rate is the commission fraction of traded value, used by the
	// default rate scheme.
	Rate float64 `yaml:"rate" json:"rate" jsonschema:"title=Commission Rate,description=Commission as a fraction of traded value,minimum=0" validate:"gte=0"`
	// Scheme picks the commission model; empty selects the rate model.
	Scheme commission.Scheme `yaml:"commission_scheme" json:"commission_scheme" jsonschema:"title=Commission Scheme,description=Commission model to apply per fill"`
	// Slippage is an absolute price offset applied against the
	// strategy on every fill.
	Slippage float64 `yaml:"slippage" json:"slippage" jsonschema:"title=Slippage,description=Absolute price offset per fill,minimum=0" validate:"gte=0"`
	// Size is the contract multiplier; every traded value is volume
	// times price times size.
	Size float64 `yaml:"size" json:"size" jsonschema:"title=Contract Size,description=Contract multiplier,minimum=0" validate:"gte=0"`
	// PriceTick rounds submitted order prices to its grid when
	// positive.
	PriceTick float64 `yaml:"price_tick" json:"price_tick" jsonschema:"title=Price Tick,description=Order prices are rounded to this grid,minimum=0" validate:"gte=0"`
	Capital   float64 `yaml:"capital" json:"capital" jsonschema:"title=Capital,description=Starting cash in account currency,minimum=0" validate:"required,gt=0"`
	// EngineVersion is an optional semver constraint the running
	// engine must satisfy, for example ">=1.1.0".
	EngineVersion string `yaml:"engine_version" json:"engine_version" jsonschema:"title=Engine Version,description=Semver constraint the engine must satisfy"`
}

// UnmarshalYAML implements custom unmarshaling so the optional time
// bounds round-trip through plain pointers.
func (c *Config) UnmarshalYAML(unmarshal func(interface{}) error) error {
	type plainConfig struct {
		Symbols       []string          `yaml:"symbols"`
		Exchange      string            `yaml:"exchange"`
		Interval      types.Interval    `yaml:"interval"`
		Mode          Mode              `yaml:"mode"`
		Instrument    Instrument        `yaml:"instrument"`
		Start         *time.Time        `yaml:"start"`
		End           *time.Time        `yaml:"end"`
		Rate          float64           `yaml:"rate"`
		Scheme        commission.Scheme `yaml:"commission_scheme"`
		Slippage      float64           `yaml:"slippage"`
		Size          float64           `yaml:"size"`
		PriceTick     float64           `yaml:"price_tick"`
		Capital       float64           `yaml:"capital"`
		EngineVersion string            `yaml:"engine_version"`
	}

	var plain plainConfig
	if err := unmarshal(&plain); err != nil {
		return err
	}

	c.Symbols = plain.Symbols
	c.Exchange = plain.Exchange
	c.Interval = plain.Interval
	c.Mode = plain.Mode
	c.Instrument = plain.Instrument
	c.Rate = plain.Rate
	c.Scheme = plain.Scheme
	c.Slippage = plain.Slippage
	c.Size = plain.Size
	c.PriceTick = plain.PriceTick
	c.Capital = plain.Capital
	c.EngineVersion = plain.EngineVersion

	if plain.Start != nil {
		c.Start = optional.Some(*plain.Start)
	}

	if plain.End != nil {
		c.End = optional.Some(*plain.End)
	}

	return nil
}

// applyDefaults fills the fields the YAML document may omit.
func (c *Config) applyDefaults() {
	if c.Mode == "" {
		c.Mode = ModeBar
	}

	if c.Instrument == "" {
		c.Instrument = InstrumentFutures
	}

	if c.Size == 0 {
		c.Size = 1
	}

	if c.Scheme == "" {
		c.Scheme = commission.SchemeRate
	}
}

// Validate checks the config before any replay starts, including the
// engine version gate.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeEngineConfigError, "invalid engine configuration", err)
	}

	if c.Start.IsSome() && c.End.IsSome() && c.End.Unwrap().Before(c.Start.Unwrap()) {
		return errors.Newf(errors.ErrCodeEngineConfigError, "end %s is before start %s",
			c.End.Unwrap().Format(time.RFC3339), c.Start.Unwrap().Format(time.RFC3339))
	}

	if err := version.CheckConstraint(version.GetVersion(), c.EngineVersion); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidVersion, "engine version gate failed", err)
	}

	return nil
}

// DefaultConfig returns a config with every optional field at its
// default. Symbols and capital still have to be provided.
func DefaultConfig() Config {
	return Config{
		Mode:       ModeBar,
		Instrument: InstrumentFutures,
		Scheme:     commission.SchemeRate,
		Size:       1,
		Start:      optional.None[time.Time](),
		End:        optional.None[time.Time](),
	}
}

// GenerateSchema generates a JSON schema for the engine configuration.
func (c *Config) GenerateSchema() (*jsonschema.Schema, error) {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		ExpandedStruct:             true,
		AllowAdditionalProperties:  false,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			if t.String() == "optional.Option[time.Time]" {
				return &jsonschema.Schema{
					Type:   "string",
					Format: "date-time",
				}
			}

			if strings.Contains(t.String(), "commission.Scheme") {
				return &jsonschema.Schema{
					Type: "string",
					Enum: commission.AllSchemes,
				}
			}

			if strings.Contains(t.String(), "backtest.Mode") {
				return &jsonschema.Schema{
					Type: "string",
					Enum: allModes,
				}
			}

			if strings.Contains(t.String(), "backtest.Instrument") {
				return &jsonschema.Schema{
					Type: "string",
					Enum: allInstruments,
				}
			}

			return nil
		},
	}

	schema := reflector.Reflect(c)

	schema.Title = "backtest-engine-config"
	schema.Description = "Configuration schema for the backtest engine"
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return schema, nil
}

// GenerateSchemaJSON generates the JSON schema as an indented string.
func (c *Config) GenerateSchemaJSON() (string, error) {
	schema, err := c.GenerateSchema()
	if err != nil {
		return "", err
	}

	schemaBytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeEngineConfigError, "failed to marshal config schema", err)
	}

	return string(schemaBytes), nil
}
