package marketdata

import (
	"encoding/json"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/tidemark-labs/tidemark/pkg/errors"
	"github.com/tidemark-labs/tidemark/pkg/marketdata/provider"
)

// DownloadConfig is a parsed provider specific download request. It
// carries everything needed to build a client and run one download.
type DownloadConfig interface {
	Validate() error
	ToDownloadParams() (DownloadParams, error)
	ToClientConfig(dataPath string) ClientConfig
}

// BaseDownloadConfig contains the fields every provider shares.
type BaseDownloadConfig struct {
	Ticker    string `json:"ticker" jsonschema:"title=Ticker,description=The trading symbol to download data for (e.g. SPY or BTCUSDT),required" validate:"required"`
	StartDate string `json:"startDate" jsonschema:"title=Start Date,description=Start of the download window in RFC3339,format=date-time,required" validate:"required"`
	EndDate   string `json:"endDate" jsonschema:"title=End Date,description=End of the download window in RFC3339,format=date-time,required" validate:"required"`
	Interval  string `json:"interval" jsonschema:"title=Interval,description=Bar aggregation period,required,enum=1m,enum=5m,enum=15m,enum=30m,enum=1h,enum=4h,enum=6h,enum=8h,enum=12h,enum=1d,enum=1w,enum=1M" validate:"required,oneof=1m 5m 15m 30m 1h 4h 6h 8h 12h 1d 1w 1M"`
}

// PolygonDownloadConfig is the download request for Polygon.io.
type PolygonDownloadConfig struct {
	BaseDownloadConfig

	APIKey string `json:"apiKey" jsonschema:"title=API Key,description=Polygon.io API key,required" validate:"required"`
}

// BinanceDownloadConfig is the download request for Binance. The
// public kline endpoints need no credentials.
type BinanceDownloadConfig struct {
	BaseDownloadConfig
}

// Validate checks the shared fields and the date formats.
func (c *BaseDownloadConfig) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid download config", err)
	}

	if _, err := time.Parse(time.RFC3339, c.StartDate); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid startDate, expected RFC3339", err)
	}

	if _, err := time.Parse(time.RFC3339, c.EndDate); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid endDate, expected RFC3339", err)
	}

	return nil
}

// Validate checks the Polygon specific fields on top of the shared
// ones.
func (c *PolygonDownloadConfig) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid download config", err)
	}

	return c.BaseDownloadConfig.Validate()
}

// Validate implements DownloadConfig.
func (c *BinanceDownloadConfig) Validate() error {
	return c.BaseDownloadConfig.Validate()
}

// ToDownloadParams converts the config into client download
// parameters.
func (c *BaseDownloadConfig) ToDownloadParams() (DownloadParams, error) {
	startDate, err := time.Parse(time.RFC3339, c.StartDate)
	if err != nil {
		return DownloadParams{}, errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid startDate, expected RFC3339", err)
	}

	endDate, err := time.Parse(time.RFC3339, c.EndDate)
	if err != nil {
		return DownloadParams{}, errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid endDate, expected RFC3339", err)
	}

	return DownloadParams{
		Ticker:    c.Ticker,
		StartDate: startDate,
		EndDate:   endDate,
		Timespan:  provider.Timespan(c.Interval),
	}, nil
}

// ToClientConfig implements DownloadConfig.
func (c *PolygonDownloadConfig) ToClientConfig(dataPath string) ClientConfig {
	return ClientConfig{
		ProviderType:  provider.TypePolygon,
		WriterType:    WriterParquet,
		DataPath:      dataPath,
		PolygonAPIKey: c.APIKey,
	}
}

// ToClientConfig implements DownloadConfig.
func (c *BinanceDownloadConfig) ToClientConfig(dataPath string) ClientConfig {
	return ClientConfig{
		ProviderType:  provider.TypeBinance,
		WriterType:    WriterParquet,
		DataPath:      dataPath,
		PolygonAPIKey: "",
	}
}

// ParsePolygonConfig parses and validates a Polygon download config
// from JSON.
func ParsePolygonConfig(jsonConfig string) (*PolygonDownloadConfig, error) {
	var config PolygonDownloadConfig
	if err := json.Unmarshal([]byte(jsonConfig), &config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse download config", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// ParseBinanceConfig parses and validates a Binance download config
// from JSON.
func ParseBinanceConfig(jsonConfig string) (*BinanceDownloadConfig, error) {
	var config BinanceDownloadConfig
	if err := json.Unmarshal([]byte(jsonConfig), &config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse download config", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}
