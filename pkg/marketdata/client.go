// Package marketdata downloads historical bar series from external
// vendors and stores them as parquet files a replay data source can
// load directly.
package marketdata

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/tidemark-labs/tidemark/internal/logger"
	"github.com/tidemark-labs/tidemark/pkg/errors"
	"github.com/tidemark-labs/tidemark/pkg/marketdata/provider"
	"github.com/tidemark-labs/tidemark/pkg/marketdata/writer"
)

// WriterType selects the storage format for downloaded bars.
type WriterType string

const (
	WriterParquet WriterType = "parquet"
)

// ClientConfig holds the configuration for the market data client.
type ClientConfig struct {
	ProviderType  provider.Type `validate:"required,oneof=polygon binance"`
	WriterType    WriterType    `validate:"required,oneof=parquet"`
	DataPath      string        `validate:"required"`
	PolygonAPIKey string        `validate:"required_if=ProviderType polygon"`
}

// DownloadParams holds the parameters for one download request.
type DownloadParams struct {
	Ticker    string            `validate:"required"`
	StartDate time.Time         `validate:"required"`
	EndDate   time.Time         `validate:"required,gtfield=StartDate"`
	Timespan  provider.Timespan `validate:"required"`
}

// Client downloads bar series from a configured provider and persists
// them under the configured data path.
type Client struct {
	provider   provider.Provider
	config     ClientConfig
	validate   *validator.Validate
	log        *logger.Logger
	onProgress provider.OnDownloadProgress
}

// NewClient validates the configuration and constructs the matching
// provider. onProgress may be nil.
func NewClient(config ClientConfig, log *logger.Logger, onProgress provider.OnDownloadProgress) (*Client, error) {
	validate := validator.New()
	if err := validate.Struct(config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid client configuration", err)
	}

	marketProvider, err := provider.New(config.ProviderType, config.PolygonAPIKey, log)
	if err != nil {
		return nil, err
	}

	return &Client{
		provider:   marketProvider,
		config:     config,
		validate:   validate,
		log:        log,
		onProgress: onProgress,
	}, nil
}

// Download fetches the requested series and returns the path of the
// stored file. The file name encodes ticker, window and timespan, so
// repeated downloads of the same request overwrite rather than pile
// up.
func (c *Client) Download(ctx context.Context, params DownloadParams) (string, error) {
	if err := c.validate.Struct(params); err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidParameter, "invalid download parameters", err)
	}

	if err := params.Timespan.Validate(); err != nil {
		return "", err
	}

	barWriter, err := c.buildWriter(params)
	if err != nil {
		return "", err
	}

	c.provider.ConfigWriter(barWriter)

	path, err := c.provider.Download(
		ctx,
		params.Ticker,
		params.StartDate,
		params.EndDate,
		params.Timespan,
		c.onProgress,
	)
	if err != nil {
		return "", err
	}

	return path, nil
}

// buildWriter constructs the writer for the configured storage format.
// The provider owns the writer lifecycle from Initialize through
// Close.
func (c *Client) buildWriter(params DownloadParams) (writer.BarWriter, error) {
	switch c.config.WriterType {
	case WriterParquet:
		if err := os.MkdirAll(c.config.DataPath, 0o755); err != nil {
			return nil, errors.Wrapf(errors.ErrCodeMarketDataWriteFailed, err, "failed to create data directory %s", c.config.DataPath)
		}

		fileName := fmt.Sprintf("%s_%s_%s_%s.parquet",
			params.Ticker,
			params.StartDate.Format("2006-01-02"),
			params.EndDate.Format("2006-01-02"),
			params.Timespan,
		)

		return writer.NewParquetWriter(filepath.Join(c.config.DataPath, fileName)), nil
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidConfiguration, "unsupported writer type %q", string(c.config.WriterType))
	}
}
