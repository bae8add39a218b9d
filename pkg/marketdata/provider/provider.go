// Package provider implements historical bar downloads from external
// market data vendors. Each provider fetches bars for one ticker and
// hands them to a writer.BarWriter that persists the series.
package provider

import (
	"context"
	"time"

	"github.com/tidemark-labs/tidemark/internal/logger"
	"github.com/tidemark-labs/tidemark/pkg/errors"
	"github.com/tidemark-labs/tidemark/pkg/marketdata/writer"
)

// Type identifies a market data vendor.
type Type string

const (
	TypePolygon Type = "polygon"
	TypeBinance Type = "binance"
)

// OnDownloadProgress is invoked as a download advances. The units of
// current and total are provider specific: bar counts for vendors that
// paginate by row, milliseconds of covered time for vendors that
// paginate by window.
type OnDownloadProgress = func(current float64, total float64, message string)

// Provider downloads historical bars from one vendor.
type Provider interface {
	// ConfigWriter sets the writer that receives downloaded bars. It
	// must be called before Download.
	ConfigWriter(w writer.BarWriter)
	// Download fetches bars for ticker between start and end at the
	// given timespan, streams them through the configured writer and
	// returns the path the writer finalized. Cancelling the context
	// aborts the download.
	Download(ctx context.Context, ticker string, start time.Time, end time.Time, timespan Timespan, onProgress OnDownloadProgress) (string, error)
}

// New creates a provider of the given type. Polygon requires an API
// key, Binance serves klines from public unauthenticated endpoints.
func New(providerType Type, apiKey string, log *logger.Logger) (Provider, error) {
	switch providerType {
	case TypePolygon:
		return NewPolygonProvider(apiKey, log)
	case TypeBinance:
		return NewBinanceProvider(log), nil
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidProvider, "unsupported market data provider %q", string(providerType))
	}
}
