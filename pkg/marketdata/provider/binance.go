package provider

import (
	"context"
	"fmt"
	"strconv"
	"time"

	binance "github.com/adshao/go-binance/v2"
	"go.uber.org/zap"

	"github.com/tidemark-labs/tidemark/internal/logger"
	"github.com/tidemark-labs/tidemark/internal/types"
	"github.com/tidemark-labs/tidemark/pkg/errors"
	"github.com/tidemark-labs/tidemark/pkg/marketdata/writer"
)

// binancePageLimit is the number of klines Binance returns per request
// by default. A shy page means the window is exhausted.
const binancePageLimit = 500

// klineFetcher abstracts the Binance kline endpoint so tests can
// serve canned pages.
type klineFetcher interface {
	fetchKlines(ctx context.Context, symbol, interval string, start, end int64) ([]*binance.Kline, error)
}

type binanceFetcher struct {
	client *binance.Client
}

func (f *binanceFetcher) fetchKlines(ctx context.Context, symbol, interval string, start, end int64) ([]*binance.Kline, error) {
	return f.client.NewKlinesService().
		Symbol(symbol).
		Interval(interval).
		StartTime(start).
		EndTime(end).
		Do(ctx)
}

// BinanceProvider downloads spot klines from the public Binance API.
// No authentication is needed for historical data.
type BinanceProvider struct {
	fetcher klineFetcher
	writer  writer.BarWriter
	log     *logger.Logger
}

// NewBinanceProvider creates an unauthenticated provider.
func NewBinanceProvider(log *logger.Logger) *BinanceProvider {
	return &BinanceProvider{
		fetcher: &binanceFetcher{client: binance.NewClient("", "")},
		log:     log,
	}
}

// ConfigWriter implements Provider.
func (p *BinanceProvider) ConfigWriter(w writer.BarWriter) {
	p.writer = w
}

// Download implements Provider. Binance pages klines by time window,
// so the loop advances the window start past the close of the last
// kline until a page comes back short.
func (p *BinanceProvider) Download(ctx context.Context, ticker string, start time.Time, end time.Time, timespan Timespan, onProgress OnDownloadProgress) (path string, err error) {
	if err := timespan.Validate(); err != nil {
		return "", err
	}

	if p.writer == nil {
		return "", errors.New(errors.ErrCodeInvalidConfiguration, "no writer configured, call ConfigWriter first")
	}

	if err := p.writer.Initialize(); err != nil {
		return "", err
	}

	defer func() {
		if cerr := p.writer.Close(); cerr != nil {
			if err == nil {
				path = ""
				err = cerr
			} else {
				p.log.Warn("failed to close writer after download error", zap.Error(cerr))
			}
		}
	}()

	var (
		startMillis  = start.UnixMilli()
		endMillis    = end.UnixMilli()
		currentStart = startMillis
		processed    = 0
	)

	for {
		klines, err := p.fetcher.fetchKlines(ctx, ticker, timespan.BinanceInterval(), currentStart, endMillis)
		if err != nil {
			return "", errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "failed to fetch %s klines", ticker)
		}

		if err := p.writeKlines(ticker, timespan, klines); err != nil {
			return "", err
		}

		processed += len(klines)

		if onProgress != nil {
			onProgress(float64(currentStart-startMillis), float64(endMillis-startMillis), fmt.Sprintf("downloading %s klines", ticker))
		}

		if len(klines) < binancePageLimit {
			break
		}

		// Resume just past the close of the last kline so pages never
		// overlap.
		currentStart = klines[len(klines)-1].CloseTime + 1
		if currentStart >= endMillis {
			break
		}
	}

	if onProgress != nil {
		onProgress(float64(endMillis-startMillis), float64(endMillis-startMillis), fmt.Sprintf("downloaded %s klines", ticker))
	}

	outputPath, err := p.writer.Finalize()
	if err != nil {
		return "", err
	}

	p.log.Info("binance download finished",
		zap.String("ticker", ticker),
		zap.Int("bars", processed),
		zap.String("path", outputPath),
	)

	return outputPath, nil
}

func (p *BinanceProvider) writeKlines(ticker string, timespan Timespan, klines []*binance.Kline) error {
	for _, k := range klines {
		bar, err := parseKline(ticker, timespan, k)
		if err != nil {
			return err
		}

		if err := p.writer.WriteBar(bar); err != nil {
			return err
		}
	}

	return nil
}

// parseKline converts one kline to a bar. Binance serves prices as
// strings, the open time stamps the bar.
func parseKline(ticker string, timespan Timespan, k *binance.Kline) (types.Bar, error) {
	bar := types.Bar{
		Symbol:   ticker,
		Exchange: "BINANCE",
		Time:     time.UnixMilli(k.OpenTime),
		Interval: timespan.Interval(),
	}

	fields := []struct {
		name string
		raw  string
		dst  *float64
	}{
		{"open", k.Open, &bar.Open},
		{"high", k.High, &bar.High},
		{"low", k.Low, &bar.Low},
		{"close", k.Close, &bar.Close},
		{"volume", k.Volume, &bar.Volume},
	}

	for _, f := range fields {
		v, err := strconv.ParseFloat(f.raw, 64)
		if err != nil {
			return types.Bar{}, errors.Wrapf(errors.ErrCodeMarketDataParseFailed, err, "failed to parse kline %s %q", f.name, f.raw)
		}

		*f.dst = v
	}

	return bar, nil
}
