package provider

import (
	"context"
	"fmt"
	"time"

	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"
	"go.uber.org/zap"

	"github.com/tidemark-labs/tidemark/internal/logger"
	"github.com/tidemark-labs/tidemark/internal/types"
	"github.com/tidemark-labs/tidemark/pkg/errors"
	"github.com/tidemark-labs/tidemark/pkg/marketdata/writer"
)

// progressReportEvery limits how often row-paginated providers invoke
// the progress callback.
const progressReportEvery = 500

// aggsIterator is the part of the Polygon aggregate iterator Download
// walks.
type aggsIterator interface {
	Next() bool
	Item() models.Agg
	Err() error
}

// aggsLister abstracts the Polygon aggregates endpoint so tests can
// serve canned pages.
type aggsLister interface {
	listAggs(ctx context.Context, params *models.ListAggsParams) aggsIterator
}

type polygonLister struct {
	client *polygon.Client
}

func (l *polygonLister) listAggs(ctx context.Context, params *models.ListAggsParams) aggsIterator {
	return l.client.ListAggs(ctx, params)
}

// PolygonProvider downloads equity aggregates from the Polygon REST
// API.
type PolygonProvider struct {
	lister aggsLister
	writer writer.BarWriter
	log    *logger.Logger
}

// NewPolygonProvider creates a provider authenticated with the given
// API key.
func NewPolygonProvider(apiKey string, log *logger.Logger) (*PolygonProvider, error) {
	if apiKey == "" {
		return nil, errors.New(errors.ErrCodeMissingParameter, "polygon api key is required")
	}

	return &PolygonProvider{
		lister: &polygonLister{client: polygon.New(apiKey)},
		log:    log,
	}, nil
}

// ConfigWriter implements Provider.
func (p *PolygonProvider) ConfigWriter(w writer.BarWriter) {
	p.writer = w
}

// Download implements Provider. Aggregates arrive through one paged
// listing and are staged through the writer as they come, so memory
// use stays flat regardless of the window size.
func (p *PolygonProvider) Download(ctx context.Context, ticker string, start time.Time, end time.Time, timespan Timespan, onProgress OnDownloadProgress) (path string, err error) {
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

	estimatedBars := float64(end.Sub(start) / timespan.Duration())
	if estimatedBars < 1 {
		estimatedBars = 1
	}

	//nolint:exhaustruct // third-party struct with many optional fields
	params := models.ListAggsParams{
		Ticker:     ticker,
		Multiplier: timespan.Multiplier(),
		Timespan:   timespan.PolygonTimespan(),
		From:       models.Millis(start),
		To:         models.Millis(end),
	}.WithLimit(50000)

	iter := p.lister.listAggs(ctx, params)

	processed := 0

	for iter.Next() {
		agg := iter.Item()

		bar := types.Bar{
			Symbol:   ticker,
			Exchange: "POLYGON",
			Time:     time.Time(agg.Timestamp),
			Interval: timespan.Interval(),
			Open:     agg.Open,
			High:     agg.High,
			Low:      agg.Low,
			Close:    agg.Close,
			Volume:   agg.Volume,
		}

		if err := p.writer.WriteBar(bar); err != nil {
			return "", err
		}

		if onProgress != nil && processed%progressReportEvery == 0 {
			onProgress(float64(processed), estimatedBars, fmt.Sprintf("downloading %s aggregates", ticker))
		}

		processed++
	}

	if iterErr := iter.Err(); iterErr != nil {
		return "", errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, iterErr, "failed to list %s aggregates", ticker)
	}

	if onProgress != nil {
		onProgress(float64(processed), float64(processed), fmt.Sprintf("downloaded %s aggregates", ticker))
	}

	outputPath, err := p.writer.Finalize()
	if err != nil {
		return "", err
	}

	p.log.Info("polygon download finished",
		zap.String("ticker", ticker),
		zap.Int("bars", processed),
		zap.String("path", outputPath),
	)

	return outputPath, nil
}
