package provider

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/polygon-io/client-go/rest/models"
	"github.com/stretchr/testify/suite"

	"github.com/tidemark-labs/tidemark/internal/logger"
	"github.com/tidemark-labs/tidemark/internal/types"
	"github.com/tidemark-labs/tidemark/pkg/errors"
)

type fakeAggsIterator struct {
	aggs  []models.Agg
	index int
	err   error
}

func (it *fakeAggsIterator) Next() bool {
	if it.index < len(it.aggs) {
		it.index++

		return true
	}

	return false
}

func (it *fakeAggsIterator) Item() models.Agg {
	return it.aggs[it.index-1]
}

func (it *fakeAggsIterator) Err() error {
	return it.err
}

type fakeAggsLister struct {
	iterator *fakeAggsIterator
	params   *models.ListAggsParams
}

func (l *fakeAggsLister) listAggs(_ context.Context, params *models.ListAggsParams) aggsIterator {
	l.params = params

	return l.iterator
}

type PolygonProviderTestSuite struct {
	suite.Suite

	start time.Time
	end   time.Time
}

func TestPolygonProviderSuite(t *testing.T) {
	suite.Run(t, new(PolygonProviderTestSuite))
}

func (suite *PolygonProviderTestSuite) SetupTest() {
	suite.start = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	suite.end = time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
}

func (suite *PolygonProviderTestSuite) agg(at time.Time, close float64) models.Agg {
	//nolint:exhaustruct // only the fields Download reads
	return models.Agg{
		Timestamp: models.Millis(at),
		Open:      close - 1,
		High:      close + 1,
		Low:       close - 2,
		Close:     close,
		Volume:    50,
	}
}

func (suite *PolygonProviderTestSuite) provider(lister *fakeAggsLister, w *captureWriter) *PolygonProvider {
	p := &PolygonProvider{
		lister: lister,
		log:    logger.NewNopLogger(),
	}
	if w != nil {
		p.ConfigWriter(w)
	}

	return p
}

func (suite *PolygonProviderTestSuite) TestDownloadWritesBarsInOrder() {
	t1 := suite.start.Add(30 * time.Minute)
	t2 := t1.Add(time.Minute)
	lister := &fakeAggsLister{iterator: &fakeAggsIterator{
		aggs: []models.Agg{suite.agg(t1, 100), suite.agg(t2, 101)},
	}}
	w := &captureWriter{outputPath: "SPY.parquet"}

	var progressCalls int

	path, err := suite.provider(lister, w).Download(
		context.Background(), "SPY", suite.start, suite.end, TimespanOneMinute,
		func(current, total float64, message string) { progressCalls++ },
	)
	suite.Require().NoError(err)
	suite.Equal("SPY.parquet", path)
	suite.True(w.finalized)
	suite.True(w.closed)
	suite.GreaterOrEqual(progressCalls, 2)

	suite.Require().Len(w.bars, 2)
	suite.Equal("SPY", w.bars[0].Symbol)
	suite.Equal("POLYGON", w.bars[0].Exchange)
	suite.Equal(types.Interval1m, w.bars[0].Interval)
	suite.True(w.bars[0].Time.Equal(t1))
	suite.True(w.bars[1].Time.Equal(t2))
	suite.InDelta(100.0, w.bars[0].Close, 1e-9)
	suite.InDelta(99.0, w.bars[0].Open, 1e-9)
	suite.InDelta(50.0, w.bars[0].Volume, 1e-9)
}

func (suite *PolygonProviderTestSuite) TestDownloadPassesAggregateParams() {
	lister := &fakeAggsLister{iterator: &fakeAggsIterator{}}
	w := &captureWriter{outputPath: "SPY.parquet"}

	_, err := suite.provider(lister, w).Download(
		context.Background(), "SPY", suite.start, suite.end, TimespanFifteenMinutes, nil,
	)
	suite.Require().NoError(err)

	suite.Require().NotNil(lister.params)
	suite.Equal("SPY", lister.params.Ticker)
	suite.Equal(15, lister.params.Multiplier)
	suite.Equal(models.Minute, lister.params.Timespan)
	suite.True(time.Time(lister.params.From).Equal(suite.start))
	suite.True(time.Time(lister.params.To).Equal(suite.end))
}

func (suite *PolygonProviderTestSuite) TestDownloadWithoutWriterFails() {
	p := suite.provider(&fakeAggsLister{iterator: &fakeAggsIterator{}}, nil)

	_, err := p.Download(context.Background(), "SPY", suite.start, suite.end, TimespanOneMinute, nil)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
}

func (suite *PolygonProviderTestSuite) TestDownloadRejectsUnknownTimespan() {
	w := &captureWriter{}
	p := suite.provider(&fakeAggsLister{iterator: &fakeAggsIterator{}}, w)

	_, err := p.Download(context.Background(), "SPY", suite.start, suite.end, Timespan("3d"), nil)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidTimespan))
	suite.False(w.initialized)
}

func (suite *PolygonProviderTestSuite) TestIteratorErrorAborts() {
	lister := &fakeAggsLister{iterator: &fakeAggsIterator{
		aggs: []models.Agg{suite.agg(suite.start, 100)},
		err:  stderrors.New("rate limited"),
	}}
	w := &captureWriter{outputPath: "SPY.parquet"}

	_, err := suite.provider(lister, w).Download(
		context.Background(), "SPY", suite.start, suite.end, TimespanOneMinute, nil,
	)
	suite.True(errors.HasCode(err, errors.ErrCodeMarketDataFetchFailed))
	suite.False(w.finalized)
	suite.True(w.closed)
}

func (suite *PolygonProviderTestSuite) TestWriteErrorAborts() {
	lister := &fakeAggsLister{iterator: &fakeAggsIterator{
		aggs: []models.Agg{suite.agg(suite.start, 100)},
	}}
	w := &captureWriter{
		outputPath: "SPY.parquet",
		writeErr:   errors.New(errors.ErrCodeMarketDataWriteFailed, "disk full"),
	}

	_, err := suite.provider(lister, w).Download(
		context.Background(), "SPY", suite.start, suite.end, TimespanOneMinute, nil,
	)
	suite.True(errors.HasCode(err, errors.ErrCodeMarketDataWriteFailed))
	suite.False(w.finalized)
	suite.True(w.closed)
}
