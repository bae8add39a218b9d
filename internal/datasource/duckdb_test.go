package datasource

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/stretchr/testify/suite"
	"github.com/tidemark-labs/tidemark/internal/logger"
	"github.com/tidemark-labs/tidemark/internal/types"
	"github.com/tidemark-labs/tidemark/pkg/errors"
)

type DuckDBDataSourceTestSuite struct {
	suite.Suite
	tempDir string
	ds      *DuckDBDataSource
}

func TestDuckDBDataSourceSuite(t *testing.T) {
	suite.Run(t, new(DuckDBDataSourceTestSuite))
}

func (suite *DuckDBDataSourceTestSuite) SetupTest() {
	tempDir, err := os.MkdirTemp("", "duckdb_datasource_test")
	suite.Require().NoError(err)
	suite.tempDir = tempDir

	ds, err := NewDuckDB(":memory:", logger.NewNopLogger())
	suite.Require().NoError(err)
	suite.ds = ds
}

func (suite *DuckDBDataSourceTestSuite) TearDownTest() {
	if suite.ds != nil {
		suite.Require().NoError(suite.ds.Close())
	}
	os.RemoveAll(suite.tempDir)
}

// writeCSV writes a fixture file and returns its path.
func (suite *DuckDBDataSourceTestSuite) writeCSV(name string, content string) string {
	path := filepath.Join(suite.tempDir, name)
	suite.Require().NoError(os.WriteFile(path, []byte(content), 0644))

	return path
}

func (suite *DuckDBDataSourceTestSuite) barsCSV() string {
	// Rows are out of order in the file on purpose.
	return suite.writeCSV("bars.csv", `time,symbol,open,high,low,close,volume
2024-01-02 09:32:00,AAPL,102,103,101,102.5,1200
2024-01-02 09:30:00,MSFT,300,301,299,300.5,800
2024-01-02 09:30:00,AAPL,100,101,99,100.5,1000
2024-01-02 09:31:00,AAPL,101,102,100,101.5,1100
`)
}

func (suite *DuckDBDataSourceTestSuite) ticksCSV() string {
	return suite.writeCSV("ticks.csv", `time,symbol,last_price,bid_price,ask_price,volume
2024-01-02 09:30:02,AAPL,100.2,100.19,100.21,150
2024-01-02 09:30:00,AAPL,100.0,99.99,100.01,100
2024-01-02 09:30:01,AAPL,100.1,100.09,100.11,120
`)
}

func (suite *DuckDBDataSourceTestSuite) TestInitializeUnsupportedExtension() {
	path := suite.writeCSV("bars.txt", "time,symbol\n")

	err := suite.ds.Initialize(path)
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidParameter))
}

func (suite *DuckDBDataSourceTestSuite) TestInitializeMissingFile() {
	err := suite.ds.Initialize(filepath.Join(suite.tempDir, "missing.csv"))
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeDataSourceUnavailable))
}

func (suite *DuckDBDataSourceTestSuite) TestReadAllOrdersByTimeThenSymbol() {
	suite.Require().NoError(suite.ds.Initialize(suite.barsCSV()))

	var got []types.Bar
	for bar, err := range suite.ds.ReadAll(optional.None[time.Time](), optional.None[time.Time]()) {
		suite.Require().NoError(err)
		got = append(got, bar)
	}

	suite.Require().Len(got, 4)

	// The time tie at 09:30 resolves alphabetically.
	suite.Equal("AAPL", got[0].Symbol)
	suite.Equal("MSFT", got[1].Symbol)
	suite.Equal("AAPL", got[2].Symbol)
	suite.Equal("AAPL", got[3].Symbol)

	for i := 1; i < len(got); i++ {
		suite.False(got[i].Time.Before(got[i-1].Time))
	}

	suite.InDelta(100.0, got[0].Open, 1e-9)
	suite.InDelta(100.5, got[0].Close, 1e-9)
	suite.InDelta(1000.0, got[0].Volume, 1e-9)
}

func (suite *DuckDBDataSourceTestSuite) TestReadAllBounds() {
	suite.Require().NoError(suite.ds.Initialize(suite.barsCSV()))

	start := optional.Some(time.Date(2024, 1, 2, 9, 31, 0, 0, time.UTC))
	end := optional.Some(time.Date(2024, 1, 2, 9, 31, 0, 0, time.UTC))

	var got []types.Bar
	for bar, err := range suite.ds.ReadAll(start, end) {
		suite.Require().NoError(err)
		got = append(got, bar)
	}

	suite.Require().Len(got, 1)
	suite.Equal("AAPL", got[0].Symbol)
	suite.InDelta(101.0, got[0].Open, 1e-9)
}

func (suite *DuckDBDataSourceTestSuite) TestReadAllEarlyStop() {
	suite.Require().NoError(suite.ds.Initialize(suite.barsCSV()))

	count := 0
	for range suite.ds.ReadAll(optional.None[time.Time](), optional.None[time.Time]()) {
		count++
		if count == 2 {
			break
		}
	}

	suite.Equal(2, count)
}

func (suite *DuckDBDataSourceTestSuite) TestReadAllTicks() {
	suite.Require().NoError(suite.ds.Initialize(suite.ticksCSV()))

	var got []types.Tick
	for tick, err := range suite.ds.ReadAllTicks(optional.None[time.Time](), optional.None[time.Time]()) {
		suite.Require().NoError(err)
		got = append(got, tick)
	}

	suite.Require().Len(got, 3)
	suite.InDelta(100.0, got[0].LastPrice, 1e-9)
	suite.InDelta(99.99, got[0].BidPrice, 1e-9)
	suite.InDelta(100.01, got[0].AskPrice, 1e-9)
	suite.InDelta(100.2, got[2].LastPrice, 1e-9)
}

func (suite *DuckDBDataSourceTestSuite) TestCount() {
	suite.Require().NoError(suite.ds.Initialize(suite.barsCSV()))

	count, err := suite.ds.Count(optional.None[time.Time](), optional.None[time.Time]())
	suite.Require().NoError(err)
	suite.Equal(4, count)

	bounded, err := suite.ds.Count(
		optional.Some(time.Date(2024, 1, 2, 9, 31, 0, 0, time.UTC)),
		optional.None[time.Time](),
	)
	suite.Require().NoError(err)
	suite.Equal(2, bounded)
}

func (suite *DuckDBDataSourceTestSuite) TestReinitializeReplacesView() {
	suite.Require().NoError(suite.ds.Initialize(suite.barsCSV()))

	other := suite.writeCSV("other.csv", `time,symbol,open,high,low,close,volume
2024-02-01 10:00:00,TSLA,200,201,199,200.5,500
`)
	suite.Require().NoError(suite.ds.Initialize(other))

	count, err := suite.ds.Count(optional.None[time.Time](), optional.None[time.Time]())
	suite.Require().NoError(err)
	suite.Equal(1, count)
}
