package types

import (
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/tidemark-labs/tidemark/pkg/errors"
)

// Interval identifies the aggregation period of a bar series.
type Interval string

const (
	Interval1m  Interval = "1m"
	Interval5m  Interval = "5m"
	Interval15m Interval = "15m"
	Interval30m Interval = "30m"
	Interval1h  Interval = "1h"
	Interval4h  Interval = "4h"
	Interval6h  Interval = "6h"
	Interval8h  Interval = "8h"
	Interval12h Interval = "12h"
	Interval1d  Interval = "1d"
	Interval1w  Interval = "1w"
	Interval1M  Interval = "1M"
)

// Bar is one OHLCV candle of a symbol series. Series fed into a replay
// must be sorted by time ascending with strictly increasing timestamps
// per symbol.
type Bar struct {
	Symbol   string    `yaml:"symbol" json:"symbol" csv:"symbol" validate:"required"`
	Exchange string    `yaml:"exchange" json:"exchange" csv:"exchange"`
	Time     time.Time `yaml:"time" json:"time" csv:"time" validate:"required"`
	Interval Interval  `yaml:"interval" json:"interval" csv:"interval"`
	Open     float64   `yaml:"open" json:"open" csv:"open" validate:"gt=0"`
	High     float64   `yaml:"high" json:"high" csv:"high" validate:"gt=0"`
	Low      float64   `yaml:"low" json:"low" csv:"low" validate:"gt=0"`
	Close    float64   `yaml:"close" json:"close" csv:"close" validate:"gt=0"`
	Volume   float64   `yaml:"volume" json:"volume" csv:"volume" validate:"gte=0"`
}

// Validate checks field constraints plus the OHLC price relationship
// low <= open, close <= high. Prices must be positive and finite.
func (b *Bar) Validate() error {
	validate := validator.New()
	if err := validate.Struct(b); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidBar, "invalid bar", err)
	}

	for _, p := range []float64{b.Open, b.High, b.Low, b.Close, b.Volume} {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return errors.Newf(errors.ErrCodeInvalidBar, "bar %s at %s has a non-finite field", b.Symbol, b.Time.Format(time.RFC3339))
		}
	}

	if b.Low > b.High || b.Low > b.Open || b.Low > b.Close || b.High < b.Open || b.High < b.Close {
		return errors.Newf(errors.ErrCodeInvalidBar, "bar %s at %s violates low <= open,close <= high", b.Symbol, b.Time.Format(time.RFC3339))
	}

	return nil
}

// Tick is a single quote snapshot used in tick execution mode. BidPrice
// and AskPrice are the best book levels; LastPrice is the most recent
// traded price.
type Tick struct {
	Symbol    string    `yaml:"symbol" json:"symbol" csv:"symbol" validate:"required"`
	Exchange  string    `yaml:"exchange" json:"exchange" csv:"exchange"`
	Time      time.Time `yaml:"time" json:"time" csv:"time" validate:"required"`
	LastPrice float64   `yaml:"last_price" json:"last_price" csv:"last_price" validate:"gt=0"`
	BidPrice  float64   `yaml:"bid_price" json:"bid_price" csv:"bid_price" validate:"gte=0"`
	AskPrice  float64   `yaml:"ask_price" json:"ask_price" csv:"ask_price" validate:"gte=0"`
	Volume    float64   `yaml:"volume" json:"volume" csv:"volume" validate:"gte=0"`
}

// Validate checks field constraints. A crossed book (ask below bid when
// both sides are quoted) is rejected.
func (t *Tick) Validate() error {
	validate := validator.New()
	if err := validate.Struct(t); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidTick, "invalid tick", err)
	}

	for _, p := range []float64{t.LastPrice, t.BidPrice, t.AskPrice, t.Volume} {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return errors.Newf(errors.ErrCodeInvalidTick, "tick %s at %s has a non-finite field", t.Symbol, t.Time.Format(time.RFC3339))
		}
	}

	if t.BidPrice > 0 && t.AskPrice > 0 && t.AskPrice < t.BidPrice {
		return errors.Newf(errors.ErrCodeInvalidTick, "tick %s at %s has a crossed book", t.Symbol, t.Time.Format(time.RFC3339))
	}

	return nil
}
