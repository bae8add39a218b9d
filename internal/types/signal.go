package types

import "time"

// SignalType labels the trading intent a strategy attaches to a mark.
type SignalType string

const (
	// SignalTypeBuy opens or adds to a long position.
	SignalTypeBuy SignalType = "buy"
	// SignalTypeSell closes long exposure.
	SignalTypeSell SignalType = "sell"
	// SignalTypeShort opens or adds to a short position.
	SignalTypeShort SignalType = "short"
	// SignalTypeCover closes short exposure.
	SignalTypeCover SignalType = "cover"
	// SignalTypeNoAction annotates a point without trading intent.
	SignalTypeNoAction SignalType = "no_action"
)

// Signal is the machine-readable part of a mark: what the strategy
// decided at that point and why.
type Signal struct {
	// Time is the time of the signal
	Time time.Time `yaml:"time" json:"time"`
	// Type is the type of the signal
	Type SignalType `yaml:"type" json:"type"`
	// Name is the name of the signal
	Name string `yaml:"name" json:"name"`
	// Reason is the reason for the signal
	Reason string `yaml:"reason" json:"reason"`
	// Symbol is the symbol of the signal
	Symbol string `yaml:"symbol" json:"symbol"`
}
