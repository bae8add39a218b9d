package types

import (
	"time"

	"github.com/moznion/go-optional"
)

type MarkShape string

const (
	MarkShapeCircle   MarkShape = "circle"
	MarkShapeSquare   MarkShape = "square"
	MarkShapeTriangle MarkShape = "triangle"
)

type MarkColor string

const (
	MarkColorRed    MarkColor = "red"
	MarkColorGreen  MarkColor = "green"
	MarkColorBlue   MarkColor = "blue"
	MarkColorYellow MarkColor = "yellow"
	MarkColorPurple MarkColor = "purple"
	MarkColorOrange MarkColor = "orange"
)

// Mark is a chart annotation recorded during a run, either by the
// strategy or by the engine itself. Marks never influence the
// simulation; the id is a uuid and exists only so reports can
// reference individual annotations.
type Mark struct {
	ID       string                  `yaml:"id" json:"id"`
	Time     time.Time               `yaml:"time" json:"time"`
	Symbol   string                  `yaml:"symbol" json:"symbol"`
	Price    float64                 `yaml:"price" json:"price"`
	Color    MarkColor               `yaml:"color" json:"color"`
	Shape    MarkShape               `yaml:"shape" json:"shape"`
	Title    string                  `yaml:"title" json:"title"`
	Message  string                  `yaml:"message" json:"message"`
	Category string                  `yaml:"category" json:"category"`
	Signal   optional.Option[Signal] `yaml:"-" json:"-"`
}
