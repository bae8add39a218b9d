package strategy

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type JsonSchemaTestSuite struct {
	suite.Suite
}

func TestJsonSchemaTestSuite(t *testing.T) {
	suite.Run(t, new(JsonSchemaTestSuite))
}

func (suite *JsonSchemaTestSuite) TestToJSONSchema() {
	type TestConfig struct {
		FastWindow int    `yaml:"fast_window" jsonschema:"title=Fast Window,description=Period of the fast moving average,minimum=1,default=10"`
		SlowWindow int    `yaml:"slow_window" jsonschema:"title=Slow Window,description=Period of the slow moving average,minimum=1,default=20"`
		Symbol     string `yaml:"symbol" jsonschema:"title=Symbol,description=The symbol to trade,default=AAPL"`
	}

	schema, err := ToJSONSchema(TestConfig{})
	suite.NoError(err)
	suite.NotEmpty(schema)
	suite.Contains(schema, "Fast Window")
}
