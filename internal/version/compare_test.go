package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckConstraint(t *testing.T) {
	tests := []struct {
		name          string
		engineVersion string
		constraint    string
		expectError   bool
		errorContains string
	}{
		{
			name:          "empty constraint always passes",
			engineVersion: "1.2.0",
			constraint:    "",
			expectError:   false,
		},
		{
			name:          "whitespace constraint always passes",
			engineVersion: "1.2.0",
			constraint:    "   ",
			expectError:   false,
		},
		{
			name:          "exact match",
			engineVersion: "1.2.0",
			constraint:    "1.2.0",
			expectError:   false,
		},
		{
			name:          "minimum bound satisfied",
			engineVersion: "1.2.5",
			constraint:    ">=1.2.0",
			expectError:   false,
		},
		{
			name:          "minimum bound not satisfied",
			engineVersion: "1.1.0",
			constraint:    ">=1.2.0",
			expectError:   true,
			errorContains: "does not satisfy",
		},
		{
			name:          "tilde range satisfied",
			engineVersion: "1.2.9",
			constraint:    "~1.2",
			expectError:   false,
		},
		{
			name:          "tilde range not satisfied",
			engineVersion: "1.3.0",
			constraint:    "~1.2",
			expectError:   true,
			errorContains: "does not satisfy",
		},
		{
			name:          "caret range crosses major",
			engineVersion: "2.0.0",
			constraint:    "^1.2",
			expectError:   true,
			errorContains: "does not satisfy",
		},
		{
			name:          "v prefix on engine version",
			engineVersion: "v1.2.0",
			constraint:    ">=1.1.0",
			expectError:   false,
		},
		{
			name:          "dev build skips check",
			engineVersion: "main",
			constraint:    ">=99.0.0",
			expectError:   false,
		},
		{
			name:          "invalid engine version",
			engineVersion: "not-a-version",
			constraint:    ">=1.0.0",
			expectError:   true,
			errorContains: "invalid engine version",
		},
		{
			name:          "invalid constraint",
			engineVersion: "1.2.0",
			constraint:    ">>nope",
			expectError:   true,
			errorContains: "invalid engine_version constraint",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckConstraint(tt.engineVersion, tt.constraint)

			if tt.expectError {
				require.Error(t, err)

				if tt.errorContains != "" {
					assert.Contains(t, err.Error(), tt.errorContains)
				}
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestGetVersion(t *testing.T) {
	assert.Equal(t, Version, GetVersion())
	assert.NotEmpty(t, GetVersion())
}
