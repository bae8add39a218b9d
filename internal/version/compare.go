package version

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// CheckConstraint checks whether the running engine version satisfies the
// semver constraint declared by a configuration file (e.g. ">=1.1.0" or
// "~1.2"). Returns nil when it does, an error with details when it does not.
//
// Rules:
//   - An empty constraint always passes (configs are not required to pin one)
//   - The "main" engine version (development build) skips the check entirely
//   - Otherwise the constraint is evaluated against the engine version
func CheckConstraint(engineVersion, constraint string) error {
	if strings.TrimSpace(constraint) == "" {
		return nil
	}

	engineVersion = strings.TrimPrefix(engineVersion, "v")

	// Skip version check for "main" (development builds)
	if engineVersion == "main" {
		return nil
	}

	engineSemver, err := semver.NewVersion(engineVersion)
	if err != nil {
		return fmt.Errorf("invalid engine version '%s': %w", engineVersion, err)
	}

	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return fmt.Errorf("invalid engine_version constraint '%s': %w", constraint, err)
	}

	if !c.Check(engineSemver) {
		return fmt.Errorf("engine version %s does not satisfy the configured constraint '%s'",
			engineVersion, constraint)
	}

	return nil
}
