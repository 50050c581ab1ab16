package guard

import (
	"strings"

	"github.com/wippyai/modguard/errors"
)

func validateKey(phase errors.Phase, key string) error {
	switch {
	case key == "":
		return errors.InvalidKey(phase, key, "empty key")
	case strings.TrimSpace(key) == "":
		return errors.InvalidKey(phase, key, "blank key")
	case strings.IndexByte(key, 0) >= 0:
		return errors.InvalidKey(phase, key, "key contains NUL byte")
	}
	return nil
}
