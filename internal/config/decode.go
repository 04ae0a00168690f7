package config

import (
	"fmt"
	"math"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

var fileModeType = reflect.TypeOf(os.FileMode(0))

// decodeHook extends viper's default hooks with permission modes and y/n
// booleans.
func decodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
		fileModeHook,
		yesNoHook,
	)
}

// fileModeHook decodes os.FileMode values.
//
// Strings are octal ("0777", "755", "0o755"). Numbers are taken as already
// parsed: YAML reads an unquoted 0777 and TOML reads 0o777 as 511.
func fileModeHook(from, to reflect.Type, data any) (any, error) {
	if to != fileModeType {
		return data, nil
	}

	switch v := data.(type) {
	case string:
		s := strings.TrimSpace(v)
		s = strings.TrimPrefix(strings.TrimPrefix(s, "0o"), "0O")
		mode, err := strconv.ParseUint(s, 8, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid mode %q: want an octal mode such as 0777", v)
		}
		return os.FileMode(mode), nil
	case int:
		return intMode(int64(v))
	case int64:
		return intMode(v)
	case int32:
		return intMode(int64(v))
	case uint:
		return intMode(int64(v))
	case uint32:
		return os.FileMode(v), nil
	case uint64:
		if v > math.MaxUint32 {
			return nil, fmt.Errorf("invalid mode %d", v)
		}
		return os.FileMode(v), nil
	case float64:
		if v != math.Trunc(v) {
			return nil, fmt.Errorf("invalid mode %v", v)
		}
		return intMode(int64(v))
	}
	return data, nil
}

func intMode(n int64) (os.FileMode, error) {
	if n < 0 || n > math.MaxUint32 {
		return 0, fmt.Errorf("invalid mode %d", n)
	}
	return os.FileMode(n), nil
}

// yesNoHook accepts y/yes/n/no for booleans, the values the CMS itself stores
// for its on/off preferences.
func yesNoHook(from, to reflect.Type, data any) (any, error) {
	s, ok := data.(string)
	if !ok || to.Kind() != reflect.Bool {
		return data, nil
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "y", "yes":
		return true, nil
	case "n", "no":
		return false, nil
	}
	return data, nil
}
