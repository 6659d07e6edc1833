package host

import (
	"os"

	"github.com/pelletier/go-toml/v2"

	"ona/linear"
)

// Config answers the handful of startup queries the host needs before
// it can open a window: display geometry and the window title, plus a
// list of extension names (StringSlice). The host reads only the first
// two; module loading does not consult the extension list. Grounded on
// the original's LuaConfig
// surface (original_source/engine/source/app.cpp's
// LoadGraphicsServerFromConfig: a DisplaySize array, a DisplayTitle
// string, an Extensions array), re-expressed as a small interface so
// tests can supply fixed values without a config file on disk.
type Config interface {
	// String returns the string value named by key, and whether it was
	// present.
	String(key string) (string, bool)

	// Vector2 returns the two-element numeric array named by key as a
	// Vector2, and whether it was present and well-formed.
	Vector2(key string) (linear.Vector2, bool)

	// StringSlice returns the string array named by key, and whether
	// it was present.
	StringSlice(key string) ([]string, bool)
}

// Defaults mirror the original's behavior when config.lua is absent or
// a key is unset: an 640x480 window titled "Ona", no extensions.
const (
	DefaultWidth  = 640
	DefaultHeight = 480
	DefaultTitle  = "Ona"
)

// TOMLConfig is a Config backed by a TOML document, the host's
// replacement for the original's embedded Lua config (config.ona in
// place of config.lua — this host carries no Lua runtime, and TOML
// is the configuration format the rest of this stack already uses).
type TOMLConfig struct {
	values map[string]any
}

// LoadConfig reads and parses the TOML document at path. A missing
// file is not an error: it yields an empty TOMLConfig whose queries
// all report absent, so every caller falls back to its own default.
func LoadConfig(path string) (*TOMLConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &TOMLConfig{values: map[string]any{}}, nil
		}
		return nil, err
	}
	var values map[string]any
	if err := toml.Unmarshal(data, &values); err != nil {
		return nil, err
	}
	return &TOMLConfig{values: values}, nil
}

func (c *TOMLConfig) String(key string) (string, bool) {
	v, ok := c.values[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func (c *TOMLConfig) Vector2(key string) (linear.Vector2, bool) {
	v, ok := c.values[key]
	if !ok {
		return linear.Vector2{}, false
	}
	arr, ok := v.([]any)
	if !ok || len(arr) != 2 {
		return linear.Vector2{}, false
	}
	x, ok1 := toFloat(arr[0])
	y, ok2 := toFloat(arr[1])
	if !ok1 || !ok2 {
		return linear.Vector2{}, false
	}
	return linear.Vector2{x, y}, true
}

func (c *TOMLConfig) StringSlice(key string) ([]string, bool) {
	v, ok := c.values[key]
	if !ok {
		return nil, false
	}
	arr, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(arr))
	for _, e := range arr {
		s, ok := e.(string)
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}

func toFloat(v any) (float32, bool) {
	switch n := v.(type) {
	case int64:
		return float32(n), true
	case float64:
		return float32(n), true
	default:
		return 0, false
	}
}
