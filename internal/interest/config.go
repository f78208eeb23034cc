package interest

import (
	"encoding/json"
	"fmt"
)

// ConfigVersion is the current encoding version of Config.
const ConfigVersion = 1

// Config is the interest configuration persisted inside a rule action. The
// schedule executor decodes it at fire time to compute the dynamic amount;
// this engine owns the encoding.
type Config struct {
	Version     int     `json:"version"`
	APR         float64 `json:"apr"`
	Scheme      Scheme  `json:"interestScheme"`
	Compounding string  `json:"compoundingFrequency"`
}

// EncodeConfig serializes a Config at the current version.
func EncodeConfig(apr float64, scheme Scheme, compounding string) (string, error) {
	b, err := json.Marshal(Config{
		Version:     ConfigVersion,
		APR:         apr,
		Scheme:      scheme,
		Compounding: compounding,
	})
	if err != nil {
		return "", fmt.Errorf("encode interest config: %w", err)
	}
	return string(b), nil
}

// DecodeConfig parses a stored configuration blob. Unknown versions and
// unknown schemes degrade rather than fail: the schedule row may have been
// written by a newer build, and a misconfigured schedule should still post
// using the simple formula rather than silently stop accruing.
func DecodeConfig(raw string) (Config, error) {
	var c Config
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return Config{}, fmt.Errorf("decode interest config: %w", err)
	}
	c.Scheme = ParseScheme(string(c.Scheme))
	if c.Compounding == "" {
		c.Compounding = "monthly"
	}
	return c, nil
}
