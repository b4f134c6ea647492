// Package config provides configuration loading, defaulting, and validation
// for the gatewright service.
//
// Configuration is read from a YAML file, merged with defaults, and
// optionally overridden by GATEWRIGHT_* environment variables. Validation
// collects every problem it finds rather than stopping at the first, so a
// single run reports the full set of mistakes in a config file.
package config
