// Package config loads and validates the TOML configuration shared by the
// spectrum CLI and daemon. Defaults are safe for a fresh install; Load layers
// an optional config file over them, expands ~ in paths, and rejects values
// the rest of the system cannot honor.
package config
