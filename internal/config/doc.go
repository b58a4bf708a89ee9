// Package config loads, normalizes, and validates mediameta configuration.
//
// It supplies defaults, expands user paths (including tilde shortcuts),
// reads TOML files and honours the MEDIAMETA_DB environment fallback for the
// store location. The CLI turns the analysis section into library options,
// so a config file and command-line flags describe the same knobs.
package config
