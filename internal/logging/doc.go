// Package logging assembles the slog loggers used by the mediameta CLI.
//
// It owns the console and JSON handlers and the level plumbing. The library
// itself only ever receives a *slog.Logger; this package decides what that
// logger looks like on a terminal or in a log pipeline.
package logging
