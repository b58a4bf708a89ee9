// Command mediameta analyzes media files from the command line.
//
// It prints a summary table or the full JSON record for each file, dumps
// the raw container trees, and can keep results in a local SQLite store
// for later listing with the history, show and forget commands.
package main
