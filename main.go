// =============================================================================
// txconv - Main Entry Point
// =============================================================================
//
// This is the main entry point for the txconv CLI application. It delegates
// command execution to the cmd package.
//
// USAGE:
//   txconv convert    - Convert a record set between csv, json, xml and xlsx
//   txconv validate   - Check that a record set parses
//   txconv process    - Convert every file in the input directory
//   txconv version    - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : Records, codecs, configuration and the converter
//   - pkg/           : Shared file management utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/txconv/cmd"
)

func main() {
	cmd.Execute()
}
