// Package main provides the entry point for the civicmap CLI tool.
package main

import "github.com/civicdatadog/civicmap/cmd/civicmap/cmd"

// Version information populated by goreleaser.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	cmd.Execute(version, commit, date)
}
