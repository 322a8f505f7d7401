// Copyright (c) 2026 ToeiRei
// Scaffold - web application scaffold
// This source code is licensed under the MIT license found in the LICENSE file.

// Command-line entrypoint for Scaffold.
//
// Usage:
//
//	go run . [flags] <command>
//	./scaffold init-db
//	./scaffold serve
//
// See --help for options.
package main

import (
	log "github.com/charmbracelet/log"
	"os"

	"github.com/toeirei/scaffold/ui/cli"
)

// main is the entrypoint for the Scaffold CLI.
func main() {
	if err := cli.Execute(); err != nil {
		log.Errorf("scaffold: %v", err)
		os.Exit(1)
	}
}
