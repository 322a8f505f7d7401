// Copyright (c) 2026 ToeiRei
// Scaffold - web application scaffold
// This source code is licensed under the MIT license found in the LICENSE file.
//
// Package cli implements the command-line interface for Scaffold using Cobra.
// It loads configuration, sets up logging and attaches the process storage
// scope to the command context before any subcommand runs. Commands stay thin
// and delegate to the schema, dao, db and web packages.
package cli
