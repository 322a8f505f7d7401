// Copyright (c) 2026 ToeiRei
// Scaffold - web application scaffold
// This source code is licensed under the MIT license found in the LICENSE file.

// Package config provides configuration loading, merging, and persistence
// helpers for Scaffold. It uses Viper for file/env/flag parsing and exposes
// utility functions to read/write configuration files. The application-wide
// constants (the scope key of the database proxy, default paths, route names)
// live here too.
package config
