// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

//go:build mage

// Package main provides build targets for the cellref project using Mage.
//
// Usage:
//
//	mage build           Compile cellref binary to bin/
//	mage test:all        Run all tests
//	mage test:unit       Run tests without the CLI package
//	mage test:race       Run all tests with the race detector
//	mage test:cover      Run all tests and write coverage.out
//	mage lint            Run golangci-lint
//	mage clean           Remove build artifacts
//	mage install         Install cellref to GOPATH/bin
package main

// Default is the target run by a bare "mage".
var Default = Build
