// Package main provides the cellref CLI.
package main

import "github.com/mesh-intelligence/cellref/internal/cli"

func main() {
	cli.Execute()
}
