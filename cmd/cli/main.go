// Package main is the entry point for the socio-dash binary.
package main

import (
	"os"

	cli "socio-dash/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}
