package main

import (
	"github.com/eabdelmoneim/autodoc/internal/adapters/driving/cli"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cli.Execute(version)
}
