// Command reportgen generates evidence-grounded compliance assessment
// reports from the command line.
package main

import (
	"github.com/attest-labs/reportgen/internal/adapters/driving/cli"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cli.SetVersion(version)
	cli.Execute()
}
