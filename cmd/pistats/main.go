// Command pistats prints CPU frequency, CPU temperature and available
// memory on a single refreshing terminal line.
package main

import "github.com/luki/pistats/internal/cli"

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cli.Execute(version)
}
