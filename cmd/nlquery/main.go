package main

import (
	"os"

	"github.com/malbeclabs/nlquery/internal/cli"
)

var (
	// Set by LDFLAGS
	version = "dev"
)

func main() {
	cli.Version = version
	os.Exit(int(cli.Run()))
}
