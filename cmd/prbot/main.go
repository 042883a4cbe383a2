package main

import (
	"os"

	"github.com/dshills/prbot/internal/cli"
)

func main() {
	os.Exit(cli.Run())
}
