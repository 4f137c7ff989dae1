package main

import (
	"os"

	"github.com/thinko/swinelink/internal/handler/cli"
)

var version = "1.1.0"

func main() {
	os.Exit(cli.Execute(version))
}
