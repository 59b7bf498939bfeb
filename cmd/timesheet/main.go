package main

import (
	"os"

	"github.com/ihildy/timesheet-cli/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
