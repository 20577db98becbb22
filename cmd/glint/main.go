package main

import (
	"os"

	"github.com/glintbot/glint/internal/cli"
)

func main() {
	os.Exit(cli.Run())
}
