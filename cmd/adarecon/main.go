package main

import (
	"os"

	"adarecon/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
