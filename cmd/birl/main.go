package main

import (
	"os"

	"github.com/birl-lang/birl/pkg/cli"
)

func main() {
	os.Exit(cli.Main())
}
