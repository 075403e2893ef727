package main

import (
	"os"

	"github.com/ricardopieper/pony-lang/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
