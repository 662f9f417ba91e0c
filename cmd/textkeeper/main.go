package main

import (
	"os"

	"github.com/dmitrijs2005/textkeeper/internal/cli"
)

func main() {
	os.Exit(cli.Main())
}
