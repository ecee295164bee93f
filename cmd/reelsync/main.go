package main

import (
	"os"

	"github.com/reelsync/reelsync/internal/cli"
)

func main() {
	cli.InitCLI()
	os.Exit(cli.ExecuteWithErrorCode(os.Args[1:]))
}
