package main

import (
	"fmt"
	"os"

	"github.com/kobzarvs/qblocks/internal/app"
)

func main() {
	args := os.Args[1:]
	debug := os.Getenv("QBLOCKS_DEBUG") != ""
	if len(args) > 0 && args[0] == "--debug" {
		debug = true
		args = args[1:]
	}
	if len(args) > 0 && args[0] == "--" {
		args = args[1:]
	}
	if err := app.New(args, debug).Run(); err != nil {
		fmt.Fprintln(os.Stderr, "qblocks:", err)
		os.Exit(1)
	}
}
