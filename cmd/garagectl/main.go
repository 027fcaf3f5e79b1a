package main

import (
	"os"

	"garageadmin/internal/cli"
)

var version = "dev"

func main() {
	if err := cli.Execute(version, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		os.Exit(1)
	}
}
