package main

import (
	"os"

	"vincit.fi/image-metadata/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
