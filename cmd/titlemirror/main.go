package main

import (
	"os"
)

var (
	version = "0.1.0"
	commit  = "unknown"
	date    = "unknown"
)

const appName = "titlemirror"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
