// Package main provides the pillcache CLI for inspecting and exercising the
// tenant record cache and its backing stores.
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
