package main

import (
	"os"

	"github.com/chazu/ifcgeom/pkg/logger"
)

func main() {
	err := newRootCmd().Execute()
	logger.Sync()
	if err != nil {
		report(err)
		os.Exit(1)
	}
}
