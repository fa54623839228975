package main

import (
	"errors"
	"os"

	cmd "github.com/timvideos/fwfetch/internal"
	"github.com/timvideos/fwfetch/internal/logger"
	"github.com/timvideos/fwfetch/internal/middleware"
)

func main() {
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, middleware.ErrLogged) {
			logger.LogError("%s", err)
		}
		os.Exit(1)
	}
}
