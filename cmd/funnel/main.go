// cmd/funnel/main.go
package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/law-makers/funnel/internal/cli"
	"github.com/rs/zerolog/log"
)

func main() {
	// An interrupt mid-scrape exits immediately; partial output files are
	// left as written.
	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-interrupts
		log.Warn().Msg("Interrupted, shutting down")
		os.Exit(0)
	}()

	cli.Execute()
}
