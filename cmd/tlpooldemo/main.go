// Command tlpooldemo drives the pool package across several OS threads to
// demonstrate acquire/release, overflow, and cross-thread reclaim.
package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := newRootCmd().Execute(); err != nil {
		log.Fatal().Err(err).Msg("tlpooldemo failed")
	}
}
