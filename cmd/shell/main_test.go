package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/matryer/is"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/domino14/cifras/config"
)

func TestSetupLogging(t *testing.T) {
	is := is.New(t)
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	var buf bytes.Buffer
	cfg := config.DefaultConfig()
	is.Equal(setupLogging(cfg, &buf), zerolog.InfoLevel)
	log.Debug().Msg("hidden")
	log.Info().Msg("shown")
	is.True(!strings.Contains(buf.String(), "hidden"))
	is.True(strings.Contains(buf.String(), "| INFO  | shown"))

	buf.Reset()
	cfg.Set(config.ConfigDebug, true)
	is.Equal(setupLogging(cfg, &buf), zerolog.DebugLevel)
	log.Debug().Msg("now-shown")
	is.True(strings.Contains(buf.String(), "| DEBUG | now-shown"))
}
