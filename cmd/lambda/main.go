package main

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/domino14/cifras/config"
	"github.com/domino14/cifras/service"
)

var cfg *config.Config
var nc *nats.Conn

// LambdaEvent is a puzzle to solve. When ReplyChannel is set the answer is
// also published there.
type LambdaEvent struct {
	ID           string  `json:"id"`
	Numbers      []int64 `json:"numbers"`
	Target       int64   `json:"target"`
	ReplyChannel string  `json:"reply_channel"`
}

func HandleRequest(ctx context.Context, evt LambdaEvent) (string, error) {
	logger := log.With().
		Str("id", evt.ID).
		Logger()

	svc := service.New(cfg, nil, nil)
	resp := svc.Solve(ctx, service.SolveRequest{ID: evt.ID, Numbers: evt.Numbers, Target: evt.Target})
	data, err := json.Marshal(resp)
	if err != nil {
		return "", err
	}
	if err := resp.Err(); err != nil {
		logger.Err(err).Msg("solve-failed")
	}
	if evt.ReplyChannel != "" {
		logger.Info().Msg("solution-sending-via-nats")
		err = retry.Do(
			func() error {
				// We're just waiting for an acknowledgement. The actual
				// data doesn't matter.
				_, err := nc.Request(evt.ReplyChannel, data, 3*time.Second)
				return err
			},
			retry.Context(ctx),
			retry.DelayType(func(n uint, err error, config *retry.Config) time.Duration {
				logger.Err(err).Uint("n", n).
					Msg("did-not-receive-ack-try-again")
				return retry.BackOffDelay(n, err, config)
			}),
		)
		if err != nil {
			logger.Err(err).Msg("reply-failed")
		}
	}
	logger.Info().Msg("exiting-fn")
	return string(data), resp.Err()
}

func main() {
	cfg = &config.Config{}
	if err := cfg.Load(os.Args[1:]); err != nil {
		log.Fatal().Err(err).Msg("bad-config")
	}
	if cfg.GetBool(config.ConfigDebug) {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	var err error
	nc, err = nats.Connect(cfg.GetString(config.ConfigNatsURL))
	if err != nil {
		log.Fatal().AnErr("natsConnectErr", err).Msg(":(")
	}

	lambda.Start(HandleRequest)
}
