package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/domino14/cifras/puzzles"
)

const (
	DefaultRequestTimeout = 10 * time.Second
	DefaultAttempts       = 3
)

type Client struct {
	// NATS connection
	nc       *nats.Conn
	subject  string
	timeout  time.Duration
	attempts uint
}

func NewClient(nc *nats.Conn, subject string) *Client {
	return &Client{
		nc:       nc,
		subject:  subject,
		timeout:  DefaultRequestTimeout,
		attempts: DefaultAttempts,
	}
}

func (c *Client) SetTimeout(d time.Duration) { c.timeout = d }
func (c *Client) SetAttempts(n uint)         { c.attempts = n }

// Solve sends a puzzle to the solver service and waits for the answer.
// Requests that time out or find no responder are retried with backoff;
// an error reply from the service is not.
func (c *Client) Solve(ctx context.Context, id string, p puzzles.Puzzle) (*SolveResponse, error) {
	data, err := json.Marshal(SolveRequest{ID: id, Numbers: p.Numbers, Target: p.Target})
	if err != nil {
		return nil, err
	}
	var resp SolveResponse
	err = retry.Do(
		func() error {
			rctx, cancel := context.WithTimeout(ctx, c.timeout)
			defer cancel()
			msg, err := c.nc.RequestWithContext(rctx, c.subject, data)
			if err != nil {
				if errors.Is(err, nats.ErrConnectionClosed) || errors.Is(err, nats.ErrBadSubject) {
					return retry.Unrecoverable(err)
				}
				return err
			}
			resp = SolveResponse{}
			if err := json.Unmarshal(msg.Data, &resp); err != nil {
				return retry.Unrecoverable(err)
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.LastErrorOnly(true),
		retry.DelayType(func(n uint, err error, config *retry.Config) time.Duration {
			log.Err(err).Uint("n", n).Str("id", id).Msg("no-reply-try-again")
			return retry.BackOffDelay(n, err, config)
		}),
	)
	if err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return &resp, err
	}
	return &resp, nil
}
