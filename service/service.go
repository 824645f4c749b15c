// Package service exposes the solver over NATS request/reply, with JSON
// messages.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/domino14/cifras/cache"
	"github.com/domino14/cifras/config"
	"github.com/domino14/cifras/puzzles"
	"github.com/domino14/cifras/solver"
	"github.com/domino14/cifras/step"
	"github.com/domino14/cifras/store"
)

type SolveRequest struct {
	ID      string  `json:"id"`
	Numbers []int64 `json:"numbers"`
	Target  int64   `json:"target"`
}

type SolveResponse struct {
	ID     string      `json:"id"`
	Result int64       `json:"result"`
	Exact  bool        `json:"exact"`
	Steps  []step.Step `json:"steps,omitempty"`
	// Nodes is zero when the solution came out of the cache.
	Nodes uint64 `json:"nodes"`
	Error string `json:"error,omitempty"`
}

var ErrSolverReply = errors.New("solver replied with an error")

// Err returns the error carried by the response, if any.
func (r *SolveResponse) Err() error {
	if r.Error == "" {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrSolverReply, r.Error)
}

type Service struct {
	numbers config.Bounds
	cache   *cache.SolutionCache
	history *store.Store
}

// New creates a service. The cache and the history store are optional.
func New(cfg *config.Config, c *cache.SolutionCache, history *store.Store) *Service {
	return &Service{
		numbers: cfg.NumberBounds(),
		cache:   c,
		history: history,
	}
}

func errorResponse(id, message string, err error) SolveResponse {
	return SolveResponse{ID: id, Error: message + ": " + err.Error()}
}

// Solve runs one request to completion.
func (s *Service) Solve(ctx context.Context, req SolveRequest) SolveResponse {
	p := puzzles.Puzzle{Numbers: req.Numbers, Target: req.Target}
	if err := p.Validate(s.numbers); err != nil {
		return errorResponse(req.ID, "invalid puzzle", err)
	}
	var nodes uint64
	start := time.Now()
	solve := func(p puzzles.Puzzle) (*step.Stack, error) {
		sv := new(solver.Solver)
		sv.Init()
		if err := sv.SetBounds(s.numbers.Min, s.numbers.Max); err != nil {
			return nil, err
		}
		best, err := sv.Solve(p.Numbers, p.Target)
		nodes = sv.Nodes()
		return best, err
	}
	var best *step.Stack
	var err error
	if s.cache != nil {
		best, err = s.cache.Get(p, solve)
	} else {
		best, err = solve(p)
	}
	if err != nil {
		return errorResponse(req.ID, "could not solve", err)
	}
	elapsed := time.Since(start)
	result, err := best.Result()
	if err != nil {
		return errorResponse(req.ID, "could not solve", err)
	}
	if s.history != nil {
		rec, err := store.NewRecord(p, best, nodes, elapsed)
		if err == nil {
			_, err = s.history.Save(ctx, rec)
		}
		if err != nil {
			log.Err(err).Str("id", req.ID).Msg("history-save-failed")
		}
	}
	log.Info().Str("id", req.ID).Str("puzzle", p.Key()).Int64("result", result).
		Uint64("nodes", nodes).Float64("time-elapsed-sec", elapsed.Seconds()).Msg("solved")
	return SolveResponse{
		ID:     req.ID,
		Result: result,
		Exact:  result == req.Target,
		Steps:  best.Steps(),
		Nodes:  nodes,
	}
}

// Handle decodes a JSON request and returns the JSON response.
func (s *Service) Handle(ctx context.Context, data []byte) []byte {
	req := SolveRequest{}
	var resp SolveResponse
	if err := json.Unmarshal(data, &req); err != nil {
		resp = errorResponse("", "could not parse request", err)
	} else {
		resp = s.Solve(ctx, req)
	}
	out, err := json.Marshal(resp)
	if err != nil {
		// Steps always marshal; this is a bug.
		log.Err(err).Msg("marshal-response-failed")
		return []byte(`{"error":"could not marshal response"}`)
	}
	return out
}

// Serve answers requests on subject until ctx is done, then drains the
// subscription.
func (s *Service) Serve(ctx context.Context, nc *nats.Conn, subject string) error {
	sub, err := nc.Subscribe(subject, func(m *nats.Msg) {
		log.Debug().Int("bytes", len(m.Data)).Msg("request-received")
		if err := m.Respond(s.Handle(ctx, m.Data)); err != nil {
			log.Err(err).Msg("respond-failed")
		}
	})
	if err != nil {
		return err
	}
	if err := nc.Flush(); err != nil {
		return err
	}
	if err := nc.LastError(); err != nil {
		return err
	}
	log.Info().Str("subject", subject).Msg("listening")

	<-ctx.Done()
	log.Info().Msg("draining-subscription")
	if err := sub.Drain(); err != nil && !errors.Is(err, nats.ErrConnectionClosed) {
		return err
	}
	return nil
}
