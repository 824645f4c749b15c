package service

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/matryer/is"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/domino14/cifras/cache"
	"github.com/domino14/cifras/config"
	"github.com/domino14/cifras/step"
	"github.com/domino14/cifras/store"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	os.Exit(m.Run())
}

func roundTrip(t *testing.T, s *Service, req string) SolveResponse {
	t.Helper()
	out := s.Handle(context.Background(), []byte(req))
	resp := SolveResponse{}
	if err := json.Unmarshal(out, &resp); err != nil {
		t.Fatalf("bad response %s: %v", out, err)
	}
	return resp
}

func TestHandleExact(t *testing.T) {
	is := is.New(t)
	s := New(config.DefaultConfig(), nil, nil)
	resp := roundTrip(t, s, `{"id":"abc","numbers":[50,25,10,6,3,2],"target":765}`)
	is.Equal(resp.Error, "")
	is.NoErr(resp.Err())
	is.Equal(resp.ID, "abc")
	is.Equal(resp.Result, int64(765))
	is.True(resp.Exact)
	is.True(resp.Nodes > 0)
	is.True(len(resp.Steps) > 0)
	is.Equal(resp.Steps[len(resp.Steps)-1].Result, int64(765))
}

func TestHandleStepsWireFormat(t *testing.T) {
	is := is.New(t)
	s := New(config.DefaultConfig(), nil, nil)
	out := s.Handle(context.Background(), []byte(`{"id":"x","numbers":[4,4],"target":100}`))
	is.True(strings.Contains(string(out), `"steps":[{"op":"*","a":4,"b":4,"result":16}]`))

	resp := SolveResponse{}
	is.NoErr(json.Unmarshal(out, &resp))
	assert.Equal(t, []step.Step{{Op: step.OpMul, A: 4, B: 4, Result: 16}}, resp.Steps)
	is.True(!resp.Exact)
}

func TestHandleErrors(t *testing.T) {
	is := is.New(t)
	s := New(config.DefaultConfig(), nil, nil)

	resp := roundTrip(t, s, `{"id":`)
	is.True(strings.HasPrefix(resp.Error, "could not parse request"))
	is.True(errors.Is(resp.Err(), ErrSolverReply))

	resp = roundTrip(t, s, `{"id":"y","numbers":[5],"target":10}`)
	is.Equal(resp.ID, "y")
	is.True(strings.HasPrefix(resp.Error, "invalid puzzle"))

	resp = roundTrip(t, s, `{"id":"z","numbers":[5,500],"target":10}`)
	is.True(strings.HasPrefix(resp.Error, "invalid puzzle"))

	resp = roundTrip(t, s, `{"id":"w","numbers":[5,6],"target":-1}`)
	is.True(resp.Error != "")
}

func TestHandleCachedAndRecorded(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	history, err := store.Open(ctx, ":memory:")
	is.NoErr(err)
	defer history.Close()

	s := New(config.DefaultConfig(), cache.New(16), history)
	req := `{"id":"1","numbers":[100,75,3,2,8,1],"target":300}`
	first := roundTrip(t, s, req)
	second := roundTrip(t, s, req)
	is.Equal(first.Error, "")
	is.True(first.Nodes > 0)
	is.Equal(second.Nodes, uint64(0))
	assert.Equal(t, first.Steps, second.Steps)

	n, err := history.Count(ctx)
	is.NoErr(err)
	is.Equal(n, 2)
	recent, err := history.Recent(ctx, 1)
	is.NoErr(err)
	is.Equal(recent[0].Result, first.Result)
}
