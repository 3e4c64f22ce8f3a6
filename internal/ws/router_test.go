package ws

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouterDispatchTyped(t *testing.T) {
	r := NewRouter()

	type echoReq struct {
		Msg string `json:"msg"`
	}
	type echoRes struct {
		Msg string `json:"msg"`
	}

	Register(r, "echo", func(ctx context.Context, c *ConnContext, req echoReq) (echoRes, error) {
		return echoRes{Msg: req.Msg}, nil
	})

	cc := &ConnContext{ConnID: "c1"}
	res, err := r.dispatch(context.Background(), cc, Envelope{
		Event: "echo",
		Body:  json.RawMessage(`{"msg":"hello"}`),
	})
	require.NoError(t, err)
	assert.Equal(t, echoRes{Msg: "hello"}, res)
}

func TestRouterUnknownEvent(t *testing.T) {
	r := NewRouter()
	_, err := r.dispatch(context.Background(), &ConnContext{}, Envelope{Event: "nope"})
	assert.EqualError(t, err, "unknown_event")
}

func TestRouterMalformedBody(t *testing.T) {
	r := NewRouter()
	Register(r, "join-room", func(ctx context.Context, c *ConnContext, req JoinRoomRequest) (any, error) {
		t.Fatal("handler must not run on malformed body")
		return nil, nil
	})

	_, err := r.dispatch(context.Background(), &ConnContext{}, Envelope{
		Event: "join-room",
		Body:  json.RawMessage(`{"room_id":42}`),
	})
	assert.Error(t, err)
}

func TestRouterEmptyBodyUsesZeroRequest(t *testing.T) {
	r := NewRouter()
	Register(r, "probe", func(ctx context.Context, c *ConnContext, req struct{}) (ProbeAckBody, error) {
		return ProbeAckBody{ServerTime: 42}, nil
	})

	res, err := r.dispatch(context.Background(), &ConnContext{}, Envelope{Event: "probe"})
	require.NoError(t, err)
	assert.Equal(t, ProbeAckBody{ServerTime: 42}, res)
}

func TestRouterHandlerError(t *testing.T) {
	r := NewRouter()
	Register(r, "boom", func(ctx context.Context, c *ConnContext, req struct{}) (any, error) {
		return nil, errors.New("kaput")
	})

	_, err := r.dispatch(context.Background(), &ConnContext{}, Envelope{Event: "boom"})
	assert.EqualError(t, err, "kaput")
}
