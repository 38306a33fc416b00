package actions

import (
	"encoding/json"
	"errors"
	"testing"

	"isogrid-server/internal/domain"
	"isogrid-server/internal/engine/handlers"
)

type fakeInput struct {
	facing domain.Facing
	held   bool
}

func (f *fakeInput) Hold(d domain.Facing)        { f.facing, f.held = d, true }
func (f *fakeInput) Release()                    { f.held = false }
func (f *fakeInput) Poll() (domain.Facing, bool) { return f.facing, f.held }

func TestMoveAndStop(t *testing.T) {
	in := &fakeInput{}
	ctx := handlers.Context{Kind: domain.ActorKindPlayer, Alive: true, Input: in}

	move := handlers.WithPayload(HandleMove)
	if _, err := move(ctx, json.RawMessage(`{"facing":"NE"}`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f, held := in.Poll(); !held || f != domain.FacingNE {
		t.Errorf("Expected NE held, got %v held=%v", f, held)
	}

	stop := handlers.WithEmptyPayload(HandleStop)
	if _, err := stop(ctx, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, held := in.Poll(); held {
		t.Error("Expected input released after STOP")
	}
}

func TestMoveRejects(t *testing.T) {
	move := handlers.WithPayload(HandleMove)

	tests := []struct {
		name string
		ctx  handlers.Context
		raw  string
	}{
		{"bad facing", handlers.Context{Alive: true, Input: &fakeInput{}}, `{"facing":"up"}`},
		{"empty payload", handlers.Context{Alive: true, Input: &fakeInput{}}, ``},
		{"broken json", handlers.Context{Alive: true, Input: &fakeInput{}}, `{"facing":`},
		{"no input", handlers.Context{Alive: true}, `{"facing":"sw"}`},
		{"dead actor", handlers.Context{Input: &fakeInput{}}, `{"facing":"sw"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := move(tt.ctx, json.RawMessage(tt.raw)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestMoveNotControllable(t *testing.T) {
	_, err := handlers.WithPayload(HandleMove)(handlers.Context{}, json.RawMessage(`{"facing":"sw"}`))
	if !errors.Is(err, handlers.ErrNotControllable) {
		t.Errorf("Expected ErrNotControllable, got %v", err)
	}
}

func TestInitRequestsResync(t *testing.T) {
	res, err := handlers.WithEmptyPayload(HandleInit)(handlers.Context{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Resync {
		t.Error("INIT must request a full snapshot")
	}
}
