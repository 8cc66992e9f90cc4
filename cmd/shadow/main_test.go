package main

import (
	"encoding/json"
	"testing"

	"github.com/brensch/diamonds/game"
	"github.com/brensch/diamonds/stream"
)

func frame(turn int, raw string) stream.Frame {
	return stream.Frame{Board: &game.Board{Turn: turn}, Raw: json.RawMessage(raw)}
}

func TestFrameFilter_ByTurn(t *testing.T) {
	var f frameFilter
	if !f.fresh(frame(1, `{"turn":1}`)) {
		t.Fatalf("first frame dropped")
	}
	if f.fresh(frame(1, `{"turn":1,"x":2}`)) {
		t.Fatalf("repeated turn kept")
	}
	if !f.fresh(frame(2, `{"turn":2}`)) {
		t.Fatalf("next turn dropped")
	}
}

func TestFrameFilter_WithoutTurn(t *testing.T) {
	var f frameFilter
	if !f.fresh(frame(0, `{"bots":[{"x":1}]}`)) {
		t.Fatalf("first frame dropped")
	}
	if f.fresh(frame(0, `{"bots":[{"x":1}]}`)) {
		t.Fatalf("identical frame kept")
	}
	if !f.fresh(frame(0, `{"bots":[{"x":2}]}`)) {
		t.Fatalf("changed frame without turn dropped")
	}
	if !f.fresh(frame(0, `{"bots":[{"x":3}]}`)) {
		t.Fatalf("second change dropped")
	}
}
