package logic

import (
	"github.com/brensch/diamonds/game"
)

// StepToward returns a single unit step from cur toward dst along the axis
// with the larger offset; equal offsets prefer the x axis. Already being on
// dst yields game.Stay.
func StepToward(cur, dst game.Position) game.Direction {
	dx := dst.X - cur.X
	dy := dst.Y - cur.Y
	if dx == 0 && dy == 0 {
		return game.Stay
	}
	if abs(dx) >= abs(dy) {
		return game.Direction{DX: sign(dx)}
	}
	return game.Direction{DY: sign(dy)}
}

func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	}
	return 0
}
