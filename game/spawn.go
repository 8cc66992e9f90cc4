// spawn.go implements diamond spawning for local matches.

package game

import (
	"math/rand"
)

// SpawnSettings controls diamond spawning behavior.
type SpawnSettings struct {
	MinimumDiamonds int // Diamonds kept on the board at all times
	RedChance       int // Percentage chance (0–100) that a spawned diamond is red
}

// DefaultSpawnSettings roughly matches the public match server (about a tenth of the tiles, 20% red).
var DefaultSpawnSettings = SpawnSettings{MinimumDiamonds: 10, RedChance: 20}

// occupiedTiles returns every tile a new diamond or object must not land on.
func occupiedTiles(b *Board) map[Position]bool {
	occupied := make(map[Position]bool, len(b.Items)+len(b.Objects)+2*len(b.Bots))
	for _, bot := range b.Bots {
		occupied[bot.Position] = true
		occupied[bot.Base] = true
	}
	for _, o := range b.Objects {
		occupied[o.Position] = true
	}
	for _, it := range b.Items {
		occupied[it.Position] = true
	}
	return occupied
}

// freeTiles lists unoccupied tiles in row-major order.
func freeTiles(b *Board, occupied map[Position]bool) []Position {
	free := make([]Position, 0, max(0, b.Width*b.Height-len(occupied)))
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			p := Position{X: x, Y: y}
			if !occupied[p] {
				free = append(free, p)
			}
		}
	}
	return free
}

// applySpawnRules tops the board up to the minimum diamond count.
// If rng is nil, we use deterministic pseudo-random logic.
func applySpawnRules(b *Board, rng *rand.Rand, settings SpawnSettings, salt uint64) {
	occupied := occupiedTiles(b)

	spawn := func(n uint64) bool {
		free := freeTiles(b, occupied)
		if len(free) == 0 {
			return false
		}
		var idx, roll int
		if rng != nil {
			idx = rng.Intn(len(free))
			roll = rng.Intn(100)
		} else {
			// Deterministic fallback: hash of turn+salt+spawn index
			idx = int(deterministicU64Fast(uint64(b.Turn)+n, salt) % uint64(len(free)))
			roll = int(deterministicU64Fast(uint64(b.Turn)+n, salt^0xD1A) % 100)
		}
		points := BluePoints
		if roll < settings.RedChance {
			points = RedPoints
		}
		p := free[idx]
		b.Items = append(b.Items, Item{Position: p, Points: points})
		occupied[p] = true
		return true
	}

	for n := uint64(0); len(b.Items) < settings.MinimumDiamonds; n++ {
		if !spawn(n) {
			break
		}
	}
}

// ApplySpawnSettings is the exported version used by the rules package.
// It invokes applySpawnRules with a default salt.
func ApplySpawnSettings(b *Board, rng *rand.Rand, settings SpawnSettings) {
	applySpawnRules(b, rng, settings, 0xDEADBEEF)
}

// RandomFreeTile picks a tile not covered by any bot, base, object or item.
// The second result is false when the board is full.
func RandomFreeTile(b *Board, rng *rand.Rand) (Position, bool) {
	free := freeTiles(b, occupiedTiles(b))
	if len(free) == 0 {
		return Position{}, false
	}
	if rng == nil {
		return free[int(deterministicU64Fast(uint64(b.Turn), 0x5EED)%uint64(len(free)))], true
	}
	return free[rng.Intn(len(free))], true
}

// deterministicU64Fast is a simple deterministic hasher for reproducibility.
func deterministicU64Fast(a, b uint64) uint64 {
	// Variant of splitmix64
	x := a + b
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}
