package engine

import (
	"math"

	"github.com/lariod12/meosjourney-sub000/internal/storage"
)

// ProgressionSummary describes one AddXP application.
type ProgressionSummary struct {
	OldXP       int
	NewXP       int
	OldLevel    int
	NewLevel    int
	MaxXP       int
	EffectiveXP int
	LeveledUp   bool
}

// Advance applies rawAmount of XP to the ledger and returns the updated
// profile plus a summary. Pure: no I/O, deterministic for any input.
//
// The multiplier is applied first (floored), then the carry loop runs: every
// time the bar fills, one level is gained and the excess XP is halved. The
// halving is the deliberate overflow penalty; chained level-ups compound it.
// growMaxXP selects whether the bar grows by levelGrowRate percent per
// level-up or stays constant.
func Advance(p storage.Profile, rawAmount int, growMaxXP bool) (storage.Profile, ProgressionSummary) {
	sum := ProgressionSummary{
		OldXP:    p.CurrentXP,
		OldLevel: p.Level,
	}

	effective := int(math.Floor(float64(rawAmount) * p.XPMultiplier))
	if effective < 0 {
		effective = 0
	}
	sum.EffectiveXP = effective

	xp := p.CurrentXP + effective
	level := p.Level
	maxXP := p.MaxXP

	for maxXP > 0 && xp >= maxXP {
		xp -= maxXP
		level++
		if growMaxXP {
			maxXP = int(math.Floor(float64(maxXP) * (1 + p.LevelGrowRate/100)))
		}
		xp /= 2
	}

	p.CurrentXP = xp
	p.Level = level
	p.MaxXP = maxXP

	sum.NewXP = xp
	sum.NewLevel = level
	sum.MaxXP = maxXP
	sum.LeveledUp = level != sum.OldLevel
	return p, sum
}
