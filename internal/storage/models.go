package storage

import "time"

// Profile is the singleton progression ledger row.
type Profile struct {
	Key           string
	Level         int
	CurrentXP     int
	MaxXP         int
	XPMultiplier  float64
	LevelGrowRate float64
}

type Task struct {
	ID            int64
	Kind          string // "quest" | "achievement"
	Title         map[string]string
	Description   map[string]string
	XPReward      int
	SpecialReward map[string]string // nil when the task has no special reward
	Status        string
	CreatedAt     time.Time
	CompletedAt   *time.Time
	DueDate       *time.Time // achievements only
}

type Confirmation struct {
	ID          string
	TaskID      int64
	Description string
	ImageRef    *string
	Status      string
	CreatedAt   time.Time
}

type JournalEntry struct {
	ID        string
	Body      string
	CreatedAt time.Time
}
