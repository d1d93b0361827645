// Package storage persists drawing state as JSON values under string keys.
package storage

import (
	"context"
	"errors"
)

// Keys under which the drawing state is stored.
const (
	KeyAwards       = "awards"
	KeyAwardLog     = "award_log"
	KeyWinnerMap    = "winner_map"
	KeyHistory      = "lottery_history"
	KeySelectAward  = "select_award"
	KeyPrizeList    = "prize_list"
	KeyLotteryData  = "lottery_data"
	KeyRosterBackup = "lottery_data_backup"
)

// ErrQuotaExceeded is returned when a backend refuses a write for lack of space.
var ErrQuotaExceeded = errors.New("storage: quota exceeded")

// Store is a key/value store of JSON-serialisable values.
type Store interface {
	// Get decodes the value stored under key into dst. It reports false when
	// the key is absent, leaving dst untouched.
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	Remove(ctx context.Context, key string) error
}
