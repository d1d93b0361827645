package lottery

import "errors"

var (
	ErrEmptyPool          = errors.New("lottery: candidate pool is empty")
	ErrQuotaExhausted     = errors.New("lottery: tier quota exhausted")
	ErrDrawInProgress     = errors.New("lottery: a draw is in progress")
	ErrAllWeightsZero     = errors.New("lottery: every candidate has zero weight for this tier")
	ErrNotReady           = errors.New("lottery: draw is not ready to stop")
	ErrInsufficientQuota  = errors.New("lottery: not enough quota left for the requested rounds")
	ErrInvalidWinnerIndex = errors.New("lottery: selection returned an invalid winner index")

	ErrUnknownTier       = errors.New("lottery: unknown tier")
	ErrNoTierSelected    = errors.New("lottery: no tier selected")
	ErrNothingToUndo     = errors.New("lottery: no draw to undo")
	ErrHistoryNotFound   = errors.New("lottery: history entry not found")
	ErrCandidateNotFound = errors.New("lottery: candidate not found")
	ErrInvalidRoundCount = errors.New("lottery: invalid round count")
	ErrInvalidTiers      = errors.New("lottery: invalid tier configuration")
	ErrNoBackup          = errors.New("lottery: no imported roster to reset to")
)
