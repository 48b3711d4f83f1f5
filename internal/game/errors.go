package game

import "errors"

var (
	ErrInvalidAmount   = errors.New("invalid bet amount")
	ErrNoActiveRound   = errors.New("no active round")
	ErrRoundInProgress = errors.New("round already in progress")
)
