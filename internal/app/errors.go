package service

import (
	"errors"

	"github.com/okian/netstats/internal/domain/perspective"
	"github.com/okian/netstats/internal/domain/reconcile"
)

// Sentinel kinds for service errors.
var (
	// ErrStatsUnavailable means the data-access collaborator failed.
	ErrStatsUnavailable = reconcile.ErrStatsUnavailable
	// ErrGameNotFound means a requested game id has no fixture.
	ErrGameNotFound = errors.New("game not found")
	// ErrTooManyGames means a batch exceeded the configured limit.
	ErrTooManyGames = errors.New("too many games requested")
	// ErrUnknownTeam means the viewing team did not play the game.
	ErrUnknownTeam = perspective.ErrUnknownTeam
)
