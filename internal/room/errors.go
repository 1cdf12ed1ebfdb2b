package room

import "errors"

var (
	// ErrClosed is returned by SubmitIntent once the room has been disposed.
	ErrClosed = errors.New("room: closed")
	// ErrNotPlaying is returned when an intent requires PhasePlaying.
	ErrNotPlaying = errors.New("room: not playing")
	// ErrOutOfTurn is returned when the sender is not CurrentPlayer.
	ErrOutOfTurn = errors.New("room: out of turn")
	// ErrUnknownSession is returned when the sender is not a seated player.
	ErrUnknownSession = errors.New("room: unknown session")
	// ErrNoZapWindow is returned by zap when no ZAP window is open.
	ErrNoZapWindow = errors.New("room: no active zap window")
)

// InvalidMoveError describes a rejected move with a human-readable reason.
// Per spec.md §7, validation errors are recovered locally: state is
// unchanged and stateVersion is not bumped.
type InvalidMoveError string

func (e InvalidMoveError) Error() string { return "invalid move: " + string(e) }

func invalidMove(reason string) error { return InvalidMoveError(reason) }
