package archive

import "errors"

// Sentinel kinds for archive errors.
var (
	// ErrInvalidPlayerID indicates a player ID unsafe to use as a filename.
	ErrInvalidPlayerID = errors.New("invalid player id")
	// ErrNoSamples indicates an export was requested with nothing to write.
	ErrNoSamples = errors.New("no samples to archive")
	// ErrNoArchive indicates no archive file exists for the player.
	ErrNoArchive = errors.New("archive not found")
)
