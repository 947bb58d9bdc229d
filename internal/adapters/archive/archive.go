// Package archive exports player sample history as zstd-compressed JSONL
// files and reads them back.
package archive

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/okian/pelota/internal/domain/model"
)

// maxLineBytes bounds a single archived sample line. Move lists are capped
// upstream, so anything larger is a corrupt file.
const maxLineBytes = 1 << 20

// record is the wire form of one archived sample.
type record struct {
	SampleID        string    `json:"sample_id"`
	PlayerID        string    `json:"player_id"`
	Score           float64   `json:"score"`
	DurationSeconds float64   `json:"duration_seconds"`
	Moves           []string  `json:"moves,omitempty"`
	DeathCause      string    `json:"death_cause,omitempty"`
	TS              time.Time `json:"ts"`
}

func toRecord(s model.Sample) record {
	return record{
		SampleID:        s.SampleID,
		PlayerID:        s.PlayerID,
		Score:           s.Score,
		DurationSeconds: s.DurationSeconds,
		Moves:           s.Moves,
		DeathCause:      s.DeathCause,
		TS:              s.TS,
	}
}

func (r record) sample() model.Sample {
	return model.Sample{
		SampleID:        r.SampleID,
		PlayerID:        r.PlayerID,
		Score:           r.Score,
		DurationSeconds: r.DurationSeconds,
		Moves:           r.Moves,
		DeathCause:      r.DeathCause,
		TS:              r.TS,
	}
}

// Path returns the deterministic archive path for a player ID.
func Path(dir, playerID string) string {
	return filepath.Join(dir, playerID+".jsonl.zst")
}

// Exists reports whether an archive file exists for the given player.
func Exists(dir, playerID string) bool {
	if validatePlayerID(playerID) != nil {
		return false
	}
	_, err := os.Stat(Path(dir, playerID))
	return err == nil
}

// Export writes the player's samples, one JSON document per line,
// zstd-compressed, to dir/{player}.jsonl.zst. An existing archive for the
// same player is replaced. Returns the archive path.
func Export(dir, playerID string, samples []model.Sample) (string, error) {
	if err := validatePlayerID(playerID); err != nil {
		return "", err
	}
	if len(samples) == 0 {
		return "", fmt.Errorf("%w: %s", ErrNoSamples, playerID)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create archive dir: %w", err)
	}

	destPath := Path(dir, playerID)
	dest, err := os.Create(destPath)
	if err != nil {
		return "", fmt.Errorf("create archive: %w", err)
	}
	defer dest.Close()

	encoder, err := zstd.NewWriter(dest)
	if err != nil {
		return "", fmt.Errorf("create zstd encoder: %w", err)
	}

	enc := json.NewEncoder(encoder)
	for _, s := range samples {
		if err := enc.Encode(toRecord(s)); err != nil {
			encoder.Close()
			return "", fmt.Errorf("encode sample %s: %w", s.SampleID, err)
		}
	}

	if err := encoder.Close(); err != nil {
		return "", fmt.Errorf("finalize compression: %w", err)
	}

	return destPath, nil
}

// Read loads a player's archived samples back in write order.
func Read(dir, playerID string) ([]model.Sample, error) {
	if err := validatePlayerID(playerID); err != nil {
		return nil, err
	}

	src, err := os.Open(Path(dir, playerID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNoArchive, playerID)
		}
		return nil, fmt.Errorf("open archive: %w", err)
	}
	defer src.Close()

	decoder, err := zstd.NewReader(src)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	defer decoder.Close()

	var samples []model.Sample
	scanner := bufio.NewScanner(decoder)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var r record
		if err := json.Unmarshal(line, &r); err != nil {
			return nil, fmt.Errorf("decode archived sample: %w", err)
		}
		samples = append(samples, r.sample())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read archive: %w", err)
	}

	return samples, nil
}

// validatePlayerID rejects IDs that would name a path outside the archive
// directory. Player IDs arrive from URL paths, so this is the one place
// they touch the filesystem.
func validatePlayerID(id string) error {
	if id == "" || id != filepath.Base(id) || strings.Contains(id, "..") {
		return fmt.Errorf("%w: %q", ErrInvalidPlayerID, id)
	}
	return nil
}
