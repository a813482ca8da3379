package midi

import (
	"bytes"
	"fmt"
	"os"

	"gitlab.com/gomidi/midi/v2/smf"
)

// Read parses a standard MIDI file strictly.
func Read(path string) (*smf.SMF, error) {
	dat, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading midi file: %w", err)
	}
	return parse(dat)
}

// ReadLenient retries a failed parse after repairing the raw stream:
// out-of-range data bytes are clamped and a truncated final track is
// closed off cleanly. Use it as the fallback when Read fails.
func ReadLenient(path string) (*smf.SMF, error) {
	dat, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading midi file: %w", err)
	}
	repaired, err := Repair(dat)
	if err != nil {
		return nil, err
	}
	return parse(repaired)
}

func parse(dat []byte) (s *smf.SMF, e error) {
	// the parser panics on some malformed files
	// https://github.com/gomidi/midi/issues/20
	defer func() {
		if r := recover(); r != nil {
			e = fmt.Errorf("error parsing midi file: %v", r)
		}
	}()

	res, err := smf.ReadFrom(bytes.NewReader(dat))
	if err != nil {
		return nil, fmt.Errorf("error parsing midi file: %w", err)
	}
	return res, nil
}
