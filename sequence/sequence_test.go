package sequence

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

func noteOn(delta uint32, key, vel uint8) smf.Event {
	return smf.Event{Delta: delta, Message: smf.Message(midi.NoteOn(0, key, vel))}
}

func noteOff(delta uint32, key uint8) smf.Event {
	return smf.Event{Delta: delta, Message: smf.Message(midi.NoteOff(0, key))}
}

func track(events ...smf.Event) smf.Track {
	var tr smf.Track
	for _, evt := range events {
		tr = append(tr, evt)
	}
	tr.Close(0)
	return tr
}

func buildSMF(tracks ...smf.Track) *smf.SMF {
	var s smf.SMF
	s.TimeFormat = smf.MetricTicks(480)
	for _, tr := range tracks {
		s.Tracks = append(s.Tracks, tr)
	}
	return &s
}

func TestFromSMFSingleTrack(t *testing.T) {
	s := buildSMF(track(
		noteOn(0, 60, 100),
		noteOff(96, 60),
		noteOn(0, 62, 100),
		noteOff(96, 62),
		noteOn(0, 64, 100),
		noteOff(96, 64),
	))
	assert.Equal(t, NoteSequence{60, 62, 64}, FromSMF(s))
}

func TestFromSMFSkipsSilentEvents(t *testing.T) {
	s := buildSMF(track(
		noteOn(0, 60, 100),
		noteOn(10, 61, 0), // velocity zero means note end
		noteOff(10, 60),
		noteOn(10, 62, 1),
	))
	assert.Equal(t, NoteSequence{60, 62}, FromSMF(s))
}

func TestFromSMFMergesTracksByTime(t *testing.T) {
	first := track(
		noteOn(0, 60, 100),
		noteOn(480, 64, 100),
	)
	second := track(
		noteOn(240, 62, 100),
	)
	assert.Equal(t, NoteSequence{60, 62, 64}, FromSMF(buildSMF(first, second)))
}

func TestFromSMFTiesKeepTrackOrder(t *testing.T) {
	first := track(noteOn(100, 60, 100))
	second := track(noteOn(100, 62, 100))
	assert.Equal(t, NoteSequence{60, 62}, FromSMF(buildSMF(first, second)))
}

func TestFromSMFTiesKeepInTrackOrder(t *testing.T) {
	s := buildSMF(track(
		noteOn(0, 64, 100),
		noteOn(0, 60, 100),
		noteOn(0, 62, 100),
	))
	assert.Equal(t, NoteSequence{64, 60, 62}, FromSMF(s))
}

func TestFromSMFEmpty(t *testing.T) {
	assert.Empty(t, FromSMF(buildSMF()))
}

func rawMidiBytes(notes ...byte) []byte {
	var body []byte
	for _, n := range notes {
		body = append(body, 0x00, 0x90, n, 100)
		body = append(body, 0x60, 0x80, n, 0x40)
	}
	body = append(body, 0x00, 0xff, 0x2f, 0x00)

	res := []byte{'M', 'T', 'h', 'd', 0, 0, 0, 6, 0, 0, 0, 1, 0x01, 0xe0}
	chunk := []byte{'M', 'T', 'r', 'k', 0, 0, 0, 0}
	binary.BigEndian.PutUint32(chunk[4:8], uint32(len(body)))
	res = append(res, chunk...)
	return append(res, body...)
}

func writeTempMidi(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.mid")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestExtract(t *testing.T) {
	path := writeTempMidi(t, rawMidiBytes(60, 62, 64))

	seq, err := Extract(path)
	require.NoError(t, err)
	assert.Equal(t, NoteSequence{60, 62, 64}, seq)
}

func TestExtractUnreadable(t *testing.T) {
	path := writeTempMidi(t, []byte("not midi"))

	seq, err := Extract(path)
	assert.Error(t, err)
	assert.Nil(t, seq)
}

func TestExtractFallsBackToLenientParse(t *testing.T) {
	data := rawMidiBytes(60, 62)
	path := writeTempMidi(t, data[:len(data)-6])

	seq, err := Extract(path)
	require.NoError(t, err)
	assert.Equal(t, NoteSequence{60, 62}, seq)
}
