package dump

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"gitlab.com/gomidi/midi/v2/smf"
)

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// NoteName renders a MIDI note number in scientific pitch notation,
// with middle C (60) as C4. Values past the MIDI range come back as
// plain numbers.
func NoteName(n uint8) string {
	if n > 127 {
		return strconv.Itoa(int(n))
	}
	return fmt.Sprintf("%s%d", noteNames[n%12], int(n)/12-1)
}

// Render writes a plain-text listing of every event in s, one track
// at a time with absolute tick times.
func Render(w io.Writer, filename string, s *smf.SMF) error {
	lines := []string{
		fmt.Sprintf("FILE: %s", filename),
		fmt.Sprintf("timeformat = %v", s.TimeFormat),
		fmt.Sprintf("tracks = %d", len(s.Tracks)),
	}
	for i, track := range s.Tracks {
		lines = append(lines, "", fmt.Sprintf("=== Track %d ===", i))
		var absTicks int64
		for _, event := range track {
			absTicks += int64(event.Delta)
			var channel, key, velocity uint8
			switch {
			case event.Message.GetNoteOn(&channel, &key, &velocity):
				lines = append(lines, fmt.Sprintf("  t=%6d  note_on   ch=%d note=%d(%s) vel=%d",
					absTicks, channel, key, NoteName(key), velocity))
			case event.Message.GetNoteOff(&channel, &key, &velocity):
				lines = append(lines, fmt.Sprintf("  t=%6d  note_off  ch=%d note=%d(%s) vel=%d",
					absTicks, channel, key, NoteName(key), velocity))
			default:
				lines = append(lines, fmt.Sprintf("  t=%6d  %s", absTicks, event.Message.String()))
			}
		}
	}
	_, err := io.WriteString(w, strings.Join(lines, "\n")+"\n")
	return err
}
