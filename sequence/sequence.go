package sequence

import (
	"sort"

	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/jsphweid/surprisal/midi"
)

// NoteSequence is the time-ordered reduction of a midi file: one note
// number per sounding note-on, across all tracks.
type NoteSequence []uint8

type noteEvent struct {
	absTicks int64
	note     uint8
}

// FromSMF reduces a parsed midi file. Each track accumulates its own
// delta times into absolute ticks; every note-on with velocity above
// zero is kept. Events merge across tracks by absolute tick, and equal
// ticks keep track order, then in-track order.
func FromSMF(s *smf.SMF) NoteSequence {
	var events []noteEvent
	for _, track := range s.Tracks {
		var absTicks int64
		for _, event := range track {
			absTicks += int64(event.Delta)
			var channel, key, velocity uint8
			if event.Message.GetNoteOn(&channel, &key, &velocity) && velocity > 0 {
				events = append(events, noteEvent{absTicks: absTicks, note: key})
			}
		}
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].absTicks < events[j].absTicks
	})

	res := make(NoteSequence, 0, len(events))
	for _, evt := range events {
		res = append(res, evt.note)
	}
	return res
}

// Extract reads a midi file and reduces it, retrying leniently when the
// strict parse fails. An unreadable file yields a nil sequence and the
// parse error; callers decide whether that skips the file.
func Extract(path string) (NoteSequence, error) {
	s, err := midi.Read(path)
	if err != nil {
		s, err = midi.ReadLenient(path)
		if err != nil {
			return nil, err
		}
	}
	return FromSMF(s), nil
}
