package midi

import (
	"encoding/binary"
	"errors"
)

// Repair rewrites a damaged SMF byte stream into one a strict parser
// accepts. Channel-message data bytes with the high bit set are clamped
// to 127, truncated tracks lose their partial trailing event and every
// track ends in an end-of-track marker. Content before the damage is
// kept as is.
func Repair(data []byte) ([]byte, error) {
	if len(data) < 14 || string(data[0:4]) != "MThd" {
		return nil, errors.New("not a standard midi file")
	}
	headerLen := binary.BigEndian.Uint32(data[4:8])
	headerEnd := 8 + int(headerLen)
	if headerLen < 6 || headerEnd > len(data) {
		return nil, errors.New("malformed midi header")
	}

	out := make([]byte, 0, len(data))
	out = append(out, data[:headerEnd]...)

	numTracks := 0
	pos := headerEnd
	for pos+8 <= len(data) {
		id := string(data[pos : pos+4])
		declared := int(binary.BigEndian.Uint32(data[pos+4 : pos+8]))
		body := data[pos+8:]
		if declared < len(body) {
			body = body[:declared]
		}

		if id != "MTrk" {
			// non-track chunks carry nothing we score; drop them
			if len(body) < declared {
				break
			}
			pos += 8 + declared
			continue
		}

		track := repairTrack(body)
		var trackLen [4]byte
		binary.BigEndian.PutUint32(trackLen[:], uint32(len(track)))
		out = append(out, 'M', 'T', 'r', 'k')
		out = append(out, trackLen[:]...)
		out = append(out, track...)
		numTracks++

		pos += 8 + declared
	}

	if numTracks == 0 {
		return nil, errors.New("no recoverable tracks")
	}

	// the track count in the header has to match what survived
	binary.BigEndian.PutUint16(out[10:12], uint16(numTracks))
	return out, nil
}

// repairTrack keeps a track's events up to the first undecodable byte.
// Running status is expanded so every event in the result carries its
// own status byte.
func repairTrack(p []byte) []byte {
	var out []byte
	var running byte

	i := 0
events:
	for i < len(p) {
		deltaStart := i
		_, afterDelta, ok := readVarLen(p, i)
		if !ok || afterDelta >= len(p) {
			break
		}
		delta := p[deltaStart:afterDelta]
		i = afterDelta

		status := p[i]
		if status < 0x80 {
			if running == 0 {
				break
			}
			status = running
		} else {
			i++
		}

		switch {
		case status == 0xff: // meta event
			if i >= len(p) {
				break events
			}
			metaType := p[i]
			length, afterLen, ok := readVarLen(p, i+1)
			if !ok || afterLen+int(length) > len(p) {
				break events
			}
			out = append(out, delta...)
			out = append(out, 0xff)
			out = append(out, p[i:afterLen+int(length)]...)
			i = afterLen + int(length)
			running = 0
			if metaType == 0x2f {
				return out
			}
		case status == 0xf0 || status == 0xf7: // sysex
			length, afterLen, ok := readVarLen(p, i)
			if !ok || afterLen+int(length) > len(p) {
				break events
			}
			out = append(out, delta...)
			out = append(out, status)
			out = append(out, p[i:afterLen+int(length)]...)
			i = afterLen + int(length)
			running = 0
		case status >= 0x80 && status <= 0xef: // channel message
			n := 2
			if kind := status & 0xf0; kind == 0xc0 || kind == 0xd0 {
				n = 1
			}
			if i+n > len(p) {
				break events
			}
			out = append(out, delta...)
			out = append(out, status)
			for k := 0; k < n; k++ {
				b := p[i+k]
				if b > 0x7f {
					b = 0x7f
				}
				out = append(out, b)
			}
			i += n
			running = status
		default:
			// system common/realtime bytes have no place in a track
			break events
		}
	}

	// only the end-of-track meta exits the loop above with a complete
	// track, and it returns directly
	out = append(out, 0x00, 0xff, 0x2f, 0x00)
	return out
}

// readVarLen decodes a variable-length quantity starting at i. ok is
// false when the bytes run out before the quantity terminates.
func readVarLen(p []byte, i int) (val uint32, next int, ok bool) {
	for n := 0; n < 4 && i < len(p); n++ {
		b := p[i]
		i++
		val = val<<7 | uint32(b&0x7f)
		if b&0x80 == 0 {
			return val, i, true
		}
	}
	return 0, i, false
}
