package surprise

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jsphweid/surprisal/sequence"
)

// TableSuffix is appended to the extension-stripped source file name
// when a score table is written under the surprise tree.
const TableSuffix = ".surprise.txt"

const tableHeader = "index\tnote\tsurprise_bits"

// Row is one scored transition. Index is 1-based and Note is the
// destination note of the transition.
type Row struct {
	Index        int
	Note         uint8
	SurpriseBits float64
}

// WriteTable renders the tab-separated score table for seq. surprises
// must hold one entry per transition in seq.
func WriteTable(w io.Writer, seq sequence.NoteSequence, surprises []float64) error {
	if len(surprises) != 0 && len(surprises) != len(seq)-1 {
		return fmt.Errorf("have %v surprises for %v notes", len(surprises), len(seq))
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, tableHeader)
	for i, s := range surprises {
		fmt.Fprintf(bw, "%d\t%d\t%.6f\n", i+1, seq[i+1], s)
	}
	return bw.Flush()
}

// ParseTable reads a table previously written by WriteTable.
func ParseTable(r io.Reader) ([]Row, error) {
	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("empty surprise table")
	}
	if scanner.Text() != tableHeader {
		return nil, fmt.Errorf("unexpected header: %v", scanner.Text())
	}
	var rows []Row
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != 3 {
			return nil, fmt.Errorf("malformed row: %v", line)
		}
		index, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, fmt.Errorf("bad index in row %v: %v", line, err)
		}
		note, err := strconv.ParseUint(fields[1], 10, 8)
		if err != nil {
			return nil, fmt.Errorf("bad note in row %v: %v", line, err)
		}
		bits, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return nil, fmt.Errorf("bad surprise in row %v: %v", line, err)
		}
		rows = append(rows, Row{Index: index, Note: uint8(note), SurpriseBits: bits})
	}
	return rows, scanner.Err()
}
