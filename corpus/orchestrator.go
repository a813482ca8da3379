package corpus

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/jsphweid/surprisal/config"
	"github.com/jsphweid/surprisal/dump"
	"github.com/jsphweid/surprisal/logger"
	"github.com/jsphweid/surprisal/markov"
	"github.com/jsphweid/surprisal/midi"
	"github.com/jsphweid/surprisal/model"
	"github.com/jsphweid/surprisal/sequence"
	"github.com/jsphweid/surprisal/store"
	"github.com/jsphweid/surprisal/style"
	"github.com/jsphweid/surprisal/surprise"
	"github.com/jsphweid/surprisal/util"
)

var errTooFewNotes = errors.New("fewer than two notes")

// Orchestrator drives one full pass over a corpus: discover files,
// dump them, build a model per style, score every file and persist
// the results.
type Orchestrator struct {
	cfg     config.Config
	store   *store.Store
	log     *logrus.Entry
	runID   string
	scored  int
	skipped int
}

// NewOrchestrator wires an orchestrator for a single run. st may be
// nil to skip persistence.
func NewOrchestrator(cfg config.Config, st *store.Store) *Orchestrator {
	return &Orchestrator{
		cfg:   cfg,
		store: st,
		log:   logger.GetProjectLogger(),
		runID: uuid.NewString(),
	}
}

// RunID identifies this orchestrator's run in the store.
func (o *Orchestrator) RunID() string {
	return o.runID
}

// ValidateRoot checks that root exists and is a directory.
func ValidateRoot(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("corpus root does not exist: %v", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("corpus root %v is not a directory", root)
	}
	return nil
}

// Run executes the whole pipeline. A missing root or a corpus with no
// MIDI files fails the run; individual unreadable files are logged
// and skipped instead.
func (o *Orchestrator) Run(ctx context.Context) error {
	if err := ValidateRoot(o.cfg.Root); err != nil {
		return err
	}

	paths, err := util.GatherAllMidiPaths(o.cfg.Root, o.cfg.Recursive)
	if err != nil {
		return fmt.Errorf("failed to scan corpus root: %w", err)
	}
	o.log.WithFields(logrus.Fields{
		"root":  o.cfg.Root,
		"files": len(paths),
	}).Info("Scanned corpus")
	if len(paths) == 0 {
		return fmt.Errorf("no midi files under corpus root %v", o.cfg.Root)
	}

	if o.store != nil {
		if err := o.store.BeginRun(ctx, o.runID, o.cfg.Root, len(paths)); err != nil {
			return err
		}
	}

	o.dumpAll(paths)

	byStyle, err := style.Partition(o.cfg.Root, paths)
	if err != nil {
		return err
	}
	for _, name := range util.SortedKeys(byStyle) {
		o.processStyle(ctx, name, byStyle[name])
	}

	if o.store != nil {
		if err := o.store.FinishRun(ctx, o.runID, o.scored, o.skipped); err != nil {
			return err
		}
	}

	o.log.WithFields(logrus.Fields{
		"run_id":  o.runID,
		"styles":  len(byStyle),
		"scored":  o.scored,
		"skipped": o.skipped,
	}).Info("Finished corpus run")
	return nil
}

func (o *Orchestrator) workers() int {
	if o.cfg.Workers > 0 {
		return o.cfg.Workers
	}
	return runtime.NumCPU()
}

// forEachFile runs fn over every path using a fixed pool of workers,
// each taking a contiguous chunk.
func (o *Orchestrator) forEachFile(paths []string, fn func(i int, path string)) {
	n := len(paths)
	numWorkers := o.workers()
	if numWorkers > n {
		numWorkers = n
	}
	if numWorkers < 1 {
		numWorkers = 1
	}

	var wg sync.WaitGroup
	chunkSize := (n + numWorkers - 1) / numWorkers

	for w := 0; w < numWorkers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if end > n {
			end = n
		}
		if start >= end {
			break
		}

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				fn(i, paths[i])
			}
		}(start, end)
	}

	wg.Wait()
}

// outputPath mirrors path's location under the corpus root into
// outRoot, with the extension replaced by suffix. Parent directories
// are created as needed.
func (o *Orchestrator) outputPath(path, outRoot, suffix string) (string, error) {
	rel, err := filepath.Rel(o.cfg.Root, path)
	if err != nil {
		return "", err
	}
	rel = strings.TrimSuffix(rel, filepath.Ext(rel))
	out := filepath.Join(outRoot, rel+suffix)
	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		return "", err
	}
	return out, nil
}

// dumpAll writes a readable event dump for every file under the text
// tree. Dump failures never stop the run.
func (o *Orchestrator) dumpAll(paths []string) {
	o.forEachFile(paths, func(_ int, path string) {
		if err := o.dumpOne(path); err != nil {
			o.log.Warnf("Skipping dump of %v because: %v", path, err)
		}
	})
}

func (o *Orchestrator) dumpOne(path string) error {
	s, err := midi.Read(path)
	if err != nil {
		s, err = midi.ReadLenient(path)
		if err != nil {
			return err
		}
		o.log.Warnf("Loaded %v only after repairing the stream", path)
	}

	outPath, err := o.outputPath(path, o.cfg.TextRoot(), ".mid.txt")
	if err != nil {
		return err
	}
	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()
	return dump.Render(f, filepath.Base(path), s)
}

type extracted struct {
	path string
	seq  sequence.NoteSequence
	err  error
}

func (o *Orchestrator) extractAll(paths []string) []extracted {
	results := make([]extracted, len(paths))
	o.forEachFile(paths, func(i int, path string) {
		seq, err := sequence.Extract(path)
		results[i] = extracted{path: path, seq: seq, err: err}
	})
	return results
}

// processStyle builds one style's model from every readable file in
// the style and then scores each of those files against it.
func (o *Orchestrator) processStyle(ctx context.Context, name string, paths []string) {
	results := o.extractAll(paths)

	table := markov.NewCountTable()
	for _, r := range results {
		if r.err != nil {
			o.log.Warnf("Skipping %v because: %v", r.path, r.err)
			continue
		}
		table.AddSequence(r.seq)
	}

	m := table.Normalize()
	if len(m.States()) == 0 {
		for _, r := range results {
			if r.err == nil {
				o.log.Warnf("Skipping %v because: no transitions for style %v", r.path, name)
			}
		}
		o.skipped += len(results)
		return
	}

	o.log.WithFields(logrus.Fields{
		"style":  name,
		"files":  len(paths),
		"states": len(m.States()),
	}).Info("Built style model")

	if o.store != nil {
		if err := o.store.SaveModel(ctx, o.runID, name, table, m); err != nil {
			o.log.Warnf("Could not save model for style %v because: %v", name, err)
		}
	}

	o.scoreAll(ctx, name, results, m)
}

func (o *Orchestrator) scoreAll(ctx context.Context, name string, results []extracted, m markov.Model) {
	paths := make([]string, len(results))
	for i, r := range results {
		paths[i] = r.path
	}
	outcomes := make([]error, len(results))
	o.forEachFile(paths, func(i int, path string) {
		outcomes[i] = o.scoreOne(ctx, name, path, m)
	})

	for i, err := range outcomes {
		if err != nil {
			// Extraction failures were already logged while the model
			// was being built.
			if results[i].err == nil {
				o.log.Warnf("Skipping %v because: %v", results[i].path, err)
			}
			o.skipped++
			continue
		}
		o.scored++
	}
}

// scoreOne re-extracts a file's sequence and scores it against the
// finished style model.
func (o *Orchestrator) scoreOne(ctx context.Context, name, path string, m markov.Model) error {
	seq, err := sequence.Extract(path)
	if err != nil {
		return err
	}
	if len(seq) < 2 {
		return errTooFewNotes
	}

	surprises := surprise.Score(seq, m)

	outPath, err := o.outputPath(path, o.cfg.SurpriseRoot(), surprise.TableSuffix)
	if err != nil {
		return err
	}
	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	if err := surprise.WriteTable(f, seq, surprises); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	if o.store != nil {
		rel, err := filepath.Rel(o.cfg.Root, path)
		if err != nil {
			return err
		}
		row := model.FileScoreRow{
			Style:        name,
			RelPath:      filepath.ToSlash(rel),
			Transitions:  len(surprises),
			MeanSurprise: stat.Mean(surprises, nil),
			MaxSurprise:  floats.Max(surprises),
		}
		if err := o.store.SaveFileScore(ctx, o.runID, row); err != nil {
			o.log.Warnf("Could not save score for %v because: %v", path, err)
		}
	}
	return nil
}
