package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/gaurav-prasanna/senseiharvest/config"
	"github.com/gaurav-prasanna/senseiharvest/core"
	"github.com/gaurav-prasanna/senseiharvest/core/checkpoint"
	"github.com/gaurav-prasanna/senseiharvest/core/enrich"
	"github.com/gaurav-prasanna/senseiharvest/core/fetch"
	"github.com/gaurav-prasanna/senseiharvest/core/harvest"
	"github.com/gaurav-prasanna/senseiharvest/core/normalize"
	"github.com/gaurav-prasanna/senseiharvest/core/output"
	"github.com/gaurav-prasanna/senseiharvest/core/render"
	"github.com/gaurav-prasanna/senseiharvest/crawl"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	flagKinds           []string
	flagOutputDir       string
	flagFormats         []string
	flagWorkers         int
	flagParallel        int
	flagSeed            uint64
	flagMaxPages        int
	flagCheckpoint      string
	flagAcceptTruncated bool
)

var harvestCmd = &cobra.Command{
	Use:   "harvest [levels...]",
	Short: "Harvest list pages and enrich every record",
	Long: `Harvest walks the list pages of each (level, kind) collection, enriches the
records and writes them under the output directory. Levels default to the
configured set (all of n5..n1).

Examples:
  senseiharvest harvest
  senseiharvest harvest n5 n4 --kinds vocabulary
  senseiharvest harvest n3 --formats json,pdf --workers 4 --seed 7
  senseiharvest harvest --checkpoint .senseiharvest/checkpoint.db`,
	RunE: runHarvest,
}

func init() {
	rootCmd.AddCommand(harvestCmd)

	f := harvestCmd.Flags()
	f.StringSliceVar(&flagKinds, "kinds", nil, "Lesson kinds to harvest: vocabulary, grammar")
	f.StringVar(&flagOutputDir, "output_dir", "", "Output directory")
	f.StringSliceVar(&flagFormats, "formats", nil, "Export formats: json, markdown, pdf")
	f.IntVar(&flagWorkers, "workers", 0, "Concurrent detail fetches per collection")
	f.IntVar(&flagParallel, "parallel", 0, "Collections harvested at the same time")
	f.Uint64Var(&flagSeed, "seed", 0, "Seed for example-sentence picks (0 = random)")
	f.IntVar(&flagMaxPages, "max_pages", 0, "Page cap per collection")
	f.StringVar(&flagCheckpoint, "checkpoint", "", "SQLite checkpoint database for resumable runs")
	f.BoolVar(&flagAcceptTruncated, "accept_truncated", false, "End a collection early instead of failing when a list page keeps erroring")
}

func runHarvest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	levels, _ := cfg.ParsedLevels()
	kinds, _ := cfg.ParsedKinds()

	writer, err := newWriter(cfg)
	if err != nil {
		return err
	}

	var store *checkpoint.Store
	if cfg.Checkpoint.Path != "" {
		store, err = checkpoint.Open(cfg.Checkpoint.Path)
		if err != nil {
			return fmt.Errorf("opening checkpoint: %w", err)
		}
		defer store.Close()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := harvestOptions(cfg, writer, store)
	stdout := &syncWriter{w: cmd.OutOrStdout()}
	stderr := &syncWriter{w: cmd.ErrOrStderr()}

	var jobs []core.CollectionID
	for _, level := range levels {
		for _, kind := range kinds {
			jobs = append(jobs, core.CollectionID{Level: level, Kind: kind})
		}
	}
	fmt.Fprintf(stdout, "Harvesting %d collections into %s\n", len(jobs), writer.OutputDir)

	var (
		mu       sync.Mutex
		errCount int
	)
	var g errgroup.Group
	g.SetLimit(cfg.Harvest.ParallelCollections)
	for i, id := range jobs {
		g.Go(func() error {
			fmt.Fprintf(stdout, "[%d/%d] Harvesting %s\n", i+1, len(jobs), id)
			c, err := harvestOne(ctx, id, opts, stdout)
			if err != nil {
				fmt.Fprintf(stderr, "  ✗ %s: %v\n", id, err)
				mu.Lock()
				errCount++
				mu.Unlock()
				return nil
			}
			fmt.Fprintf(stdout, "  ✓ %s: %d records, %d enriched, written to %s\n",
				id, c.Len(), enrichedCount(c), writer.CSVPath(id))
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("harvest interrupted: %w", err)
	}
	if errCount > 0 {
		fmt.Fprintf(stderr, "\n%d/%d collections failed\n", errCount, len(jobs))
	}
	return nil
}

// syncWriter serializes writes from concurrent collection and enrichment
// workers so progress lines never interleave.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

func harvestOne(ctx context.Context, id core.CollectionID, opts harvest.Options, out io.Writer) (*core.Collection, error) {
	opts.OnPage = func(e crawl.PageEvent) {
		fmt.Fprintf(out, "  %s page %d: %d rows (%d total)\n", e.ID, e.Page, e.Rows, e.Total)
	}
	opts.OnRecord = func(e harvest.RecordEvent) {
		fmt.Fprintf(out, "  %s record %d/%d %s%s\n", e.ID, e.Index, e.Total, e.Key, recordSuffix(e))
	}
	h, err := harvest.New(id.Kind, opts)
	if err != nil {
		return nil, err
	}
	c, err := h.Harvest(ctx, id.Level)
	if errors.Is(err, core.ErrEmptyCollection) {
		return nil, fmt.Errorf("no list pages found at %s", crawl.ListPageURL(opts.BaseURL, id, 1))
	}
	return c, err
}

func recordSuffix(e harvest.RecordEvent) string {
	switch {
	case e.Cached:
		return " (cached)"
	case !e.Enriched:
		return " (not enriched)"
	default:
		return ""
	}
}

func harvestOptions(cfg config.Config, writer *output.Writer, store *checkpoint.Store) harvest.Options {
	return harvest.Options{
		Fetcher: fetch.New(fetch.Options{
			Timeout:   cfg.HTTP.Timeout,
			UserAgent: cfg.HTTP.UserAgent,
		}),
		Sink:     writer,
		BaseURL:  cfg.BaseURL,
		MaxPages: cfg.Harvest.MaxPages,
		Retry: crawl.RetryPolicy{
			Attempts: cfg.Harvest.TransientRetries,
			Backoff:  cfg.Harvest.RetryBackoff,
		},
		AcceptTruncated: cfg.Harvest.AcceptTruncated,
		Workers:         cfg.Harvest.Workers,
		Checkpoint:      store,
		Vocabulary: harvest.VocabularyOptions{
			Chooser:       enrich.NewChooser(cfg.Harvest.Seed),
			Irregular:     cfg.Vocabulary.Irregular,
			MaxCandidates: cfg.Harvest.MaxCandidates,
		},
		Grammar: harvest.GrammarOptions{
			MediaDir:      writer.MediaDir,
			Normalizer:    normalize.New(cfg.Grammar.NotesMaxRunes),
			NotesSelector: cfg.Grammar.NotesSelector,
		},
	}
}

func enrichedCount(c *core.Collection) int {
	n := 0
	for _, r := range c.Records {
		if r.Enriched() {
			n++
		}
	}
	return n
}

// loadConfig reads the config file and applies flags the user set.
func loadConfig(cmd *cobra.Command, levels []string) (config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return config.Config{}, err
	}

	flags := cmd.Flags()
	if len(levels) > 0 {
		cfg.Harvest.Levels = levels
	}
	if flags.Changed("kinds") {
		cfg.Harvest.Kinds = flagKinds
	}
	if flags.Changed("output_dir") {
		cfg.OutputDir = flagOutputDir
	}
	if flags.Changed("formats") {
		cfg.Output.Formats = flagFormats
	}
	if flags.Changed("workers") {
		cfg.Harvest.Workers = flagWorkers
	}
	if flags.Changed("parallel") {
		cfg.Harvest.ParallelCollections = flagParallel
	}
	if flags.Changed("seed") {
		cfg.Harvest.Seed = flagSeed
	}
	if flags.Changed("max_pages") {
		cfg.Harvest.MaxPages = flagMaxPages
	}
	if flags.Changed("checkpoint") {
		cfg.Checkpoint.Path = flagCheckpoint
	}
	if flags.Changed("accept_truncated") {
		cfg.Harvest.AcceptTruncated = flagAcceptTruncated
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func newWriter(cfg config.Config) (*output.Writer, error) {
	renderers, err := render.ForFormats(cfg.Output.Formats, render.Options{
		PDFFont:   cfg.Output.PDFFont,
		MediaBase: filepath.Join(cfg.OutputDir, string(core.Grammar)),
	})
	if err != nil {
		return nil, err
	}
	writer, err := output.New(cfg.OutputDir, renderers...)
	if err != nil {
		return nil, fmt.Errorf("initializing output writer: %w", err)
	}
	return writer, nil
}
