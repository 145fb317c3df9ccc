package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"

	"github.com/gruntwork-io/go-commons/errors"
	"github.com/sirupsen/logrus"
	"k8s.io/utils/clock"

	"github.com/tutis12/osubeatmap/config"
	"github.com/tutis12/osubeatmap/dotosu"
	"github.com/tutis12/osubeatmap/index"
	"github.com/tutis12/osubeatmap/logger"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	log := logger.GetProjectLogger()

	flags := flag.NewFlagSet("osubeatmap", flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.Usage = func() {
		fmt.Fprintln(stderr, "usage: osubeatmap [flags] <file.osu|set.osz|dir>...")
		flags.PrintDefaults()
	}
	configPath := flags.String("config", "", "INI file with decoder, output and index settings")
	format := flags.String("format", "", "output format: json or yaml")
	indexPath := flags.String("index", "", "SQLite database to record summaries and failures in")
	workers := flags.Int("workers", 0, "number of charts decoded at once")
	hardRock := flags.Bool("hr", false, "derive constants with Hard Rock")
	easy := flags.Bool("ez", false, "derive constants with Easy")
	rate := flags.Float64("rate", 1, "playback rate used for derived constants")
	if err := flags.Parse(args); err != nil {
		return 2
	}
	if flags.NArg() == 0 {
		flags.Usage()
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Errorf("config: %v", err)
		return 2
	}
	if *format != "" {
		cfg.OutputFormat = *format
	}
	if *indexPath != "" {
		cfg.IndexPath = *indexPath
	}
	if *workers > 0 {
		cfg.Workers = *workers
	}
	if err := cfg.Validate(); err != nil {
		log.Errorf("config: %v", err)
		return 2
	}
	if err := logger.SetLevel(cfg.LogLevel); err != nil {
		log.Errorf("log level: %v", err)
		return 2
	}
	mods := Modifiers{Rate: *rate, HardRock: *hardRock, Easy: *easy}

	var store *index.Store
	if cfg.IndexPath != "" {
		store, err = index.Open(cfg.IndexPath, clock.RealClock{})
		if err != nil {
			log.Errorf("index: %v", err)
			return 2
		}
		defer store.Close()
	}
	failures := NewFailures(log, store)

	sources, rejected, err := CollectSources(flags.Args())
	if err != nil {
		log.Errorf("inputs: %v", err)
		return 2
	}
	names := make([]string, 0, len(rejected))
	for name := range rejected {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		failures.Fail(ctx, name, rejected[name])
	}

	log.Infof("decoding %d chart(s) with %d worker(s)", len(sources), cfg.Workers)
	summaries := DecodeAll(ctx, sources, cfg, mods, log, store, failures)

	if err := WriteSummaries(stdout, cfg.OutputFormat, summaries); err != nil {
		log.Errorf("output: %v", err)
		return 2
	}
	if n := failures.Count(); n > 0 {
		log.Warnf("%d chart(s) failed", n)
		return 1
	}
	return 0
}

// DecodeAll decodes every source on a bounded set of goroutines and returns
// the summaries of the successful ones in source order.
func DecodeAll(
	ctx context.Context,
	sources []Source,
	cfg config.Config,
	mods Modifiers,
	log *logrus.Entry,
	store *index.Store,
	failures *Failures,
) []Summary {
	results := make([]*Summary, len(sources))
	throttle := NewThrottle(cfg.Workers)
	var wg sync.WaitGroup

	for i, src := range sources {
		done := throttle.GetToken()
		Run(&wg, func() {
			defer done()
			s, err := decodeSource(ctx, src, cfg, mods, log, store)
			if err != nil {
				failures.Fail(ctx, src.Name, err.Error())
				return
			}
			results[i] = s
		}, func(err error) {
			failures.Fail(ctx, src.Name, errors.PrintErrorWithStackTrace(err))
		})
	}
	wg.Wait()

	out := make([]Summary, 0, len(results))
	for _, s := range results {
		if s != nil {
			out = append(out, *s)
		}
	}
	return out
}

func decodeSource(
	ctx context.Context,
	src Source,
	cfg config.Config,
	mods Modifiers,
	log *logrus.Entry,
	store *index.Store,
) (*Summary, error) {
	data, err := src.Load()
	if err != nil {
		return nil, err
	}
	dec := dotosu.NewDecoder(cfg.DecoderOptions(log.WithField("source", src.Name)))
	b, err := dec.DecodeBytes(data)
	if err != nil {
		return nil, err
	}
	st := b.Stats()
	if store != nil {
		if err := store.Put(ctx, src.Name, b, st); err != nil {
			return nil, err
		}
	}
	s := NewSummary(src.Name, b, st, mods)
	return &s, nil
}
