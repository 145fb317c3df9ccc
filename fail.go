package main

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/tutis12/osubeatmap/index"
)

// Failures collects the sources that could not be decoded and mirrors them
// into the index when one is open.
type Failures struct {
	mu     sync.Mutex
	log    *logrus.Entry
	store  *index.Store
	failed map[string]string
}

func NewFailures(log *logrus.Entry, store *index.Store) *Failures {
	return &Failures{log: log, store: store, failed: make(map[string]string)}
}

func (f *Failures) Fail(ctx context.Context, source string, reason string) {
	f.log.WithField("source", source).Errorf("fail: %s", reason)

	f.mu.Lock()
	f.failed[source] = reason
	f.mu.Unlock()

	if f.store == nil {
		return
	}
	if err := f.store.RecordFailure(ctx, source, reason); err != nil {
		f.log.WithField("source", source).Errorf("could not record failure: %v", err)
	}
}

func (f *Failures) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.failed)
}
