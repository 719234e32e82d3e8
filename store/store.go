// Package store keeps named replicated values and serializes local access
// to them. It is the glue between the pure data types and an application:
// goroutines mutate through Update and Apply, anti-entropy exchanges whole
// states through MergeRemote and SyncWith.
package store

import (
	"context"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/puzpuzpuz/xsync/v3"

	"github.com/danburkert/crdt"
	"github.com/danburkert/crdt/utils"
)

var Updates = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "crdt",
	Subsystem: "store",
	Name:      "updates",
}, []string{"store"})

var Applies = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "crdt",
	Subsystem: "store",
	Name:      "applies",
}, []string{"store"})

var Merges = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "crdt",
	Subsystem: "store",
	Name:      "merges",
}, []string{"store"})

// Collectors returns the package metrics for registration by the host
// application.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{Updates, Applies, Merges}
}

type entry[C any] struct {
	lock  sync.Mutex
	state C
}

// Store is a concurrency-safe registry of replicated values of one type,
// addressed by key. Missing keys materialize on first touch from the
// factory, so two stores synchronize without coordinating key creation.
//
// Entries lock independently and locks never nest, so operations on
// different keys do not contend and SyncWith cannot deadlock.
type Store[C crdt.Crdt[C, O], O any] struct {
	name    string
	factory func() C
	entries *xsync.MapOf[string, *entry[C]]
	log     utils.Logger
	// ctx carries the store name into every log line
	ctx context.Context
}

func New[C crdt.Crdt[C, O], O any](name string, factory func() C, log utils.Logger) *Store[C, O] {
	if log == nil {
		log = utils.NewDefaultLogger(slog.LevelError)
	}
	return &Store[C, O]{
		name:    name,
		factory: factory,
		entries: xsync.NewMapOf[string, *entry[C]](),
		log:     log,
		ctx:     utils.WithDefaultArgs(context.Background(), "store", name),
	}
}

func (s *Store[C, O]) Name() string { return s.name }

func (s *Store[C, O]) entry(key string) *entry[C] {
	e, _ := s.entries.LoadOrCompute(key, func() *entry[C] {
		return &entry[C]{state: s.factory()}
	})
	return e
}

// Update runs fn against the value under key while holding its lock. The
// value passed to fn must not escape.
func (s *Store[C, O]) Update(key string, fn func(state C)) {
	e := s.entry(key)
	e.lock.Lock()
	fn(e.state)
	e.lock.Unlock()
	Updates.WithLabelValues(s.name).Inc()
}

// Snapshot returns an independent copy of the value under key, or false if
// the key has never been touched.
func (s *Store[C, O]) Snapshot(key string) (C, bool) {
	e, ok := s.entries.Load(key)
	if !ok {
		var zero C
		return zero, false
	}
	e.lock.Lock()
	snap := e.state.Clone()
	e.lock.Unlock()
	return snap, true
}

// Apply applies a replicated operation to the value under key.
func (s *Store[C, O]) Apply(key string, op O) {
	e := s.entry(key)
	e.lock.Lock()
	e.state.Apply(op)
	e.lock.Unlock()
	Applies.WithLabelValues(s.name).Inc()
	s.log.DebugCtx(s.ctx, "applied op", "key", key)
}

// MergeRemote merges a remote replica's state into the value under key.
// The remote state is not retained.
func (s *Store[C, O]) MergeRemote(key string, remote C) {
	e := s.entry(key)
	e.lock.Lock()
	e.state.Merge(remote)
	e.lock.Unlock()
	Merges.WithLabelValues(s.name).Inc()
	s.log.DebugCtx(s.ctx, "merged remote state", "key", key)
}

// Keys returns the touched keys in no particular order.
func (s *Store[C, O]) Keys() []string {
	keys := make([]string, 0, s.entries.Size())
	s.entries.Range(func(key string, _ *entry[C]) bool {
		keys = append(keys, key)
		return true
	})
	return keys
}

func (s *Store[C, O]) Len() int {
	return s.entries.Size()
}

// SyncWith runs one anti-entropy round against another store: every key is
// pushed there and pulled back, leaving both stores at the join of the two.
// Keys touched concurrently with the round may need a later round.
func (s *Store[C, O]) SyncWith(other *Store[C, O]) {
	for _, key := range s.Keys() {
		if snap, ok := s.Snapshot(key); ok {
			other.MergeRemote(key, snap)
		}
	}
	for _, key := range other.Keys() {
		if snap, ok := other.Snapshot(key); ok {
			s.MergeRemote(key, snap)
		}
	}
	s.log.InfoCtx(s.ctx, "synchronized stores", "remote", other.name)
}
