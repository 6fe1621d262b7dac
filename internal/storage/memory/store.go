// Package memory is an in-memory storage.Store. Transactions work on a copy
// of the state that replaces the live state on commit, and a store-wide
// mutex serializes them, which subsumes the row locks Postgres provides.
package memory

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/Spok95/parts-inventory/internal/domain/inventory"
	"github.com/Spok95/parts-inventory/internal/domain/kits"
	"github.com/Spok95/parts-inventory/internal/domain/parts"
	"github.com/Spok95/parts-inventory/internal/domain/picklists"
	"github.com/Spok95/parts-inventory/internal/domain/shopping"
	"github.com/Spok95/parts-inventory/internal/storage"
)

type state struct {
	seq int64

	boxes     map[int64]parts.Box
	locations map[int64]parts.Location
	parts     map[int64]parts.Part
	stock     map[int64]inventory.PartLocation
	history   map[int64]inventory.QuantityHistory
	kits      map[int64]kits.Kit
	contents  map[int64]kits.Content
	pickLists map[int64]picklists.PickList
	lines     map[int64]picklists.Line
	lists     map[int64]shopping.List
	listLines map[int64]shopping.Line
	links     map[int64]shopping.KitLink
}

func newState() *state {
	return &state{
		boxes:     map[int64]parts.Box{},
		locations: map[int64]parts.Location{},
		parts:     map[int64]parts.Part{},
		stock:     map[int64]inventory.PartLocation{},
		history:   map[int64]inventory.QuantityHistory{},
		kits:      map[int64]kits.Kit{},
		contents:  map[int64]kits.Content{},
		pickLists: map[int64]picklists.PickList{},
		lines:     map[int64]picklists.Line{},
		lists:     map[int64]shopping.List{},
		listLines: map[int64]shopping.Line{},
		links:     map[int64]shopping.KitLink{},
	}
}

// clone copies every table. Rows are values; the pointer fields they hold
// are replaced on write, never mutated in place.
func (s *state) clone() *state {
	return &state{
		seq:       s.seq,
		boxes:     maps.Clone(s.boxes),
		locations: maps.Clone(s.locations),
		parts:     maps.Clone(s.parts),
		stock:     maps.Clone(s.stock),
		history:   maps.Clone(s.history),
		kits:      maps.Clone(s.kits),
		contents:  maps.Clone(s.contents),
		pickLists: maps.Clone(s.pickLists),
		lines:     maps.Clone(s.lines),
		lists:     maps.Clone(s.lists),
		listLines: maps.Clone(s.listLines),
		links:     maps.Clone(s.links),
	}
}

func (s *state) nextID() int64 {
	s.seq++
	return s.seq
}

type Store struct {
	mu  sync.Mutex
	st  *state
	now func() time.Time
}

func New() *Store {
	return &Store{st: newState(), now: time.Now}
}

// SetClock replaces the time source used for timestamps.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Store) Repos() storage.Repos { return (&handle{store: s}).repos() }

func (s *Store) InTx(_ context.Context, fn func(storage.Repos) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	h := &handle{store: s, tx: s.st.clone()}
	if err := fn(h.repos()); err != nil {
		return err
	}
	s.st = h.tx
	return nil
}

// InSnapshot reads from a private copy; anything fn writes is discarded.
func (s *Store) InSnapshot(_ context.Context, fn func(storage.Repos) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	h := &handle{store: s, tx: s.st.clone()}
	return fn(h.repos())
}

// handle binds repositories either to a transaction copy or to the live
// state, in which case every call takes the store lock.
type handle struct {
	store *Store
	tx    *state
}

func (h *handle) use() (*state, func()) {
	if h.tx != nil {
		return h.tx, func() {}
	}
	h.store.mu.Lock()
	return h.store.st, h.store.mu.Unlock
}

func (h *handle) now() time.Time { return h.store.now() }

func (h *handle) repos() storage.Repos {
	return storage.Repos{
		Parts:     &partsRepo{h},
		Inventory: &inventoryRepo{h},
		Kits:      &kitsRepo{h},
		PickLists: &pickListsRepo{h},
		Shopping:  &shoppingRepo{h},
	}
}
