package service

import (
	"context"
	"sync"
	"testing"

	"github.com/Spok95/parts-inventory/internal/domain/kits"
	"github.com/Spok95/parts-inventory/internal/domain/parts"
	"github.com/Spok95/parts-inventory/internal/storage/memory"
)

type event struct {
	name   string
	labels map[string]string
}

type recordingSink struct {
	mu     sync.Mutex
	events []event
}

func (s *recordingSink) RecordEvent(name string, labels map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event{name: name, labels: labels})
}

func (s *recordingSink) count(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, e := range s.events {
		if e.name == name {
			n++
		}
	}
	return n
}

func (s *recordingSink) labels(name string) []map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []map[string]string
	for _, e := range s.events {
		if e.name == name {
			out = append(out, e.labels)
		}
	}
	return out
}

func (s *recordingSink) labelKeys() map[string]bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := map[string]bool{}
	for _, e := range s.events {
		for k := range e.labels {
			keys[k] = true
		}
	}
	return keys
}

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *recordingNotifier) Notify(_ context.Context, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, text)
	return nil
}

type fixture struct {
	store     *memory.Store
	sink      *recordingSink
	notifier  *recordingNotifier
	catalog   *Catalog
	inventory *Inventory
	kits      *Kits
	pickLists *PickLists
	shopping  *Shopping
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:    memory.New(),
		sink:     &recordingSink{},
		notifier: &recordingNotifier{},
	}
	d := Deps{Store: f.store, Metrics: f.sink, Notifier: f.notifier}
	f.catalog = NewCatalog(d)
	f.inventory = NewInventory(d, 0)
	f.kits = NewKits(d)
	f.pickLists = NewPickLists(d)
	f.shopping = NewShopping(d)
	return f
}

func (f *fixture) box(t *testing.T, capacity int) int {
	t.Helper()
	b, err := f.catalog.CreateBox(context.Background(), "box", capacity)
	if err != nil {
		t.Fatalf("CreateBox: %v", err)
	}
	return b.BoxNo
}

func (f *fixture) part(t *testing.T, key string) *parts.Part {
	t.Helper()
	p, err := f.catalog.CreatePart(context.Background(), parts.Part{Key: key, Description: "part " + key})
	if err != nil {
		t.Fatalf("CreatePart %s: %v", key, err)
	}
	return p
}

func (f *fixture) stock(t *testing.T, key string, boxNo, locNo, qty int) {
	t.Helper()
	if _, err := f.inventory.AddStock(context.Background(), StockChange{PartKey: key, BoxNo: boxNo, LocNo: locNo, Qty: qty}); err != nil {
		t.Fatalf("AddStock %s %d-%d: %v", key, boxNo, locNo, err)
	}
}

func (f *fixture) qtyAt(t *testing.T, key string, boxNo, locNo int) int {
	t.Helper()
	locs, err := f.inventory.Locations(context.Background(), key)
	if err != nil {
		t.Fatalf("Locations %s: %v", key, err)
	}
	for _, pl := range locs {
		if pl.BoxNo == boxNo && pl.LocNo == locNo {
			return pl.Qty
		}
	}
	return 0
}

// kit creates an active kit whose BOM maps part keys to required-per-unit.
func (f *fixture) kit(t *testing.T, name string, buildTarget int, bom map[string]int) *kits.Kit {
	t.Helper()
	ctx := context.Background()
	k, err := f.kits.Create(ctx, KitInput{Name: name, BuildTarget: buildTarget})
	if err != nil {
		t.Fatalf("Create kit %s: %v", name, err)
	}
	for key, perUnit := range bom {
		if _, err := f.kits.AddContent(ctx, k.ID, ContentInput{PartKey: key, RequiredPerUnit: perUnit}); err != nil {
			t.Fatalf("AddContent %s to %s: %v", key, name, err)
		}
	}
	return k
}
