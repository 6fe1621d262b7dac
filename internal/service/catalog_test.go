package service

import (
	"context"
	"errors"
	"testing"

	"github.com/Spok95/parts-inventory/internal/domain/errs"
	"github.com/Spok95/parts-inventory/internal/domain/parts"
)

func TestCreateBoxNumbersSequentially(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.catalog.CreateBox(ctx, "resistors", 3)
	if err != nil {
		t.Fatalf("CreateBox: %v", err)
	}
	second, err := f.catalog.CreateBox(ctx, "caps", 2)
	if err != nil {
		t.Fatalf("CreateBox: %v", err)
	}
	if first.BoxNo != 1 || second.BoxNo != 2 {
		t.Fatalf("box numbers = %d, %d", first.BoxNo, second.BoxNo)
	}
	if len(first.Locations) != 3 || first.Locations[2].Ref() != "1-3" {
		t.Fatalf("locations = %+v", first.Locations)
	}
	if _, err := f.catalog.CreateBox(ctx, "", 0); !errors.Is(err, errs.ErrInvalidOperation) {
		t.Fatalf("zero capacity: err = %v", err)
	}
	if _, err := f.catalog.GetBox(ctx, 7); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("unknown box: err = %v", err)
	}
}

func TestCreatePart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.catalog.CreatePart(ctx, parts.Part{Key: " abcd ", Description: "op amp", Category: "ic"})
	if err != nil {
		t.Fatalf("CreatePart: %v", err)
	}
	if p.Key != "ABCD" {
		t.Fatalf("key = %q, want ABCD", p.Key)
	}
	if got, err := f.catalog.GetPart(ctx, "abcd"); err != nil || got.ID != p.ID {
		t.Fatalf("GetPart = %+v, %v", got, err)
	}

	tests := []struct {
		name string
		p    parts.Part
		kind error
	}{
		{"duplicate key", parts.Part{Key: "ABCD", Description: "again"}, errs.ErrConflict},
		{"blank key", parts.Part{Key: " ", Description: "x"}, errs.ErrInvalidOperation},
		{"space in key", parts.Part{Key: "AB CD", Description: "x"}, errs.ErrInvalidOperation},
		{"no description", parts.Part{Key: "EFGH"}, errs.ErrInvalidOperation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.catalog.CreatePart(ctx, tt.p); !errors.Is(err, tt.kind) {
				t.Fatalf("err = %v, want %v", err, tt.kind)
			}
		})
	}
}
