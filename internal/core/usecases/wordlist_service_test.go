package usecases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/samirrijal/geogrids/internal/core/domain"
	"github.com/samirrijal/geogrids/internal/core/ports"
	"github.com/samirrijal/geogrids/internal/core/usecases"
	"github.com/samirrijal/geogrids/internal/pkg/encoder"
)

func fishChips() *domain.Wordlist {
	return &domain.Wordlist{Name: "fish-chips", Version: 1, Separator: " ", Words: []string{"fish", "chips"}}
}

func TestWordlistService_Register_AssignsVersion(t *testing.T) {
	var inserted *domain.Wordlist
	repo := &mockWordlistRepo{
		latestFn: func(ctx context.Context, name string) (int, error) { return 2, nil },
		insertFn: func(ctx context.Context, wl *domain.Wordlist) error {
			inserted = wl
			return nil
		},
	}
	cache := newMemCache()
	svc := usecases.NewWordlistService(repo, cache)

	wl := &domain.Wordlist{Name: " hex ", Separator: "-", Words: []string{"a", "b", "c", "d"}}
	if err := svc.Register(context.Background(), wl); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inserted == nil || inserted.Version != 3 || inserted.Name != "hex" {
		t.Errorf("expected hex@3 to be inserted, got %+v", inserted)
	}
	if len(cache.deleted) != 1 || cache.deleted[0] != "wordlists:hex:latest" {
		t.Errorf("expected latest entry to be invalidated, got %v", cache.deleted)
	}
}

func TestWordlistService_Register_FirstVersion(t *testing.T) {
	repo := &mockWordlistRepo{}
	svc := usecases.NewWordlistService(repo, nil)

	wl := &domain.Wordlist{Name: "hex", Separator: " ", Words: []string{"a", "b"}}
	if err := svc.Register(context.Background(), wl); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if wl.Version != 1 {
		t.Errorf("expected version 1, got %d", wl.Version)
	}
}

func TestWordlistService_Register_Invalid(t *testing.T) {
	svc := usecases.NewWordlistService(&mockWordlistRepo{}, nil)
	ctx := context.Background()

	cases := map[string]*domain.Wordlist{
		"no name":         {Words: []string{"a", "b"}, Separator: " "},
		"too small":       {Name: "x", Words: []string{"a"}, Separator: " "},
		"duplicate":       {Name: "x", Words: []string{"a", "a"}, Separator: " "},
		"has separator":   {Name: "x", Words: []string{"a b", "c"}, Separator: " "},
		"multi-character": {Name: "x", Words: []string{"ab", "c"}, Separator: ""},
	}
	for name, wl := range cases {
		err := svc.Register(ctx, wl)
		if !errors.Is(err, usecases.ErrInvalidWordlist) {
			t.Errorf("%s: expected ErrInvalidWordlist, got %v", name, err)
		}
	}

	err := svc.Register(ctx, &domain.Wordlist{Name: "x", Words: []string{"a"}, Separator: " "})
	if !errors.Is(err, encoder.ErrWordlistTooSmall) {
		t.Errorf("expected the encoder error to be wrapped, got %v", err)
	}
}

func TestWordlistService_Get_ReadThrough(t *testing.T) {
	calls := 0
	repo := &mockWordlistRepo{
		getFn: func(ctx context.Context, name string, version int) (*domain.Wordlist, error) {
			calls++
			return fishChips(), nil
		},
	}
	svc := usecases.NewWordlistService(repo, newMemCache())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		wl, err := svc.Get(ctx, "fish-chips", 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if wl.Words[1] != "chips" {
			t.Errorf("unexpected words: %v", wl.Words)
		}
	}
	if calls != 1 {
		t.Errorf("expected a single repository call, got %d", calls)
	}
}

func TestWordlistService_Get_NotFound(t *testing.T) {
	svc := usecases.NewWordlistService(&mockWordlistRepo{}, nil)
	_, err := svc.Get(context.Background(), "missing", 0)
	if !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestWordlistService_EncodeDecode(t *testing.T) {
	repo := &mockWordlistRepo{
		getFn: func(ctx context.Context, name string, version int) (*domain.Wordlist, error) {
			return fishChips(), nil
		},
	}
	svc := usecases.NewWordlistService(repo, nil)
	ctx := context.Background()

	enc, err := svc.EncodeHash(ctx, "fish-chips", 0, 5, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if enc.Text != "chips fish chips" || enc.Version != 1 {
		t.Errorf("unexpected encoding: %+v", enc)
	}

	dec, err := svc.DecodeText(ctx, "fish-chips", 0, enc.Text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dec.Hash != 5 || dec.Precision != 3 || dec.Truncated {
		t.Errorf("unexpected decoding: %+v", dec)
	}

	if _, err := svc.EncodeHash(ctx, "fish-chips", 0, 5, 0); !errors.Is(err, usecases.ErrInvalidPrecision) {
		t.Errorf("expected ErrInvalidPrecision, got %v", err)
	}
}

func TestWordlistService_DecodeText_Truncated(t *testing.T) {
	repo := &mockWordlistRepo{
		getFn: func(ctx context.Context, name string, version int) (*domain.Wordlist, error) {
			return fishChips(), nil
		},
	}
	svc := usecases.NewWordlistService(repo, nil)

	dec, err := svc.DecodeText(context.Background(), "fish-chips", 1, "fish gravy")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !dec.Truncated || dec.Offending != "gravy" || dec.Precision != 1 {
		t.Errorf("unexpected decoding: %+v", dec)
	}
}

func TestWordlistService_DecodeText_UnknownFirstWord(t *testing.T) {
	repo := &mockWordlistRepo{
		getFn: func(ctx context.Context, name string, version int) (*domain.Wordlist, error) {
			return fishChips(), nil
		},
	}
	svc := usecases.NewWordlistService(repo, nil)

	_, err := svc.DecodeText(context.Background(), "fish-chips", 1, "gravy")
	var decErr *encoder.DecodingError
	if !errors.As(err, &decErr) {
		t.Fatalf("expected *encoder.DecodingError, got %v", err)
	}
	if decErr.Word != "gravy" || decErr.Wordlist != "fish-chips@1" {
		t.Errorf("unexpected error fields: %+v", decErr)
	}
}

func TestWordlistService_NormalisesToNFC(t *testing.T) {
	var stored *domain.Wordlist
	repo := &mockWordlistRepo{
		insertFn: func(ctx context.Context, wl *domain.Wordlist) error {
			stored = wl
			return nil
		},
		getFn: func(ctx context.Context, name string, version int) (*domain.Wordlist, error) {
			return stored, nil
		},
	}
	svc := usecases.NewWordlistService(repo, nil)
	ctx := context.Background()

	// decomposed "café": "e" followed by a combining acute accent
	decomposed := "cafe\u0301"
	wl := &domain.Wordlist{Name: "accents", Separator: " ", Words: []string{decomposed, "th\u00e9"}}
	if err := svc.Register(ctx, wl); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored.Words[0] != "caf\u00e9" {
		t.Errorf("expected stored word in NFC, got %q", stored.Words[0])
	}

	dec, err := svc.DecodeText(ctx, "accents", 1, decomposed+" th\u00e9")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dec.Truncated || dec.Precision != 2 || dec.Hash != 2 {
		t.Errorf("unexpected decoding: %+v", dec)
	}
}
