package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/samirrijal/geogrids/internal/core/domain"
	"github.com/samirrijal/geogrids/internal/core/ports"
	"github.com/samirrijal/geogrids/internal/pkg/encoder"
	"github.com/samirrijal/geogrids/internal/pkg/metrics"
	"github.com/samirrijal/geogrids/internal/pkg/telemetry"
	"github.com/samirrijal/geogrids/internal/pkg/wordfile"
)

// ErrInvalidWordlist wraps every reason a word list is refused at
// registration.
var ErrInvalidWordlist = errors.New("invalid wordlist")

// wordlistTTL is how long a resolved word list stays in the cache, in seconds.
const wordlistTTL = 3600

// WordlistService manages versioned word lists and spells hashes with them.
type WordlistService struct {
	wordlists ports.WordlistRepository
	cache     ports.CacheService

	// name@version -> *encoder.Encoder; published versions never change
	encoders sync.Map
}

// NewWordlistService creates a new WordlistService. cache may be nil.
func NewWordlistService(wordlists ports.WordlistRepository, cache ports.CacheService) *WordlistService {
	return &WordlistService{wordlists: wordlists, cache: cache}
}

// Register stores a new version of a word list. A zero version is assigned
// the next free one.
func (s *WordlistService) Register(ctx context.Context, wl *domain.Wordlist) error {
	wl.Name = strings.TrimSpace(wl.Name)
	if wl.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidWordlist)
	}
	wl.Words = wordfile.NormalizeWords(wl.Words)
	if _, err := encoder.New(wl.Name, wl.Words, wl.Separator); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidWordlist, err)
	}
	if wl.Separator != "" {
		for _, w := range wl.Words {
			if strings.Contains(w, wl.Separator) {
				return fmt.Errorf("%w: word %q contains separator %q", ErrInvalidWordlist, w, wl.Separator)
			}
		}
	} else {
		for _, w := range wl.Words {
			if len([]rune(w)) != 1 {
				return fmt.Errorf("%w: word %q must be a single character without a separator", ErrInvalidWordlist, w)
			}
		}
	}

	if wl.Version == 0 {
		latest, err := s.wordlists.LatestVersion(ctx, wl.Name)
		if err != nil && !errors.Is(err, ports.ErrNotFound) {
			return fmt.Errorf("latest version: %w", err)
		}
		wl.Version = latest + 1
	}
	wl.Size = len(wl.Words)
	if wl.Version < 0 {
		return fmt.Errorf("%w: version must be positive", ErrInvalidWordlist)
	}

	if err := s.wordlists.Insert(ctx, wl); err != nil {
		return fmt.Errorf("insert wordlist: %w", err)
	}

	// the "latest" entry now points at an older version
	if s.cache != nil {
		_ = s.cache.Delete(ctx, wordlistKey(wl.Name, 0))
	}
	return nil
}

// Get returns one version of a word list; version 0 means the latest.
func (s *WordlistService) Get(ctx context.Context, name string, version int) (*domain.Wordlist, error) {
	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanWordlistLoad)
	defer span.End()
	span.SetAttributes(attribute.String("words.wordlist", name), attribute.Int("words.version", version))

	cacheKey := wordlistKey(name, version)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var wl domain.Wordlist
			if err := json.Unmarshal(data, &wl); err == nil {
				metrics.CacheHits.WithLabelValues("wordlist").Inc()
				return &wl, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("wordlist").Inc()
	}

	wl, err := s.wordlists.Get(ctx, name, version)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(wl); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, wordlistTTL)
		}
	}
	return wl, nil
}

// List returns the latest version of every word list, without words.
func (s *WordlistService) List(ctx context.Context) ([]domain.Wordlist, error) {
	return s.wordlists.List(ctx)
}

// EncodeHash spells a numeric hash with a word list.
func (s *WordlistService) EncodeHash(ctx context.Context, name string, version int, hash uint64, precision int) (*domain.WordEncoding, error) {
	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanWordsEncode)
	defer span.End()

	if precision <= 0 || precision > 64 {
		return nil, fmt.Errorf("%w: %d not in [1, 64]", ErrInvalidPrecision, precision)
	}

	wl, enc, err := s.encoderFor(ctx, name, version)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	metrics.WordEncodes.WithLabelValues(wl.Name).Inc()
	return &domain.WordEncoding{
		Wordlist:  wl.Name,
		Version:   wl.Version,
		Hash:      hash,
		Precision: precision,
		Text:      enc.HashToString(hash, precision),
	}, nil
}

// DecodeText reads words back into a hash. An unknown first word fails with
// *encoder.DecodingError; an unknown later word yields a truncated result.
func (s *WordlistService) DecodeText(ctx context.Context, name string, version int, text string) (*domain.WordDecoding, error) {
	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanWordsDecode)
	defer span.End()

	wl, enc, err := s.encoderFor(ctx, name, version)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	dec, err := enc.StringToHash(wordfile.Normalize(text))
	if err != nil {
		metrics.WordDecodes.WithLabelValues(wl.Name, "failed").Inc()
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if dec.Truncated {
		metrics.WordDecodes.WithLabelValues(wl.Name, "truncated").Inc()
		slog.WarnContext(ctx, "word decode truncated",
			"wordlist", wl.Name,
			"version", wl.Version,
			"offending", dec.Offending,
			"precision", dec.Precision,
		)
	} else {
		metrics.WordDecodes.WithLabelValues(wl.Name, "ok").Inc()
	}

	return &domain.WordDecoding{
		Wordlist:  wl.Name,
		Version:   wl.Version,
		Hash:      dec.Hash,
		Precision: dec.Precision,
		Truncated: dec.Truncated,
		Offending: dec.Offending,
	}, nil
}

// encoderFor resolves a word list and returns its memoised Encoder.
func (s *WordlistService) encoderFor(ctx context.Context, name string, version int) (*domain.Wordlist, *encoder.Encoder, error) {
	wl, err := s.Get(ctx, name, version)
	if err != nil {
		return nil, nil, err
	}

	key := wordlistKey(wl.Name, wl.Version)
	if v, ok := s.encoders.Load(key); ok {
		return wl, v.(*encoder.Encoder), nil
	}

	enc, err := encoder.New(fmt.Sprintf("%s@%d", wl.Name, wl.Version), wl.Words, wl.Separator)
	if err != nil {
		return nil, nil, fmt.Errorf("build encoder %s@%d: %w", wl.Name, wl.Version, err)
	}
	v, _ := s.encoders.LoadOrStore(key, enc)
	return wl, v.(*encoder.Encoder), nil
}

func wordlistKey(name string, version int) string {
	if version == 0 {
		return "wordlists:" + name + ":latest"
	}
	return fmt.Sprintf("wordlists:%s:%d", name, version)
}
