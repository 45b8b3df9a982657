package encoder_test

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/samirrijal/geogrids/internal/pkg/encoder"
)

func hexWords() []string {
	return strings.Split("0123456789abcdef", "")
}

func TestNew_Validation(t *testing.T) {
	_, err := encoder.New("tiny", []string{"only"}, " ")
	require.ErrorIs(t, err, encoder.ErrWordlistTooSmall)

	_, err = encoder.New("dups", []string{"a", "b", "a"}, " ")
	require.ErrorIs(t, err, encoder.ErrDuplicateWord)

	enc, err := encoder.New("three", []string{"a", "b", "c"}, " ")
	require.NoError(t, err)
	require.Equal(t, 1, enc.PrecisionPerWord())
	require.Equal(t, 3, enc.Size())
}

func TestFishAndChips(t *testing.T) {
	enc, err := encoder.New("fish-chips", []string{"fish", "chips"}, " ")
	require.NoError(t, err)

	_, err = enc.StringToHash("gravy")
	var decErr *encoder.DecodingError
	require.True(t, errors.As(err, &decErr))
	require.Equal(t, "gravy", decErr.Word)
	require.Equal(t, "fish-chips", decErr.Wordlist)
	require.Contains(t, err.Error(), "gravy")

	got, err := enc.StringToHash("fish gravy")
	require.NoError(t, err)
	require.Equal(t, encoder.Decoded{Hash: 0, Precision: 1, Truncated: true, Offending: "gravy"}, got)

	got, err = enc.StringToHash("chips fish chips")
	require.NoError(t, err)
	require.Equal(t, uint64(5), got.Hash)
	require.Equal(t, 3, got.Precision)
	require.False(t, got.Truncated)

	require.Equal(t, "chips fish chips", enc.HashToString(5, 3))
}

func TestHashToString_RoundsUpPartialWord(t *testing.T) {
	enc, err := encoder.New("hex", hexWords(), "-")
	require.NoError(t, err)

	require.Equal(t, "f-1", enc.HashToString(31, 5))
	require.Equal(t, "f-1", enc.HashToString(31, 8))
	require.Equal(t, "f-1-0", enc.HashToString(31, 9))
	require.Equal(t, "", enc.HashToString(31, 0))
}

func TestEmptySeparator(t *testing.T) {
	enc, err := encoder.New("hex", hexWords(), "")
	require.NoError(t, err)

	text := enc.HashToString(0xbeef, 16)
	require.Equal(t, "feeb", text)

	got, err := enc.StringToHash(text)
	require.NoError(t, err)
	require.Equal(t, uint64(0xbeef), got.Hash)
	require.Equal(t, 16, got.Precision)

	got, err = enc.StringToHash("")
	require.NoError(t, err)
	require.Equal(t, 0, got.Precision)

	got, err = enc.StringToHash("fez")
	require.NoError(t, err)
	require.True(t, got.Truncated)
	require.Equal(t, "z", got.Offending)
	require.Equal(t, uint64(0xef), got.Hash)
}

func TestRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(11))
	for _, size := range []int{2, 4, 16, 256} {
		words := make([]string, size)
		for i := range words {
			words[i] = fmt.Sprintf("w%03d", i)
		}
		enc, err := encoder.New(fmt.Sprintf("list-%d", size), words, " ")
		require.NoError(t, err)
		k := enc.PrecisionPerWord()

		for i := 0; i < 500; i++ {
			h := r.Uint64()
			p := 1 + r.Intn(64)
			consumed := (p + k - 1) / k * k
			if consumed > 64 {
				continue
			}
			want := h
			if consumed < 64 {
				want = h & (1<<uint(consumed) - 1)
			}

			got, err := enc.StringToHash(enc.HashToString(h, p))
			require.NoError(t, err)
			require.Equal(t, want, got.Hash, "size=%d h=%d p=%d", size, h, p)
			require.Equal(t, consumed, got.Precision)
		}
	}
}

func TestStringToHash_StopsAt64Bits(t *testing.T) {
	enc, err := encoder.New("fish-chips", []string{"fish", "chips"}, " ")
	require.NoError(t, err)

	text := enc.HashToString(^uint64(0), 64)
	got, err := enc.StringToHash(text)
	require.NoError(t, err)
	require.Equal(t, encoder.Decoded{Hash: ^uint64(0), Precision: 64}, got)

	got, err = enc.StringToHash(text + " fish")
	require.NoError(t, err)
	require.True(t, got.Truncated)
	require.Equal(t, "fish", got.Offending)
	require.Equal(t, ^uint64(0), got.Hash)
	require.Equal(t, 64, got.Precision)

	// 3^40 - 1 is the largest run of "c" that fits; the 41st digit overflows.
	abc, err := encoder.New("abc", []string{"a", "b", "c"}, " ")
	require.NoError(t, err)
	got, err = abc.StringToHash(strings.TrimSpace(strings.Repeat("c ", 41)))
	require.NoError(t, err)
	require.True(t, got.Truncated)
	require.Equal(t, uint64(12157665459056928800), got.Hash)
	require.Equal(t, 40, got.Precision)

	// zero digits never overflow the sum, but the place value does
	got, err = abc.StringToHash(strings.TrimSpace(strings.Repeat("a ", 42)))
	require.NoError(t, err)
	require.True(t, got.Truncated)
	require.Equal(t, uint64(0), got.Hash)
	require.Equal(t, 41, got.Precision)
}

func TestPrecisions(t *testing.T) {
	enc, err := encoder.New("hex", hexWords(), " ")
	require.NoError(t, err)
	ps := enc.Precisions()
	require.Equal(t, 4, ps[0])
	require.Equal(t, 56, ps[len(ps)-1])
}

func TestNew_CopiesWordlist(t *testing.T) {
	words := []string{"fish", "chips"}
	enc, err := encoder.New("fish-chips", words, " ")
	require.NoError(t, err)
	words[0] = "gravy"
	require.Equal(t, "fish", enc.HashToString(0, 1))
}
