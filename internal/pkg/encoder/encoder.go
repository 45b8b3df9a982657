// Package encoder re-expresses integers as sequences of words drawn from an
// ordered word list, one word per base-N digit, least significant first.
//
// The order and size of a word list are part of the encoding. Changing either
// breaks every string produced before, so word lists must be versioned.
package encoder

import (
	"errors"
	"fmt"
	"math/bits"
	"strings"
)

var (
	// ErrWordlistTooSmall is returned for word lists that cannot carry a bit.
	ErrWordlistTooSmall = errors.New("wordlist needs at least two words")
	// ErrDuplicateWord is returned when a word appears twice in a word list.
	ErrDuplicateWord = errors.New("duplicate word in wordlist")
)

// DecodingError reports a leading word that matched nothing, leaving no
// information decoded.
type DecodingError struct {
	Word     string
	Wordlist string
}

func (e *DecodingError) Error() string {
	return fmt.Sprintf("could not match %q in wordlist %s", e.Word, e.Wordlist)
}

// Decoded is the result of StringToHash. When Truncated is set decoding
// stopped at Offending and Hash/Precision hold what was read before it.
type Decoded struct {
	Hash      uint64
	Precision int
	Truncated bool
	Offending string
}

// Encoder maps integers to words and back. It is immutable and safe for
// concurrent use.
type Encoder struct {
	name             string
	words            []string
	index            map[string]int
	separator        string
	precisionPerWord int
}

// New builds an Encoder. Words past the largest power of two in the list are
// kept as digits but do not add precision. An empty separator splits encoded
// text into single characters.
func New(name string, words []string, separator string) (*Encoder, error) {
	if len(words) < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrWordlistTooSmall, len(words))
	}
	index := make(map[string]int, len(words))
	for i, w := range words {
		if _, dup := index[w]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateWord, w)
		}
		index[w] = i
	}
	list := make([]string, len(words))
	copy(list, words)

	return &Encoder{
		name:             name,
		words:            list,
		index:            index,
		separator:        separator,
		precisionPerWord: bits.Len(uint(len(words))) - 1,
	}, nil
}

// Name identifies the word list in errors.
func (e *Encoder) Name() string { return e.name }

// Separator joins encoded words.
func (e *Encoder) Separator() string { return e.separator }

// Size is the number of words in the list.
func (e *Encoder) Size() int { return len(e.words) }

// PrecisionPerWord is floor(log2(Size())).
func (e *Encoder) PrecisionPerWord() int { return e.precisionPerWord }

// Precisions lists whole-word precisions below 60 bits.
func (e *Encoder) Precisions() []int {
	var out []int
	for p := e.precisionPerWord; p < 60; p += e.precisionPerWord {
		out = append(out, p)
	}
	return out
}

// HashToString emits one word per digit until precision bits are covered. A
// precision that is not a multiple of PrecisionPerWord is rounded up to a
// whole word.
func (e *Encoder) HashToString(hash uint64, precision int) string {
	n := uint64(len(e.words))
	var digits []string
	for precision > 0 {
		digits = append(digits, e.words[hash%n])
		hash /= n
		precision -= e.precisionPerWord
	}
	return strings.Join(digits, e.separator)
}

// StringToHash decodes text produced by HashToString. An unknown first word
// is a *DecodingError; an unknown later word truncates the result. A word
// whose digit no longer fits in 64 bits also truncates the result, and
// Precision never exceeds 64.
func (e *Encoder) StringToHash(encoded string) (Decoded, error) {
	var words []string
	if e.separator != "" {
		words = strings.Split(encoded, e.separator)
	} else {
		words = strings.Split(encoded, "")
	}

	var out Decoded
	n := uint64(len(e.words))
	multiplier := uint64(1)
	full := false // multiplier has passed 2^64
	for _, w := range words {
		pos, ok := e.index[w]
		if !ok {
			if out.Precision > 0 {
				out.Truncated = true
				out.Offending = w
				return out, nil
			}
			return Decoded{}, &DecodingError{Word: w, Wordlist: e.name}
		}

		hi, lo := bits.Mul64(uint64(pos), multiplier)
		sum, carry := bits.Add64(out.Hash, lo, 0)
		if full || hi != 0 || carry != 0 {
			out.Truncated = true
			out.Offending = w
			return out, nil
		}
		out.Hash = sum
		out.Precision = min(out.Precision+e.precisionPerWord, 64)

		hi, multiplier = bits.Mul64(multiplier, n)
		full = hi != 0
	}
	return out, nil
}
