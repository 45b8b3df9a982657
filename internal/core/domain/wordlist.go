package domain

import "time"

// Wordlist is a versioned, ordered list of unique words used to spell hashes.
// A published version must never change.
type Wordlist struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Version     int       `json:"version"`
	Separator   string    `json:"separator"`
	Words       []string  `json:"words,omitempty"`
	Size        int       `json:"size"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// WordEncoding is a numeric hash spelled with a word list.
type WordEncoding struct {
	Wordlist  string `json:"wordlist"`
	Version   int    `json:"version"`
	Hash      uint64 `json:"hash"`
	Precision int    `json:"precision"`
	Text      string `json:"text"`
}

// WordDecoding is the result of reading words back into a hash.
type WordDecoding struct {
	Wordlist  string `json:"wordlist"`
	Version   int    `json:"version"`
	Hash      uint64 `json:"hash"`
	Precision int    `json:"precision"`
	Truncated bool   `json:"truncated"`
	Offending string `json:"offending,omitempty"`
}
