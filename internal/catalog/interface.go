package catalog

import (
	"context"
	"errors"
	"strings"
	"unicode"
)

var (
	ErrInvalidQuery = errors.New("invalid search query")
	ErrCardNotFound = errors.New("card not found")
	ErrUpstream     = errors.New("card catalog unavailable")
)

const maxIDLength = 64

// CardSummary is one row of a search result
type CardSummary struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Supertype  string `json:"supertype,omitempty"`
	ImageSmall string `json:"image_small,omitempty"`
	SetName    string `json:"set_name,omitempty"`
	Rarity     string `json:"rarity,omitempty"`
}

// Attack is a single attack printed on a card
type Attack struct {
	Name   string   `json:"name"`
	Cost   []string `json:"cost,omitempty"`
	Damage string   `json:"damage,omitempty"`
	Text   string   `json:"text,omitempty"`
}

// CardDetail is everything the detail page shows about a card
type CardDetail struct {
	CardSummary
	HP         string   `json:"hp,omitempty"`
	Types      []string `json:"types,omitempty"`
	Attacks    []Attack `json:"attacks,omitempty"`
	ImageLarge string   `json:"image_large,omitempty"`
	FlavorText string   `json:"flavor_text,omitempty"`
	Artist     string   `json:"artist,omitempty"`
}

// Catalog is the read-only external card source
type Catalog interface {
	// SearchByName streams cards whose name contains query, in upstream order.
	// Invalid queries fail with ErrInvalidQuery before any request is made.
	SearchByName(ctx context.Context, query string) (*CardIterator, error)

	// FetchByID returns a single card or ErrCardNotFound
	FetchByID(ctx context.Context, id string) (*CardDetail, error)
}

// ValidateQuery accepts a non-empty, letters-only search term
func ValidateQuery(query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return ErrInvalidQuery
	}
	for _, r := range query {
		if !unicode.IsLetter(r) {
			return ErrInvalidQuery
		}
	}
	return nil
}

// ValidateID rejects identifiers the catalog could never have issued.
// Malformed IDs are reported as not found.
func ValidateID(id string) error {
	if id == "" || len(id) > maxIDLength {
		return ErrCardNotFound
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '.':
		default:
			return ErrCardNotFound
		}
	}
	return nil
}
