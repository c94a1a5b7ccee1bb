// Package catalogtest provides an in-memory Catalog for tests
package catalogtest

import (
	"context"
	"strings"
	"sync"

	"github.com/pokemon-tcg/internal/catalog"
)

// Fake is a Catalog backed by a fixed set of cards. It validates input the
// same way the real client does and counts the calls that get past validation.
type Fake struct {
	mu       sync.Mutex
	cards    []catalog.CardDetail
	searches int
	fetches  int

	// Err, when set, is returned by every call that passes validation
	Err error
}

// New returns a Fake holding cards in the given order
func New(cards ...catalog.CardDetail) *Fake {
	return &Fake{cards: cards}
}

// Card builds a minimal card detail
func Card(id, name string) catalog.CardDetail {
	return catalog.CardDetail{CardSummary: catalog.CardSummary{ID: id, Name: name}}
}

func (f *Fake) SearchByName(_ context.Context, query string) (*catalog.CardIterator, error) {
	if err := catalog.ValidateQuery(query); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.searches++

	if f.Err != nil {
		return nil, f.Err
	}

	needle := strings.ToLower(strings.TrimSpace(query))
	var matches []catalog.CardSummary
	for _, c := range f.cards {
		if strings.Contains(strings.ToLower(c.Name), needle) {
			matches = append(matches, c.CardSummary)
		}
	}
	return catalog.NewSliceIterator(matches), nil
}

func (f *Fake) FetchByID(_ context.Context, id string) (*catalog.CardDetail, error) {
	if err := catalog.ValidateID(id); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches++

	if f.Err != nil {
		return nil, f.Err
	}

	for _, c := range f.cards {
		if c.ID == id {
			card := c
			return &card, nil
		}
	}
	return nil, catalog.ErrCardNotFound
}

// Searches returns how many searches reached the fake
func (f *Fake) Searches() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.searches
}

// Fetches returns how many lookups reached the fake
func (f *Fake) Fetches() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches
}
