package catalog

import (
	"encoding/json"
	"fmt"
	"io"
)

// DecodeFunc turns one raw element of the upstream result array into a summary
type DecodeFunc func(raw json.RawMessage) (CardSummary, error)

// CardIterator walks search results one card at a time. It reads the upstream
// body lazily and can be consumed once:
//
//	it, err := c.SearchByName(ctx, "pikachu")
//	if err != nil { ... }
//	defer it.Close()
//	for it.Next() {
//		card := it.Card()
//	}
//	if err := it.Err(); err != nil { ... }
type CardIterator struct {
	body   io.ReadCloser
	dec    *json.Decoder
	field  string
	decode DecodeFunc

	items []CardSummary // static mode

	started bool
	done    bool
	cur     CardSummary
	err     error
}

// NewStreamIterator reads the array stored under field of the JSON object in body
func NewStreamIterator(body io.ReadCloser, field string, decode DecodeFunc) *CardIterator {
	return &CardIterator{
		body:   body,
		dec:    json.NewDecoder(body),
		field:  field,
		decode: decode,
	}
}

// NewSliceIterator iterates over already materialized results
func NewSliceIterator(items []CardSummary) *CardIterator {
	return &CardIterator{items: items, started: true}
}

// Next advances to the next card. It returns false at the end of the results
// or on error; check Err afterwards.
func (it *CardIterator) Next() bool {
	if it.done {
		return false
	}

	if it.dec == nil {
		if len(it.items) == 0 {
			it.done = true
			return false
		}
		it.cur, it.items = it.items[0], it.items[1:]
		return true
	}

	if !it.started {
		it.started = true
		found, err := it.seek()
		if err != nil {
			it.fail(err)
			return false
		}
		if !found {
			it.Close()
			return false
		}
	}

	if !it.dec.More() {
		it.done = true
		it.Close()
		return false
	}

	var raw json.RawMessage
	if err := it.dec.Decode(&raw); err != nil {
		it.fail(fmt.Errorf("%w: decode result: %v", ErrUpstream, err))
		return false
	}

	card, err := it.decode(raw)
	if err != nil {
		it.fail(fmt.Errorf("%w: %v", ErrUpstream, err))
		return false
	}

	it.cur = card
	return true
}

// Card returns the card Next moved to
func (it *CardIterator) Card() CardSummary {
	return it.cur
}

// Err returns the error that stopped iteration, if any
func (it *CardIterator) Err() error {
	return it.err
}

// Close releases the upstream response. It is safe to call more than once.
func (it *CardIterator) Close() error {
	it.done = true
	if it.body == nil {
		return nil
	}
	err := it.body.Close()
	it.body = nil
	return err
}

// Collect drains the iterator into a slice and closes it
func (it *CardIterator) Collect() ([]CardSummary, error) {
	defer it.Close()

	cards := make([]CardSummary, 0)
	for it.Next() {
		cards = append(cards, it.Card())
	}
	return cards, it.Err()
}

func (it *CardIterator) fail(err error) {
	it.err = err
	it.Close()
}

// seek positions the decoder just inside the result array. It reports false
// when the field is present but null.
func (it *CardIterator) seek() (bool, error) {
	tok, err := it.dec.Token()
	if err != nil {
		return false, fmt.Errorf("%w: read response: %v", ErrUpstream, err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return false, fmt.Errorf("%w: response is not an object", ErrUpstream)
	}

	for it.dec.More() {
		tok, err := it.dec.Token()
		if err != nil {
			return false, fmt.Errorf("%w: read response: %v", ErrUpstream, err)
		}

		key, _ := tok.(string)
		if key != it.field {
			// skip the value
			var skip json.RawMessage
			if err := it.dec.Decode(&skip); err != nil {
				return false, fmt.Errorf("%w: read response: %v", ErrUpstream, err)
			}
			continue
		}

		tok, err = it.dec.Token()
		if err != nil {
			return false, fmt.Errorf("%w: read response: %v", ErrUpstream, err)
		}
		if tok == nil {
			// "data": null means no results
			return false, nil
		}
		if d, ok := tok.(json.Delim); !ok || d != '[' {
			return false, fmt.Errorf("%w: %q is not an array", ErrUpstream, it.field)
		}
		return true, nil
	}

	return false, fmt.Errorf("%w: response has no %q field", ErrUpstream, it.field)
}
