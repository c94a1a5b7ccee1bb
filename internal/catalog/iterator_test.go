package catalog

import (
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type trackingBody struct {
	io.Reader
	closed int
}

func (b *trackingBody) Close() error {
	b.closed++
	return nil
}

func nameDecoder(raw json.RawMessage) (CardSummary, error) {
	var c CardSummary
	err := json.Unmarshal(raw, &c)
	return c, err
}

func TestStreamIteratorSkipsOtherFields(t *testing.T) {
	body := &trackingBody{Reader: strings.NewReader(`{"page": 1, "meta": {"x": [1,2]}, "data": [{"id":"a","name":"A"},{"id":"b","name":"B"}], "count": 2}`)}
	it := NewStreamIterator(body, "data", nameDecoder)

	cards, err := it.Collect()
	require.NoError(t, err)
	assert.Equal(t, []CardSummary{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}}, cards)
	assert.Equal(t, 1, body.closed)
}

func TestStreamIteratorIsNotRestartable(t *testing.T) {
	body := &trackingBody{Reader: strings.NewReader(`{"data": [{"id":"a"}]}`)}
	it := NewStreamIterator(body, "data", nameDecoder)

	require.True(t, it.Next())
	assert.False(t, it.Next())
	assert.False(t, it.Next())
	assert.NoError(t, it.Err())
}

func TestStreamIteratorNullData(t *testing.T) {
	it := NewStreamIterator(&trackingBody{Reader: strings.NewReader(`{"data": null}`)}, "data", nameDecoder)
	assert.False(t, it.Next())
	assert.NoError(t, it.Err())
}

func TestStreamIteratorMalformed(t *testing.T) {
	tests := map[string]string{
		"not an object": `[1,2]`,
		"missing field": `{"items": []}`,
		"not an array":  `{"data": {"id": "a"}}`,
		"empty body":    ``,
	}

	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			it := NewStreamIterator(&trackingBody{Reader: strings.NewReader(body)}, "data", nameDecoder)
			assert.False(t, it.Next())
			assert.ErrorIs(t, it.Err(), ErrUpstream)
		})
	}
}

func TestStreamIteratorDecodeError(t *testing.T) {
	failing := func(json.RawMessage) (CardSummary, error) {
		return CardSummary{}, errors.New("nope")
	}
	it := NewStreamIterator(&trackingBody{Reader: strings.NewReader(`{"data": [{}]}`)}, "data", failing)
	assert.False(t, it.Next())
	assert.ErrorIs(t, it.Err(), ErrUpstream)
}

func TestSliceIterator(t *testing.T) {
	it := NewSliceIterator([]CardSummary{{ID: "one"}, {ID: "two"}})
	cards, err := it.Collect()
	require.NoError(t, err)
	assert.Len(t, cards, 2)

	empty, err := NewSliceIterator(nil).Collect()
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestValidateQuery(t *testing.T) {
	for _, q := range []string{"pikachu", "Charmander", " eevee ", "flabébé"} {
		assert.NoError(t, ValidateQuery(q), q)
	}
	for _, q := range []string{"", " ", "pika chu", "pika1", "*", "name:x"} {
		assert.ErrorIs(t, ValidateQuery(q), ErrInvalidQuery, q)
	}
}

func TestValidateID(t *testing.T) {
	for _, id := range []string{"base1-58", "swshp-SWSH020", "sv3pt5-25", "xy7.5-1"} {
		assert.NoError(t, ValidateID(id), id)
	}
	for _, id := range []string{"", "a/b", "a b", strings.Repeat("x", 65)} {
		assert.ErrorIs(t, ValidateID(id), ErrCardNotFound, id)
	}
}
