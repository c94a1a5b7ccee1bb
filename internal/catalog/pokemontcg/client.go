// Package pokemontcg talks to the public Pokémon TCG API (https://pokemontcg.io)
package pokemontcg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pokemon-tcg/internal/catalog"
)

const (
	DefaultBaseURL = "https://api.pokemontcg.io/v2"
	apiKeyHeader   = "X-Api-Key"
	searchPageSize = 250
	searchFields   = "id,name,supertype,images,set,rarity"
	maxErrorBody   = 512
)

// Client is a Pokémon TCG API client. It makes exactly one request per call;
// there is no retry.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a new Pokémon TCG API client
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// apiCard mirrors the upstream card schema, only the fields we read
type apiCard struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Supertype  string   `json:"supertype"`
	HP         string   `json:"hp"`
	Types      []string `json:"types"`
	Rarity     string   `json:"rarity"`
	Artist     string   `json:"artist"`
	FlavorText string   `json:"flavorText"`
	Attacks    []struct {
		Name   string   `json:"name"`
		Cost   []string `json:"cost"`
		Damage string   `json:"damage"`
		Text   string   `json:"text"`
	} `json:"attacks"`
	Images struct {
		Small string `json:"small"`
		Large string `json:"large"`
	} `json:"images"`
	Set struct {
		Name string `json:"name"`
	} `json:"set"`
}

func (a *apiCard) summary() catalog.CardSummary {
	return catalog.CardSummary{
		ID:         a.ID,
		Name:       a.Name,
		Supertype:  a.Supertype,
		ImageSmall: a.Images.Small,
		SetName:    a.Set.Name,
		Rarity:     a.Rarity,
	}
}

func (a *apiCard) detail() *catalog.CardDetail {
	d := &catalog.CardDetail{
		CardSummary: a.summary(),
		HP:          a.HP,
		Types:       a.Types,
		ImageLarge:  a.Images.Large,
		FlavorText:  a.FlavorText,
		Artist:      a.Artist,
	}
	for _, atk := range a.Attacks {
		d.Attacks = append(d.Attacks, catalog.Attack{
			Name:   atk.Name,
			Cost:   atk.Cost,
			Damage: atk.Damage,
			Text:   atk.Text,
		})
	}
	return d
}

func decodeSummary(raw json.RawMessage) (catalog.CardSummary, error) {
	var card apiCard
	if err := json.Unmarshal(raw, &card); err != nil {
		return catalog.CardSummary{}, fmt.Errorf("decode card: %w", err)
	}
	if card.ID == "" {
		return catalog.CardSummary{}, errors.New("card without id")
	}
	return card.summary(), nil
}

// SearchByName implements catalog.Catalog
func (c *Client) SearchByName(ctx context.Context, query string) (*catalog.CardIterator, error) {
	if err := catalog.ValidateQuery(query); err != nil {
		return nil, err
	}
	query = strings.TrimSpace(query)

	params := url.Values{}
	params.Set("q", fmt.Sprintf("name:*%s*", query))
	params.Set("pageSize", fmt.Sprint(searchPageSize))
	params.Set("select", searchFields)

	resp, err := c.get(ctx, "/cards?"+params.Encode())
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, statusError(resp)
	}

	return catalog.NewStreamIterator(resp.Body, "data", decodeSummary), nil
}

// FetchByID implements catalog.Catalog
func (c *Client) FetchByID(ctx context.Context, id string) (*catalog.CardDetail, error) {
	if err := catalog.ValidateID(id); err != nil {
		return nil, err
	}

	resp, err := c.get(ctx, "/cards/"+url.PathEscape(id))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound, resp.StatusCode == http.StatusBadRequest:
		return nil, catalog.ErrCardNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, statusError(resp)
	}

	var result struct {
		Data *apiCard `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: decode card %s: %v", catalog.ErrUpstream, id, err)
	}
	if result.Data == nil || result.Data.ID == "" {
		return nil, catalog.ErrCardNotFound
	}

	return result.Data.detail(), nil
}

func (c *Client) get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", catalog.ErrUpstream, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set(apiKeyHeader, c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", catalog.ErrUpstream, err)
	}
	return resp, nil
}

func statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return fmt.Errorf("%w: status %d: %s", catalog.ErrUpstream, resp.StatusCode, body)
}
