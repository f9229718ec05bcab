// internal/puzzle/apininjas.go
//
// Puzzle source backed by the API Ninjas sudoku generator.
// One authenticated GET per room creation; the response is a pair of 9x9
// arrays with nulls for empty puzzle cells, which grid.Grid decodes
// directly. Any failure (network, non-200, malformed grids) is wrapped in
// room.ErrUpstreamUnavailable and propagated — no retry, no partial room.

package puzzle

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sudokuduo/go-server/internal/grid"
	"github.com/sudokuduo/go-server/internal/room"
)

const defaultBaseURL = "https://api.api-ninjas.com/v1/sudokugenerate"

// APINinjas fetches puzzles from the hosted generator.
type APINinjas struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewAPINinjas builds a source using the given API key.
func NewAPINinjas(apiKey string) *APINinjas {
	return &APINinjas{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// generateResponse mirrors the API payload shape.
type generateResponse struct {
	Puzzle   *grid.Grid `json:"puzzle"`
	Solution *grid.Grid `json:"solution"`
}

func (a *APINinjas) Generate(ctx context.Context, d room.Difficulty) (grid.Grid, grid.Grid, error) {
	u := a.baseURL + "?" + url.Values{"difficulty": {string(d)}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return grid.Grid{}, grid.Grid{}, fmt.Errorf("%w: %v", room.ErrUpstreamUnavailable, err)
	}
	req.Header.Set("X-Api-Key", a.apiKey)

	res, err := a.client.Do(req)
	if err != nil {
		return grid.Grid{}, grid.Grid{}, fmt.Errorf("%w: %v", room.ErrUpstreamUnavailable, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return grid.Grid{}, grid.Grid{}, fmt.Errorf("%w: status %d", room.ErrUpstreamUnavailable, res.StatusCode)
	}

	var body generateResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return grid.Grid{}, grid.Grid{}, fmt.Errorf("%w: decode: %v", room.ErrUpstreamUnavailable, err)
	}
	if body.Puzzle == nil || body.Solution == nil {
		return grid.Grid{}, grid.Grid{}, fmt.Errorf("%w: missing puzzle or solution", room.ErrUpstreamUnavailable)
	}
	if !body.Solution.IsComplete() {
		return grid.Grid{}, grid.Grid{}, fmt.Errorf("%w: incomplete solution grid", room.ErrUpstreamUnavailable)
	}
	return *body.Puzzle, *body.Solution, nil
}
