package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/BigBang1112/tmwrr-sub000/internal/domain/model"
	"github.com/BigBang1112/tmwrr-sub000/internal/domain/scores"
)

// Default HTTP client configuration constants.
const (
	defaultHTTPTimeout = 30 * time.Second
)

// HTTPClient implements Client against the scoreboard's JSON endpoints.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

// Option applies a configuration option to the HTTPClient.
type Option func(*HTTPClient)

// WithHTTPClient substitutes the underlying http.Client.
func WithHTTPClient(c *http.Client) Option {
	return func(h *HTTPClient) {
		if c != nil {
			h.client = c
		}
	}
}

// WithTimeout sets the request timeout on the underlying http.Client.
func WithTimeout(d time.Duration) Option {
	return func(h *HTTPClient) {
		if d > 0 {
			h.client.Timeout = d
		}
	}
}

// NewHTTPClient creates a scoreboard client rooted at baseURL.
func NewHTTPClient(baseURL string, opts ...Option) *HTTPClient {
	h := &HTTPClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: defaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// latestDTO mirrors GET /scores/latest.
type latestDTO struct {
	Round int `json:"round"`
}

// summaryDTO mirrors GET /scores/{category}/{round}/summary.
type summaryDTO struct {
	UpdatedAt   time.Time `json:"updated_at"`
	PlayerCount int       `json:"player_count"`
}

// entryDTO mirrors one leaderboard line on the wire.
type entryDTO struct {
	Rank     int    `json:"rank"`
	Score    int    `json:"score"`
	Login    string `json:"login"`
	Nickname string `json:"nickname"`
}

// mapBoardDTO mirrors one campaign map board on the wire.
type mapBoardDTO struct {
	UID     string     `json:"uid"`
	Name    string     `json:"name"`
	Mode    string     `json:"mode"` // "time" or "points"
	Records []entryDTO `json:"records"`
}

// payloadDTO mirrors GET /scores/{category}/{round}.
type payloadDTO struct {
	Maps        []mapBoardDTO `json:"maps,omitempty"`
	Players     []entryDTO    `json:"players,omitempty"`
	Points      []model.Point `json:"points,omitempty"`
	PlayerCount int           `json:"player_count"`
}

// LatestRound discovers the most recently published round identifier.
func (h *HTTPClient) LatestRound(ctx context.Context) (scores.Round, error) {
	var dto latestDTO
	if err := h.getJSON(ctx, h.baseURL+"/scores/latest", &dto); err != nil {
		return 0, err
	}
	r := scores.Round(dto.Round)
	if !r.Valid() {
		return 0, fmt.Errorf("scoreboard reported invalid round %d", dto.Round)
	}
	return r, nil
}

// FetchTimestamp returns the reported last-modified time and approximate
// player count for the category at the given round.
func (h *HTTPClient) FetchTimestamp(ctx context.Context, cat scores.Category, round scores.Round) (time.Time, int, error) {
	url := fmt.Sprintf("%s/scores/%s/%d/summary", h.baseURL, cat, round)
	var dto summaryDTO
	if err := h.getJSON(ctx, url, &dto); err != nil {
		return time.Time{}, 0, err
	}
	return dto.UpdatedAt, dto.PlayerCount, nil
}

// FetchLeaderboard downloads the full payload for the category.
func (h *HTTPClient) FetchLeaderboard(ctx context.Context, cat scores.Category, round scores.Round) (*Payload, error) {
	url := fmt.Sprintf("%s/scores/%s/%d", h.baseURL, cat, round)
	var dto payloadDTO
	if err := h.getJSON(ctx, url, &dto); err != nil {
		return nil, err
	}
	return dto.toPayload(cat), nil
}

// toPayload converts the wire representation into the domain payload for
// the category's family.
func (d *payloadDTO) toPayload(cat scores.Category) *Payload {
	switch {
	case cat.IsCampaign():
		p := &Payload{Campaign: make([]MapBoard, 0, len(d.Maps))}
		for _, m := range d.Maps {
			mode := scores.DefaultMode(cat)
			switch m.Mode {
			case "points":
				mode = scores.HigherIsBetter
			case "time":
				mode = scores.LowerIsBetter
			}
			p.Campaign = append(p.Campaign, MapBoard{
				Map:     model.MapRef{UID: m.UID, Name: m.Name, Mode: mode},
				Entries: toEntries(m.Records),
			})
		}
		return p
	case cat == scores.Ladder:
		return &Payload{Ladder: &LadderBoard{Points: d.Points, PlayerCount: d.PlayerCount}}
	default:
		return &Payload{General: &GeneralBoard{Entries: toEntries(d.Players), PlayerCount: d.PlayerCount}}
	}
}

func toEntries(dtos []entryDTO) []model.Entry {
	entries := make([]model.Entry, 0, len(dtos))
	for _, e := range dtos {
		entries = append(entries, model.Entry{
			Rank:     e.Rank,
			Score:    e.Score,
			Login:    e.Login,
			Nickname: e.Nickname,
		})
	}
	return entries
}

// getJSON issues a GET and decodes the response body, mapping 404 to
// ErrNotFound.
func (h *HTTPClient) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build scoreboard request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("fetch %s: unexpected status %s", url, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	return nil
}
