// Package client talks to the assistant's HTTP API. It keeps the session
// cookie between calls, so clues aren't repeated for a board.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"

	"github.com/bcspragu/PictureNames/codenames"
	"github.com/bcspragu/PictureNames/game"
)

type Client struct {
	scheme string
	addr   string
	http   *http.Client
}

func New(scheme, addr string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	return &Client{
		scheme: scheme,
		addr:   addr,
		http:   &http.Client{Jar: jar},
	}, nil
}

// ScoredPicture is how much a picture contributed to a clue's score.
type ScoredPicture struct {
	ID    codenames.PictureID `json:"id"`
	Ref   string              `json:"ref"`
	Team  codenames.Team      `json:"team"`
	Score float64             `json:"score"`
}

// ClueResponse is the best clue for a board.
type ClueResponse struct {
	Clue   codenames.Clue  `json:"clue"`
	Scores []ScoredPicture `json:"scores"`
}

// RevealResponse is the state of the game after revealing a picture.
type RevealResponse struct {
	Board    *codenames.Board  `json:"board"`
	Picture  codenames.Picture `json:"picture"`
	EndsTurn bool              `json:"ends_turn"`
	Outcome  game.Outcome      `json:"outcome"`
}

func (c *Client) url(path string) string {
	return c.scheme + "://" + c.addr + path
}

// NewBoard deals a new board, which starts a new session.
func (c *Client) NewBoard() (*codenames.Board, error) {
	req, err := http.NewRequest(http.MethodGet, c.url("/api/board"), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to form request: %w", err)
	}

	var b codenames.Board
	if err := c.do(req, &b); err != nil {
		return nil, fmt.Errorf("failed to create board: %w", err)
	}
	return &b, nil
}

// Clue asks for the best clue for the board. params may be nil, to use the
// server's defaults.
func (c *Client) Clue(b *codenames.Board, params *codenames.ScoreConfig) (*ClueResponse, error) {
	body := struct {
		Board  *codenames.Board       `json:"board"`
		Params *codenames.ScoreConfig `json:"params,omitempty"`
	}{b, params}

	req, err := http.NewRequest(http.MethodPost, c.url("/api/clue"), toBody(body))
	if err != nil {
		return nil, fmt.Errorf("failed to form request: %w", err)
	}

	var resp ClueResponse
	if err := c.do(req, &resp); err != nil {
		return nil, fmt.Errorf("failed to get clue: %w", err)
	}
	return &resp, nil
}

// ComputerTurn returns the pictures the computer picks on its turn.
func (c *Client) ComputerTurn(b *codenames.Board) ([]codenames.PictureID, error) {
	body := struct {
		Board *codenames.Board `json:"board"`
	}{b}

	req, err := http.NewRequest(http.MethodPost, c.url("/api/computer_turn"), toBody(body))
	if err != nil {
		return nil, fmt.Errorf("failed to form request: %w", err)
	}

	var resp struct {
		Sequence []codenames.PictureID `json:"sequence"`
	}
	if err := c.do(req, &resp); err != nil {
		return nil, fmt.Errorf("failed to get computer turn: %w", err)
	}
	return resp.Sequence, nil
}

// Reveal reveals a single picture.
func (c *Client) Reveal(b *codenames.Board, id codenames.PictureID) (*RevealResponse, error) {
	body := struct {
		Board *codenames.Board    `json:"board"`
		ID    codenames.PictureID `json:"id"`
	}{b, id}

	req, err := http.NewRequest(http.MethodPost, c.url("/api/reveal"), toBody(body))
	if err != nil {
		return nil, fmt.Errorf("failed to form request: %w", err)
	}

	var resp RevealResponse
	if err := c.do(req, &resp); err != nil {
		return nil, fmt.Errorf("failed to reveal picture %d: %w", id, err)
	}
	return &resp, nil
}

func (c *Client) do(req *http.Request, resp interface{}) error {
	req.Header.Set("Content-Type", "application/json")
	httpResp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer httpResp.Body.Close()
	if httpResp.StatusCode != http.StatusOK {
		return handleError(httpResp)
	}

	if resp != nil {
		if err := json.NewDecoder(httpResp.Body).Decode(resp); err != nil {
			return fmt.Errorf("failed to decode response body: %w", err)
		}
	}

	return nil
}

// HTTPError is returned for any non-200 response.
type HTTPError struct {
	StatusCode int
	Body       string
	err        error
}

func (h *HTTPError) Error() string {
	if h.err != nil {
		return fmt.Sprintf("[%d] failed to handle error: %v", h.StatusCode, h.err)
	}
	return fmt.Sprintf("[%d] error from server: %s", h.StatusCode, h.Body)
}

func handleError(resp *http.Response) error {
	dat, err := io.ReadAll(resp.Body)
	if err != nil {
		return &HTTPError{
			StatusCode: resp.StatusCode,
			err:        fmt.Errorf("failed to read error response body: %w", err),
		}
	}

	return &HTTPError{
		StatusCode: resp.StatusCode,
		Body:       string(bytes.TrimSpace(dat)),
	}
}

func toBody(req interface{}) io.Reader {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(req); err != nil {
		return &errReader{err: err}
	}
	return &buf
}

type errReader struct {
	err error
}

func (e *errReader) Read(_ []byte) (int, error) {
	return 0, e.err
}
