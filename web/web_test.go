package web

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bcspragu/PictureNames/codenames"
	"github.com/bcspragu/PictureNames/config"
	"github.com/bcspragu/PictureNames/embedding"
	"github.com/bcspragu/PictureNames/game"
	"github.com/bcspragu/PictureNames/score"
	"github.com/bcspragu/PictureNames/sequencer"
	"github.com/google/go-cmp/cmp"
	"github.com/gorilla/securecookie"
)

var testVocab = []string{"alpha", "beta", "gamma"}

func TestBasicallyEverything(t *testing.T) {
	// Runs through a whole session end-to-end: deal a board, get clues until
	// they run out, let the computer play, and reveal a few pictures.
	env := setup(t, testVocab)

	b, cookie := env.newBoard(t)
	if err := b.Validate(); err != nil {
		t.Fatalf("served an invalid board: %v", err)
	}
	if len(b.Pictures) != codenames.Size {
		t.Fatalf("board has %d pictures, want %d", len(b.Pictures), codenames.Size)
	}

	// Every clue comes up once, and then we're out.
	seen := make(map[string]bool)
	for range testVocab {
		var resp clueResponse
		cookie = env.clue(t, b, cookie, &resp)
		if seen[resp.Clue.Ref] {
			t.Errorf("clue %q was given twice", resp.Clue.Ref)
		}
		seen[resp.Clue.Ref] = true

		var sum float64
		for _, sc := range resp.Scores {
			sum += sc.Score
		}
		if math.Abs(sum-resp.Clue.Score) > 1e-9 {
			t.Errorf("scores for %q sum to %v, want the total %v", resp.Clue.Ref, sum, resp.Clue.Score)
		}
		if len(resp.Scores) != codenames.Size {
			t.Errorf("got %d picture scores, want %d", len(resp.Scores), codenames.Size)
		}
	}
	w := env.post(t, "/api/clue", map[string]interface{}{"board": b}, cookie)
	if w.Code != http.StatusConflict {
		t.Errorf("clue with every word used returned %d, want %d", w.Code, http.StatusConflict)
	}

	// The computer never picks the assassin or a picture twice.
	w = env.post(t, "/api/computer_turn", map[string]interface{}{"board": b}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("computer_turn returned %d: %s", w.Code, w.Body.String())
	}
	var turn struct {
		Sequence []codenames.PictureID `json:"sequence"`
	}
	fromBody(t, w, &turn)
	if len(turn.Sequence) == 0 {
		t.Error("computer turn was empty")
	}
	picked := make(map[codenames.PictureID]bool)
	for _, id := range turn.Sequence {
		p, ok := b.Picture(id)
		if !ok {
			t.Fatalf("computer picked unknown picture %d", id)
		}
		if p.Team == codenames.Assassin {
			t.Error("computer picked the assassin")
		}
		if picked[id] {
			t.Errorf("computer picked %d twice", id)
		}
		picked[id] = true
	}

	// Reveal one of our own pictures, then one of theirs.
	var own, opp codenames.PictureID
	for _, p := range b.Pictures {
		switch p.Team {
		case codenames.Own:
			own = p.ID
		case codenames.Opponent:
			opp = p.ID
		}
	}
	resp := env.reveal(t, b, own)
	if resp.EndsTurn {
		t.Error("revealing an own picture ended the turn")
	}
	if resp.Outcome.Over {
		t.Error("game ended after one reveal")
	}
	b = resp.Board
	if resp = env.reveal(t, b, opp); !resp.EndsTurn {
		t.Error("revealing an opponent picture didn't end the turn")
	}

	w = env.post(t, "/api/reveal", map[string]interface{}{"board": resp.Board, "id": opp}, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("revealing a picture twice returned %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestClueSession(t *testing.T) {
	env := setup(t, testVocab)
	b, cookie := env.newBoard(t)

	var first clueResponse
	cookie = env.clue(t, b, cookie, &first)

	// The session is for a different board, so the used clue doesn't carry
	// over.
	other := b.Clone()
	other.ID = "some-other-board"
	var resp clueResponse
	env.clue(t, other, cookie, &resp)
	if resp.Clue.Ref != first.Clue.Ref {
		t.Errorf("clue for a new board = %q, want %q again", resp.Clue.Ref, first.Clue.Ref)
	}

	// A cookie we can't read is ignored too.
	bad := &http.Cookie{Name: sessionCookie, Value: "garbage"}
	env.clue(t, b, bad, &resp)
	if resp.Clue.Ref != first.Clue.Ref {
		t.Errorf("clue with a bad cookie = %q, want %q again", resp.Clue.Ref, first.Clue.Ref)
	}

	// But the same board skips it.
	env.clue(t, b, cookie, &resp)
	if resp.Clue.Ref == first.Clue.Ref {
		t.Errorf("clue %q was given twice for the same board", resp.Clue.Ref)
	}
}

func TestErrors(t *testing.T) {
	env := setup(t, append([]string{"ghost"}, testVocab...))
	b, _ := env.newBoard(t)

	dup := b.Clone()
	dup.Pictures[1].ID = dup.Pictures[0].ID

	tests := []struct {
		desc     string
		path     string
		body     interface{}
		wantCode int
	}{
		{
			desc:     "malformed body",
			path:     "/api/clue",
			body:     "not a request",
			wantCode: http.StatusBadRequest,
		},
		{
			desc:     "no board",
			path:     "/api/clue",
			body:     map[string]interface{}{},
			wantCode: http.StatusBadRequest,
		},
		{
			desc:     "duplicate IDs",
			path:     "/api/computer_turn",
			body:     map[string]interface{}{"board": dup},
			wantCode: http.StatusBadRequest,
		},
		{
			desc: "bad params",
			path: "/api/clue",
			body: map[string]interface{}{
				"board":  b,
				"params": map[string]interface{}{"weights": map[string]float64{"own": 1}},
			},
			wantCode: http.StatusBadRequest,
		},
		{
			// "ghost" has no distances at all.
			desc:     "missing distance",
			path:     "/api/clue",
			body:     map[string]interface{}{"board": b},
			wantCode: http.StatusInternalServerError,
		},
		{
			desc:     "unknown picture",
			path:     "/api/reveal",
			body:     map[string]interface{}{"board": b, "id": 99},
			wantCode: http.StatusBadRequest,
		},
	}

	for _, test := range tests {
		t.Run(test.desc, func(t *testing.T) {
			w := env.post(t, test.path, test.body, nil)
			if w.Code != test.wantCode {
				t.Errorf("got status %d, want %d: %s", w.Code, test.wantCode, w.Body.String())
			}
		})
	}

	w := httptest.NewRecorder()
	env.srv.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/clue", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET /api/clue returned %d, want %d", w.Code, http.StatusMethodNotAllowed)
	}
}

func TestCandidates(t *testing.T) {
	env := setup(t, testVocab)
	b, _ := env.newBoard(t)

	if diff := cmp.Diff(testVocab, env.srv.candidates(b)); diff != "" {
		t.Errorf("unexpected candidates without neighbors (-want +got)\n%s", diff)
	}

	var ownRef string
	for _, p := range b.Pictures {
		if p.Team == codenames.Own {
			ownRef = p.Ref
			break
		}
	}
	env.srv.neighbors = embedding.NewIndex(map[string][]string{ownRef: {"gamma"}})
	if got := env.srv.candidates(b); len(got) != 1 || got[0] != "gamma" {
		t.Errorf("candidates = %v, want [gamma]", got)
	}

	env.srv.neighbors = embedding.NewIndex(map[string][]string{"not-on-the-board": {"beta"}})
	if got := env.srv.candidates(b); len(got) != len(testVocab) {
		t.Errorf("candidates with no matching neighbors = %v, want the vocabulary", got)
	}
}

type revealResponse struct {
	Board    *codenames.Board `json:"board"`
	EndsTurn bool             `json:"ends_turn"`
	Outcome  game.Outcome     `json:"outcome"`
}

func (env *testEnv) newBoard(t *testing.T) (*codenames.Board, *http.Cookie) {
	t.Helper()
	w := httptest.NewRecorder()
	env.srv.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/board", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("failed to create board: %d %s", w.Code, w.Body.String())
	}
	cookie := sessionFrom(t, w)

	var b codenames.Board
	fromBody(t, w, &b)
	return &b, cookie
}

func (env *testEnv) clue(t *testing.T, b *codenames.Board, cookie *http.Cookie, resp *clueResponse) *http.Cookie {
	t.Helper()
	w := env.post(t, "/api/clue", map[string]interface{}{"board": b}, cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("failed to get clue: %d %s", w.Code, w.Body.String())
	}
	next := sessionFrom(t, w)
	fromBody(t, w, resp)
	return next
}

func (env *testEnv) reveal(t *testing.T, b *codenames.Board, id codenames.PictureID) *revealResponse {
	t.Helper()
	w := env.post(t, "/api/reveal", map[string]interface{}{"board": b, "id": id}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("failed to reveal %d: %d %s", id, w.Code, w.Body.String())
	}
	var resp revealResponse
	fromBody(t, w, &resp)
	return &resp
}

func (env *testEnv) post(t *testing.T, path string, body interface{}, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, path, toBody(t, body))
	if cookie != nil {
		r.AddCookie(cookie)
	}
	env.srv.ServeHTTP(w, r)
	return w
}

func sessionFrom(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == sessionCookie {
			return c
		}
	}
	t.Fatal("no session cookie in response")
	return nil
}

func toBody(t *testing.T, body interface{}) io.Reader {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		t.Fatalf("failed to encode body: %v", err)
	}
	return &buf
}

func fromBody(t *testing.T, w *httptest.ResponseRecorder, resp interface{}) {
	if err := json.NewDecoder(w.Body).Decode(resp); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
}

type testEnv struct {
	srv *Srv
}

// setup builds a server over 30 pictures, with a distance from every clue in
// testVocab to every picture.
func setup(t *testing.T, vocab []string) *testEnv {
	t.Helper()
	var pool []string
	for i := 0; i < 30; i++ {
		pool = append(pool, fmt.Sprintf("pic%02d", i))
	}

	var entries []embedding.Entry
	for i, clue := range testVocab {
		for j, pic := range pool {
			entries = append(entries, embedding.Entry{A: clue, B: pic, Distance: float64((i+j)%5) / 4})
		}
	}
	tbl, err := embedding.NewTable(entries)
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}

	sp, qp, err := config.Default().Params()
	if err != nil {
		t.Fatalf("Params: %v", err)
	}
	seq, err := sequencer.New(qp)
	if err != nil {
		t.Fatalf("sequencer.New: %v", err)
	}
	strat, err := score.NewStrategy(score.StrategyDirect, tbl, nil)
	if err != nil {
		t.Fatalf("NewStrategy: %v", err)
	}

	srv, err := New(&Config{
		Pool:        pool,
		Vocabulary:  vocab,
		Strategy:    strat,
		ScoreParams: sp,
		Sequencer:   seq,
		Workers:     2,
		Cookies:     setupCookies(),
		Rand:        rand.New(rand.NewSource(0)),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return &testEnv{srv: srv}
}

func setupCookies() *securecookie.SecureCookie {
	return securecookie.New(
		[]byte{
			1, 2, 3, 4, 5, 6, 7, 8,
			9, 10, 11, 12, 13, 14, 15, 16,
			17, 18, 19, 20, 21, 22, 23, 24,
			25, 26, 27, 28, 29, 30, 31, 32,
		},
		[]byte{
			33, 34, 35, 36, 37, 38, 39, 40,
			41, 42, 43, 44, 45, 46, 47, 48,
			49, 50, 51, 52, 53, 54, 55, 56,
			57, 58, 59, 60, 61, 62, 63, 64,
		})
}
