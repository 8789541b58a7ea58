// Package web serves the assistant's JSON API: new boards, clues for the
// player and turns for the computer opponent.
package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"sync"

	"github.com/bcspragu/PictureNames/boardgen"
	"github.com/bcspragu/PictureNames/codenames"
	"github.com/bcspragu/PictureNames/embedding"
	"github.com/bcspragu/PictureNames/game"
	"github.com/bcspragu/PictureNames/httperr"
	"github.com/bcspragu/PictureNames/score"
	"github.com/bcspragu/PictureNames/sequencer"
	"github.com/gorilla/mux"
	"github.com/gorilla/securecookie"
)

const sessionCookie = "Session"

// Config holds everything the server needs to answer requests.
type Config struct {
	// Pool is the set of picture refs new boards are dealt from.
	Pool []string
	// Vocabulary is every clue that can be given.
	Vocabulary []string
	// Neighbors, if set, narrows the clues scored for a board down to the
	// neighbors of the player's pictures.
	Neighbors *embedding.Index

	Strategy    score.Strategy
	ScoreParams *codenames.ScoreParams
	Sequencer   *sequencer.Sequencer
	// Workers is passed to the scorer, zero means the default.
	Workers int

	Cookies *securecookie.SecureCookie
	Rand    *rand.Rand
}

type Srv struct {
	sc  *securecookie.SecureCookie
	mux *mux.Router

	pool      []string
	vocab     []string
	neighbors *embedding.Index
	strat     score.Strategy
	scorer    *score.Scorer
	seq       *sequencer.Sequencer
	workers   int

	// rand.Rand isn't safe for concurrent use.
	mu sync.Mutex
	r  *rand.Rand
}

// New returns an initialized server.
func New(cfg *Config) (*Srv, error) {
	if cfg.Cookies == nil {
		return nil, errors.New("no cookie codec given")
	}
	if cfg.Rand == nil {
		return nil, errors.New("no source of randomness given")
	}
	if cfg.Sequencer == nil {
		return nil, errors.New("no sequencer given")
	}
	scorer, err := score.New(cfg.ScoreParams, cfg.Strategy, score.WithWorkers(cfg.Workers))
	if err != nil {
		return nil, fmt.Errorf("failed to create scorer: %w", err)
	}

	s := &Srv{
		sc:        cfg.Cookies,
		pool:      cfg.Pool,
		vocab:     cfg.Vocabulary,
		neighbors: cfg.Neighbors,
		strat:     cfg.Strategy,
		scorer:    scorer,
		seq:       cfg.Sequencer,
		workers:   cfg.Workers,
		r:         cfg.Rand,
	}

	s.mux = s.initMux()

	return s, nil
}

func (s *Srv) initMux() *mux.Router {
	m := mux.NewRouter()
	// New board, which also starts a new session.
	m.HandleFunc("/api/board", s.handleError(s.serveBoard)).Methods("GET")
	// Best clue for the player.
	m.HandleFunc("/api/clue", s.handleError(s.serveClue)).Methods("POST")
	// The computer's picks for its turn.
	m.HandleFunc("/api/computer_turn", s.handleError(s.serveComputerTurn)).Methods("POST")
	// Reveal a single picture.
	m.HandleFunc("/api/reveal", s.handleError(s.serveReveal)).Methods("POST")

	return m
}

func (s *Srv) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

type handlerFunc func(w http.ResponseWriter, r *http.Request) error

func (s *Srv) handleError(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := h(w, r)
		if err == nil {
			return
		}
		log.Println(err)

		code, userMsg := httperr.Extract(err)
		http.Error(w, userMsg, code)
	}
}

// session is stored in an encrypted cookie, so the server doesn't need to keep
// any state between requests.
type session struct {
	BoardID string
	// Used are the clues already given on this board.
	Used []string
}

func (s *Srv) serveBoard(w http.ResponseWriter, r *http.Request) error {
	s.mu.Lock()
	b, err := boardgen.New(s.pool, s.r)
	s.mu.Unlock()
	if err != nil {
		return httperr.Internal("failed to generate board: %w", err)
	}

	if err := s.saveSession(w, &session{BoardID: b.ID}); err != nil {
		return err
	}

	jsonResp(w, b)
	return nil
}

type scoredPicture struct {
	ID    codenames.PictureID `json:"id"`
	Ref   string              `json:"ref"`
	Team  codenames.Team      `json:"team"`
	Score float64             `json:"score"`
}

type clueResponse struct {
	Clue   codenames.Clue  `json:"clue"`
	Scores []scoredPicture `json:"scores"`
}

func (s *Srv) serveClue(w http.ResponseWriter, r *http.Request) error {
	var req struct {
		Board *codenames.Board `json:"board"`
		// Params overrides the server's scoring parameters for this request.
		Params *codenames.ScoreConfig `json:"params"`
	}
	if err := decode(r, &req); err != nil {
		return err
	}
	if err := req.Board.Validate(); err != nil {
		return toHTTPErr(err)
	}

	scorer := s.scorer
	if req.Params != nil {
		sp, err := codenames.NewScoreParams(*req.Params)
		if err != nil {
			return toHTTPErr(err)
		}
		if scorer, err = score.New(sp, s.strat, score.WithWorkers(s.workers)); err != nil {
			return toHTTPErr(err)
		}
	}

	sess := s.loadSession(r, req.Board)
	res, err := scorer.Best(r.Context(), req.Board, s.candidates(req.Board), codenames.Forbidden(req.Board, sess.Used))
	if err != nil {
		return toHTTPErr(err)
	}

	sess.Used = append(sess.Used, res.Clue)
	if err := s.saveSession(w, sess); err != nil {
		return err
	}

	resp := clueResponse{Clue: codenames.Clue{Ref: res.Clue, Score: res.Total}}
	for i, p := range res.Pictures {
		resp.Scores = append(resp.Scores, scoredPicture{
			ID:    p.ID,
			Ref:   p.Ref,
			Team:  p.Team,
			Score: res.Scores[i],
		})
	}
	jsonResp(w, resp)
	return nil
}

// candidates returns the clues worth scoring for the board. Without neighbor
// lists, or when none of them apply, that's the whole vocabulary.
func (s *Srv) candidates(b *codenames.Board) []string {
	if s.neighbors == nil || b == nil {
		return s.vocab
	}
	if c := score.Prune(b, s.neighbors); len(c) > 0 {
		return c
	}
	return s.vocab
}

func (s *Srv) serveComputerTurn(w http.ResponseWriter, r *http.Request) error {
	var req struct {
		Board *codenames.Board `json:"board"`
	}
	if err := decode(r, &req); err != nil {
		return err
	}

	s.mu.Lock()
	seq, err := s.seq.Sequence(req.Board, s.r)
	s.mu.Unlock()
	if err != nil {
		return toHTTPErr(err)
	}

	jsonResp(w, struct {
		Sequence []codenames.PictureID `json:"sequence"`
	}{seq})
	return nil
}

func (s *Srv) serveReveal(w http.ResponseWriter, r *http.Request) error {
	var req struct {
		Board *codenames.Board    `json:"board"`
		ID    codenames.PictureID `json:"id"`
	}
	if err := decode(r, &req); err != nil {
		return err
	}

	g, err := game.New(req.Board)
	if err != nil {
		return toHTTPErr(err)
	}
	p, err := g.Reveal(req.ID)
	if err != nil {
		return toHTTPErr(err)
	}

	jsonResp(w, struct {
		Board    *codenames.Board  `json:"board"`
		Picture  codenames.Picture `json:"picture"`
		EndsTurn bool              `json:"ends_turn"`
		Outcome  game.Outcome      `json:"outcome"`
	}{g.Board(), p, game.EndsTurn(p), g.Outcome()})
	return nil
}

// toHTTPErr maps errors from the rest of the assistant to HTTP statuses.
func toHTTPErr(err error) error {
	var (
		ibe *codenames.InvalidBoardError
		ce  *codenames.ConfigError
		dae *codenames.DataAccessError
	)
	switch {
	case errors.As(err, &ibe):
		return httperr.BadRequest("%w", err).WithMessage(ibe.Error())
	case errors.As(err, &ce):
		return httperr.BadRequest("%w", err).WithMessage(ce.Error())
	case errors.As(err, &dae):
		return httperr.Internal("%w", err).WithMessage("missing embedding data")
	case errors.Is(err, score.ErrNoCandidates):
		return httperr.Conflict("%w", err).WithMessage("no clues left to give")
	case errors.Is(err, game.ErrGameOver):
		return httperr.Conflict("%w", err).WithMessage("the game is over")
	case errors.Is(err, game.ErrUnknownPicture), errors.Is(err, game.ErrAlreadyRevealed):
		return httperr.BadRequest("%w", err).WithMessage(err.Error())
	}
	return err
}

func decode(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return httperr.BadRequest("failed to decode request: %w", err).WithMessage("malformed request")
	}
	return nil
}

// loadSession returns the session for the given board. Sessions for other
// boards, and cookies we can't read, are ignored.
func (s *Srv) loadSession(r *http.Request, b *codenames.Board) *session {
	fresh := &session{}
	if b != nil {
		fresh.BoardID = b.ID
	}

	c, err := r.Cookie(sessionCookie)
	if err != nil {
		return fresh
	}
	var sess session
	if err := s.sc.Decode(sessionCookie, c.Value, &sess); err != nil {
		// If we can't parse it, assume it's an old cookie and start over.
		return fresh
	}
	if sess.BoardID != fresh.BoardID {
		return fresh
	}
	return &sess
}

func (s *Srv) saveSession(w http.ResponseWriter, sess *session) error {
	encoded, err := s.sc.Encode(sessionCookie, sess)
	if err != nil {
		return httperr.Internal("failed to encode session: %w", err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    encoded,
		Path:     "/",
		HttpOnly: true,
	})
	return nil
}

// LoadKeys reads the cookie hash and block keys from the given files,
// generating and saving new ones if they don't exist yet.
func LoadKeys(hashFile, blockFile string) (*securecookie.SecureCookie, error) {
	hashKey, err := loadOrGenKey(hashFile)
	if err != nil {
		return nil, err
	}

	blockKey, err := loadOrGenKey(blockFile)
	if err != nil {
		return nil, err
	}

	return securecookie.New(hashKey, blockKey), nil
}

func loadOrGenKey(name string) ([]byte, error) {
	f, err := os.ReadFile(name)
	if err == nil {
		return f, nil
	}

	dat := securecookie.GenerateRandomKey(32)
	if dat == nil {
		return nil, errors.New("failed to generate key")
	}

	if err := os.WriteFile(name, dat, 0600); err != nil {
		return nil, fmt.Errorf("failed to write key file %q: %w", name, err)
	}
	return dat, nil
}

func jsonResp(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("jsonResp: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}
