package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"

	"github.com/bep/debounce"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/jsphweid/engraver/config"
	"github.com/jsphweid/engraver/debug"
	"github.com/jsphweid/engraver/errs"
	"github.com/jsphweid/engraver/layout"
	"github.com/jsphweid/engraver/model"
	"github.com/jsphweid/engraver/store"
	"github.com/pkg/errors"
	"github.com/rs/cors"
	"github.com/spf13/cobra"
)

var serveAddr string

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address, overrides the config")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves songs and their layouts over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		addr := cfg.Serve.Addr
		if serveAddr != "" {
			addr = serveAddr
		}
		fmt.Fprintf(cmd.OutOrStdout(), "listening on %s, songs in %s\n", addr, cfg.Store.Dir)
		return http.ListenAndServe(addr, NewServer(st, cfg).Handler())
	},
}

// Server exposes a song store. Layouts of the default view are cached
// and rebuilt in the background shortly after a song changes.
type Server struct {
	store store.Store
	cfg   config.Config

	mu       sync.Mutex
	layouts  map[uuid.UUID]*layout.Score
	versions map[uuid.UUID]int
	pending  map[uuid.UUID]func(func())
}

func NewServer(st store.Store, c config.Config) *Server {
	return &Server{
		store:    st,
		cfg:      c,
		layouts:  make(map[uuid.UUID]*layout.Score),
		versions: make(map[uuid.UUID]int),
		pending:  make(map[uuid.UUID]func(func())),
	}
}

func (s *Server) Handler() http.Handler {
	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/songs", s.handleList).Methods("GET")
	router.HandleFunc("/songs", s.handleCreate).Methods("POST")
	router.HandleFunc("/songs/{id}", s.handleGet).Methods("GET")
	router.HandleFunc("/songs/{id}", s.handleUpdate).Methods("PUT")
	router.HandleFunc("/songs/{id}", s.handleDelete).Methods("DELETE")
	router.HandleFunc("/songs/{id}/layout", s.handleLayout).Methods("GET")
	router.HandleFunc("/songs/{id}/refresh", s.handleRefresh).Methods("POST")

	c := cors.New(cors.Options{
		AllowedOrigins: s.cfg.Serve.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
	})
	return c.Handler(router)
}

type badRequest struct{ error }

func statusOf(err error) int {
	var br badRequest
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &br), errs.IsPrecondition(err):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
	code := statusOf(err)
	debug.Log("serve", "%d: %v", code, err)
	writeJSON(w, code, model.ErrorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func songID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		return id, badRequest{errors.Wrap(err, "song id")}
	}
	return id, nil
}

func readSong(r *http.Request) (*model.Song, error) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	song := &model.Song{}
	if err := json.Unmarshal(data, song); err != nil {
		return nil, badRequest{errors.Wrap(err, "song document")}
	}
	return song, nil
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	entries, err := s.store.List()
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]model.SongSummary, 0, len(entries))
	for _, e := range entries {
		out = append(out, model.SongSummary{ID: e.ID.String(), Title: e.Title, Bars: e.Bars, Tracks: e.Tracks})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	song, err := readSong(r)
	if err != nil {
		writeError(w, err)
		return
	}
	song.ID = uuid.New()
	id, err := s.store.Put(song)
	if err != nil {
		writeError(w, err)
		return
	}
	s.changed(id)
	writeJSON(w, http.StatusCreated, model.CreatedResponse{ID: id.String()})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := songID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	song, err := s.store.Get(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, song)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := songID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if _, err := s.store.Get(id); err != nil {
		writeError(w, err)
		return
	}
	song, err := readSong(r)
	if err != nil {
		writeError(w, err)
		return
	}
	song.ID = id
	if _, err := s.store.Put(song); err != nil {
		writeError(w, err)
		return
	}
	s.changed(id)
	writeJSON(w, http.StatusOK, model.Summarize(song))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := songID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.store.Delete(id); err != nil {
		writeError(w, err)
		return
	}
	s.mu.Lock()
	s.versions[id]++
	delete(s.layouts, id)
	delete(s.pending, id)
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	id, err := songID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	song, err := s.store.Get(id)
	if err != nil {
		writeError(w, err)
		return
	}
	n, err := song.Refresh(model.RefreshOptions{FixTies: true})
	if err != nil {
		writeError(w, err)
		return
	}
	if _, err := s.store.Put(song); err != nil {
		writeError(w, err)
		return
	}
	s.changed(id)
	writeJSON(w, http.StatusOK, model.RefreshResponse{Phrases: n})
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	id, err := songID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	view := 0
	if v := r.URL.Query().Get("view"); v != "" {
		if view, err = strconv.Atoi(v); err != nil {
			writeError(w, badRequest{errors.Wrap(err, "view")})
			return
		}
	}

	var sc *layout.Score
	if view == 0 {
		s.mu.Lock()
		sc = s.layouts[id]
		s.mu.Unlock()
	}
	if sc == nil {
		if sc, err = s.layout(id, view); err != nil {
			writeError(w, err)
			return
		}
	} else {
		debug.LogEvery(100, "serve", "layout cache hit")
	}
	writeJSON(w, http.StatusOK, summarize(sc))
}

func (s *Server) layout(id uuid.UUID, view int) (*layout.Score, error) {
	song, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}
	if song.View(view) == nil {
		return nil, badRequest{fmt.Errorf("song has no view %d", view)}
	}
	return layoutSong(song, view, s.cfg)
}

// changed drops the cached layout of id and schedules a rebuild. A
// rebuild started before a later change is discarded.
func (s *Server) changed(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.versions[id]++
	delete(s.layouts, id)
	run, ok := s.pending[id]
	if !ok {
		run = debounce.New(s.cfg.Serve.RelayoutDelay)
		s.pending[id] = run
	}
	run(func() { s.relayout(id) })
}

func (s *Server) relayout(id uuid.UUID) {
	s.mu.Lock()
	version := s.versions[id]
	s.mu.Unlock()

	sc, err := s.layout(id, 0)
	if err != nil {
		debug.Log("serve", "relayout %s: %v", id, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.versions[id] == version {
		s.layouts[id] = sc
		debug.Log("serve", "relayout %s: %d systems", id, len(sc.Systems))
	}
}

type systemSummary struct {
	Index    int     `json:"index"`
	FirstBar int     `json:"firstBar"`
	LastBar  int     `json:"lastBar"`
	Slices   int     `json:"slices"`
	Staves   int     `json:"staves"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Stretch  float64 `json:"stretch"`
}

type pageSummary struct {
	Index   int             `json:"index"`
	Width   float64         `json:"width"`
	Height  float64         `json:"height"`
	Systems []systemSummary `json:"systems"`
}

type layoutSummary struct {
	View     string        `json:"view"`
	Strategy string        `json:"strategy"`
	Style    string        `json:"style"`
	Bars     int           `json:"bars"`
	Pages    []pageSummary `json:"pages"`
}

func summarize(sc *layout.Score) layoutSummary {
	out := layoutSummary{
		View:     sc.View.Name,
		Strategy: sc.Strategy.Kind().String(),
		Style:    sc.Style.Name,
		Bars:     sc.Song.BarCount(),
		Pages:    []pageSummary{},
	}
	for _, p := range sc.Pages {
		ps := pageSummary{Index: p.Index, Width: p.Width, Height: p.Height}
		for _, sys := range p.Systems {
			ps.Systems = append(ps.Systems, systemSummary{
				Index:    sys.Index,
				FirstBar: sys.FirstBar(),
				LastBar:  sys.LastBar(),
				Slices:   len(sys.Slices),
				Staves:   len(sys.Staves),
				Y:        sys.Y,
				Width:    sys.Width,
				Height:   sys.Height,
				Stretch:  sys.Stretch,
			})
		}
		out.Pages = append(out.Pages, ps)
	}
	return out
}
