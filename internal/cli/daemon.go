package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/lherron/farmlist/internal/cli/appctx"
	"github.com/lherron/farmlist/internal/config"
	"github.com/lherron/farmlist/internal/cursor"
	"github.com/lherron/farmlist/internal/domain"
	"github.com/lherron/farmlist/internal/selection"
	"github.com/lherron/farmlist/internal/selectors"
	"github.com/lherron/farmlist/internal/snapshot"
	"github.com/lherron/farmlist/internal/tracker"
	"github.com/lherron/farmlist/internal/watch"
	"github.com/lherron/farmlist/internal/webhooks"
)

// DaemonOptions configures the farmlistd daemon.
type DaemonOptions struct {
	Addr       string
	Unix       string
	Token      string
	DBPath     string
	CatalogDir string
}

// ServeDaemon starts the farmlistd daemon. It hosts one in-memory session
// built from the configured catalog.
func ServeDaemon(opts DaemonOptions) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if opts.DBPath != "" {
		cfg.DBPath = opts.DBPath
	}
	if opts.CatalogDir != "" {
		cfg.CatalogDir = opts.CatalogDir
	}
	if opts.Token == "" {
		opts.Token = cfg.DaemonToken
	}

	logger := log.New(os.Stderr, "farmlistd: ", log.LstdFlags)
	cat, source, err := appctx.LoadCatalog(cfg)
	if err != nil {
		return err
	}
	app := &appctx.App{
		Config:  cfg,
		Catalog: cat,
		Source:  source,
		Logger:  logger,
		Tracker: tracker.New(cat, appctx.TrackerOptions(cfg, logger)),
	}
	logger.Printf("catalog from %s: %d items", source, len(cat.Items()))

	server := newDaemonServer(app, opts.Token)
	httpServer := &http.Server{
		Handler:     server.handler(),
		ReadTimeout: 30 * time.Second,
		// No write timeout: /v1/watch streams for as long as the client stays.
	}

	if opts.Unix != "" {
		_ = os.Remove(opts.Unix)
		listener, err := net.Listen("unix", opts.Unix)
		if err != nil {
			return fmt.Errorf("failed to listen on unix socket: %w", err)
		}
		defer listener.Close()
		logger.Printf("listening on unix:%s", opts.Unix)
		return httpServer.Serve(listener)
	}

	addr := opts.Addr
	if addr == "" {
		addr = cfg.DaemonAddr
	}
	httpServer.Addr = addr
	logger.Printf("listening on %s", addr)
	return httpServer.ListenAndServe()
}

// daemonServer serializes every request against one session.
type daemonServer struct {
	mu    sync.Mutex
	app   *appctx.App
	token string
	log   *log.Logger
	hub   *watch.Hub
	hooks *webhooks.Dispatcher
}

func newDaemonServer(app *appctx.App, token string) *daemonServer {
	s := &daemonServer{
		app:   app,
		token: token,
		log:   app.Logger,
	}
	s.hub = watch.NewHub(s.log, func() ([]byte, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.frame("hello")
	})
	s.hooks = webhooks.NewDispatcher(app.Config.WebhookURLs, s.log)
	return s
}

func (s *daemonServer) handler() http.Handler {
	mux := http.NewServeMux()
	s.registerRoutes(mux)
	return mux
}

func (s *daemonServer) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/health", s.withAuth(s.handleHealth))
	mux.HandleFunc("/v1/snapshot", s.withAuth(s.handleSnapshot))
	mux.HandleFunc("/v1/rows", s.withAuth(s.handleRows))
	mux.HandleFunc("/v1/diff", s.withAuth(s.handleDiff))
	mux.HandleFunc("/v1/watch", s.withAuth(s.hub.Handler()))

	mux.HandleFunc("/v1/items/click", s.withAuth(s.mutation("click", s.handleClick)))
	mux.HandleFunc("/v1/items/manual", s.withAuth(s.mutation("manual", s.handleManual)))
	mux.HandleFunc("/v1/items/reset", s.withAuth(s.mutation("reset", s.handleReset)))

	mux.HandleFunc("/v1/bundles/toggle", s.withAuth(s.mutation("bundles", s.handleBundleToggle)))
	mux.HandleFunc("/v1/bundles/group", s.withAuth(s.mutation("bundles", s.handleBundleGroup)))
	mux.HandleFunc("/v1/bundles/reset", s.withAuth(s.mutation("bundles", s.handleBundleReset)))

	mux.HandleFunc("/v1/stage/quest", s.withAuth(s.mutation("stage", s.handleStageQuest)))
	mux.HandleFunc("/v1/stage/remix", s.withAuth(s.mutation("stage", s.handleStageRemix)))
	mux.HandleFunc("/v1/stage/pick", s.withAuth(s.mutation("stage", s.handleStagePick)))
	mux.HandleFunc("/v1/stage/custom", s.withAuth(s.mutation("stage", s.handleStageCustom)))
	mux.HandleFunc("/v1/commit", s.withAuth(s.mutation("commit", s.handleCommit)))
	mux.HandleFunc("/v1/discard", s.withAuth(s.mutation("discard", s.handleDiscard)))

	mux.HandleFunc("/v1/categories/declare", s.withAuth(s.mutation("category", s.handleDeclareCategory)))
	mux.HandleFunc("/v1/notes/add", s.withAuth(s.mutation("notes", s.handleNoteAdd)))
	mux.HandleFunc("/v1/notes/toggle", s.withAuth(s.mutation("notes", s.handleNoteToggle)))
	mux.HandleFunc("/v1/notes/remove", s.withAuth(s.mutation("notes", s.handleNoteRemove)))
}

func (s *daemonServer) withAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.token != "" {
			token := r.Header.Get("Authorization")
			if strings.HasPrefix(token, "Bearer ") {
				token = strings.TrimPrefix(token, "Bearer ")
			}
			if token == "" {
				token = r.Header.Get("X-Farmlistd-Token")
			}
			if token == "" {
				token = r.URL.Query().Get("token")
			}
			if token != s.token {
				s.writeError(w, http.StatusUnauthorized, fmt.Errorf("unauthorized"))
				return
			}
		}

		next(w, r)
	}
}

// mutationFunc changes session state under the lock and returns the
// response payload.
type mutationFunc func(r *http.Request) (interface{}, error)

// mutation wraps a state-changing handler: POST only, serialized, and
// followed by a snapshot push to watchers and webhooks.
func (s *daemonServer) mutation(event string, fn mutationFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			s.writeError(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
			return
		}

		s.mu.Lock()
		payload, err := fn(r)
		var hook webhooks.Payload
		if err == nil {
			hook, err = s.publishLocked(event)
		}
		s.mu.Unlock()

		if err != nil {
			s.writeError(w, statusFor(err), err)
			return
		}
		go s.hooks.Dispatch(hook)
		s.writeJSON(w, http.StatusOK, payload)
	}
}

type watchFrame struct {
	Type     string             `json:"type"`
	Event    string             `json:"event"`
	Snapshot *snapshot.Snapshot `json:"snapshot"`
}

// frame encodes the current snapshot for watchers. Callers hold s.mu.
func (s *daemonServer) frame(event string) ([]byte, error) {
	snap, err := s.app.Tracker.Snapshot()
	if err != nil {
		return nil, err
	}
	return json.Marshal(watchFrame{Type: "snapshot", Event: event, Snapshot: snap})
}

// publishLocked pushes the new snapshot to watchers and returns the webhook
// payload for event. Broadcasting under s.mu keeps frames in commit order.
func (s *daemonServer) publishLocked(event string) (webhooks.Payload, error) {
	snap, err := s.app.Tracker.Snapshot()
	if err != nil {
		return webhooks.Payload{}, err
	}
	frame, err := json.Marshal(watchFrame{Type: "snapshot", Event: event, Snapshot: snap})
	if err != nil {
		return webhooks.Payload{}, err
	}
	s.hub.Broadcast(frame)

	rows := s.app.Tracker.Rows(s.app.Tracker.DefaultFilter())
	hook := webhooks.Payload{
		Event:       event,
		SnapshotRev: snap.Meta.SnapshotRev,
		Items:       len(rows),
		Pending:     snap.Pending != nil,
	}
	for _, row := range rows {
		if row.Complete {
			hook.Complete++
		}
	}
	return hook, nil
}

// statusFor maps domain errors onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case domain.IsNotFound(err), errors.Is(err, domain.ErrUnknownItem):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConfirmationRequired):
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

func (s *daemonServer) decodeJSON(r *http.Request, dst interface{}) error {
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func (s *daemonServer) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func (s *daemonServer) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, map[string]interface{}{
		"message": err.Error(),
	})
}

func (s *daemonServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":       true,
		"time":     time.Now().UTC().Format(time.RFC3339),
		"catalog":  s.app.Source,
		"watchers": s.hub.Subscribers(),
	})
}

func (s *daemonServer) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}

	s.mu.Lock()
	snap, err := s.app.Tracker.Snapshot()
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, snap)
}

type rowsRequest struct {
	Seasons    []string `json:"seasons,omitempty"`
	Categories []string `json:"categories,omitempty"`
	// Show limits the visible need categories; empty shows all.
	Show       []string `json:"show,omitempty"`
	Water      []string `json:"water,omitempty"`
	Weather    []string `json:"weather,omitempty"`
	Query      string   `json:"query,omitempty"`
	Tags       []string `json:"tags,omitempty"`
	Incomplete bool     `json:"incomplete,omitempty"`

	// Limit caps the page size; zero returns every row.
	Limit  int    `json:"limit,omitempty"`
	Cursor string `json:"cursor,omitempty"`
}

func (s *daemonServer) handleRows(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost && r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}

	var req rowsRequest
	if r.Method == http.MethodPost {
		if err := s.decodeJSON(r, &req); err != nil {
			s.writeError(w, http.StatusBadRequest, err)
			return
		}
	}

	opts := lsOptions{
		seasons:    strings.Join(req.Seasons, ","),
		categories: strings.Join(req.Categories, ","),
		show:       strings.Join(req.Show, ","),
		water:      strings.Join(req.Water, ","),
		weather:    strings.Join(req.Weather, ","),
		query:      req.Query,
		tags:       strings.Join(req.Tags, ","),
		incomplete: req.Incomplete,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rows, _, err := opts.rows(s.app.Tracker)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}

	filterKey := req
	filterKey.Limit, filterKey.Cursor = 0, ""
	fingerprint, err := cursor.Fingerprint(filterKey)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	after, err := cursor.Resume(req.Cursor, fingerprint)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	page, next, err := cursor.Page(rows, func(r tracker.Row) string { return r.Item.Name }, fingerprint, after, req.Limit)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	resp := map[string]interface{}{
		"rows":    page,
		"total":   len(rows),
		"choices": s.app.Tracker.FilterChoices(),
	}
	if next != "" {
		resp["next"] = next
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *daemonServer) handleDiff(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}

	s.mu.Lock()
	diff, err := s.app.Tracker.Diff()
	dirty := s.app.Tracker.Selection().Dirty()
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"dirty": dirty,
		"diff":  diff,
	})
}

type clickRequest struct {
	Item     string `json:"item"`
	Category string `json:"category,omitempty"`
	Quality  string `json:"quality,omitempty"`
	Set      *int   `json:"set,omitempty"`
}

func (s *daemonServer) handleClick(r *http.Request) (interface{}, error) {
	var req clickRequest
	if err := s.decodeJSON(r, &req); err != nil {
		return nil, err
	}
	name, err := resolveItem(s.app, req.Item)
	if err != nil {
		return nil, err
	}
	t := s.app.Tracker

	if req.Quality != "" {
		if err := domain.ValidateQuality(req.Quality); err != nil {
			return nil, err
		}
		if _, err := t.ClickQuality(name, domain.Quality(req.Quality)); err != nil {
			return nil, err
		}
		return t.Item(name)
	}

	if req.Category == "" {
		return nil, fmt.Errorf("category or quality is required")
	}
	c := domain.Category(req.Category)
	if req.Set != nil {
		_, err = t.SetDone(name, c, *req.Set)
	} else {
		_, err = t.Click(name, c)
	}
	if err != nil {
		return nil, err
	}
	return t.Item(name)
}

type itemRequest struct {
	Item    string `json:"item"`
	All     bool   `json:"all,omitempty"`
	Confirm bool   `json:"confirm,omitempty"`
}

func (s *daemonServer) handleManual(r *http.Request) (interface{}, error) {
	var req itemRequest
	if err := s.decodeJSON(r, &req); err != nil {
		return nil, err
	}
	name, err := resolveItem(s.app, req.Item)
	if err != nil {
		return nil, err
	}
	if _, err := s.app.Tracker.ToggleManual(name); err != nil {
		return nil, err
	}
	return s.app.Tracker.Item(name)
}

func (s *daemonServer) handleReset(r *http.Request) (interface{}, error) {
	var req itemRequest
	if err := s.decodeJSON(r, &req); err != nil {
		return nil, err
	}
	if req.All {
		if err := s.app.Tracker.ResetAll(req.Confirm); err != nil {
			return nil, err
		}
		return map[string]interface{}{"reset": "all"}, nil
	}
	name, err := resolveItem(s.app, req.Item)
	if err != nil {
		return nil, err
	}
	if err := s.app.Tracker.ResetItem(name); err != nil {
		return nil, err
	}
	return s.app.Tracker.Item(name)
}

type bundleRequest struct {
	Bundle string `json:"bundle,omitempty"`
	Group  string `json:"group,omitempty"`
	On     bool   `json:"on"`
}

func (s *daemonServer) handleBundleToggle(r *http.Request) (interface{}, error) {
	var req bundleRequest
	if err := s.decodeJSON(r, &req); err != nil {
		return nil, err
	}
	id, err := selectors.ResolveBundle(s.app.Catalog, req.Bundle)
	if err != nil {
		return nil, err
	}
	changed, err := s.app.Tracker.ToggleBundle(id, req.On)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"bundle": id, "changed": changed}, nil
}

func (s *daemonServer) handleBundleGroup(r *http.Request) (interface{}, error) {
	var req bundleRequest
	if err := s.decodeJSON(r, &req); err != nil {
		return nil, err
	}
	gid, err := selectors.ResolveBundleGroup(s.app.Catalog, req.Group)
	if err != nil {
		return nil, err
	}
	var changed bool
	if req.On {
		changed, err = s.app.Tracker.SelectBundleGroup(gid)
	} else {
		changed, err = s.app.Tracker.ClearBundleGroup(gid)
	}
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"group": gid, "changed": changed}, nil
}

func (s *daemonServer) handleBundleReset(r *http.Request) (interface{}, error) {
	return map[string]interface{}{"changed": s.app.Tracker.ResetBundles()}, nil
}

type stageQuestRequest struct {
	// Quests holds quest selectors, g:<group> selectors or "all".
	Quests []string `json:"quests"`
	On     bool     `json:"on"`
}

func (s *daemonServer) handleStageQuest(r *http.Request) (interface{}, error) {
	var req stageQuestRequest
	if err := s.decodeJSON(r, &req); err != nil {
		return nil, err
	}
	if len(req.Quests) == 0 {
		return nil, fmt.Errorf("quests is required")
	}
	for _, sel := range req.Quests {
		if err := stageQuest(s.app, sel, req.On); err != nil {
			return nil, err
		}
	}
	return s.stagedResponse(), nil
}

type stageRemixRequest struct {
	Base string `json:"base"`
	// Remix is a remix bundle selector, "auto" or "off"; empty means auto.
	Remix string `json:"remix,omitempty"`
}

func (s *daemonServer) handleStageRemix(r *http.Request) (interface{}, error) {
	var req stageRemixRequest
	if err := s.decodeJSON(r, &req); err != nil {
		return nil, err
	}
	if _, err := stageRemix(s.app, req.Base, req.Remix); err != nil {
		return nil, err
	}
	return s.stagedResponse(), nil
}

type stagePickRequest struct {
	Base  string   `json:"base"`
	Items []string `json:"items"`
	Off   bool     `json:"off,omitempty"`
}

func (s *daemonServer) handleStagePick(r *http.Request) (interface{}, error) {
	var req stagePickRequest
	if err := s.decodeJSON(r, &req); err != nil {
		return nil, err
	}
	base, err := selectors.ResolveBundle(s.app.Catalog, req.Base)
	if err != nil {
		return nil, err
	}
	for _, item := range req.Items {
		if err := s.app.Tracker.Selection().StagePick(base, item, !req.Off); err != nil {
			return nil, err
		}
	}
	return s.stagedResponse(), nil
}

func (s *daemonServer) handleStageCustom(r *http.Request) (interface{}, error) {
	var req selection.CustomRequirement
	if err := s.decodeJSON(r, &req); err != nil {
		return nil, err
	}
	if err := s.app.Tracker.Selection().StageCustom(req); err != nil {
		return nil, err
	}
	return s.stagedResponse(), nil
}

func (s *daemonServer) stagedResponse() map[string]interface{} {
	return map[string]interface{}{
		"dirty":   s.app.Tracker.Selection().Dirty(),
		"pending": s.app.Tracker.Selection().Pending(),
	}
}

func (s *daemonServer) handleCommit(r *http.Request) (interface{}, error) {
	res, err := s.app.Tracker.CommitSelection()
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"changed":  res.Changed,
		"withheld": s.app.Tracker.Result().Withheld,
	}, nil
}

func (s *daemonServer) handleDiscard(r *http.Request) (interface{}, error) {
	s.app.Tracker.DiscardSelection()
	return map[string]interface{}{"dirty": false}, nil
}

type categoryRequest struct {
	Name string `json:"name"`
}

func (s *daemonServer) handleDeclareCategory(r *http.Request) (interface{}, error) {
	var req categoryRequest
	if err := s.decodeJSON(r, &req); err != nil {
		return nil, err
	}
	changed, err := s.app.Tracker.DeclareCategory(domain.Category(req.Name))
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"categories": s.app.Tracker.Categories(), "changed": changed}, nil
}

type noteRequest struct {
	ID   string `json:"id,omitempty"`
	Text string `json:"text,omitempty"`
}

func (s *daemonServer) handleNoteAdd(r *http.Request) (interface{}, error) {
	var req noteRequest
	if err := s.decodeJSON(r, &req); err != nil {
		return nil, err
	}
	return s.app.Tracker.AddNote(req.Text)
}

func (s *daemonServer) handleNoteToggle(r *http.Request) (interface{}, error) {
	var req noteRequest
	if err := s.decodeJSON(r, &req); err != nil {
		return nil, err
	}
	return s.app.Tracker.ToggleNote(req.ID)
}

func (s *daemonServer) handleNoteRemove(r *http.Request) (interface{}, error) {
	var req noteRequest
	if err := s.decodeJSON(r, &req); err != nil {
		return nil, err
	}
	if err := s.app.Tracker.RemoveNote(req.ID); err != nil {
		return nil, err
	}
	return map[string]interface{}{"removed": req.ID}, nil
}
