package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/obsidianstack/pokedex/pkg/types"
	"github.com/obsidianstack/pokedex/server/internal/config"
	"github.com/obsidianstack/pokedex/server/internal/metrics"
	"github.com/obsidianstack/pokedex/server/internal/store"
)

const tracerName = "github.com/obsidianstack/pokedex/server/internal/api"

// Handler is the HTTP handler for the /pokemon endpoints.
// It translates requests into store calls and store results into JSON.
type Handler struct {
	store      *store.Store
	mux        *http.ServeMux
	next       http.Handler
	pagination *config.LivePagination
	metrics    *metrics.Metrics
	tracer     trace.Tracer
	propagator propagation.TextMapPropagator
}

// Option configures a Handler.
type Option func(*Handler)

// WithPagination sets a fixed default and maximum page size for GET /pokemon.
// A zero max leaves the limit unbounded.
func WithPagination(cfg config.PaginationConfig) Option {
	return func(h *Handler) { h.pagination = config.NewLivePagination(cfg) }
}

// WithLivePagination reads the page size policy from lp on every request, so
// a config reload applies without rebuilding the handler.
func WithLivePagination(lp *config.LivePagination) Option {
	return func(h *Handler) { h.pagination = lp }
}

// WithMetrics records per-request metrics into m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(h *Handler) { h.metrics = m }
}

// WithTracerProvider overrides the global OpenTelemetry tracer provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(h *Handler) { h.tracer = tp.Tracer(tracerName) }
}

// WithPropagator overrides the global propagator used to continue a trace
// from incoming request headers.
func WithPropagator(p propagation.TextMapPropagator) Option {
	return func(h *Handler) { h.propagator = p }
}

// New creates a Handler wired to the given record store and registers all routes.
func New(st *store.Store, opts ...Option) http.Handler {
	h := &Handler{
		store:      st,
		mux:        http.NewServeMux(),
		pagination: config.NewLivePagination(config.PaginationConfig{DefaultLimit: config.DefaultPageLimit}),
		tracer:     otel.GetTracerProvider().Tracer(tracerName),
		propagator: otel.GetTextMapPropagator(),
	}
	for _, opt := range opts {
		opt(h)
	}

	h.mux.HandleFunc("GET /pokemon", h.list)
	h.mux.HandleFunc("POST /pokemon", h.create)
	h.mux.HandleFunc("GET /pokemon/{id}", h.read)
	h.mux.HandleFunc("PATCH /pokemon/{id}", h.update)
	h.mux.HandleFunc("DELETE /pokemon/{id}", h.delete)
	h.mux.HandleFunc("GET /healthz", h.health)

	h.next = h.instrument(recoverer(h.mux))
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.next.ServeHTTP(w, r)
}

// --- route handlers ---------------------------------------------------------

// list returns GET /pokemon?page=&limit=: one page of records plus the total.
func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	pg := h.pagination.Load()
	page, limit := Pagination{DefaultLimit: pg.DefaultLimit, MaxLimit: pg.MaxLimit}.parse(r.URL.Query())
	jsonResp(w, http.StatusOK, BuildList(h.store, page, limit))
}

// create handles POST /pokemon. It upserts a fully specified record.
func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	body, ok := decodePatch(w, r)
	if !ok {
		return
	}
	if missing := body.Missing(); len(missing) > 0 {
		jsonErr(w, http.StatusUnprocessableEntity, "missing field(s): "+joinFields(missing))
		return
	}

	rec := h.store.Create(store.Record{
		Number:   body.Number.Value,
		Name:     body.Name.Value,
		NickName: body.NickName.Value,
		Type:     body.Type.Value,
	})
	slog.DebugContext(r.Context(), "api: pokemon created", "number", rec.Number, "name", rec.Name)
	jsonResp(w, http.StatusOK, ToPokemon(rec))
}

// read returns GET /pokemon/{id}.
func (h *Handler) read(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	rec, err := h.store.Get(id)
	if err != nil {
		writeStoreErr(w, err)
		return
	}
	jsonResp(w, http.StatusOK, ToPokemon(rec))
}

// update handles PATCH /pokemon/{id}. It merges the supplied fields into the
// stored record. Changing "number" moves the record to the new key and
// replaces whatever was stored there.
func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	body, ok := decodePatch(w, r)
	if !ok {
		return
	}

	rec, err := h.store.Update(id, store.Patch{
		Name:     body.Name,
		NickName: body.NickName,
		Number:   body.Number,
		Type:     body.Type,
	})
	if err != nil {
		writeStoreErr(w, err)
		return
	}
	if rec.Number != id {
		slog.InfoContext(r.Context(), "api: pokemon re-keyed", "from", id, "to", rec.Number)
	}
	slog.DebugContext(r.Context(), "api: pokemon updated", "number", rec.Number)
	jsonResp(w, http.StatusOK, ToPokemon(rec))
}

// delete handles DELETE /pokemon/{id}, answering 204 with an empty body.
func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.store.Delete(id); err != nil {
		writeStoreErr(w, err)
		return
	}
	slog.DebugContext(r.Context(), "api: pokemon deleted", "number", id)
	w.WriteHeader(http.StatusNoContent)
}

// health returns GET /healthz.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	jsonResp(w, http.StatusOK, healthResponse{Status: "ok", Records: h.store.Count()})
}

// --- helpers ----------------------------------------------------------------

// BuildList takes one page from st and converts it to its wire shape.
// It is shared with the WebSocket hub.
func BuildList(st *store.Store, page, limit int) types.PokemonList {
	p := st.List(page, limit)
	out := make([]types.Pokemon, 0, len(p.Records))
	for _, rec := range p.Records {
		out = append(out, ToPokemon(rec))
	}
	return types.PokemonList{
		Total:    p.Total,
		Limit:    p.Limit,
		Offset:   p.Offset,
		Pokemons: out,
	}
}

// ToPokemon converts a stored record to its wire shape.
func ToPokemon(r store.Record) types.Pokemon {
	return types.Pokemon{
		Name:     r.Name,
		NickName: r.NickName,
		Number:   r.Number,
		Type:     r.Type,
	}
}

func writeStoreErr(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		jsonErr(w, http.StatusNotFound, err.Error())
		return
	}
	jsonErr(w, http.StatusInternalServerError, "internal error")
}

func jsonResp(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, errorResponse{Error: msg})
}
