package rpc

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"github.com/obsidianstack/pokedex/pkg/types"
	"github.com/obsidianstack/pokedex/server/internal/api"
	"github.com/obsidianstack/pokedex/server/internal/config"
	"github.com/obsidianstack/pokedex/server/internal/metrics"
	"github.com/obsidianstack/pokedex/server/internal/store"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "pokedex.v1.Pokedex"

const (
	methodList   = "/" + ServiceName + "/List"
	methodCreate = "/" + ServiceName + "/Create"
	methodGet    = "/" + ServiceName + "/Get"
	methodUpdate = "/" + ServiceName + "/Update"
	methodDelete = "/" + ServiceName + "/Delete"
)

// ListRequest selects one page. Absent fields take the server defaults.
type ListRequest struct {
	Page  types.Optional[int] `json:"page"`
	Limit types.Optional[int] `json:"limit"`
}

// GetRequest addresses one record by number.
type GetRequest struct {
	Number int `json:"number"`
}

// UpdateRequest merges Patch into the record stored at Number.
type UpdateRequest struct {
	Number int                `json:"number"`
	Patch  types.PokemonPatch `json:"patch"`
}

// DeleteRequest removes the record stored at Number.
type DeleteRequest struct {
	Number int `json:"number"`
}

// Empty is the response of calls with nothing to return.
type Empty struct{}

// PokedexServer is the server API for the Pokedex service.
type PokedexServer interface {
	List(context.Context, *ListRequest) (*types.PokemonList, error)
	Create(context.Context, *types.PokemonPatch) (*types.Pokemon, error)
	Get(context.Context, *GetRequest) (*types.Pokemon, error)
	Update(context.Context, *UpdateRequest) (*types.Pokemon, error)
	Delete(context.Context, *DeleteRequest) (*Empty, error)
}

// Service implements PokedexServer on top of a record store.
type Service struct {
	store      *store.Store
	pagination *config.LivePagination
}

// NewService creates a Service reading and writing st. List reads its page
// size policy from pg on every call.
func NewService(st *store.Store, pg *config.LivePagination) *Service {
	return &Service{store: st, pagination: pg}
}

// New returns a gRPC server with the Pokedex and health services registered
// and the logging interceptor installed. The caller owns Serve and Stop.
func New(st *store.Store, pg *config.LivePagination, m *metrics.Metrics) *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(UnaryServerInterceptor(m)))
	Register(srv, NewService(st, pg))

	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, hs)
	return srv
}

// Register adds the Pokedex service to r.
func Register(r grpc.ServiceRegistrar, srv PokedexServer) {
	r.RegisterService(&serviceDesc, srv)
}

// List returns one page of records. Unlike GET /pokemon, an out-of-range page
// or limit is rejected rather than replaced by the defaults.
func (s *Service) List(_ context.Context, req *ListRequest) (*types.PokemonList, error) {
	pg := s.pagination.Load()
	page := req.Page.Or(1)
	limit := req.Limit.Or(pg.DefaultLimit)
	if page < 1 {
		return nil, status.Errorf(codes.InvalidArgument, "page %d must be at least 1", page)
	}
	if limit < 0 {
		return nil, status.Errorf(codes.InvalidArgument, "limit %d must not be negative", limit)
	}
	out := api.BuildList(s.store, page, pg.Clamp(limit))
	return &out, nil
}

// Create upserts a fully specified record.
func (s *Service) Create(ctx context.Context, req *types.PokemonPatch) (*types.Pokemon, error) {
	if missing := req.Missing(); len(missing) > 0 {
		return nil, status.Errorf(codes.InvalidArgument, "missing field(s): %s", strings.Join(missing, ", "))
	}
	if err := checkPatch(req); err != nil {
		return nil, err
	}
	rec := s.store.Create(store.Record{
		Number:   req.Number.Value,
		Name:     req.Name.Value,
		NickName: req.NickName.Value,
		Type:     req.Type.Value,
	})
	slog.DebugContext(ctx, "rpc: pokemon created", "number", rec.Number, "name", rec.Name)
	p := api.ToPokemon(rec)
	return &p, nil
}

// Get returns the record stored at req.Number.
func (s *Service) Get(_ context.Context, req *GetRequest) (*types.Pokemon, error) {
	if err := checkNumber(req.Number); err != nil {
		return nil, err
	}
	rec, err := s.store.Get(req.Number)
	if err != nil {
		return nil, storeStatus(err)
	}
	p := api.ToPokemon(rec)
	return &p, nil
}

// Update merges req.Patch into the stored record, moving it when the patch
// changes its number.
func (s *Service) Update(ctx context.Context, req *UpdateRequest) (*types.Pokemon, error) {
	if err := checkNumber(req.Number); err != nil {
		return nil, err
	}
	if err := checkPatch(&req.Patch); err != nil {
		return nil, err
	}
	rec, err := s.store.Update(req.Number, store.Patch{
		Name:     req.Patch.Name,
		NickName: req.Patch.NickName,
		Number:   req.Patch.Number,
		Type:     req.Patch.Type,
	})
	if err != nil {
		return nil, storeStatus(err)
	}
	if rec.Number != req.Number {
		slog.InfoContext(ctx, "rpc: pokemon re-keyed", "from", req.Number, "to", rec.Number)
	}
	p := api.ToPokemon(rec)
	return &p, nil
}

// Delete removes the record stored at req.Number.
func (s *Service) Delete(ctx context.Context, req *DeleteRequest) (*Empty, error) {
	if err := checkNumber(req.Number); err != nil {
		return nil, err
	}
	if err := s.store.Delete(req.Number); err != nil {
		return nil, storeStatus(err)
	}
	slog.DebugContext(ctx, "rpc: pokemon deleted", "number", req.Number)
	return &Empty{}, nil
}

// checkNumber accepts the keys GET /pokemon/{id} accepts: non-negative int32.
func checkNumber(n int) error {
	if n < 0 || n > types.MaxNumber {
		return status.Errorf(codes.InvalidArgument, "invalid pokemon number %d", n)
	}
	return nil
}

func checkPatch(p *types.PokemonPatch) error {
	if p.Number.Set && !types.ValidNumber(p.Number.Value) {
		return status.Errorf(codes.InvalidArgument, "number %d is outside the int32 range", p.Number.Value)
	}
	return nil
}

func storeStatus(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return status.Error(codes.NotFound, err.Error())
	}
	return status.Error(codes.Internal, "internal error")
}

// --- service descriptor -----------------------------------------------------

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*PokedexServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "List", Handler: unary(methodList, PokedexServer.List)},
		{MethodName: "Create", Handler: unary(methodCreate, PokedexServer.Create)},
		{MethodName: "Get", Handler: unary(methodGet, PokedexServer.Get)},
		{MethodName: "Update", Handler: unary(methodUpdate, PokedexServer.Update)},
		{MethodName: "Delete", Handler: unary(methodDelete, PokedexServer.Delete)},
	},
	Streams: []grpc.StreamDesc{},
}

// unary adapts a typed PokedexServer method to a grpc.MethodHandler.
func unary[Req, Resp any](fullMethod string, call func(PokedexServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "decode request: %v", err)
		}
		if interceptor == nil {
			return call(srv.(PokedexServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(PokedexServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}
