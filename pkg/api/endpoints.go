package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hazyhaar/okato-places/pkg/kit"
	"github.com/hazyhaar/okato-places/pkg/naming"
	"github.com/hazyhaar/okato-places/pkg/okato"
	"github.com/hazyhaar/okato-places/pkg/store"
)

// PlaceReader is the read side of the places store.
type PlaceReader interface {
	Get(ctx context.Context, id int64) (*okato.Place, error)
	ByCode(ctx context.Context, code string) ([]okato.Place, error)
	Children(ctx context.Context, parentID int64) ([]okato.Place, error)
	Count(ctx context.Context) (int64, error)
	ListRuns(ctx context.Context, limit int) ([]store.Run, error)
}

// errInvalid marks request validation failures.
var errInvalid = errors.New("invalid request")

// Shared request/response types used by both HTTP and MCP transports.

type inflectReq struct {
	Title string
}

type placeReq struct {
	ID int64
}

type codeReq struct {
	Code string
}

type runsReq struct {
	Limit int
}

type placesResponse struct {
	Places []okato.Place `json:"places"`
}

type runsResponse struct {
	Runs []store.Run `json:"runs"`
}

// endpoints are the core kit.Endpoints backed by the store.
type endpoints struct {
	inflect  kit.Endpoint
	place    kit.Endpoint
	byCode   kit.Endpoint
	children kit.Endpoint
	runs     kit.Endpoint
}

func newEndpoints(r PlaceReader, logger *slog.Logger) *endpoints {
	wrap := func(name string, ep kit.Endpoint) kit.Endpoint {
		return kit.Chain(kit.RequestID(), kit.Logging(logger, name))(ep)
	}
	return &endpoints{
		inflect:  wrap("inflect", inflectEndpoint()),
		place:    wrap("place", placeEndpoint(r)),
		byCode:   wrap("place_by_code", byCodeEndpoint(r)),
		children: wrap("children", childrenEndpoint(r)),
		runs:     wrap("runs", runsEndpoint(r)),
	}
}

func inflectEndpoint() kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		req := request.(*inflectReq)
		if req.Title == "" {
			return nil, fmt.Errorf("%w: empty title", errInvalid)
		}
		return naming.Transform(req.Title), nil
	}
}

func placeEndpoint(r PlaceReader) kit.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req := request.(*placeReq)
		return r.Get(ctx, req.ID)
	}
}

func byCodeEndpoint(r PlaceReader) kit.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req := request.(*codeReq)
		if req.Code == "" {
			return nil, fmt.Errorf("%w: empty code", errInvalid)
		}
		places, err := r.ByCode(ctx, req.Code)
		if err != nil {
			return nil, err
		}
		return placesResponse{Places: places}, nil
	}
}

func childrenEndpoint(r PlaceReader) kit.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req := request.(*placeReq)
		// Distinguish an unknown parent from a leaf.
		if _, err := r.Get(ctx, req.ID); err != nil {
			return nil, err
		}
		places, err := r.Children(ctx, req.ID)
		if err != nil {
			return nil, err
		}
		return placesResponse{Places: places}, nil
	}
}

func runsEndpoint(r PlaceReader) kit.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req := request.(*runsReq)
		if req.Limit < 0 || req.Limit > 1000 {
			return nil, fmt.Errorf("%w: limit must be between 0 and 1000, got %d", errInvalid, req.Limit)
		}
		runs, err := r.ListRuns(ctx, req.Limit)
		if err != nil {
			return nil, err
		}
		return runsResponse{Runs: runs}, nil
	}
}
