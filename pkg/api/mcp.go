package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hazyhaar/okato-places/pkg/kit"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// RegisterMCPTools registers the okato MCP tools on the server.
func RegisterMCPTools(srv *server.MCPServer, r PlaceReader, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	eps := newEndpoints(r, logger)
	registerInflectTitle(srv, eps)
	registerLookupPlace(srv, eps)
	registerListChildren(srv, eps)
}

func registerInflectTitle(srv *server.MCPServer, eps *endpoints) {
	tool := mcp.NewTool("inflect_title",
		mcp.WithDescription("Strip the settlement-type marker from a raw OKATO title and build its locative form (\"в Москве\")."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Raw settlement title, e.g. \"г Москва\"")),
	)

	kit.RegisterMCPTool(srv, tool, eps.inflect, func(req mcp.CallToolRequest) (any, error) {
		title, _ := req.GetArguments()["title"].(string)
		return &inflectReq{Title: title}, nil
	})
}

func registerLookupPlace(srv *server.MCPServer, eps *endpoints) {
	tool := mcp.NewTool("lookup_place",
		mcp.WithDescription("Look up loaded places by id or by OKATO key (e.g. 45-286)."),
		mcp.WithNumber("id", mcp.Description("Place id")),
		mcp.WithString("code", mcp.Description("OKATO hierarchical key")),
	)

	kit.RegisterMCPTool(srv, tool, func(ctx context.Context, request any) (any, error) {
		switch req := request.(type) {
		case *placeReq:
			return eps.place(ctx, req)
		default:
			return eps.byCode(ctx, req)
		}
	}, func(req mcp.CallToolRequest) (any, error) {
		args := req.GetArguments()
		if code, _ := args["code"].(string); code != "" {
			return &codeReq{Code: code}, nil
		}
		if _, ok := args["id"]; !ok {
			return nil, errors.New("id or code is required")
		}
		id, err := argID(args)
		if err != nil {
			return nil, err
		}
		return &placeReq{ID: id}, nil
	})
}

func registerListChildren(srv *server.MCPServer, eps *endpoints) {
	tool := mcp.NewTool("list_children",
		mcp.WithDescription("List the direct children of a loaded place."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Parent place id")),
	)

	kit.RegisterMCPTool(srv, tool, eps.children, func(req mcp.CallToolRequest) (any, error) {
		id, err := argID(req.GetArguments())
		if err != nil {
			return nil, err
		}
		return &placeReq{ID: id}, nil
	})
}

// argID reads a positive integer "id" argument. JSON numbers arrive as float64.
func argID(args map[string]any) (int64, error) {
	switch v := args["id"].(type) {
	case float64:
		if v > 0 && v == float64(int64(v)) {
			return int64(v), nil
		}
	case int:
		if v > 0 {
			return int64(v), nil
		}
	case int64:
		if v > 0 {
			return v, nil
		}
	case nil:
		return 0, errors.New("id is required")
	}
	return 0, fmt.Errorf("id must be a positive integer, got %v", args["id"])
}
