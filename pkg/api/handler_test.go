package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/hazyhaar/okato-places/pkg/naming"
	"github.com/hazyhaar/okato-places/pkg/okato"
	"github.com/hazyhaar/okato-places/pkg/store"
	"github.com/mark3labs/mcp-go/server"
)

type memReader struct {
	places []okato.Place
	runs   []store.Run
	err    error
}

func (m *memReader) Get(_ context.Context, id int64) (*okato.Place, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.places {
		if m.places[i].ID == id {
			return &m.places[i], nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memReader) ByCode(_ context.Context, code string) ([]okato.Place, error) {
	var out []okato.Place
	for _, p := range m.places {
		if p.OkatoCode != nil && *p.OkatoCode == code {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil, store.ErrNotFound
	}
	return out, nil
}

func (m *memReader) Children(_ context.Context, parentID int64) ([]okato.Place, error) {
	out := []okato.Place{}
	for _, p := range m.places {
		if p.ParentPlaceID != nil && *p.ParentPlaceID == parentID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memReader) Count(context.Context) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	return int64(len(m.places)), nil
}

func (m *memReader) ListRuns(_ context.Context, limit int) ([]store.Run, error) {
	if limit > 0 && limit < len(m.runs) {
		return m.runs[:limit], nil
	}
	return m.runs, nil
}

func ptr[T any](v T) *T { return &v }

func testReader() *memReader {
	return &memReader{
		places: []okato.Place{
			{ID: 1, Title: "Москва", TitleWithPronunciation: "в Москве", CountryID: "RU", OkatoCode: ptr("45")},
			{ID: 2, Title: "Зеленоград", TitleWithPronunciation: "в Зеленограде", CountryID: "RU", ParentPlaceID: ptr(int64(1)), OkatoCode: ptr("45-272")},
			{ID: 3, Title: "Крюково", TitleWithPronunciation: "в Крюково", CountryID: "RU", ParentPlaceID: ptr(int64(2)), OkatoCode: ptr("45-272-500")},
		},
		runs: []store.Run{
			{ID: "b", Input: "data.csv", Status: store.RunOK},
			{ID: "a", Input: "data.csv", Status: store.RunFailed},
		},
	}
}

func newTestServer(t *testing.T, r PlaceReader) *httptest.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := httptest.NewServer(NewRouter(r, logger))
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, srv *httptest.Server, path string, wantStatus int, v any) {
	t.Helper()
	resp, err := http.Get(srv.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != wantStatus {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("GET %s: status %d, want %d (%s)", path, resp.StatusCode, wantStatus, body)
	}
	if v != nil {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			t.Fatalf("GET %s: decode: %v", path, err)
		}
	}
}

func TestInflect(t *testing.T) {
	srv := newTestServer(t, testReader())

	var got naming.Names
	getJSON(t, srv, "/v1/inflect/"+url.PathEscape("г Москва"), http.StatusOK, &got)
	if got.Title != "Москва" || got.Pronounced != "в Москве" {
		t.Fatalf("got %+v", got)
	}
}

func TestPlace(t *testing.T) {
	srv := newTestServer(t, testReader())

	var got okato.Place
	getJSON(t, srv, "/v1/places/2", http.StatusOK, &got)
	if got.Title != "Зеленоград" || got.ParentPlaceID == nil || *got.ParentPlaceID != 1 {
		t.Fatalf("got %+v", got)
	}

	getJSON(t, srv, "/v1/places/99", http.StatusNotFound, nil)
	getJSON(t, srv, "/v1/places/abc", http.StatusBadRequest, nil)
	getJSON(t, srv, "/v1/places/0", http.StatusBadRequest, nil)
}

func TestPlaceRootHasNoParent(t *testing.T) {
	srv := newTestServer(t, testReader())

	var raw map[string]any
	getJSON(t, srv, "/v1/places/1", http.StatusOK, &raw)
	if v, ok := raw["parent_place_id"]; ok && v != nil {
		t.Fatalf("root parent_place_id = %v", v)
	}
}

func TestChildren(t *testing.T) {
	srv := newTestServer(t, testReader())

	var got placesResponse
	getJSON(t, srv, "/v1/places/1/children", http.StatusOK, &got)
	if len(got.Places) != 1 || got.Places[0].ID != 2 {
		t.Fatalf("children of 1 = %+v", got.Places)
	}

	got = placesResponse{}
	getJSON(t, srv, "/v1/places/3/children", http.StatusOK, &got)
	if len(got.Places) != 0 {
		t.Fatalf("leaf has children: %+v", got.Places)
	}

	getJSON(t, srv, "/v1/places/42/children", http.StatusNotFound, nil)
}

func TestByCode(t *testing.T) {
	srv := newTestServer(t, testReader())

	var got placesResponse
	getJSON(t, srv, "/v1/codes/45-272-500", http.StatusOK, &got)
	if len(got.Places) != 1 || got.Places[0].Title != "Крюково" {
		t.Fatalf("got %+v", got.Places)
	}
	getJSON(t, srv, "/v1/codes/77", http.StatusNotFound, nil)
}

func TestRuns(t *testing.T) {
	srv := newTestServer(t, testReader())

	var got runsResponse
	getJSON(t, srv, "/v1/runs?limit=1", http.StatusOK, &got)
	if len(got.Runs) != 1 || got.Runs[0].ID != "b" {
		t.Fatalf("runs = %+v", got.Runs)
	}

	getJSON(t, srv, "/v1/runs?limit=x", http.StatusBadRequest, nil)
	getJSON(t, srv, "/v1/runs?limit=5000", http.StatusBadRequest, nil)
}

func TestHealth(t *testing.T) {
	var got healthResponse
	getJSON(t, newTestServer(t, testReader()), "/v1/health", http.StatusOK, &got)
	if got.Status != "ok" || got.Places != 3 {
		t.Fatalf("health = %+v", got)
	}

	broken := &memReader{err: errors.New("db closed")}
	getJSON(t, newTestServer(t, broken), "/v1/health", http.StatusServiceUnavailable, nil)
}

func TestStoreErrorIs500(t *testing.T) {
	broken := &memReader{err: errors.New("db closed")}
	getJSON(t, newTestServer(t, broken), "/v1/places/1", http.StatusInternalServerError, nil)
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t, testReader())
	req, _ := http.NewRequest(http.MethodOptions, srv.URL+"/v1/places/1", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if resp.Header.Get("Access-Control-Allow-Origin") != "*" {
		t.Fatal("missing CORS header")
	}
}

// --- MCP ---

type toolResult struct {
	Result struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
		IsError bool `json:"isError"`
	} `json:"result"`
}

func callTool(t *testing.T, srv *server.MCPServer, name string, args map[string]any) toolResult {
	t.Helper()
	msg, _ := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "tools/call",
		"params":  map[string]any{"name": name, "arguments": args},
	})
	resp := srv.HandleMessage(context.Background(), msg)
	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshal response: %v", err)
	}
	var out toolResult
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal %s: %v", data, err)
	}
	if len(out.Result.Content) == 0 {
		t.Fatalf("%s: empty result: %s", name, data)
	}
	return out
}

func newMCP() *server.MCPServer {
	srv := server.NewMCPServer("okato-test", "0.0.0", server.WithToolCapabilities(false))
	RegisterMCPTools(srv, testReader(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	return srv
}

func TestMCP_InflectTitle(t *testing.T) {
	res := callTool(t, newMCP(), "inflect_title", map[string]any{"title": "г Владимир"})
	if res.Result.IsError {
		t.Fatalf("tool error: %s", res.Result.Content[0].Text)
	}
	var names naming.Names
	if err := json.Unmarshal([]byte(res.Result.Content[0].Text), &names); err != nil {
		t.Fatal(err)
	}
	if names.Pronounced != "во Владимире" {
		t.Fatalf("pronounced = %q", names.Pronounced)
	}
}

func TestMCP_LookupPlace(t *testing.T) {
	srv := newMCP()

	res := callTool(t, srv, "lookup_place", map[string]any{"id": 3})
	if res.Result.IsError || !strings.Contains(res.Result.Content[0].Text, "Крюково") {
		t.Fatalf("lookup by id: %+v", res.Result)
	}

	res = callTool(t, srv, "lookup_place", map[string]any{"code": "45-272"})
	if res.Result.IsError || !strings.Contains(res.Result.Content[0].Text, "Зеленоград") {
		t.Fatalf("lookup by code: %+v", res.Result)
	}

	res = callTool(t, srv, "lookup_place", map[string]any{})
	if !res.Result.IsError {
		t.Fatal("expected tool error without id or code")
	}

	res = callTool(t, srv, "lookup_place", map[string]any{"id": 99})
	if !res.Result.IsError {
		t.Fatal("expected tool error for unknown id")
	}
}

func TestMCP_ListChildren(t *testing.T) {
	res := callTool(t, newMCP(), "list_children", map[string]any{"id": 1})
	if res.Result.IsError {
		t.Fatalf("tool error: %s", res.Result.Content[0].Text)
	}
	var got placesResponse
	if err := json.Unmarshal([]byte(res.Result.Content[0].Text), &got); err != nil {
		t.Fatal(err)
	}
	if len(got.Places) != 1 || got.Places[0].ID != 2 {
		t.Fatalf("children = %+v", got.Places)
	}
}

func TestArgID(t *testing.T) {
	tests := []struct {
		in      any
		want    int64
		wantErr bool
	}{
		{float64(7), 7, false},
		{int(3), 3, false},
		{float64(1.5), 0, true},
		{float64(-1), 0, true},
		{"7", 0, true},
		{nil, 0, true},
	}
	for _, tt := range tests {
		got, err := argID(map[string]any{"id": tt.in})
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("argID(%v) = %d, %v", tt.in, got, err)
		}
	}
}
