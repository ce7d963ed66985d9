package matches

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xaitan80/X-Standings/internal/league"
)

type stubLoader struct {
	list []league.Match
	err  error
}

func (s stubLoader) Load(context.Context) ([]league.Match, error) { return s.list, s.err }

func newRouter(t *testing.T, d Deps, protect gin.HandlerFunc) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	if d.Store == nil {
		d.Store = league.NewStore()
	}
	r := gin.New()
	r.Use(gin.Recovery())
	RegisterRoutes(r, d, protect)
	return r
}

func doJSON(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

var season = []map[string]any{
	{"matchDate": "2026-06-11T18:00:00Z", "stadium": "Estadio Azteca", "homeTeam": "Mexico", "awayTeam": "South Africa", "matchPlayed": true, "homeTeamScore": 2, "awayTeamScore": 1},
	{"matchDate": "2026-06-12T18:00:00Z", "stadium": "BMO Field", "homeTeam": "Canada", "awayTeam": "Mexico", "matchPlayed": true, "homeTeamScore": 1, "awayTeamScore": 1},
	{"matchDate": "2026-06-20T18:00:00Z", "stadium": "BC Place", "homeTeam": "Canada", "awayTeam": "South Africa", "matchPlayed": false},
}

func TestPutMatches_ThenStandings(t *testing.T) {
	store := league.NewStore()
	r := newRouter(t, Deps{Store: store, Flags: "https://flags.example"}, nil)

	w := doJSON(r, http.MethodPut, "/api/matches", season)
	if w.Code != http.StatusOK {
		t.Fatalf("put: %d %s", w.Code, w.Body.String())
	}
	assertEq(t, len(store.GetMatches()), 3)

	w = doJSON(r, http.MethodGet, "/api/standings", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("standings: %d", w.Code)
	}
	var table []struct {
		Position       int    `json:"position"`
		TeamName       string `json:"teamName"`
		MatchesPlayed  int    `json:"matchesPlayed"`
		Points         int    `json:"points"`
		GoalDifference int    `json:"goalDifference"`
		FlagURL        string `json:"flagUrl"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &table); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(table) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(table))
	}
	assertEq(t, table[0].TeamName, "Mexico")
	assertEq(t, table[0].Points, 4)
	assertEq(t, table[0].GoalDifference, 1)
	assertEq(t, table[0].FlagURL, "https://flags.example/Mexico.png")
	assertEq(t, table[1].TeamName, "Canada")
	assertEq(t, table[2].Position, 3)
	assertEq(t, table[2].FlagURL, "https://flags.example/South%20Africa.png")

	etag := w.Header().Get("ETag")
	if etag == "" {
		t.Fatalf("missing etag")
	}
	req := httptest.NewRequest(http.MethodGet, "/api/standings", nil)
	req.Header.Set("If-None-Match", etag)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assertEq(t, w.Code, http.StatusNotModified)
}

func TestGetMatches_KeepsStoreOrder(t *testing.T) {
	r := newRouter(t, Deps{}, nil)
	_ = doJSON(r, http.MethodPut, "/api/matches", season)
	w := doJSON(r, http.MethodGet, "/api/matches", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get: %d", w.Code)
	}
	var list []league.Match
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatal(err)
	}
	assertEq(t, len(list), 3)
	assertEq(t, list[0].HomeTeam, "Mexico")
	assertEq(t, list[2].Stadium, "BC Place")
	if w.Header().Get(RevisionHeader) == "" {
		t.Fatalf("missing revision header")
	}
}

func TestPutMatches_Invalid(t *testing.T) {
	store := league.NewStore()
	r := newRouter(t, Deps{Store: store}, nil)
	_ = doJSON(r, http.MethodPut, "/api/matches", season)

	w := doJSON(r, http.MethodPut, "/api/matches", []map[string]any{{"homeTeam": "A", "awayTeam": "A"}})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("self match: expected 400, got %d", w.Code)
	}
	w = doJSON(r, http.MethodPut, "/api/matches", map[string]any{"not": "a list"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad json: expected 400, got %d", w.Code)
	}
	assertEq(t, len(store.GetMatches()), 3)
}

func TestMutatingRoutes_Protected(t *testing.T) {
	deny := func(c *gin.Context) { c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"}) }
	r := newRouter(t, Deps{}, deny)
	for _, tc := range []struct{ method, path string }{
		{http.MethodPut, "/api/matches"},
		{http.MethodPost, "/api/matches/import"},
		{http.MethodPost, "/api/matches/reload"},
	} {
		if w := doJSON(r, tc.method, tc.path, nil); w.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: expected 401, got %d", tc.method, tc.path, w.Code)
		}
	}
	if w := doJSON(r, http.MethodGet, "/api/standings", nil); w.Code != http.StatusOK {
		t.Errorf("read route should stay public, got %d", w.Code)
	}
}

func TestImport_CSV(t *testing.T) {
	store := league.NewStore()
	r := newRouter(t, Deps{Store: store}, nil)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "season.csv")
	if err != nil {
		t.Fatal(err)
	}
	_, _ = fw.Write([]byte("Home,Away,Result\nA,B,0-3\nC,A,\n"))
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/matches/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("import: %d %s", w.Code, w.Body.String())
	}
	table := store.Standings()
	assertEq(t, len(table), 3)
	assertEq(t, table[0].TeamName, "B")
}

func TestReload(t *testing.T) {
	store := league.NewStore()
	r := newRouter(t, Deps{Store: store}, nil)
	if w := doJSON(r, http.MethodPost, "/api/matches/reload", nil); w.Code != http.StatusConflict {
		t.Fatalf("no loader: expected 409, got %d", w.Code)
	}

	r = newRouter(t, Deps{Store: store, Loader: stubLoader{err: errors.New("feed down")}}, nil)
	if w := doJSON(r, http.MethodPost, "/api/matches/reload", nil); w.Code != http.StatusBadGateway {
		t.Fatalf("failing loader: expected 502, got %d", w.Code)
	}

	r = newRouter(t, Deps{Store: store, Loader: stubLoader{list: []league.Match{{HomeTeam: "A", AwayTeam: "B"}}}}, nil)
	w := doJSON(r, http.MethodPost, "/api/matches/reload", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("reload: %d", w.Code)
	}
	assertEq(t, len(store.GetMatches()), 1)
}

func TestExports(t *testing.T) {
	r := newRouter(t, Deps{}, nil)
	_ = doJSON(r, http.MethodPut, "/api/matches", season)

	w := doJSON(r, http.MethodGet, "/api/standings.csv", nil)
	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	assertEq(t, len(lines), 4)
	assertEq(t, strings.TrimSpace(lines[1]), "1,Mexico,2,3,2,1,4")

	w = doJSON(r, http.MethodGet, "/api/matches.csv", nil)
	if !strings.Contains(w.Body.String(), "2026-06-11T18:00:00Z,Estadio Azteca,Mexico,South Africa,true,2,1") {
		t.Fatalf("unexpected matches csv: %s", w.Body.String())
	}

	w = doJSON(r, http.MethodGet, "/api/matches.ics", nil)
	ics := w.Body.String()
	assertEq(t, strings.Count(ics, "BEGIN:VEVENT"), 3)
	if !strings.Contains(ics, "SUMMARY:Mexico 2 : 1 South Africa") || !strings.Contains(ics, "DTSTART:20260611T180000Z") {
		t.Fatalf("unexpected ics: %s", ics)
	}
}

func TestWriteICS_SkipsUndated(t *testing.T) {
	var buf bytes.Buffer
	writeICS(&buf, []league.Match{{HomeTeam: "A", AwayTeam: "B", Stadium: "Park; North"}}, time.Now())
	assertEq(t, strings.Count(buf.String(), "BEGIN:VEVENT"), 0)

	writeICS(&buf, []league.Match{{HomeTeam: "A", AwayTeam: "B", Stadium: "Park; North", MatchDate: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}}, time.Now())
	if !strings.Contains(buf.String(), `LOCATION:Park\; North`) {
		t.Fatalf("location not escaped: %s", buf.String())
	}
}
