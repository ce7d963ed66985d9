package matches

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/xuri/excelize/v2"

	"github.com/xaitan80/X-Standings/internal/league"
)

const maxImportBytes = 10 << 20

// parseImport reads a CSV or XLSX schedule from a multipart form file.
func parseImport(fh *multipart.FileHeader, loc *time.Location) ([]league.Match, error) {
	file, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return parseFile(fh.Filename, file, loc)
}

// parseFile picks the parser from the file extension. Dates without an
// offset are read in loc.
func parseFile(name string, r io.Reader, loc *time.Location) ([]league.Match, error) {
	if loc == nil {
		loc = time.UTC
	}
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".csv":
		return parseCSV(r, loc)
	case ".xlsx":
		// excelize wants the whole workbook; cap what we buffer
		b, err := io.ReadAll(io.LimitReader(r, maxImportBytes))
		if err != nil {
			return nil, err
		}
		return parseXLSX(b, loc)
	default:
		return nil, fmt.Errorf("unsupported file type: %s", ext)
	}
}

func parseCSV(r io.Reader, loc *time.Location) ([]league.Match, error) {
	br := bufio.NewReader(r)
	// sniff the delimiter from the header line, then put it back
	line, _ := br.ReadString('\n')
	reader := csv.NewReader(io.MultiReader(strings.NewReader(line), br))
	reader.FieldsPerRecord = -1
	if strings.Count(line, ";") > strings.Count(line, ",") {
		reader.Comma = ';'
	}
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("empty csv")
	}
	return rowsToMatches(rows, loc)
}

func parseXLSX(b []byte, loc *time.Location) ([]league.Match, error) {
	f, err := excelize.OpenReader(bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("no sheet")
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("empty sheet")
	}
	return rowsToMatches(rows, loc)
}

func rowsToMatches(rows [][]string, loc *time.Location) ([]league.Match, error) {
	headers := normHeaders(rows[0])
	var out []league.Match
	for i := 1; i < len(rows); i++ {
		if len(strings.TrimSpace(strings.Join(rows[i], ""))) == 0 {
			continue
		}
		m, err := rowToMatch(headers, rows[i], loc)
		if err != nil {
			// rows[0] is the header, report 1-based sheet rows
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		out = append(out, m)
	}
	return out, nil
}

// normHeaders lowercases headers, drops everything but letters and digits
// and maps known aliases onto the column keys rowToMatch reads.
func normHeaders(hdr []string) map[string]int {
	m := make(map[string]int, len(hdr))
	for i, h := range hdr {
		b := strings.Builder{}
		for _, r := range strings.ToLower(strings.TrimSpace(h)) {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				b.WriteRune(r)
			}
		}
		k := b.String()
		switch k {
		case "matchdate", "datum":
			k = "date"
		case "kickoff", "tid", "starttime":
			k = "time"
		case "venue", "ground", "arena":
			k = "stadium"
		case "home", "hometeamname", "hemmalag":
			k = "hometeam"
		case "away", "awayteamname", "bortalag":
			k = "awayteam"
		case "matchplayed":
			k = "played"
		case "hometeamscore", "homegoals":
			k = "homescore"
		case "awayteamscore", "awaygoals":
			k = "awayscore"
		case "score", "resultat", "ft":
			k = "result"
		}
		if _, dup := m[k]; !dup {
			m[k] = i
		}
	}
	return m
}

var dateLayouts = []string{
	"2006-01-02 15:04",
	"2006-01-02",
	"2.1.2006 15:04",
	"2.1.2006",
}

func parseWhen(date, clock string, loc *time.Location) (time.Time, error) {
	if date == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, date); err == nil {
		return t.UTC(), nil
	}
	v := date
	if clock != "" {
		v = date + " " + clock
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, v, loc); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("bad date %q", v)
}

// parseResult reads "2-1" or "2 : 1".
func parseResult(s string) (home, away int, ok bool) {
	sep := strings.IndexAny(s, "-:")
	if sep < 0 {
		return 0, 0, false
	}
	h, err1 := strconv.Atoi(strings.TrimSpace(s[:sep]))
	a, err2 := strconv.Atoi(strings.TrimSpace(s[sep+1:]))
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return h, a, true
}

func rowToMatch(h map[string]int, row []string, loc *time.Location) (league.Match, error) {
	get := func(key string) string {
		if i, ok := h[key]; ok && i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}
	atoi := func(key string) (int, error) {
		s := get(key)
		if s == "" {
			return 0, nil
		}
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, fmt.Errorf("bad %s %q", key, s)
		}
		return v, nil
	}
	atob := func(s string) bool {
		s = strings.ToLower(s)
		return s == "1" || s == "true" || s == "yes" || s == "y" || s == "ja"
	}

	when, err := parseWhen(get("date"), get("time"), loc)
	if err != nil {
		return league.Match{}, err
	}
	m := league.Match{
		MatchDate:   when,
		Stadium:     get("stadium"),
		HomeTeam:    get("hometeam"),
		AwayTeam:    get("awayteam"),
		MatchPlayed: atob(get("played")),
	}
	if m.HomeTeamScore, err = atoi("homescore"); err != nil {
		return league.Match{}, err
	}
	if m.AwayTeamScore, err = atoi("awayscore"); err != nil {
		return league.Match{}, err
	}
	// a result cell wins over separate score columns and marks the match played
	if r := get("result"); r != "" && r != "-" && !strings.EqualFold(r, "vs") {
		hs, as, ok := parseResult(r)
		if !ok {
			return league.Match{}, fmt.Errorf("bad result %q", r)
		}
		m.HomeTeamScore, m.AwayTeamScore, m.MatchPlayed = hs, as, true
	}
	return m, nil
}
