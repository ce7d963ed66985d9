package matches

import (
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/xaitan80/X-Standings/internal/league"
)

// Deps is what the routes need. Loader may be nil when no source is
// configured; Location is used for imports and calendar display.
type Deps struct {
	Store    *league.Store
	Loader   Loader
	Flags    Flags
	Location *time.Location
	Log      logrus.FieldLogger
}

// RevisionHeader carries the store snapshot revision on read routes.
const RevisionHeader = "X-Season-Revision"

// ----- Routes -----

func RegisterRoutes(r *gin.Engine, d Deps, protect gin.HandlerFunc) {
	if d.Location == nil {
		d.Location = time.UTC
	}
	if d.Log == nil {
		d.Log = logrus.StandardLogger()
	}

	api := r.Group("/api")
	{
		api.GET("/matches", func(c *gin.Context) {
			snap := d.Store.Snapshot()
			c.Header(RevisionHeader, snap.Revision.String())
			c.JSON(http.StatusOK, toMatchViews(snap.Matches, d.Flags))
		})

		api.GET("/standings", func(c *gin.Context) {
			snap := d.Store.Snapshot()
			etag := `"` + snap.Revision.String() + `"`
			c.Header(RevisionHeader, snap.Revision.String())
			c.Header("ETag", etag)
			if c.GetHeader("If-None-Match") == etag {
				c.Status(http.StatusNotModified)
				return
			}
			c.JSON(http.StatusOK, toStandingViews(league.ComputeStandings(snap.Matches), d.Flags))
		})

		// Replace the season (protected)
		api.PUT("/matches", attachProtect(protect, func(c *gin.Context) {
			var list []league.Match
			if err := c.ShouldBindJSON(&list); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "bad json"})
				return
			}
			setMatches(c, d, list, "put")
		}))

		// Import a season from CSV or XLSX (protected)
		api.POST("/matches/import", attachProtect(protect, func(c *gin.Context) {
			if err := c.Request.ParseMultipartForm(12 << 20); err != nil { // 12MB
				c.JSON(http.StatusBadRequest, gin.H{"error": "multipart too large"})
				return
			}
			fh, err := c.FormFile("file")
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "missing file"})
				return
			}
			list, err := parseImport(fh, d.Location)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			setMatches(c, d, list, "import")
		}))

		// Re-run the configured source (protected)
		api.POST("/matches/reload", attachProtect(protect, func(c *gin.Context) {
			if d.Loader == nil {
				c.JSON(http.StatusConflict, gin.H{"error": "no source configured"})
				return
			}
			n, err := Reload(c.Request.Context(), d.Loader, d.Store)
			if err != nil {
				d.Log.WithError(err).Warn("reload failed")
				status := http.StatusBadGateway
				if errors.Is(err, league.ErrInvalidRecord) {
					status = http.StatusUnprocessableEntity
				}
				c.JSON(status, gin.H{"error": err.Error()})
				return
			}
			rev := d.Store.Snapshot().Revision.String()
			d.Log.WithFields(logrus.Fields{"matches": n, "revision": rev}).Info("season reloaded")
			c.JSON(http.StatusOK, gin.H{"count": n, "revision": rev})
		}))

		// CSV export of the schedule
		api.GET("/matches.csv", func(c *gin.Context) {
			snap := d.Store.Snapshot()
			writeCSV(c, "matches", []string{
				"match_date", "stadium", "home_team", "away_team",
				"match_played", "home_team_score", "away_team_score",
			}, func(w *csv.Writer) {
				for _, m := range snap.Matches {
					_ = w.Write([]string{
						formatDate(m.MatchDate), m.Stadium, m.HomeTeam, m.AwayTeam,
						strconv.FormatBool(m.MatchPlayed),
						strconv.Itoa(m.HomeTeamScore), strconv.Itoa(m.AwayTeamScore),
					})
				}
			})
		})

		// CSV export of the table
		api.GET("/standings.csv", func(c *gin.Context) {
			table := d.Store.Standings()
			writeCSV(c, "standings", []string{
				"position", "team_name", "matches_played",
				"goals_for", "goals_against", "goal_difference", "points",
			}, func(w *csv.Writer) {
				for i, s := range table {
					_ = w.Write([]string{
						strconv.Itoa(i + 1), s.TeamName, strconv.Itoa(s.MatchesPlayed),
						strconv.Itoa(s.GoalsFor), strconv.Itoa(s.GoalsAgainst),
						strconv.Itoa(s.GoalDifference()), strconv.Itoa(s.Points),
					})
				}
			})
		})

		// iCal export of the schedule
		api.GET("/matches.ics", func(c *gin.Context) {
			snap := d.Store.Snapshot()
			c.Header("Content-Type", "text/calendar; charset=utf-8")
			c.Header("Content-Disposition", "attachment; filename=matches.ics")
			writeICS(c.Writer, snap.Matches, time.Now())
		})
	}
}

func setMatches(c *gin.Context, d Deps, list []league.Match, via string) {
	if err := d.Store.SetMatches(list); err != nil {
		if errors.Is(err, league.ErrInvalidRecord) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	rev := d.Store.Snapshot().Revision.String()
	d.Log.WithFields(logrus.Fields{"matches": len(list), "revision": rev, "via": via}).Info("season replaced")
	c.JSON(http.StatusOK, gin.H{"count": len(list), "revision": rev})
}

func writeCSV(c *gin.Context, name string, header []string, rows func(w *csv.Writer)) {
	filename := fmt.Sprintf("%s_%s.csv", name, time.Now().Format("2006-01-02"))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", "attachment; filename="+filename)

	w := csv.NewWriter(c.Writer)
	_ = w.Write(header)
	rows(w)
	w.Flush()
	if err := w.Error(); err != nil {
		c.String(http.StatusInternalServerError, err.Error())
	}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// attachProtect conditionally wraps handlers with the given protect middleware for mutating routes.
// Read routes stay public.
func attachProtect(protect gin.HandlerFunc, h gin.HandlerFunc) gin.HandlerFunc {
	if protect == nil {
		return h
	}
	return func(c *gin.Context) {
		protect(c)
		if c.IsAborted() {
			return
		}
		h(c)
	}
}
