package espn

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/john-heyer/madness/internal/bracket"
	"github.com/john-heyer/madness/internal/ingest"
)

// ParseScoreboard indexes a scoreboard payload by sorted matchup key
// ("AAA/BBB" team codes). Teams meet at most once in a single-elimination
// tournament, so the key is unambiguous; placeholder TBD-vs-TBD entries are
// skipped.
func ParseScoreboard(scoreboard map[string]interface{}) (map[string]ingest.ScoreReport, error) {
	events := extractArray(scoreboard, "events")
	reports := make(map[string]ingest.ScoreReport, len(events))
	for _, raw := range events {
		event, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		competitions := extractArray(event, "competitions")
		if len(competitions) == 0 {
			continue
		}
		competition, ok := competitions[0].(map[string]interface{})
		if !ok {
			continue
		}
		report, key, err := parseCompetition(competition, extractString(event, "id"), extractString(event, "date"))
		if err != nil {
			continue
		}
		if key == "" || strings.Contains(key, "TBD") {
			continue
		}
		reports[key] = report
	}
	return reports, nil
}

// ParseSummary extracts one game's report from a summary payload. The
// summary nests everything under "header".
func ParseSummary(summary map[string]interface{}, providerID string) (ingest.ScoreReport, error) {
	header := extractMap(summary, "header")
	if header == nil {
		return ingest.ScoreReport{}, fmt.Errorf("summary for game %s has no header", providerID)
	}
	competitions := extractArray(header, "competitions")
	if len(competitions) == 0 {
		return ingest.ScoreReport{}, fmt.Errorf("summary for game %s has no competitions", providerID)
	}
	competition, ok := competitions[0].(map[string]interface{})
	if !ok {
		return ingest.ScoreReport{}, fmt.Errorf("summary for game %s is malformed", providerID)
	}
	report, _, err := parseCompetition(competition, providerID, extractString(competition, "date"))
	return report, err
}

func parseCompetition(competition map[string]interface{}, providerID, dateStr string) (ingest.ScoreReport, string, error) {
	report := ingest.ScoreReport{
		ProviderID: providerID,
		Scores:     make(map[string]int),
	}

	statusName := parseStatusName(competition)
	report.RawStatus = statusName
	if s, ok := bracket.ParseStatus(statusName); ok {
		report.Status = s
	}

	if dateStr != "" {
		report.StartTime = parseGameTime(dateStr)
	}

	competitors := extractArray(competition, "competitors")
	if len(competitors) != 2 {
		return report, "", fmt.Errorf("expected 2 competitors, got %d", len(competitors))
	}
	codes := make([]string, 0, 2)
	for _, raw := range competitors {
		competitor, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		team := extractMap(competitor, "team")
		code := extractString(team, "abbreviation")
		if code == "" {
			continue
		}
		codes = append(codes, code)
		if score, ok := extractScore(competitor, "score"); ok {
			report.Scores[code] = score
		}
	}
	if len(codes) != 2 {
		return report, "", fmt.Errorf("missing team abbreviations")
	}
	sort.Strings(codes)
	return report, strings.Join(codes, "/"), nil
}

func parseStatusName(competition map[string]interface{}) string {
	status := extractMap(competition, "status")
	if status == nil {
		return ""
	}
	return extractString(extractMap(status, "type"), "name")
}

// parseGameTime handles ESPN's shortened timestamp (no seconds) with an
// RFC3339 fallback.
func parseGameTime(dateStr string) time.Time {
	if t, err := time.Parse("2006-01-02T15:04Z", dateStr); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, dateStr); err == nil {
		return t
	}
	return time.Time{}
}

func extractArray(m map[string]interface{}, key string) []interface{} {
	if m == nil {
		return nil
	}
	arr, _ := m[key].([]interface{})
	return arr
}

func extractMap(m map[string]interface{}, key string) map[string]interface{} {
	if m == nil {
		return nil
	}
	child, _ := m[key].(map[string]interface{})
	return child
}

func extractString(m map[string]interface{}, key string) string {
	if m == nil {
		return ""
	}
	s, _ := m[key].(string)
	return s
}

// extractScore tolerates both representations ESPN uses: a string ("70") on
// the scoreboard and a number in some summary payloads.
func extractScore(m map[string]interface{}, key string) (int, bool) {
	switch v := m[key].(type) {
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, false
		}
		return n, true
	case float64:
		return int(v), true
	}
	return 0, false
}
