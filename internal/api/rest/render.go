package rest

import (
	"encoding/json"
	"fmt"
	"html"
	"strings"

	"github.com/john-heyer/madness/internal/bracket"
	"github.com/john-heyer/madness/internal/scheduler"
)

// statusColors for the HTML view.
var statusColors = map[bracket.Status]string{
	bracket.StatusInProgress: "orange",
	bracket.StatusHalftime:   "orange",
	bracket.StatusScheduled:  "black",
	bracket.StatusFinal:      "gray",
	bracket.StatusTBD:        "purple",
}

// RenderText renders the metadata block plus every round from the
// championship down, one tab-separated line per event.
func RenderText(snap *bracket.Snapshot, meta scheduler.MetadataSnapshot) string {
	var b strings.Builder
	b.WriteString("CURRENT STATE:\n")
	metaJSON, _ := json.MarshalIndent(meta, "", "    ")
	b.Write(metaJSON)
	b.WriteString("\n")

	byRound := eventsByRound(snap)
	for round := snap.NRounds; round >= 1; round-- {
		b.WriteString("\n\n\n")
		b.WriteString(strings.Repeat("=", 50))
		b.WriteString(snap.Rounds[round-1])
		b.WriteString(strings.Repeat("=", 50))
		b.WriteString("\n")
		for _, ev := range byRound[round] {
			b.WriteString(strings.Join(eventFields(ev), "\t"))
			b.WriteString("\n")
		}
	}
	return b.String()
}

// RenderHTML wraps the same layout in a <pre> page with per-field colors.
func RenderHTML(snap *bracket.Snapshot, meta scheduler.MetadataSnapshot) string {
	var b strings.Builder
	b.WriteString("<pre>CURRENT STATE:<br>")
	metaJSON, _ := json.MarshalIndent(meta, "", "    ")
	b.WriteString(htmlEscapeBlock(string(metaJSON)))
	b.WriteString("<br>")

	byRound := eventsByRound(snap)
	for round := snap.NRounds; round >= 1; round-- {
		b.WriteString("<br><br><br>")
		b.WriteString(strings.Repeat("=", 50))
		b.WriteString(html.EscapeString(snap.Rounds[round-1]))
		b.WriteString(strings.Repeat("=", 50))
		b.WriteString("<br>")
		for _, ev := range byRound[round] {
			statusColor, ok := statusColors[ev.Status]
			if !ok {
				statusColor = "black"
			}
			colors := []string{"red", "blue", "green", statusColor, statusColor}
			for i, field := range eventFields(ev) {
				fmt.Fprintf(&b, `<span style="color: %s;">%s</span>&nbsp;&nbsp;`,
					colors[i], html.EscapeString(field))
			}
			b.WriteString("<br>")
		}
	}
	b.WriteString("</pre>")
	return b.String()
}

func eventsByRound(snap *bracket.Snapshot) map[int][]bracket.EventView {
	byRound := make(map[int][]bracket.EventView, snap.NRounds)
	for _, ev := range snap.Events {
		byRound[ev.Round] = append(byRound[ev.Round], ev)
	}
	return byRound
}

// eventFields builds the five display fields of one event line.
func eventFields(ev bracket.EventView) []string {
	homeStr, homeScore := sideString(ev, ev.Home, ev.Left)
	awayStr, awayScore := sideString(ev, ev.Away, ev.Right)

	// Only the favorite's line is shown (negative by provider convention).
	spreadStr := ""
	for team, points := range ev.Spread {
		if points < 0 {
			spreadStr = fmt.Sprintf("%s %v", team, points)
		}
	}

	return []string{
		fmt.Sprintf("Event #: %d", ev.ID),
		fmt.Sprintf("%s vs. %s", homeStr, awayStr),
		fmt.Sprintf("Score: %d - %d", homeScore, awayScore),
		fmt.Sprintf("Spread: %s", spreadStr),
		fmt.Sprintf("Status: %s", ev.Status),
	}
}

func sideString(ev bracket.EventView, p *bracket.Participant, childID int) (string, int) {
	if p == nil {
		return fmt.Sprintf("Winner of Event # %d", childID), 0
	}
	return fmt.Sprintf("%s (%s)", p.Team.Name, p.Name), ev.Scores[p.Team.Code]
}

func htmlEscapeBlock(s string) string {
	escaped := html.EscapeString(s)
	escaped = strings.ReplaceAll(escaped, "\n", "<br>")
	return strings.ReplaceAll(escaped, "\t", "&nbsp;&nbsp;&nbsp;&nbsp;")
}
