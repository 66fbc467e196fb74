package google

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/john-heyer/madness/internal/ingest"
)

// ParseLiveScores extracts games from Google's sports card widgets. Google
// shuffles its class names between page structures, so two selector
// strategies are tried in order.
func ParseLiveScores(doc *goquery.Document) []ingest.LiveScore {
	var games []ingest.LiveScore

	doc.Find("div.imso_mh__lv-m-stl-cont").Each(func(i int, s *goquery.Selection) {
		if game := parseSportsCard(s); game != nil {
			games = append(games, *game)
		}
	})

	if len(games) == 0 {
		doc.Find("div[class*='sports']").Each(func(i int, s *goquery.Selection) {
			if game := parseSportsCard(s); game != nil {
				games = append(games, *game)
			}
		})
	}

	return games
}

func parseSportsCard(s *goquery.Selection) *ingest.LiveScore {
	game := &ingest.LiveScore{}

	s.Find("div.imso_mh__first-tn-ed, div.imso_mh__tm-nm").Each(func(i int, team *goquery.Selection) {
		name := strings.TrimSpace(team.Text())
		switch i {
		case 0:
			game.HomeTeam = name
		case 1:
			game.AwayTeam = name
		}
	})

	scoresFound := 0
	s.Find("div.imso_mh__l-tm-sc, div.imso_mh__r-tm-sc").Each(func(i int, score *goquery.Selection) {
		val, err := strconv.Atoi(strings.TrimSpace(score.Text()))
		if err != nil {
			return
		}
		switch i {
		case 0:
			game.HomeScore = val
			scoresFound++
		case 1:
			game.AwayScore = val
			scoresFound++
		}
	})

	statusText := strings.ToLower(strings.TrimSpace(s.Find("span.imso_mh__ft-mtch, div.imso_mh__lv-m-stts-cont").First().Text()))
	game.Live = statusText != "" && !strings.Contains(statusText, "final")

	if game.HomeTeam == "" || game.AwayTeam == "" || scoresFound < 2 {
		return nil
	}
	return game
}
