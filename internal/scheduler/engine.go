// Package scheduler drives the refresh loop that keeps the bracket live:
// per-event score merges, winner propagation, and the strictly budgeted odds
// fetches.
package scheduler

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/john-heyer/madness/internal/bracket"
	"github.com/john-heyer/madness/internal/ingest"
	"github.com/john-heyer/madness/internal/metrics"
)

// DefaultPollInterval between refresh cycles.
const DefaultPollInterval = 60 * time.Second

// ScoresProvider is the scores collaborator contract. Scoreboard resolves
// matchups to provider correlation ids; GameReport fetches one game by id.
type ScoresProvider interface {
	Scoreboard(ctx context.Context) (map[string]ingest.ScoreReport, error)
	GameReport(ctx context.Context, providerID string) (ingest.ScoreReport, error)
}

// OddsProvider is the odds collaborator contract. Rate/cost limited
// upstream: the engine invokes it at most twice per event, ever.
type OddsProvider interface {
	Spread(ctx context.Context, homeName, awayName string, start time.Time) (map[string]float64, error)
}

// FallbackProvider supplies scraped scores for cycles where the primary
// scores provider is entirely unreachable.
type FallbackProvider interface {
	LiveScores(ctx context.Context) ([]ingest.LiveScore, error)
}

// SpreadCache lets a previously fetched line satisfy an odds trigger
// without spending provider budget.
type SpreadCache interface {
	GetSpread(ctx context.Context, matchup string) (map[string]float64, bool)
	PutSpread(ctx context.Context, matchup string, spread map[string]float64) error
}

// Broadcaster receives the JSON bracket snapshot after cycles that changed
// anything.
type Broadcaster interface {
	Broadcast(data []byte)
}

// Config carries the engine's optional collaborators and tuning.
type Config struct {
	PollInterval time.Duration
	Logger       *zap.Logger
	Cache        SpreadCache
	Fallback     FallbackProvider
	Broadcaster  Broadcaster
	Metrics      *metrics.Recorder
}

// oddsState tracks which of an event's two odds trigger points have fired.
// A trigger is consumed when the fetch is attempted: the provider bills
// failed calls too, and the cap is the contract.
type oddsState struct {
	scheduledFired  bool
	inProgressFired bool
}

const (
	triggerScheduled = iota
	triggerInProgress
)

// Engine reconciles provider data into the tree every cycle. Run executes
// cycles on one goroutine, so cycles never overlap; readers snapshot the
// tree concurrently under its lock.
type Engine struct {
	tree     *bracket.Tree
	scores   ScoresProvider
	odds     OddsProvider
	cache    SpreadCache
	fallback FallbackProvider
	bcast    Broadcaster
	meta     *Metadata
	metrics  *metrics.Recorder
	log      *zap.Logger
	interval time.Duration

	oddsFired map[int]*oddsState
}

// NewEngine wires an engine for the given tree and providers.
func NewEngine(tree *bracket.Tree, scores ScoresProvider, odds OddsProvider, cfg Config) *Engine {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Engine{
		tree:      tree,
		scores:    scores,
		odds:      odds,
		cache:     cfg.Cache,
		fallback:  cfg.Fallback,
		bcast:     cfg.Broadcaster,
		meta:      NewMetadata(tree.Len()),
		metrics:   cfg.Metrics,
		log:       cfg.Logger,
		interval:  cfg.PollInterval,
		oddsFired: make(map[int]*oddsState),
	}
}

// Metadata returns the shared refresh bookkeeping record.
func (e *Engine) Metadata() *Metadata { return e.meta }

// Run executes refresh cycles on a fixed interval until the context is
// cancelled, starting with an immediate cycle. Cycles run sequentially on
// this goroutine; a slow cycle delays the next tick rather than overlapping
// it.
func (e *Engine) Run(ctx context.Context) {
	e.log.Info("sync engine started", zap.Duration("interval", e.interval))
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	e.RunCycle(ctx)
	for {
		select {
		case <-ctx.Done():
			e.log.Info("sync engine stopped")
			return
		case <-ticker.C:
			if e.Complete() {
				e.log.Info("bracket complete")
				return
			}
			e.RunCycle(ctx)
		}
	}
}

// Complete reports whether every event has finished.
func (e *Engine) Complete() bool {
	for _, ev := range e.tree.Events() {
		if !ev.Status.Terminal() {
			return false
		}
	}
	return true
}

// cycleState accumulates one cycle's accounting.
type cycleState struct {
	scoresCalls   int
	scoresOK      int
	oddsCalls     int
	changed       bool
	providerAlive bool
}

// RunCycle executes one refresh: discovery of provider ids, per-event score
// merges with synchronous winner propagation, odds fetches at their trigger
// points, and metadata/metrics accounting. Exported so startup can
// pre-populate before serving and tests can drive cycles directly.
func (e *Engine) RunCycle(ctx context.Context) {
	st := &cycleState{}

	e.discover(ctx, st)
	e.refreshScores(ctx, st)

	success := st.providerAlive || st.scoresCalls == 0
	if !success && e.fallback != nil {
		e.applyFallback(ctx, st)
	}

	incomplete := 0
	for _, ev := range e.tree.Events() {
		if !ev.Status.Terminal() {
			incomplete++
		}
	}
	e.meta.RecordCycle(st.scoresCalls, st.oddsCalls, success, incomplete, time.Now())
	e.metrics.RecordCycle(st.scoresCalls, st.oddsCalls, success, incomplete)

	if !success {
		e.log.Warn("scores provider unreachable; state left stale until next cycle")
	}
	if st.changed {
		e.broadcast()
	}
}

// discover resolves provider correlation ids for events whose matchup is
// known but unmapped, via one scoreboard call. Acquiring an id is the
// event's "scheduled" edge and fires the first odds trigger.
func (e *Engine) discover(ctx context.Context, st *cycleState) {
	var pending []*bracket.Event
	for _, ev := range e.tree.Events() {
		if ev.MatchupDetermined() && ev.ProviderID == "" {
			pending = append(pending, ev)
		}
	}
	if len(pending) == 0 {
		return
	}

	board, err := e.scores.Scoreboard(ctx)
	st.scoresCalls++
	if err != nil {
		e.log.Warn("scoreboard fetch failed", zap.Error(err))
		e.metrics.CycleError()
		return
	}
	st.providerAlive = true
	st.scoresOK++

	for _, ev := range pending {
		key, _ := ev.MatchupKey()
		rep, ok := board[key]
		if !ok {
			continue // provider doesn't list the game yet
		}
		if err := e.tree.AssignProvider(ev.ID, rep.ProviderID, rep.StartTime); err != nil {
			e.log.Error("assign provider id", zap.Int("event", ev.ID), zap.Error(err))
			continue
		}
		st.changed = true
		e.log.Info("event mapped to provider",
			zap.Int("event", ev.ID),
			zap.String("matchup", key),
			zap.String("provider_id", rep.ProviderID))
		e.fireOdds(ctx, st, ev, triggerScheduled)
	}
}

// refreshScores fetches every non-final mapped event by provider id and
// merges the report. One event's failure never blocks the rest.
func (e *Engine) refreshScores(ctx context.Context, st *cycleState) {
	for _, ev := range e.tree.Events() {
		if ev.Status.Terminal() || ev.ProviderID == "" {
			continue
		}
		rep, err := e.scores.GameReport(ctx, ev.ProviderID)
		st.scoresCalls++
		if err != nil {
			e.log.Warn("game report failed",
				zap.Int("event", ev.ID),
				zap.String("provider_id", ev.ProviderID),
				zap.Error(err))
			e.metrics.CycleError()
			continue
		}
		st.providerAlive = true
		st.scoresOK++
		e.merge(ctx, st, ev, rep)
	}
}

// merge applies one report to one event: scores, then status, then whatever
// the status edge demands (odds trigger, winner propagation).
func (e *Engine) merge(ctx context.Context, st *cycleState, ev *bracket.Event, rep ingest.ScoreReport) {
	if len(rep.Scores) > 0 {
		changed, err := e.tree.ApplyScores(ev.ID, rep.Scores)
		if err != nil {
			e.log.Warn("dropping score update", zap.Int("event", ev.ID), zap.Error(err))
		} else if changed {
			st.changed = true
		}
	}

	if rep.Status == "" {
		if rep.RawStatus != "" {
			e.log.Warn("ignoring unrecognized status",
				zap.Int("event", ev.ID), zap.String("status", rep.RawStatus))
		}
		return
	}

	change, err := e.tree.AdvanceStatus(ev.ID, rep.Status)
	if err != nil {
		// Backward or malformed status from the provider: drop it, keep ours.
		e.log.Warn("dropping status update", zap.Int("event", ev.ID), zap.Error(err))
		return
	}
	if !change.Changed {
		return
	}
	st.changed = true
	e.log.Info("event status changed",
		zap.Int("event", ev.ID),
		zap.String("from", string(change.From)),
		zap.String("to", string(change.To)))

	// The first live report can arrive as HALFTIME (restart mid-game, 60s
	// polls); the trigger then fires on the later move into IN_PROGRESS.
	// fireOdds caps it at once per event, so flapping can't re-spend.
	if change.To == bracket.StatusInProgress {
		e.fireOdds(ctx, st, ev, triggerInProgress)
	}
	if change.BecameFinal {
		e.propagate(ev)
	}
}

// propagate pushes a finished event's winner into its parent slot, in the
// same cycle as the terminal transition so the next cycle sees the parent's
// matchup.
func (e *Engine) propagate(ev *bracket.Event) {
	if ev.Winner == nil {
		// Tied or missing score on a final game is provider-data
		// inconsistency; leave the slot open for a corrected report.
		e.log.Warn("final event has no winner", zap.Int("event", ev.ID))
		return
	}
	parentID, err := e.tree.FillParentSlot(ev.ID)
	if err != nil {
		e.log.Error("winner propagation failed", zap.Int("event", ev.ID), zap.Error(err))
		return
	}
	if parentID != 0 {
		e.log.Info("winner advanced",
			zap.Int("event", ev.ID),
			zap.String("team", ev.Winner.Team.Code),
			zap.Int("into_event", parentID))
	} else {
		e.log.Info("champion decided", zap.String("team", ev.Winner.Team.Code))
	}
}

// fireOdds services one odds trigger point for an event, at most once per
// point for the event's lifetime. The cache is consulted first; a hit costs
// no provider call.
func (e *Engine) fireOdds(ctx context.Context, st *cycleState, ev *bracket.Event, trigger int) {
	state := e.oddsFired[ev.ID]
	if state == nil {
		state = &oddsState{}
		e.oddsFired[ev.ID] = state
	}
	switch trigger {
	case triggerScheduled:
		if state.scheduledFired {
			return
		}
		state.scheduledFired = true
	case triggerInProgress:
		if state.inProgressFired {
			return
		}
		state.inProgressFired = true
	}

	key, ok := ev.MatchupKey()
	if !ok {
		return
	}

	// The opening line may already be cached; only the in-progress refresh
	// should overwrite it with a fresher fetch.
	if trigger == triggerScheduled && e.cache != nil {
		if spread, hit := e.cache.GetSpread(ctx, key); hit {
			if err := e.tree.ApplySpread(ev.ID, spread); err == nil {
				st.changed = true
				e.log.Info("spread served from cache", zap.Int("event", ev.ID))
			}
			return
		}
	}

	start := ev.StartTime
	if start.IsZero() {
		start = time.Now()
	}
	spread, err := e.odds.Spread(ctx, ev.Home.Team.OddsAPIName, ev.Away.Team.OddsAPIName, start)
	st.oddsCalls++
	if err != nil {
		e.log.Warn("spread fetch failed", zap.Int("event", ev.ID), zap.Error(err))
		e.metrics.CycleError()
		return
	}
	if err := e.tree.ApplySpread(ev.ID, spread); err != nil {
		e.log.Error("apply spread", zap.Int("event", ev.ID), zap.Error(err))
		return
	}
	st.changed = true
	e.log.Info("spread updated", zap.Int("event", ev.ID), zap.Any("spread", spread))
	if e.cache != nil {
		if err := e.cache.PutSpread(ctx, key, spread); err != nil {
			e.log.Warn("spread cache write failed", zap.Error(err))
		}
	}
}

// applyFallback freshens scores from the scraped source when the primary is
// down. Scrapes carry display names only and are never trusted for FINAL,
// so this merges scores (and at most an IN_PROGRESS edge) for events whose
// matchup names line up.
func (e *Engine) applyFallback(ctx context.Context, st *cycleState) {
	live, err := e.fallback.LiveScores(ctx)
	if err != nil {
		e.log.Warn("fallback source failed", zap.Error(err))
		return
	}
	e.log.Info("using fallback scores", zap.Int("games", len(live)))

	for _, ev := range e.tree.Events() {
		if ev.Status.Terminal() || !ev.MatchupDetermined() {
			continue
		}
		for _, game := range live {
			scores, ok := matchScrapedGame(ev, game)
			if !ok {
				continue
			}
			changed, err := e.tree.ApplyScores(ev.ID, scores)
			if err != nil {
				e.log.Warn("dropping fallback scores", zap.Int("event", ev.ID), zap.Error(err))
				break
			}
			if changed {
				st.changed = true
			}
			if game.Live && ev.Status.Rank() < bracket.StatusInProgress.Rank() {
				if change, err := e.tree.AdvanceStatus(ev.ID, bracket.StatusInProgress); err == nil && change.Changed {
					st.changed = true
					e.fireOdds(ctx, st, ev, triggerInProgress)
				}
			}
			break
		}
	}
}

// matchScrapedGame maps a scraped game's display names onto an event's team
// codes, in either orientation.
func matchScrapedGame(ev *bracket.Event, game ingest.LiveScore) (map[string]int, bool) {
	home, away := ev.Home.Team, ev.Away.Team
	switch {
	case nameMatches(home.Name, game.HomeTeam) && nameMatches(away.Name, game.AwayTeam):
		return map[string]int{home.Code: game.HomeScore, away.Code: game.AwayScore}, true
	case nameMatches(home.Name, game.AwayTeam) && nameMatches(away.Name, game.HomeTeam):
		return map[string]int{home.Code: game.AwayScore, away.Code: game.HomeScore}, true
	}
	return nil, false
}

// nameMatches is deliberately loose: scraped names are often the long form
// ("Duke Blue Devils") of our short form ("Duke").
func nameMatches(ours, scraped string) bool {
	a := strings.ToLower(strings.TrimSpace(ours))
	b := strings.ToLower(strings.TrimSpace(scraped))
	if a == "" || b == "" {
		return false
	}
	return a == b || strings.Contains(b, a) || strings.Contains(a, b)
}

func (e *Engine) broadcast() {
	if e.bcast == nil {
		return
	}
	data, err := json.Marshal(e.tree.Snapshot())
	if err != nil {
		e.log.Error("snapshot marshal failed", zap.Error(err))
		return
	}
	e.bcast.Broadcast(data)
}
