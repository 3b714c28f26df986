// Command pipeline wires the MLB betting-line pipeline's collaborators and
// exposes the five operations spec.md §6 names as an external CLI
// contract (run_pipeline, status, health_snapshot, trigger_recovery,
// resolve_outcomes) as plain Go methods on App. The CLI surface itself is
// out of scope (spec.md §5); main() is a thin driver that runs one
// pipeline pass and answers to OS signals, grounded on
// XavierBriggs-Services/alert-service/cmd/alert-service's wire-then-
// signal.Notify-then-graceful-shutdown shape.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/samlafell/mlbcore/internal/alerting"
	"github.com/samlafell/mlbcore/internal/collectors"
	"github.com/samlafell/mlbcore/internal/collectors/breaker"
	"github.com/samlafell/mlbcore/internal/collectors/oddscompare"
	"github.com/samlafell/mlbcore/internal/collectors/primaryodds"
	"github.com/samlafell/mlbcore/internal/collectors/schedule"
	"github.com/samlafell/mlbcore/internal/collectors/splitpct"
	"github.com/samlafell/mlbcore/internal/collectors/splits"
	"github.com/samlafell/mlbcore/internal/config"
	"github.com/samlafell/mlbcore/internal/curated"
	"github.com/samlafell/mlbcore/internal/health"
	"github.com/samlafell/mlbcore/internal/identity"
	"github.com/samlafell/mlbcore/internal/orchestrator"
	"github.com/samlafell/mlbcore/internal/persistence"
	"github.com/samlafell/mlbcore/internal/raw"
	"github.com/samlafell/mlbcore/internal/registry"
	"github.com/samlafell/mlbcore/internal/staging"
	"github.com/samlafell/mlbcore/pkg/contracts"
	"github.com/samlafell/mlbcore/pkg/models"
)

// Exit codes per spec.md §6: 0 success, 1 partial, 2 failed, 3 misconfiguration.
const (
	exitSuccess       = 0
	exitPartial       = 1
	exitFailed        = 2
	exitMisconfigured = 3
)

// App wires every collaborator the pipeline needs and exposes spec.md §6's
// five operations as methods, the shape an external CLI or scheduler calls
// into.
type App struct {
	cfg          *config.Config
	registry     *registry.Registry
	orchestrator *orchestrator.Orchestrator
	tracker      *health.Tracker
	recovery     *health.RecoveryCoordinator
	dispatcher   *alerting.Dispatcher
	persistence  *persistence.Postgres
}

// RunPipeline executes run_pipeline(mode, window).
func (a *App) RunPipeline(ctx context.Context, mode models.PipelineMode, window contracts.Window) (models.PipelineRun, error) {
	return a.orchestrator.Run(ctx, mode, window)
}

// StatusReport answers status().
type StatusReport struct {
	PersistenceHealth contracts.PersistenceHealth
	RegisteredSources []string
}

// Status implements status().
func (a *App) Status(ctx context.Context) (StatusReport, error) {
	h, err := a.persistence.Health(ctx)
	if err != nil {
		return StatusReport{}, fmt.Errorf("status: %w", err)
	}
	return StatusReport{PersistenceHealth: h, RegisteredSources: a.registry.Names()}, nil
}

// HealthSnapshot implements health_snapshot().
func (a *App) HealthSnapshot() map[string]models.HealthState {
	return a.tracker.All()
}

// runHealthAlertLoop periodically runs health.Tracker.CheckAlerts and
// dispatches whatever it returns through the alerting stack (spec.md §4.7:
// "drive recovery and alerting" — recovery is driven by TriggerRecovery,
// this is the alerting half). interval is the smaller of
// health.pattern_interval_s and health.prediction_interval_s, since one
// sweep computes both.
func (a *App) runHealthAlertLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, alert := range a.tracker.CheckAlerts() {
				if err := a.dispatcher.Dispatch(ctx, alert); err != nil {
					log.Warn().Err(err).Str("alert_type", alert.AlertType).Str("collector", alert.Collector).
						Msg("pipeline: alert dispatch failed")
				}
			}
		}
	}
}

// TriggerRecovery implements trigger_recovery(collector): runs the
// reset/probe/revalidate sequence against the named collector's breaker,
// at most once per cooldown (spec.md §4.7).
func (a *App) TriggerRecovery(ctx context.Context, collectorName string) ([]health.RecoveryOutcome, error) {
	c, ok := a.registry.Get(collectorName)
	if !ok {
		return nil, fmt.Errorf("trigger_recovery: unknown collector %q", collectorName)
	}
	br, ok := c.(interface{ Breaker() *breaker.Breaker })
	if !ok {
		return nil, fmt.Errorf("trigger_recovery: collector %q does not expose a breaker", collectorName)
	}
	cfg := a.cfg.Collectors[collectorName]
	return a.recovery.Attempt(ctx, time.Now().UTC(), collectorName, br.Breaker(), c, cfg), nil
}

// ResolveOutcomes implements resolve_outcomes(date_range): fetches the
// schedule collector's scoreboard for every date from since to until, looks
// each reported game up by league id, and upserts the known games the
// scoreboard reports as terminal with their final status and scores,
// returning how many were upserted. Non-terminal updates are not written.
// Grounded on settlement-service/internal/settler.Settler's
// poll-then-settle-pending shape, adapted from bet settlement to game
// outcome resolution.
//
// The schedule feed's scoreboard payload has no staging parser (it carries
// league/game metadata, not a sportsbook quote, so it never becomes a
// BettingLine); extractScheduleUpdates walks it directly, the way the
// teacher's own ESPN client hands callers an unstructured map to walk
// rather than a typed response.
func (a *App) ResolveOutcomes(ctx context.Context, since, until time.Time) (int, error) {
	scheduleCollector, ok := a.registry.Get("schedule")
	if !ok {
		return 0, fmt.Errorf("resolve_outcomes: schedule collector not registered")
	}

	recCh, errCh := scheduleCollector.Collect(ctx, contracts.Window{Since: since, Until: until})

	resolved := 0
	for recCh != nil || errCh != nil {
		select {
		case rec, open := <-recCh:
			if !open {
				recCh = nil
				continue
			}
			for _, upd := range extractScheduleUpdates(rec.Payload) {
				game, resolveErr := resolveGameFromScheduleUpdate(ctx, a.persistence, upd)
				if resolveErr != nil {
					continue
				}
				if game.IsTerminal() {
					if err := a.upsertGame(ctx, game); err == nil {
						resolved++
					}
				}
			}
		case err, open := <-errCh:
			if !open {
				errCh = nil
				continue
			}
			if err != nil {
				log.Warn().Err(err).Msg("resolve_outcomes: schedule collect failed")
			}
		case <-ctx.Done():
			return resolved, ctx.Err()
		}
	}
	return resolved, nil
}

// scheduleUpdate is one game's status/score as the ESPN-shaped scoreboard
// feed reports it.
type scheduleUpdate struct {
	LeagueGameID string
	Status       string
	HomeScore    *int
	AwayScore    *int
}

// extractScheduleUpdates walks a scoreboard payload shaped like
// {"events": [{"id": "...", "competitions": [{"status": {"type": {"state":
// "..."}}, "competitors": [{"homeAway": "home"|"away", "score": "..."}]}]}]}.
func extractScheduleUpdates(payload map[string]interface{}) []scheduleUpdate {
	events, _ := payload["events"].([]interface{})
	out := make([]scheduleUpdate, 0, len(events))

	for _, raw := range events {
		event, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		id := str(event["id"])
		if id == "" {
			continue
		}

		competitions, _ := event["competitions"].([]interface{})
		if len(competitions) == 0 {
			continue
		}
		competition, ok := competitions[0].(map[string]interface{})
		if !ok {
			continue
		}

		upd := scheduleUpdate{LeagueGameID: id}
		if status, ok := competition["status"].(map[string]interface{}); ok {
			if t, ok := status["type"].(map[string]interface{}); ok {
				upd.Status = str(t["state"])
			}
		}

		competitors, _ := competition["competitors"].([]interface{})
		for _, rawC := range competitors {
			c, ok := rawC.(map[string]interface{})
			if !ok {
				continue
			}
			score, err := strconv.Atoi(str(c["score"]))
			if err != nil {
				continue
			}
			switch str(c["homeAway"]) {
			case "home":
				upd.HomeScore = &score
			case "away":
				upd.AwayScore = &score
			}
		}
		out = append(out, upd)
	}
	return out
}

func str(v interface{}) string {
	s, _ := v.(string)
	return s
}

// scheduleStateTerminal mirrors ESPN's status.type.state vocabulary; "post"
// is the only terminal state it reports.
const scheduleStateTerminal = "post"

// resolveGameFromScheduleUpdate looks up the canonical game a schedule
// update names and applies its status/score onto it.
func resolveGameFromScheduleUpdate(ctx context.Context, store identity.Store, upd scheduleUpdate) (models.Game, error) {
	game, found, err := store.FindGameByLeagueID(ctx, upd.LeagueGameID)
	if err != nil {
		return models.Game{}, err
	}
	if !found {
		return models.Game{}, fmt.Errorf("resolve_outcomes: game %s not yet known", upd.LeagueGameID)
	}
	if upd.Status == scheduleStateTerminal {
		game.Status = models.GameFinal
	}
	if upd.HomeScore != nil {
		game.HomeFinalScore = upd.HomeScore
	}
	if upd.AwayScore != nil {
		game.AwayFinalScore = upd.AwayScore
	}
	return game, nil
}

func (a *App) upsertGame(ctx context.Context, game models.Game) error {
	tx, err := a.persistence.Begin(ctx)
	if err != nil {
		return err
	}
	if err := tx.UpsertGame(ctx, game); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func main() {
	configPath := flag.String("config", "config/pipeline.yaml", "path to the pipeline configuration document")
	mode := flag.String("mode", string(models.ModeFull), "pipeline mode: full, raw_only, staging_only, curated_only, pair")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error().Err(err).Msg("pipeline: configuration invalid")
		os.Exit(exitMisconfigured)
	}

	app, err := wire(cfg)
	if err != nil {
		log.Error().Err(err).Msg("pipeline: failed to wire collaborators")
		os.Exit(exitMisconfigured)
	}
	defer app.persistence.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Info().Str("signal", sig.String()).Msg("pipeline: shutdown signal received")
		cancel()
	}()

	go app.runHealthAlertLoop(ctx, healthAlertInterval(cfg.Health))

	window := contracts.Window{Since: time.Now().UTC().Add(-1 * time.Hour), Until: time.Now().UTC()}
	run, err := app.RunPipeline(ctx, models.PipelineMode(*mode), window)
	if err != nil {
		log.Error().Err(err).Msg("pipeline: run failed")
		os.Exit(exitFailed)
	}

	log.Info().Str("run_id", run.RunID).Str("status", string(run.Status)).Msg("pipeline: run complete")
	switch run.Status {
	case models.StatusSucceeded:
		os.Exit(exitSuccess)
	case models.StatusPartial:
		os.Exit(exitPartial)
	default:
		os.Exit(exitFailed)
	}
}

// defaultHealthAlertInterval is used when neither health.pattern_interval_s
// nor health.prediction_interval_s is configured.
const defaultHealthAlertInterval = 60 * time.Second

// healthAlertInterval picks the tighter of the two configured sweep
// intervals, since one runHealthAlertLoop tick covers both checks.
func healthAlertInterval(cfg config.HealthConfig) time.Duration {
	interval := time.Duration(cfg.PredictionIntervalS) * time.Second
	pattern := time.Duration(cfg.PatternIntervalS) * time.Second
	if pattern > 0 && (interval <= 0 || pattern < interval) {
		interval = pattern
	}
	if interval <= 0 {
		interval = defaultHealthAlertInterval
	}
	return interval
}

// wire builds every collaborator from cfg, the composition root for the
// pipeline daemon.
func wire(cfg *config.Config) (*App, error) {
	pg, err := persistence.Open(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("wire: persistence: %w", err)
	}

	resolver := identity.New(pg, cfg.Identity.MappingCacheSize, cfg.Identity.FuzzyMatchEnabled)

	reg := registry.New()
	for name, c := range cfg.Collectors {
		if !c.Enabled {
			continue
		}
		collector, err := buildCollector(name, c)
		if err != nil {
			return nil, fmt.Errorf("wire: collector %s: %w", name, err)
		}
		if err := reg.Register(collector); err != nil {
			return nil, fmt.Errorf("wire: register %s: %w", name, err)
		}
	}

	rawZone := raw.New(pg)
	stagingZone := staging.New(resolver, time.Duration(cfg.Pipeline.ClockSkewToleranceS)*time.Second)
	curatedZone := curated.New(cfg.Pipeline.SteamBookPctThreshold, time.Duration(cfg.Pipeline.SteamWindowS)*time.Second)
	tracker := health.New(cfg.Health.DegradationSuccessRatio, cfg.Health.DegradationLatencyRatio)

	orch := orchestrator.New(orchestrator.Deps{
		Registry:       reg,
		RawZone:        rawZone,
		StagingZone:    stagingZone,
		CuratedZone:    curatedZone,
		Persistence:    pg,
		Health:         tracker,
		Thresholds:     cfg.Pipeline.ErrorRateThresholds,
		WorkerPoolSize: cfg.Pipeline.ZoneWorkerPoolSize,
		QueueCapacity:  cfg.Pipeline.QueueCapacity,
	})

	recoveryCoordinator := health.NewRecoveryCoordinator(time.Duration(cfg.Collectors[firstCollectorName(cfg)].CircuitBreakerCooldownS) * time.Second)

	sinks, err := buildSinks(cfg.Alerting.Sinks)
	if err != nil {
		return nil, fmt.Errorf("wire: alert sinks: %w", err)
	}
	redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password})
	throttler := alerting.NewThrottler(redisClient, cfg.Alerting.ThrottleBySeverity)
	dispatcher := alerting.NewDispatcher(sinks, throttler)

	return &App{
		cfg:          cfg,
		registry:     reg,
		orchestrator: orch,
		tracker:      tracker,
		recovery:     recoveryCoordinator,
		dispatcher:   dispatcher,
		persistence:  pg,
	}, nil
}

// firstCollectorName picks an arbitrary configured collector's cooldown as
// the recovery coordinator's default cooldown when none is distinguished.
// Disabled collectors are candidates too: in config/pipeline.yaml every
// enabled collector uses 60s, while the disabled odds_compare entry uses 90s.
func firstCollectorName(cfg *config.Config) string {
	for name := range cfg.Collectors {
		return name
	}
	return ""
}

func buildCollector(name string, c config.CollectorConfig) (contracts.Collector, error) {
	base := collectors.Config{
		Name:                    name,
		BaseURL:                 c.BaseURL,
		Timeout:                 time.Duration(c.TimeoutS) * time.Second,
		RateLimitRPS:            c.RateLimitRPS,
		RateLimitRPH:            c.RateLimitRPH,
		Burst:                   1,
		RetryMaxAttempts:        c.RetryMaxAttempts,
		RetryInitialBackoff:     time.Duration(c.RetryBackoffS * float64(time.Second)),
		CircuitBreakerThreshold: uint32(c.CircuitBreakerFailureThreshold),
		CircuitBreakerCooldown:  time.Duration(c.CircuitBreakerCooldownS) * time.Second,
	}
	if c.APIKeyEnv != "" {
		base.Headers = map[string]string{"Authorization": "Bearer " + os.Getenv(c.APIKeyEnv)}
	}

	switch name {
	case "primary_odds":
		return primaryodds.New(base), nil
	case "consensus_splits":
		return splits.New(base), nil
	case "public_bet_pct":
		return splitpct.New(base), nil
	case "schedule":
		return schedule.New(base), nil
	case "odds_compare":
		return oddscompare.New(base), nil
	default:
		return nil, fmt.Errorf("no collector implementation registered for source %q", name)
	}
}

func buildSinks(cfgs []config.AlertSinkConfig) ([]contracts.AlertSink, error) {
	sinks := make([]contracts.AlertSink, 0, len(cfgs))
	for _, c := range cfgs {
		switch c.Type {
		case "console":
			sinks = append(sinks, alerting.NewConsoleSink())
		case "webhook":
			if c.WebhookURL == "" {
				return nil, fmt.Errorf("webhook sink configured without a URL")
			}
			sinks = append(sinks, alerting.NewWebhookSink(c.WebhookURL))
		case "slack":
			if c.WebhookURL == "" {
				return nil, fmt.Errorf("slack sink configured without a webhook URL")
			}
			sinks = append(sinks, alerting.NewSlackSink(c.WebhookURL))
		case "email":
			sinks = append(sinks, alerting.NewEmailSink(c.SMTPHost, c.FromAddress, c.ToAddress))
		default:
			return nil, fmt.Errorf("unknown alert sink type %q", c.Type)
		}
	}
	return sinks, nil
}
