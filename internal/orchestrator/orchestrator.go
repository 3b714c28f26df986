// Package orchestrator implements the pipeline orchestrator of spec.md
// §4.6: runs the raw/staging/curated zones in dependency order behind
// bounded worker pools, and computes each run's terminal status from
// per-zone error rates. Grounded on
// XavierBriggs-Services/game-stats-service/internal/poller.Orchestrator's
// fan-out-and-wait shape, extended with the bounded-queue WorkerPool spec.md
// §4.6/§5 requires in place of the teacher's unbounded goroutine-per-sport
// fan-out.
package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/samlafell/mlbcore/internal/config"
	"github.com/samlafell/mlbcore/internal/curated"
	"github.com/samlafell/mlbcore/internal/raw"
	"github.com/samlafell/mlbcore/internal/registry"
	"github.com/samlafell/mlbcore/internal/staging"
	"github.com/samlafell/mlbcore/pkg/contracts"
	"github.com/samlafell/mlbcore/pkg/models"
)

// HealthRecorder is the subset of *health.Tracker the orchestrator needs:
// one CollectionAttempt per collector invocation, fed into the rolling
// statistics spec.md §4.7 describes. Kept as a narrow interface so the
// orchestrator package doesn't import internal/health.
type HealthRecorder interface {
	Record(attempt models.CollectionAttempt)
}

// Deps wires every collaborator the orchestrator runs a pipeline across.
type Deps struct {
	Registry    *registry.Registry
	RawZone     *raw.Zone
	StagingZone *staging.Zone
	CuratedZone *curated.Zone
	Persistence contracts.PersistenceAdapter
	Health      HealthRecorder // optional; nil disables health recording

	Thresholds     config.ErrorRateThresholds
	WorkerPoolSize int
	QueueCapacity  int
}

// Orchestrator runs pipeline executions per spec.md §4.6. Concurrent calls
// to Run are safe: each gets its own run id and zone state, and writes are
// serialized by the persistence adapter.
type Orchestrator struct {
	deps Deps
}

// New builds an Orchestrator from deps.
func New(deps Deps) *Orchestrator {
	return &Orchestrator{deps: deps}
}

// Run executes mode's zones over window and returns the completed
// PipelineRun. Re-running the same window is idempotent: the raw append
// skips rows whose idempotency key already exists, and staging/curated
// persist via upsert (spec.md §4.6).
func (o *Orchestrator) Run(ctx context.Context, mode models.PipelineMode, window contracts.Window) (models.PipelineRun, error) {
	run := models.PipelineRun{
		RunID:       uuid.NewString(),
		Mode:        mode,
		StartedAt:   time.Now().UTC(),
		ZoneMetrics: make(map[string]models.ZoneMetrics),
	}
	log.Info().Str("run_id", run.RunID).Str("mode", string(mode)).Msg("pipeline run starting")

	runRaw, runStaging, runCurated := zonesForMode(mode)

	var rawRecords []models.RawRecord
	if runRaw {
		var metrics models.ZoneMetrics
		rawRecords, metrics = o.runRawZone(ctx, window)
		run.ZoneMetrics["raw"] = metrics
	}

	var stagingLines []models.BettingLine
	if runStaging && len(rawRecords) > 0 {
		var metrics models.ZoneMetrics
		stagingLines, metrics = o.runStagingZone(ctx, rawRecords)
		run.ZoneMetrics["staging"] = metrics
	}

	if runCurated && len(stagingLines) > 0 {
		_, metrics := o.runCuratedZone(ctx, stagingLines)
		run.ZoneMetrics["curated"] = metrics
	}

	run.EndedAt = time.Now().UTC()
	run.Status = computeStatus(run, o.deps.Thresholds, runRaw, runStaging, runCurated)
	log.Info().Str("run_id", run.RunID).Str("status", string(run.Status)).Msg("pipeline run finished")
	return run, nil
}

// zonesForMode decides which zones mode exercises, per spec.md §4.6
// ("any subset is runnable").
func zonesForMode(mode models.PipelineMode) (runRaw, runStaging, runCurated bool) {
	switch mode {
	case models.ModeFull:
		return true, true, true
	case models.ModeRawOnly:
		return true, false, false
	case models.ModeStagingOnly:
		return false, true, false
	case models.ModeCuratedOnly:
		return false, false, true
	case models.ModePair:
		return true, true, false
	default:
		return false, false, false
	}
}

// runRawZone fans the registered collectors out across a bounded worker
// pool, funnels every RawRecord/error into the raw zone, and persists the
// ingested batch. Each returned record carries its raw.Validate status, so
// invalid records are skipped by the staging zone.
func (o *Orchestrator) runRawZone(ctx context.Context, window contracts.Window) ([]models.RawRecord, models.ZoneMetrics) {
	metrics := models.ZoneMetrics{}
	collectors := o.deps.Registry.All()
	if len(collectors) == 0 {
		return nil, metrics
	}

	pool := NewWorkerPool(o.deps.WorkerPoolSize, o.deps.QueueCapacity)
	var mu sync.Mutex
	var records []models.RawRecord
	var wg sync.WaitGroup

	for _, c := range collectors {
		c := c
		wg.Add(1)
		task := func() {
			defer wg.Done()
			startedAt := time.Now().UTC()
			recCount := 0
			outcome := models.OutcomeOK
			errorCategory := ""

			recCh, errCh := c.Collect(ctx, window)
			for recCh != nil || errCh != nil {
				select {
				case rec, ok := <-recCh:
					if !ok {
						recCh = nil
						continue
					}
					recCount++
					mu.Lock()
					records = append(records, rec)
					mu.Unlock()
				case err, ok := <-errCh:
					if !ok {
						errCh = nil
						continue
					}
					if err != nil {
						log.Warn().Str("collector", c.Name()).Err(err).Msg("collector reported an error")
						outcome = models.OutcomeNetworkError
						errorCategory = err.Error()
						mu.Lock()
						metrics.Errors++
						mu.Unlock()
					}
				case <-ctx.Done():
					return
				}
			}

			if o.deps.Health != nil {
				endedAt := time.Now().UTC()
				o.deps.Health.Record(models.CollectionAttempt{
					Collector:      c.Name(),
					StartedAt:      startedAt,
					EndedAt:        endedAt,
					Outcome:        outcome,
					RecordCount:    recCount,
					ResponseTimeMs: endedAt.Sub(startedAt).Milliseconds(),
					ErrorCategory:  errorCategory,
				})
			}
		}
		if err := pool.Submit(ctx, task); err != nil {
			wg.Done()
			log.Error().Err(err).Str("collector", c.Name()).Msg("raw zone: could not enqueue collector")
		}
	}

	wg.Wait()
	pool.Close()

	for i := range records {
		records[i].ParseStatus, records[i].InvalidReason = raw.Validate(records[i])
	}

	metrics.In = len(records) + metrics.Errors
	if o.deps.RawZone == nil || len(records) == 0 {
		return records, metrics
	}

	result, err := o.deps.RawZone.Ingest(ctx, records)
	if err != nil {
		log.Error().Err(err).Msg("raw zone: ingest failed")
		metrics.Errors += len(records)
		metrics.Out = 0
		return records, metrics
	}
	metrics.Out = result.Inserted
	metrics.Errors += result.Invalid
	return records, metrics
}

// runStagingZone parses every parse-ok raw record through its source's
// registered parser and normalizes the result, persisting accepted lines.
func (o *Orchestrator) runStagingZone(ctx context.Context, rawRecords []models.RawRecord) ([]models.BettingLine, models.ZoneMetrics) {
	metrics := models.ZoneMetrics{QualityHistogram: make(map[models.QualityTier]int)}

	bySource := make(map[string][]models.RawRecord)
	for _, r := range rawRecords {
		if r.ParseStatus != models.ParseOK {
			continue
		}
		bySource[r.Source] = append(bySource[r.Source], r)
	}

	var accepted []models.BettingLine
	for source, batch := range bySource {
		parser, ok := staging.ParserFor(source)
		if !ok {
			log.Warn().Str("source", source).Msg("staging zone: no parser registered for source, skipping")
			continue
		}

		var provisional []contracts.ProvisionalRecord
		for _, rec := range batch {
			metrics.In++
			parsed, err := parser.Parse(rec.Payload)
			if err != nil {
				metrics.Errors++
				log.Warn().Str("source", source).Err(err).Msg("staging zone: parse failed")
				continue
			}
			provisional = append(provisional, parsed...)
		}
		if len(provisional) == 0 {
			continue
		}

		lines, rejected, quarantined, _ := o.deps.StagingZone.Normalize(ctx, provisional)
		metrics.Errors += len(rejected)
		if len(quarantined) > 0 {
			// Quarantined records wait for a background resolver retry once
			// new schedule data arrives (spec.md §4.3 edge case); this
			// orchestrator's scope is one run, so it only logs them here
			// rather than owning the retry loop itself.
			log.Info().Str("source", source).Int("count", len(quarantined)).
				Msg("staging zone: records quarantined pending identity resolution")
		}
		accepted = append(accepted, lines...)
	}

	metrics.Out = len(accepted)
	for _, l := range accepted {
		metrics.QualityHistogram[l.DataQuality]++
	}

	if len(accepted) > 0 {
		if err := o.persist(ctx, "staging", accepted); err != nil {
			log.Error().Err(err).Msg("staging zone: persist failed")
		}
	}
	return accepted, metrics
}

// runCuratedZone deduplicates and flags staging's accepted lines, then
// persists the curated result.
func (o *Orchestrator) runCuratedZone(ctx context.Context, stagingLines []models.BettingLine) ([]models.BettingLine, models.ZoneMetrics) {
	metrics := models.ZoneMetrics{In: len(stagingLines), QualityHistogram: make(map[models.QualityTier]int)}

	lines, curatedMetrics := o.deps.CuratedZone.Process(ctx, stagingLines)
	metrics.Out = curatedMetrics.Upserted
	for _, l := range lines {
		metrics.QualityHistogram[l.DataQuality]++
	}

	if len(lines) > 0 {
		if err := o.persist(ctx, "curated", lines); err != nil {
			log.Error().Err(err).Msg("curated zone: persist failed")
			metrics.Errors = len(lines)
		}
	}
	return lines, metrics
}

// persist wraps one zone's upsert in a single transaction.
func (o *Orchestrator) persist(ctx context.Context, zone string, lines []models.BettingLine) error {
	if o.deps.Persistence == nil {
		return nil
	}
	tx, err := o.deps.Persistence.Begin(ctx)
	if err != nil {
		return fmt.Errorf("orchestrator: begin tx: %w", err)
	}
	if err := tx.UpsertBettingLines(ctx, zone, lines); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("orchestrator: upsert %s lines: %w", zone, err)
	}
	return tx.Commit()
}

// computeStatus implements spec.md §4.6's three-way run status rule.
func computeStatus(run models.PipelineRun, thresholds config.ErrorRateThresholds, ranRaw, ranStaging, ranCurated bool) models.PipelineStatus {
	if !ranRaw && !ranStaging && !ranCurated {
		return models.StatusFailed
	}

	totalOut := 0
	anyExceeded := false
	check := func(zone string, threshold float64) {
		m, ok := run.ZoneMetrics[zone]
		if !ok {
			return
		}
		totalOut += m.Out
		if m.ErrorRate() > threshold {
			anyExceeded = true
		}
	}
	if ranRaw {
		check("raw", thresholds.Raw)
	}
	if ranStaging {
		check("staging", thresholds.Staging)
	}
	if ranCurated {
		check("curated", thresholds.Curated)
	}

	switch {
	case totalOut == 0:
		return models.StatusFailed
	case anyExceeded:
		return models.StatusPartial
	default:
		return models.StatusSucceeded
	}
}
