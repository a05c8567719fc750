// Careguide - Adaptive Content Recommendation for Care Programs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/careguide

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/tomtom215/careguide/internal/cache"
	"github.com/tomtom215/careguide/internal/logging"
	"github.com/tomtom215/careguide/internal/metrics"
)

// CacheState is the lifecycle state of a (user, program) cache key.
type CacheState string

const (
	StateEmpty     CacheState = "EMPTY"
	StateComputing CacheState = "COMPUTING"
	StateFresh     CacheState = "FRESH"
	StateStale     CacheState = "STALE"
)

// Request sources reported to metrics.
const (
	sourceCache    = "cache"
	sourceComputed = "computed"
	sourceFallback = "fallback"
)

// Engine is the entry point of the recommendation pipeline. It owns the
// result cache, collapses concurrent computations of the same key, and
// falls back to static content when personalization cannot complete.
// It is safe for concurrent use.
type Engine struct {
	// configMu guards config and now.
	config   *Config
	configMu sync.RWMutex
	logger   zerolog.Logger

	deps      Dependencies
	store     cache.Store
	cacheType string

	flights singleflight.Group

	// stateMu guards generations, epochs and inflight. A key has a
	// generation only while a computation for it is in flight; epochs hold
	// one counter per program.
	stateMu     sync.Mutex
	generations map[string]uint64
	epochs      map[string]uint64
	inflight    map[string]int

	now func() time.Time

	requestCount     atomic.Int64
	cacheHits        atomic.Int64
	cacheMisses      atomic.Int64
	computations     atomic.Int64
	sharedFlights    atomic.Int64
	fallbacks        atomic.Int64
	ruleErrors       atomic.Int64
	cacheWriteErrors atomic.Int64
	completionErrors atomic.Int64
	invalidations    atomic.Int64
}

// NewEngine creates an engine. A nil store selects an in-memory store.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, deps Dependencies, store cache.Store, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if err := deps.validate(); err != nil {
		return nil, err
	}
	if store == nil {
		store = cache.NewMemoryStore(0, cfg.Cache.TTL)
	}

	return &Engine{
		config:      cfg,
		logger:      logger.With().Str("component", "recommend").Logger(),
		deps:        deps,
		store:       store,
		cacheType:   storeType(store),
		generations: make(map[string]uint64),
		epochs:      make(map[string]uint64),
		inflight:    make(map[string]int),
		now:         time.Now,
	}, nil
}

//nolint:gocritic // Dependencies is a small bundle of interfaces
func (d Dependencies) validate() error {
	missing := make([]string, 0)
	if d.Profiles == nil {
		missing = append(missing, "Profiles")
	}
	if d.Progress == nil {
		missing = append(missing, "Progress")
	}
	if d.Interactions == nil {
		missing = append(missing, "Interactions")
	}
	if d.Content == nil {
		missing = append(missing, "Content")
	}
	if d.Rules == nil {
		missing = append(missing, "Rules")
	}
	if d.Telemetry == nil {
		missing = append(missing, "Telemetry")
	}
	if d.Defaults == nil {
		missing = append(missing, "Defaults")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing dependencies: %s", strings.Join(missing, ", "))
	}
	return nil
}

func storeType(store cache.Store) string {
	switch store.(type) {
	case *cache.MemoryStore:
		return "memory"
	case *cache.BadgerStore:
		return "badger"
	default:
		return "custom"
	}
}

// SetClock replaces the clock used when a request does not carry Options.Now.
// It may be called while requests are being served.
func (e *Engine) SetClock(now func() time.Time) {
	e.configMu.Lock()
	e.now = now
	e.configMu.Unlock()
}

func (e *Engine) clock() time.Time {
	e.configMu.RLock()
	now := e.now
	e.configMu.RUnlock()
	return now()
}

// GetPersonalizedContent returns the personalized content of a user in a
// program. It never fails: when personalization cannot be computed the
// program's default content is returned with Fallback set.
//
//nolint:gocritic // opts passed by value for immutability
func (e *Engine) GetPersonalizedContent(ctx context.Context, userID, programID string, opts Options) *PersonalizedContent {
	e.requestCount.Add(1)
	logger := e.requestLogger(ctx, userID, programID)

	now := opts.Now
	if now.IsZero() {
		now = e.clock()
	}

	if userID == "" || programID == "" {
		logger.Warn().Msg("personalized content requested without user or program id")
		e.fallbacks.Add(1)
		metrics.RecordFallback("invalid_argument")
		metrics.RecordRecommendRequest(sourceFallback)
		return e.fallbackContent(userID, programID, 0, now)
	}

	cfg := e.currentConfig()
	if opts.SectionCaps == nil && len(cfg.Limits.DefaultSectionCaps) > 0 {
		opts.SectionCaps = cfg.Limits.DefaultSectionCaps
	}

	key := cache.Key(userID, programID)
	fp := fingerprint(&opts, cfg)
	gen := e.generation(key, programID)

	if cfg.Cache.Enabled && !opts.ForceRefresh {
		if content, ok := e.lookup(ctx, key, fp, logger); ok {
			e.cacheHits.Add(1)
			metrics.RecordRecommendRequest(sourceCache)
			logger.Debug().Msg("personalized content served from cache")
			return content
		}
	}
	e.cacheMisses.Add(1)

	flightKey := key + "#" + fp + "#" + strconv.FormatUint(gen, 10)
	v, _, shared := e.flights.Do(flightKey, func() (interface{}, error) {
		return e.compute(ctx, computeRequest{
			userID:    userID,
			programID: programID,
			opts:      opts,
			now:       now,
			key:       key,
			fp:        fp,
			gen:       gen,
			cfg:       cfg,
		}, logger), nil
	})
	if shared {
		e.sharedFlights.Add(1)
		metrics.RecommendSharedFlights.Inc()
	}

	content, _ := v.(*PersonalizedContent)
	if content == nil {
		return e.fallbackContent(userID, programID, 0, now)
	}
	if content.Fallback {
		metrics.RecordRecommendRequest(sourceFallback)
	} else {
		metrics.RecordRecommendRequest(sourceComputed)
	}
	return content.Clone()
}

// MarkContentComplete records a completion through the telemetry
// collaborator and invalidates the cached result of the (user, program).
// A failed write is returned as *CompletionWriteError and leaves the cache
// untouched.
func (e *Engine) MarkContentComplete(ctx context.Context, userID, programID, contentID string) error {
	if userID == "" || programID == "" || contentID == "" {
		return fmt.Errorf("%w: user, program and content ids are required", ErrInvalidArgument)
	}
	logger := e.requestLogger(ctx, userID, programID)

	err := e.deps.Telemetry.RecordContentCompletion(ctx, userID, programID, contentID)
	metrics.RecordCompletionWrite(err)
	if err != nil {
		e.completionErrors.Add(1)
		werr := &CompletionWriteError{UserID: userID, ProgramID: programID, ContentID: contentID, Err: err}
		logger.Error().Err(werr).Str("content_id", contentID).Msg("content completion not recorded")
		return werr
	}

	e.Invalidate(ctx, userID, programID)
	logger.Info().Str("content_id", contentID).Msg("content completion recorded")

	if e.deps.Notifier != nil {
		if err := e.deps.Notifier.ContentCompleted(ctx, userID, programID, contentID); err != nil {
			logger.Warn().Err(err).Str("content_id", contentID).Msg("content completion event not published")
		}
	}
	return nil
}

// Invalidate marks the cached result of a (user, program) stale. The next
// read recomputes it, and any computation already in flight for the key
// will not write its result to the cache.
func (e *Engine) Invalidate(ctx context.Context, userID, programID string) {
	key := cache.Key(userID, programID)

	e.stateMu.Lock()
	if e.inflight[key] > 0 {
		e.generations[key]++
	}
	e.stateMu.Unlock()

	e.invalidations.Add(1)
	metrics.RecordInvalidation("key")

	if err := e.store.MarkStale(ctx, key); err != nil {
		e.recordCacheWriteError(&CacheWriteError{Key: key, Err: err}, "mark_stale")
	}
}

// InvalidateProgram marks every cached result of a program stale, e.g.
// after its content or rules changed.
func (e *Engine) InvalidateProgram(ctx context.Context, programID string) {
	e.stateMu.Lock()
	e.epochs[programID]++
	e.stateMu.Unlock()

	e.invalidations.Add(1)
	metrics.RecordInvalidation("program")

	prefix := cache.ProgramPrefix(programID)
	n, err := e.store.MarkStalePrefix(ctx, prefix)
	if err != nil {
		e.recordCacheWriteError(&CacheWriteError{Key: prefix, Err: err}, "mark_stale_prefix")
		return
	}
	e.logger.Info().Str("program_id", programID).Int("entries", n).Msg("program cache invalidated")
}

// CacheState reports the state of the cache key for a (user, program).
func (e *Engine) CacheState(ctx context.Context, userID, programID string) CacheState {
	key := cache.Key(userID, programID)

	e.stateMu.Lock()
	computing := e.inflight[key] > 0
	e.stateMu.Unlock()
	if computing {
		return StateComputing
	}

	entry, ok, err := e.store.Get(ctx, key)
	if err != nil || !ok {
		return StateEmpty
	}
	if entry.Stale {
		return StateStale
	}
	return StateFresh
}

// GetMetrics returns a snapshot of the engine counters.
func (e *Engine) GetMetrics() Metrics {
	return Metrics{
		RequestCount:     e.requestCount.Load(),
		CacheHits:        e.cacheHits.Load(),
		CacheMisses:      e.cacheMisses.Load(),
		Computations:     e.computations.Load(),
		SharedFlights:    e.sharedFlights.Load(),
		Fallbacks:        e.fallbacks.Load(),
		RuleErrors:       e.ruleErrors.Load(),
		CacheWriteErrors: e.cacheWriteErrors.Load(),
		CompletionErrors: e.completionErrors.Load(),
		Invalidations:    e.invalidations.Load(),
	}
}

// GetConfig returns a copy of the current configuration.
func (e *Engine) GetConfig() *Config {
	return e.currentConfig().Clone()
}

// UpdateConfig replaces the engine configuration. Cached results built
// under a different match mode or scoring tuning are not reused.
func (e *Engine) UpdateConfig(cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	e.configMu.Lock()
	e.config = cfg.Clone()
	e.configMu.Unlock()

	e.logger.Info().Str("match_mode", string(cfg.Rules.MatchMode)).Msg("configuration updated")
	return nil
}

func (e *Engine) currentConfig() *Config {
	e.configMu.RLock()
	defer e.configMu.RUnlock()
	return e.config
}

func (e *Engine) requestLogger(ctx context.Context, userID, programID string) zerolog.Logger {
	lc := e.logger.With().Str("user_id", userID).Str("program_id", programID)
	if id := logging.CorrelationIDFromContext(ctx); id != "" {
		lc = lc.Str("correlation_id", id)
	}
	return lc.Logger()
}

// generation combines the key generation with the program epoch. Neither
// decreases while a flight for the key runs, so an invalidation during the
// flight changes the sum.
func (e *Engine) generation(key, programID string) uint64 {
	e.stateMu.Lock()
	defer e.stateMu.Unlock()
	return e.generations[key] + e.epochs[programID]
}

// beginFlight registers a computation for key and returns the generation
// its result is tagged with.
func (e *Engine) beginFlight(key, programID string) uint64 {
	e.stateMu.Lock()
	defer e.stateMu.Unlock()
	e.inflight[key]++
	return e.generations[key] + e.epochs[programID]
}

// endFlight unregisters a computation. The key's generation is dropped with
// its last flight; entries written before later invalidations are caught by
// their stale flag.
func (e *Engine) endFlight(key string) {
	e.stateMu.Lock()
	defer e.stateMu.Unlock()
	e.inflight[key]--
	if e.inflight[key] <= 0 {
		delete(e.inflight, key)
		delete(e.generations, key)
	}
}

// flightCount reports how many keys have a computation or generation
// tracked. Both maps are empty when the engine is idle.
func (e *Engine) flightCount() (inflight, generations int) {
	e.stateMu.Lock()
	defer e.stateMu.Unlock()
	return len(e.inflight), len(e.generations)
}

//nolint:gocritic // logger passed by value is acceptable for zerolog
func (e *Engine) lookup(ctx context.Context, key, fp string, logger zerolog.Logger) (*PersonalizedContent, bool) {
	entry, ok, err := e.store.Get(ctx, key)
	if err != nil {
		metrics.RecordCacheError(e.cacheType, "get")
		logger.Warn().Err(err).Msg("cache read failed, recomputing")
		return nil, false
	}
	hit := ok && !entry.Stale && entry.Fingerprint == fp
	metrics.RecordCacheLookup(e.cacheType, hit)
	if !hit {
		return nil, false
	}

	var content PersonalizedContent
	if err := json.Unmarshal(entry.Payload, &content); err != nil {
		metrics.RecordCacheError(e.cacheType, "decode")
		logger.Warn().Err(err).Msg("cached content unreadable, recomputing")
		return nil, false
	}
	return &content, true
}

type computeRequest struct {
	userID    string
	programID string
	opts      Options
	now       time.Time
	key       string
	fp        string
	gen       uint64
	cfg       *Config
}

// compute runs one pipeline for a flight. It is detached from the caller's
// cancellation because other callers may be waiting on the same flight.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func (e *Engine) compute(ctx context.Context, req computeRequest, logger zerolog.Logger) *PersonalizedContent {
	req.gen = e.beginFlight(req.key, req.programID)
	defer e.endFlight(req.key)
	e.computations.Add(1)

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), req.cfg.Limits.ComputeTimeout)
	defer cancel()

	start := time.Now()
	content, stageHint, err := e.runPipeline(ctx, &req, logger)
	if err != nil {
		metrics.RecordPipeline("fallback", time.Since(start))
		e.fallbacks.Add(1)
		reason := "pipeline"
		var fetchErr *DataFetchError
		if errors.As(err, &fetchErr) {
			reason = fetchErr.Collaborator
		}
		metrics.RecordFallback(reason)
		logger.Error().Err(err).Str("reason", reason).Msg("personalization failed, serving default content")
		return e.fallbackContent(req.userID, req.programID, stageHint, req.now)
	}
	metrics.RecordPipeline("computed", time.Since(start))

	content.UserID = req.userID
	content.GeneratedAt = req.now

	if req.cfg.Cache.Enabled {
		e.storeResult(ctx, &req, content, logger)
	}
	return content
}

//nolint:gocritic // logger passed by value is acceptable for zerolog
func (e *Engine) storeResult(ctx context.Context, req *computeRequest, content *PersonalizedContent, logger zerolog.Logger) {
	if e.generation(req.key, req.programID) != req.gen {
		logger.Debug().Msg("key invalidated during computation, result not cached")
		return
	}

	payload, err := json.Marshal(content)
	if err != nil {
		e.recordCacheWriteError(&CacheWriteError{Key: req.key, Err: err}, "encode")
		return
	}
	entry := cache.Entry{
		Payload:     payload,
		Fingerprint: req.fp,
		Generation:  req.gen,
		StoredAt:    req.now,
	}
	if ttl := req.cfg.Cache.TTL; ttl > 0 {
		entry.ExpiresAt = time.Now().Add(ttl)
	}
	if err := e.store.Put(ctx, req.key, entry); err != nil {
		e.recordCacheWriteError(&CacheWriteError{Key: req.key, Err: err}, "put")
		return
	}

	// An invalidation between the check above and Put may have marked a
	// missing entry stale; flag the one just written.
	if e.generation(req.key, req.programID) != req.gen {
		if err := e.store.MarkStale(ctx, req.key); err != nil {
			e.recordCacheWriteError(&CacheWriteError{Key: req.key, Err: err}, "mark_stale")
		}
	}
}

func (e *Engine) recordCacheWriteError(err *CacheWriteError, operation string) {
	e.cacheWriteErrors.Add(1)
	metrics.RecordCacheError(e.cacheType, operation)
	e.logger.Warn().Err(err).Str("operation", operation).Msg("cache write failed")
}

// pipelineInputs are the results of the collaborator fetches.
type pipelineInputs struct {
	profile      *UserProfile
	progress     *ProgramProgress
	interactions map[string]ContentInteraction
	stage        *Stage
	rules        []PersonalizationRule
}

// runPipeline fetches inputs and runs evaluate, adjust, score, select and
// format. The returned stage hint lets a fallback pick the right stage.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func (e *Engine) runPipeline(ctx context.Context, req *computeRequest, logger zerolog.Logger) (content *PersonalizedContent, stageHint int, err error) {
	defer func() {
		if r := recover(); r != nil {
			content = nil
			err = fmt.Errorf("pipeline panic: %v", r)
		}
	}()

	in, err := e.fetchInputs(ctx, req.userID, req.programID)
	if in.progress != nil {
		stageHint = in.progress.CurrentStage
	}
	if err != nil {
		return nil, stageHint, err
	}

	evaluator := NewEvaluator(req.cfg.Rules.MatchMode)
	matched := e.matchRules(evaluator, in, req.programID, logger)

	ws := NewWorkingSet(in.stage)
	resolved, err := e.resolveAdditions(ctx, req.programID, ws, matched)
	if err != nil {
		return nil, stageHint, err
	}

	vars := NewTemplateVars(in.profile, in.progress)
	for i := range matched {
		ws.Apply(matched[i].Adjustments, resolved, vars)
	}

	selected := Select(e.scoreWorkingSet(ws, in, req), req.opts)
	content = Format(in.stage, selected, completedIDs(in.interactions))

	logger.Debug().
		Int("rules", len(in.rules)).
		Int("matched", len(matched)).
		Int("stage", in.stage.Index).
		Msg("personalization complete")

	return content, stageHint, nil
}

// fetchInputs issues the collaborator reads concurrently. The stage read
// needs the current stage, so it follows the progress read in one branch.
func (e *Engine) fetchInputs(ctx context.Context, userID, programID string) (*pipelineInputs, error) {
	in := &pipelineInputs{}
	g, gctx := errgroup.WithContext(ctx)

	fetch(g, CollaboratorProfile, func() error {
		profile, err := e.deps.Profiles.GetUserProfile(gctx, userID)
		if err == nil && profile == nil {
			err = ErrNotFound
		}
		if err != nil {
			return &DataFetchError{Collaborator: CollaboratorProfile, Err: err}
		}
		in.profile = profile
		return nil
	})

	fetch(g, CollaboratorProgress, func() error {
		progress, err := e.deps.Progress.GetProgramProgress(gctx, userID, programID)
		if err == nil && progress == nil {
			err = ErrNotFound
		}
		if err != nil {
			return &DataFetchError{Collaborator: CollaboratorProgress, Err: err}
		}
		in.progress = progress

		stageIndex := progress.CurrentStage
		if stageIndex <= 0 {
			stageIndex = 1
		}
		stage, err := e.deps.Content.GetStageContent(gctx, programID, stageIndex)
		if err == nil && stage == nil {
			err = ErrNotFound
		}
		if err != nil {
			return &DataFetchError{Collaborator: CollaboratorStage, Err: err}
		}
		in.stage = stage
		return nil
	})

	fetch(g, CollaboratorInteractions, func() error {
		interactions, err := e.deps.Interactions.GetContentInteractions(gctx, userID, programID)
		if err != nil {
			return &DataFetchError{Collaborator: CollaboratorInteractions, Err: err}
		}
		if interactions == nil {
			interactions = map[string]ContentInteraction{}
		}
		in.interactions = interactions
		return nil
	})

	fetch(g, CollaboratorRules, func() error {
		rules, err := e.deps.Rules.GetPersonalizationRules(gctx, programID)
		if err != nil {
			return &DataFetchError{Collaborator: CollaboratorRules, Err: err}
		}
		in.rules = rules
		return nil
	})

	err := g.Wait()
	return in, err
}

// fetch runs fn in the group, turning a panic into a DataFetchError.
func fetch(g *errgroup.Group, collaborator string, fn func() error) {
	g.Go(func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = &DataFetchError{Collaborator: collaborator, Err: fmt.Errorf("panic: %v", r)}
			}
		}()
		return fn()
	})
}

// matchRules returns the rules whose condition holds, in rule-list order.
// Rules that cannot be evaluated are logged and skipped.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func (e *Engine) matchRules(ev *Evaluator, in *pipelineInputs, programID string, logger zerolog.Logger) []PersonalizationRule {
	matched := make([]PersonalizationRule, 0, len(in.rules))
	for i := range in.rules {
		rule := &in.rules[i]
		ok, err := ev.Evaluate(rule.Condition, in.profile, in.progress)
		if err != nil {
			rerr := &RuleEvaluationError{RuleID: rule.ID, Err: err}
			e.ruleErrors.Add(1)
			metrics.RecordRuleError(programID)
			logger.Warn().Err(rerr).Str("rule_id", rule.ID).Msg("personalization rule skipped")
			continue
		}
		if ok {
			matched = append(matched, *rule)
		}
	}
	return matched
}

// resolveAdditions looks up, in one call, every addContent id of the
// matched rules that the base content does not already hold.
func (e *Engine) resolveAdditions(ctx context.Context, programID string, ws *WorkingSet, matched []PersonalizationRule) (map[string]ContentPlacement, error) {
	var ids []string
	for i := range matched {
		ids = append(ids, matched[i].Adjustments.AddContent...)
	}
	missing := ws.Missing(ids)
	if len(missing) == 0 {
		return nil, nil
	}

	resolved, err := e.deps.Content.LookupContent(ctx, programID, missing)
	if err != nil {
		return nil, &DataFetchError{Collaborator: CollaboratorLookup, Err: err}
	}
	return resolved, nil
}

// scoreWorkingSet scores every item of the working set per section.
func (e *Engine) scoreWorkingSet(ws *WorkingSet, in *pipelineInputs, req *computeRequest) map[Section][]ScoredContentItem {
	items := ws.Items()
	catalog := make([]ContentItem, 0, len(items))
	for _, it := range items {
		if it.Item.StageIndex == 0 && !it.Added {
			it.Item.StageIndex = in.stage.Index
		}
		if interaction, ok := in.interactions[it.Item.ID]; ok && interaction.Completed {
			it.Item.IsCompleted = true
		}
		catalog = append(catalog, it.Item)
	}

	sc := NewScoringContext(in.profile, in.progress, in.interactions, catalog, req.now)
	scorer := NewScorer(req.cfg.Scoring)

	scored := make(map[Section][]ScoredContentItem, len(in.stage.Sections))
	for _, sec := range in.stage.DefinedSections() {
		list := ws.Section(sec)
		out := make([]ScoredContentItem, 0, len(list))
		for _, it := range list {
			out = append(out, scorer.Score(&it.Item, it.Resurfaced, sc))
		}
		scored[sec] = out
	}
	return scored
}

func completedIDs(interactions map[string]ContentInteraction) map[string]bool {
	out := make(map[string]bool, len(interactions))
	for id, interaction := range interactions {
		if interaction.Completed {
			out[id] = true
		}
	}
	return out
}

// fallbackContent renders the static default stage of the program. When no
// default exists for the program a generic stage is used so the result is
// never empty.
func (e *Engine) fallbackContent(userID, programID string, stageIndex int, now time.Time) *PersonalizedContent {
	if stageIndex <= 0 {
		stageIndex = 1
	}

	var stage *Stage
	if e.deps.Defaults != nil {
		if s, ok := e.deps.Defaults.DefaultStage(programID, stageIndex); ok && s != nil {
			stage = s
		}
	}
	if stage == nil {
		stage = genericStage(programID, stageIndex)
	}

	out := FormatBase(stage)
	out.UserID = userID
	out.ProgramID = programID
	out.Fallback = true
	out.GeneratedAt = now
	return out
}

func genericStage(programID string, stageIndex int) *Stage {
	return &Stage{
		ProgramID: programID,
		Index:     stageIndex,
		Title:     "Getting started",
		Sections: map[Section][]ContentItem{
			SectionQuickHelp: {{
				ID:                 "contact-care-team",
				Title:              "Contact your care team",
				Description:        "Questions about your treatment? Your care team is here to help.",
				ContentType:        ContentQuickTip,
				ReadingTimeMinutes: 1,
			}},
		},
	}
}

// fingerprint identifies the inputs, other than collaborator data, that
// shape a result.
func fingerprint(opts *Options, cfg *Config) string {
	var b strings.Builder
	b.WriteString("mode=")
	b.WriteString(string(cfg.Rules.MatchMode))
	b.WriteString(";excl=")
	b.WriteString(strconv.FormatBool(opts.ExcludeCompleted))

	sections := make([]string, 0, len(opts.SectionCaps))
	for sec := range opts.SectionCaps {
		sections = append(sections, string(sec))
	}
	sort.Strings(sections)
	b.WriteString(";caps=")
	for _, sec := range sections {
		b.WriteString(sec)
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(opts.SectionCaps[Section(sec)]))
		b.WriteByte(',')
	}

	fmt.Fprintf(&b, ";exp=%g;ceil=%d;half=%d",
		cfg.Scoring.ExpectedCompletion,
		int64(cfg.Scoring.TimeSpentCeiling),
		int64(cfg.Scoring.RecencyHalfLife))

	return strconv.FormatUint(xxhash.Sum64String(b.String()), 16)
}
