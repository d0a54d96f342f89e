// Package pipeline orchestrates one recommendation run: query filtering,
// geocoding, merchant discovery, discount resolution, ranking, retrieval
// context building, and answer generation. External stage failures degrade
// the run instead of failing it; only query rejection returns success=false.
package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/nearbite/nearbite/internal/answer"
	"github.com/nearbite/nearbite/internal/benefit"
	"github.com/nearbite/nearbite/internal/catalog"
	"github.com/nearbite/nearbite/internal/config"
	"github.com/nearbite/nearbite/internal/discovery"
	"github.com/nearbite/nearbite/internal/geocode"
	"github.com/nearbite/nearbite/internal/model"
	"github.com/nearbite/nearbite/internal/monitoring"
	"github.com/nearbite/nearbite/internal/queryfilter"
	"github.com/nearbite/nearbite/internal/rank"
	"github.com/nearbite/nearbite/internal/retrieval"
	"github.com/nearbite/nearbite/internal/runlog"
)

// Stage names as they appear in diagnostics and the run log.
const (
	stageFilter   = "filter"
	stageGeocode  = "geocode"
	stageDiscover = "discovery"
	stageResolve  = "resolve"
	stageRank     = "rank"
	stageContext  = "context"
	stageAnswer   = "answer"
)

// Options fixes per-pipeline behavior. The variant is the default for
// requests that do not name one.
type Options struct {
	Variant         model.Variant
	TopK            int
	ReferenceAmount int64
	Channel         string

	GeocodeTimeout  time.Duration
	DiscoverTimeout time.Duration
	ResolveTimeout  time.Duration
	RankTimeout     time.Duration
	ContextTimeout  time.Duration
}

// OptionsFromConfig converts the config block, applying the baseline variant.
func OptionsFromConfig(cfg config.PipelineConfig, topK int) Options {
	return Options{
		Variant:         model.VariantBaseline,
		TopK:            topK,
		ReferenceAmount: cfg.ReferenceAmount,
		Channel:         cfg.Channel,
		GeocodeTimeout:  time.Duration(cfg.GeocodeTimeoutMS) * time.Millisecond,
		DiscoverTimeout: time.Duration(cfg.DiscoverTimeoutMS) * time.Millisecond,
		ResolveTimeout:  time.Duration(cfg.ResolveTimeoutMS) * time.Millisecond,
		RankTimeout:     time.Duration(cfg.RankTimeoutMS) * time.Millisecond,
		ContextTimeout:  time.Duration(cfg.ContextTimeoutMS) * time.Millisecond,
	}
}

// Pipeline wires the stages together. Every collaborator except the finder
// may be nil; nil collaborators degrade their stage instead of panicking.
type Pipeline struct {
	extractor queryfilter.Extractor
	geocoder  *geocode.Resolver
	finder    *discovery.Finder
	resolver  *catalog.Resolver
	generator *answer.Generator
	runs      runlog.Store
	metrics   *monitoring.Metrics
	opts      Options
}

func New(
	extractor queryfilter.Extractor,
	geocoder *geocode.Resolver,
	finder *discovery.Finder,
	resolver *catalog.Resolver,
	generator *answer.Generator,
	runs runlog.Store,
	metrics *monitoring.Metrics,
	opts Options,
) *Pipeline {
	if runs == nil {
		runs = runlog.Nop{}
	}
	if metrics == nil {
		metrics = monitoring.NewMetrics()
	}
	return &Pipeline{
		extractor: extractor,
		geocoder:  geocoder,
		finder:    finder,
		resolver:  resolver,
		generator: generator,
		runs:      runs,
		metrics:   metrics,
		opts:      opts,
	}
}

// Run executes one recommendation request end to end. It always returns a
// response; degraded stages are reported in diagnostics.
func (p *Pipeline) Run(ctx context.Context, req model.RecommendRequest) *model.RecommendResponse {
	t := &tracker{}
	run := p.startRun(ctx, req)

	resp := p.run(ctx, req, t, run)

	resp.Diagnostics.Degraded = t.degraded
	p.finishRun(ctx, run, t, resp)
	return resp
}

func (p *Pipeline) run(ctx context.Context, req model.RecommendRequest, t *tracker, run *model.Run) *model.RecommendResponse {
	// Filter: sanitize, validate, classify.
	text := queryfilter.Sanitize(req.UserQuery)
	profile := req.UserProfile
	profile.Normalize()

	var keywords model.Keywords
	err := t.stage(ctx, stageFilter, 0, func(sctx context.Context) error {
		if res := queryfilter.Validate(text, profile); !res.OK {
			return rejectionError{reason: res.Reason}
		}
		if verr := profile.Validate(); verr != nil {
			return rejectionError{reason: verr.Error()}
		}
		if p.extractor != nil {
			kw, err := p.extractor.Extract(sctx, text)
			if err != nil {
				return err
			}
			keywords = kw
		}
		return nil
	})
	if rej, ok := err.(rejectionError); ok {
		return p.rejected(rej.reason)
	}
	if err != nil {
		// Classification failed; discovery falls back to the generic query.
		t.degrade(stageFilter)
	}
	t.annotate(map[string]any{"place_type": keywords.PlaceType, "location": keywords.Location})
	p.advance(ctx, run, model.StateFiltered)

	// Geocode the location phrase, falling back to the user's position.
	var coords model.Coordinates
	_ = t.stage(ctx, stageGeocode, p.opts.GeocodeTimeout, func(sctx context.Context) error {
		if p.geocoder == nil {
			coords = fallbackCoords(req)
			return nil
		}
		coords = p.geocoder.Resolve(sctx, keywords.Location, fallbackCoords(req))
		return nil
	})
	if coords == (model.Coordinates{}) {
		// No position at all: nothing to discover around.
		t.degrade(stageGeocode)
		t.skip(stageDiscover, stageResolve, stageRank)
		p.advance(ctx, run, model.StateGeocoded)
		return p.emptyResult(ctx, req, t, run, profile, text)
	}
	p.advance(ctx, run, model.StateGeocoded)

	// Discover nearby merchants.
	var found discovery.Result
	err = t.stage(ctx, stageDiscover, p.opts.DiscoverTimeout, func(sctx context.Context) error {
		var derr error
		found, derr = p.finder.Discover(sctx, coords.Lat, coords.Lon, keywords.PlaceType, keywords.Attributes)
		return derr
	})
	if err != nil || !found.Success {
		t.degrade(stageDiscover)
		t.skip(stageResolve, stageRank)
		p.advance(ctx, run, model.StateDiscovered)
		return p.emptyResult(ctx, req, t, run, profile, text)
	}
	t.annotate(map[string]any{"candidates": len(found.Merchants)})
	p.advance(ctx, run, model.StateDiscovered)

	// Resolve discount programs per merchant. Channel and order-amount
	// constraints are not applied here; the listing keeps every parsed
	// program and the ranker scopes them to scoring.
	resolved := map[string]catalog.MerchantDiscounts{}
	_ = t.stage(ctx, stageResolve, p.opts.ResolveTimeout, func(sctx context.Context) error {
		if p.resolver == nil {
			return nil
		}
		resolved = p.resolver.Resolve(sctx, profile, merchantNames(found.Merchants))
		return nil
	})
	if p.resolver == nil || allFailed(resolved) {
		t.degrade(stageResolve)
	}
	p.advance(ctx, run, model.StateResolved)

	// Rank.
	var lists rank.Lists
	_ = t.stage(ctx, stageRank, p.opts.RankTimeout, func(context.Context) error {
		lists = rank.Rank(rank.Input{
			Merchants:       found.Merchants,
			Discounts:       catalog.DiscountsByName(resolved),
			Profile:         profile,
			ReferenceAmount: p.opts.ReferenceAmount,
			Eval: &benefit.EvalContext{
				Now:         time.Now(),
				Channel:     p.opts.Channel,
				OrderAmount: p.opts.ReferenceAmount,
			},
		})
		return nil
	})
	p.advance(ctx, run, model.StateRanked)

	// Build the retrieval context over the ranked candidates.
	builder := retrieval.NewBuilder(p.variant(req), p.opts.TopK)
	session := sessionID(req)
	var out retrieval.Output
	_ = t.stage(ctx, stageContext, p.opts.ContextTimeout, func(context.Context) error {
		builder.Index(session, buildDocuments(found.Merchants, resolved, lists))
		out = builder.Build(session, text, profile)
		return nil
	})
	defer builder.ClearSession(session)
	p.advance(ctx, run, model.StateContextBuilt)

	answerText := p.generateAnswer(ctx, t, out)

	return &model.RecommendResponse{
		Success: true,
		Merchants: model.MerchantLists{
			ByDiscount: lists.ByDiscount,
			ByDistance: lists.ByDistance,
		},
		Retrieval: model.RetrievalBlock{
			TopK:           toScoredDocs(out.TopK),
			LLMContext:     out.LLMContext,
			FallbackAnswer: out.FallbackAnswer,
		},
		Answer:      answerText,
		Diagnostics: model.Diagnostics{Stage: string(model.StateAnswered)},
	}
}

// emptyResult builds the success-with-empty-lists response used when
// discovery found nothing or there was no position to search around.
func (p *Pipeline) emptyResult(ctx context.Context, req model.RecommendRequest, t *tracker, run *model.Run, profile *model.UserProfile, text string) *model.RecommendResponse {
	builder := retrieval.NewBuilder(p.variant(req), p.opts.TopK)
	session := sessionID(req)
	var out retrieval.Output
	_ = t.stage(ctx, stageContext, p.opts.ContextTimeout, func(context.Context) error {
		out = builder.Build(session, text, profile)
		return nil
	})
	defer builder.ClearSession(session)

	answerText := p.generateAnswer(ctx, t, out)

	return &model.RecommendResponse{
		Success:   true,
		Merchants: model.MerchantLists{ByDiscount: []model.RankedEntry{}, ByDistance: []model.RankedEntry{}},
		Retrieval: model.RetrievalBlock{
			TopK:           []model.ScoredDoc{},
			LLMContext:     out.LLMContext,
			FallbackAnswer: out.FallbackAnswer,
		},
		Answer:      answerText,
		Diagnostics: model.Diagnostics{Stage: string(model.StateDegraded)},
	}
}

func (p *Pipeline) generateAnswer(ctx context.Context, t *tracker, out retrieval.Output) string {
	if p.generator == nil || !p.generator.Enabled() {
		t.skip(stageAnswer)
		return out.FallbackAnswer
	}
	var answerText string
	_ = t.stage(ctx, stageAnswer, 0, func(sctx context.Context) error {
		answerText = p.generator.Generate(sctx, out.LLMContext, out.FallbackAnswer)
		return nil
	})
	if answerText == out.FallbackAnswer && out.LLMContext != "" {
		t.degrade(stageAnswer)
	}
	return answerText
}

func (p *Pipeline) rejected(reason string) *model.RecommendResponse {
	return &model.RecommendResponse{
		Success:   false,
		Message:   reason,
		Merchants: model.MerchantLists{ByDiscount: []model.RankedEntry{}, ByDistance: []model.RankedEntry{}},
		Retrieval: model.RetrievalBlock{TopK: []model.ScoredDoc{}},
		Diagnostics: model.Diagnostics{
			Stage: string(model.StateRejected),
		},
	}
}

func (p *Pipeline) variant(req model.RecommendRequest) model.Variant {
	if req.Variant != "" {
		return req.Variant
	}
	if p.opts.Variant != "" {
		return p.opts.Variant
	}
	return model.VariantBaseline
}

// startRun records the run; a failing run log never blocks the request.
func (p *Pipeline) startRun(ctx context.Context, req model.RecommendRequest) *model.Run {
	run, err := p.runs.CreateRun(ctx, req.UserQuery, req.SessionID)
	if err != nil {
		zap.L().Warn("pipeline: create run failed", zap.Error(err))
		return nil
	}
	return run
}

func (p *Pipeline) advance(ctx context.Context, run *model.Run, state model.RunState) {
	if run == nil || run.ID == "" {
		return
	}
	if err := p.runs.UpdateState(ctx, run.ID, state); err != nil {
		zap.L().Warn("pipeline: update run state failed", zap.Error(err))
	}
}

func (p *Pipeline) finishRun(ctx context.Context, run *model.Run, t *tracker, resp *model.RecommendResponse) {
	state := finalState(resp, t)
	resp.Diagnostics.Stage = string(state)

	p.metrics.RecordRun(state, t.degraded)
	for _, sr := range t.stages {
		p.metrics.RecordStage(sr)
	}

	if run == nil || run.ID == "" {
		return
	}
	result := &model.RunResult{
		Merchants: len(resp.Merchants.ByDistance),
		Degraded:  t.degraded,
		Stages:    t.stages,
		Answer:    resp.Answer,
	}
	if err := p.runs.FinishRun(ctx, run.ID, state, result); err != nil {
		zap.L().Warn("pipeline: finish run failed", zap.Error(err))
	}
}

func finalState(resp *model.RecommendResponse, t *tracker) model.RunState {
	switch {
	case !resp.Success:
		return model.StateRejected
	case len(t.degraded) > 0:
		return model.StateDegraded
	default:
		return model.StateAnswered
	}
}

// rejectionError carries the user-facing rejection reason out of the
// filter stage.
type rejectionError struct{ reason string }

func (e rejectionError) Error() string { return e.reason }

func fallbackCoords(req model.RecommendRequest) model.Coordinates {
	if req.Latitude != nil && req.Longitude != nil {
		return model.Coordinates{Lat: *req.Latitude, Lon: *req.Longitude}
	}
	if req.UserProfile != nil && req.UserProfile.Coords != nil {
		return *req.UserProfile.Coords
	}
	return model.Coordinates{}
}

func sessionID(req model.RecommendRequest) string {
	if req.SessionID != "" {
		return req.SessionID
	}
	return retrieval.DefaultSession
}

func merchantNames(merchants []model.Merchant) []string {
	names := make([]string, len(merchants))
	for i, m := range merchants {
		names[i] = m.Name
	}
	return names
}

func allFailed(resolved map[string]catalog.MerchantDiscounts) bool {
	if len(resolved) == 0 {
		return false
	}
	for _, md := range resolved {
		if md.Err == "" {
			return false
		}
	}
	return true
}

func toScoredDocs(top []retrieval.ScoredDocument) []model.ScoredDoc {
	out := make([]model.ScoredDoc, len(top))
	for i, d := range top {
		out[i] = model.ScoredDoc{
			DocID:     d.DocID,
			StoreID:   d.Metadata.StoreID,
			StoreName: d.Metadata.StoreName,
			Score:     d.Score,
			Text:      d.Text,
		}
	}
	return out
}
