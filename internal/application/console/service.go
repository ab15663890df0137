// Package console is the request orchestrator behind the operator console.
// It owns the run parameters and two independent request slots, one for the
// customer list and one for the analysis result.
package console

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/bryanwahyu/fraudscope/internal/application"
	"github.com/bryanwahyu/fraudscope/internal/domain/analysis"
	"github.com/bryanwahyu/fraudscope/internal/middleware"
)

// Options are the deployment choices that change orchestrator behavior.
type Options struct {
	// CacheToggle exposes the cache switch and sends use_cache with each run.
	CacheToggle bool
	// FenceStaleResponses drops responses superseded by a newer request.
	// When false the last response to arrive wins.
	FenceStaleResponses bool
}

// DefaultOptions exposes the cache toggle and fences stale responses.
func DefaultOptions() Options {
	return Options{CacheToggle: true, FenceStaleResponses: true}
}

// RunParams are the operator's current selections.
type RunParams struct {
	CustomerName string            `json:"customer_name"`
	LLMModel     analysis.LLMModel `json:"llm_model"`
	UseCache     bool              `json:"use_cache"`
}

// DefaultParams is the state after start and after a reset.
func DefaultParams() RunParams {
	return RunParams{LLMModel: analysis.DefaultModel, UseCache: true}
}

// Snapshot is a consistent copy of the orchestrator state.
type Snapshot struct {
	Params    RunParams  `json:"params"`
	Options   Options    `json:"-"`
	Customers SlotStatus `json:"customers"`
	// CustomerList survives failed refreshes and resets.
	CustomerList []string   `json:"customer_list"`
	Analysis     SlotStatus `json:"analysis"`
	// Result is nil unless the analysis slot succeeded.
	Result *analysis.Result `json:"-"`
}

// Loading reports whether either slot has a request in flight.
func (s Snapshot) Loading() bool {
	return s.Customers.Loading() || s.Analysis.Loading()
}

// Service implements the console use cases. It is safe for concurrent use.
type Service struct {
	backend analysis.Backend
	opts    Options
	clock   application.Clock
	log     *zap.Logger

	mu        sync.Mutex
	params    RunParams
	customers slot[[]string]
	analysis  slot[*analysis.Result]

	wg sync.WaitGroup
}

// NewService wires the orchestrator. A nil clock or logger falls back to the
// wall clock and a no-op logger.
func NewService(backend analysis.Backend, opts Options, clock application.Clock, log *zap.Logger) *Service {
	if clock == nil {
		clock = application.SystemClock{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	now := clock.Now()
	return &Service{
		backend:   backend,
		opts:      opts,
		clock:     clock,
		log:       log,
		params:    DefaultParams(),
		customers: slot[[]string]{name: SlotCustomers, state: StateIdle, keepOnStart: true, updatedAt: now},
		analysis:  slot[*analysis.Result]{name: SlotAnalysis, state: StateIdle, updatedAt: now},
	}
}

// Options returns the options the service was built with.
func (s *Service) Options() Options { return s.opts }

// SetParams replaces the run parameters. The model must be one of
// analysis.Models; an empty model keeps the default.
func (s *Service) SetParams(p RunParams) error {
	if p.LLMModel == "" {
		p.LLMModel = analysis.DefaultModel
	}
	m, err := analysis.ParseModel(string(p.LLMModel))
	if err != nil {
		return err
	}
	p.LLMModel = m
	if !s.opts.CacheToggle {
		p.UseCache = true
	}

	s.mu.Lock()
	s.params = p
	s.mu.Unlock()
	return nil
}

// Params returns the current run parameters.
func (s *Service) Params() RunParams {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.params
}

// RefreshCustomers fetches the customer list and waits for the outcome. On
// failure the previous list stays in place and the error is returned.
func (s *Service) RefreshCustomers(ctx context.Context) error {
	id := s.beginCustomers()
	return s.fetchCustomers(ctx, id)
}

// StartCustomers fetches the customer list in the background.
func (s *Service) StartCustomers(ctx context.Context) {
	id := s.beginCustomers()
	ctx = context.WithoutCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		_ = s.fetchCustomers(ctx, id)
	}()
}

// Run issues an analysis with the current parameters and waits for the
// outcome. A blank customer name returns analysis.ErrBlankCustomer without
// touching any state or calling the backend.
func (s *Service) Run(ctx context.Context) error {
	req, err := s.prepareRun()
	if err != nil {
		return err
	}
	id := s.beginAnalysis()
	return s.runAnalysis(ctx, id, req)
}

// StartRun validates the parameters and runs the analysis in the background.
// Validation errors are returned immediately and nothing is started.
func (s *Service) StartRun(ctx context.Context) error {
	req, err := s.prepareRun()
	if err != nil {
		return err
	}
	id := s.beginAnalysis()
	ctx = context.WithoutCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		_ = s.runAnalysis(ctx, id, req)
	}()
	return nil
}

// Reset restores the default parameters and clears the analysis slot. An
// in-flight analysis is invalidated. The customer list is kept, and a pending
// customers error is dismissed.
func (s *Service) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	s.params = DefaultParams()
	s.analysis.clear(now)
	if s.customers.state == StateFailed {
		s.customers.state = StateIdle
		s.customers.err = nil
		s.customers.updatedAt = now
	}
	s.log.Info("console reset")
}

// Snapshot returns a copy of the current state.
func (s *Service) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := make([]string, len(s.customers.value))
	copy(list, s.customers.value)
	return Snapshot{
		Params:       s.params,
		Options:      s.opts,
		Customers:    s.customers.status(),
		CustomerList: list,
		Analysis:     s.analysis.status(),
		Result:       s.analysis.value,
	}
}

// Wait blocks until every background request has finished.
func (s *Service) Wait() {
	s.wg.Wait()
}

func (s *Service) prepareRun() (analysis.RunRequest, error) {
	p := s.Params()
	req := analysis.RunRequest{CustomerName: p.CustomerName, LLMModel: p.LLMModel}
	if s.opts.CacheToggle {
		useCache := p.UseCache
		req.UseCache = &useCache
	}
	if err := req.Validate(); err != nil {
		if !errors.Is(err, analysis.ErrBlankCustomer) {
			s.log.Warn("run request rejected", zap.Error(err))
		}
		return analysis.RunRequest{}, err
	}
	return req, nil
}

func (s *Service) beginCustomers() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.customers.begin(s.clock.Now())
}

func (s *Service) beginAnalysis() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.analysis.begin(s.clock.Now())
}

func (s *Service) fetchCustomers(ctx context.Context, id uint64) error {
	log := s.log.With(zap.String("slot", SlotCustomers), zap.Uint64("request_id", id))

	names, err := s.backend.Customers(ctx)

	s.mu.Lock()
	applied := s.customers.finish(id, names, err, s.clock.Now(), s.opts.FenceStaleResponses)
	s.mu.Unlock()

	s.report(log, SlotCustomers, applied, err, zap.Int("customers", len(names)))
	return err
}

func (s *Service) runAnalysis(ctx context.Context, id uint64, req analysis.RunRequest) error {
	log := s.log.With(
		zap.String("slot", SlotAnalysis),
		zap.Uint64("request_id", id),
		zap.String("customer", req.CustomerName),
		zap.String("llm_model", string(req.LLMModel)),
	)
	log.Info("analysis started")

	middleware.IncrementRunsInFlight()
	raw, err := s.backend.Run(ctx, req)
	middleware.DecrementRunsInFlight()

	var res *analysis.Result
	if err == nil {
		res = analysis.Normalize(raw)
	}

	s.mu.Lock()
	applied := s.analysis.finish(id, res, err, s.clock.Now(), s.opts.FenceStaleResponses)
	s.mu.Unlock()

	s.report(log, SlotAnalysis, applied, err)
	return err
}

func (s *Service) report(log *zap.Logger, slotName string, applied bool, err error, fields ...zap.Field) {
	switch {
	case !applied:
		middleware.IncrementStaleResponses(slotName)
		log.Info("stale response discarded", zap.Error(err))
	case err != nil:
		log.Warn("request failed", zap.Error(err))
	default:
		log.Info("request succeeded", fields...)
	}
}
