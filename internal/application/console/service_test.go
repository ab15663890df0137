package console

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/bryanwahyu/fraudscope/internal/application"
	"github.com/bryanwahyu/fraudscope/internal/domain/analysis"
	"github.com/bryanwahyu/fraudscope/internal/jsonx"
)

type fakeBackend struct {
	mu             sync.Mutex
	customersCalls int
	runCalls       int
	runRequests    []analysis.RunRequest

	customersFn func(ctx context.Context) ([]string, error)
	runFn       func(ctx context.Context, req analysis.RunRequest) (any, error)
}

func (f *fakeBackend) Customers(ctx context.Context) ([]string, error) {
	f.mu.Lock()
	f.customersCalls++
	fn := f.customersFn
	f.mu.Unlock()
	if fn == nil {
		return []string{}, nil
	}
	return fn(ctx)
}

func (f *fakeBackend) Run(ctx context.Context, req analysis.RunRequest) (any, error) {
	f.mu.Lock()
	f.runCalls++
	f.runRequests = append(f.runRequests, req)
	fn := f.runFn
	f.mu.Unlock()
	if fn == nil {
		return jsonx.NewObject(), nil
	}
	return fn(ctx, req)
}

func (f *fakeBackend) calls() (customers, runs int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.customersCalls, f.runCalls
}

func routeResult(t *testing.T, route string) any {
	t.Helper()
	v, err := jsonx.Unmarshal([]byte(`{"draft":{"route":"` + route + `"}}`))
	require.NoError(t, err)
	return v
}

func resultRoute(t *testing.T, res *analysis.Result) string {
	t.Helper()
	require.NotNil(t, res)
	d, ok := res.Draft.Get()
	require.True(t, ok)
	r, _ := d.Route.Get()
	return r
}

func newTestService(b analysis.Backend, opts Options) *Service {
	clock := application.NewManualClock(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))
	return NewService(b, opts, clock, nil)
}

func TestService_DefaultsAndReset(t *testing.T) {
	b := &fakeBackend{runFn: func(ctx context.Context, req analysis.RunRequest) (any, error) {
		return routeResult(t, "STR"), nil
	}}
	svc := newTestService(b, DefaultOptions())

	assert.Equal(t, RunParams{LLMModel: analysis.ModelOllama, UseCache: true}, svc.Params())

	require.NoError(t, svc.SetParams(RunParams{CustomerName: "정우성", LLMModel: analysis.ModelGPT5, UseCache: false}))
	require.NoError(t, svc.Run(context.Background()))
	snap := svc.Snapshot()
	assert.Equal(t, StateSuccess, snap.Analysis.State)
	assert.Equal(t, "STR", resultRoute(t, snap.Result))

	svc.Reset()
	snap = svc.Snapshot()
	assert.Equal(t, DefaultParams(), snap.Params)
	assert.Equal(t, StateIdle, snap.Analysis.State)
	assert.Nil(t, snap.Result)
	assert.Empty(t, snap.Analysis.Error)
}

func TestService_BlankCustomerIssuesNoRequest(t *testing.T) {
	b := &fakeBackend{}
	svc := newTestService(b, DefaultOptions())

	for _, name := range []string{"", "   ", "\t\n"} {
		require.NoError(t, svc.SetParams(RunParams{CustomerName: name}))
		assert.ErrorIs(t, svc.Run(context.Background()), analysis.ErrBlankCustomer)
		assert.ErrorIs(t, svc.StartRun(context.Background()), analysis.ErrBlankCustomer)
	}
	svc.Wait()

	_, runs := b.calls()
	assert.Zero(t, runs)
	snap := svc.Snapshot()
	assert.Equal(t, StateIdle, snap.Analysis.State, "blank name raises no banner")
	assert.Empty(t, snap.Analysis.Error)
}

func TestService_SetParamsRejectsUnknownModel(t *testing.T) {
	svc := newTestService(&fakeBackend{}, DefaultOptions())
	err := svc.SetParams(RunParams{CustomerName: "a", LLMModel: "llama"})
	assert.ErrorIs(t, err, analysis.ErrInvalidRequest)
	assert.Equal(t, analysis.ModelOllama, svc.Params().LLMModel)
}

func TestService_UseCacheOnlyWithToggle(t *testing.T) {
	for _, toggle := range []bool{true, false} {
		b := &fakeBackend{}
		svc := newTestService(b, Options{CacheToggle: toggle, FenceStaleResponses: true})
		require.NoError(t, svc.SetParams(RunParams{CustomerName: "a", UseCache: false}))
		require.NoError(t, svc.Run(context.Background()))

		require.Len(t, b.runRequests, 1)
		req := b.runRequests[0]
		if toggle {
			require.NotNil(t, req.UseCache)
			assert.False(t, *req.UseCache)
		} else {
			assert.Nil(t, req.UseCache)
		}
		assert.Equal(t, analysis.ModelOllama, req.LLMModel)
	}
}

func TestService_CustomersServerError(t *testing.T) {
	fail := false
	b := &fakeBackend{customersFn: func(ctx context.Context) ([]string, error) {
		if fail {
			return nil, &analysis.ProtocolError{StatusCode: 500, StatusText: "Internal Server Error", Body: "internal error"}
		}
		return []string{"정우성", "김민지"}, nil
	}}
	svc := newTestService(b, DefaultOptions())

	require.NoError(t, svc.RefreshCustomers(context.Background()))
	fail = true
	err := svc.RefreshCustomers(context.Background())
	require.Error(t, err)

	snap := svc.Snapshot()
	assert.Equal(t, StateFailed, snap.Customers.State)
	assert.Contains(t, snap.Customers.Error, "500")
	assert.Contains(t, snap.Customers.Error, "internal error")
	assert.Equal(t, []string{"정우성", "김민지"}, snap.CustomerList, "list stays unchanged")
}

func TestService_CustomersErrorDoesNotTouchAnalysis(t *testing.T) {
	b := &fakeBackend{
		customersFn: func(ctx context.Context) ([]string, error) {
			return nil, &analysis.TransportError{Op: "GET /customers", Err: errors.New("connection refused")}
		},
		runFn: func(ctx context.Context, req analysis.RunRequest) (any, error) {
			return routeResult(t, "KEEP"), nil
		},
	}
	svc := newTestService(b, DefaultOptions())
	require.NoError(t, svc.SetParams(RunParams{CustomerName: "a"}))
	require.NoError(t, svc.Run(context.Background()))
	require.Error(t, svc.RefreshCustomers(context.Background()))

	snap := svc.Snapshot()
	assert.Equal(t, "connection refused", snap.Customers.Error)
	assert.Equal(t, StateSuccess, snap.Analysis.State)
	assert.Equal(t, "KEEP", resultRoute(t, snap.Result))
}

func TestService_RunFailureClearsPreviousResult(t *testing.T) {
	fail := false
	b := &fakeBackend{runFn: func(ctx context.Context, req analysis.RunRequest) (any, error) {
		if fail {
			return nil, &analysis.ProtocolError{StatusCode: 502, StatusText: "Bad Gateway", Body: "upstream"}
		}
		return routeResult(t, "STR"), nil
	}}
	svc := newTestService(b, DefaultOptions())
	require.NoError(t, svc.SetParams(RunParams{CustomerName: "a"}))
	require.NoError(t, svc.Run(context.Background()))

	fail = true
	require.Error(t, svc.Run(context.Background()))
	snap := svc.Snapshot()
	assert.Equal(t, StateFailed, snap.Analysis.State)
	assert.Equal(t, "502 Bad Gateway: upstream", snap.Analysis.Error)
	assert.Nil(t, snap.Result)
}

// gatedBackend blocks each run until the test releases that customer.
type gatedBackend struct {
	fakeBackend
	gates map[string]chan struct{}
}

func newGatedBackend(t *testing.T, names ...string) *gatedBackend {
	g := &gatedBackend{gates: make(map[string]chan struct{})}
	for _, n := range names {
		g.gates[n] = make(chan struct{})
	}
	g.runFn = func(ctx context.Context, req analysis.RunRequest) (any, error) {
		<-g.gates[req.CustomerName]
		return routeResult(t, req.CustomerName), nil
	}
	return g
}

func startRunFor(t *testing.T, svc *Service, name string) {
	t.Helper()
	require.NoError(t, svc.SetParams(RunParams{CustomerName: name}))
	require.NoError(t, svc.StartRun(context.Background()))
}

func waitForRuns(t *testing.T, b *gatedBackend, n int) {
	t.Helper()
	require.Eventually(t, func() bool {
		_, runs := b.calls()
		return runs == n
	}, time.Second, 5*time.Millisecond)
}

func TestService_StaleResponseIsDiscarded(t *testing.T) {
	defer goleak.VerifyNone(t)

	b := newGatedBackend(t, "old", "new")
	svc := newTestService(b, Options{CacheToggle: true, FenceStaleResponses: true})

	startRunFor(t, svc, "old")
	startRunFor(t, svc, "new")
	waitForRuns(t, b, 2)

	close(b.gates["new"])
	require.Eventually(t, func() bool { return svc.Snapshot().Analysis.State == StateSuccess }, time.Second, 5*time.Millisecond)
	close(b.gates["old"])
	svc.Wait()

	snap := svc.Snapshot()
	assert.Equal(t, "new", resultRoute(t, snap.Result))
	assert.Equal(t, uint64(2), snap.Analysis.RequestID)
}

func TestService_LastWriteWinsWithoutFencing(t *testing.T) {
	b := newGatedBackend(t, "old", "new")
	svc := newTestService(b, Options{CacheToggle: true, FenceStaleResponses: false})

	startRunFor(t, svc, "old")
	startRunFor(t, svc, "new")
	waitForRuns(t, b, 2)

	close(b.gates["new"])
	require.Eventually(t, func() bool { return svc.Snapshot().Analysis.State == StateSuccess }, time.Second, 5*time.Millisecond)
	close(b.gates["old"])
	svc.Wait()

	assert.Equal(t, "old", resultRoute(t, svc.Snapshot().Result))
}

func TestService_ResetInvalidatesInFlightRun(t *testing.T) {
	defer goleak.VerifyNone(t)

	b := newGatedBackend(t, "a")
	svc := newTestService(b, DefaultOptions())

	startRunFor(t, svc, "a")
	waitForRuns(t, b, 1)
	assert.True(t, svc.Snapshot().Loading())

	svc.Reset()
	close(b.gates["a"])
	svc.Wait()

	snap := svc.Snapshot()
	assert.Equal(t, StateIdle, snap.Analysis.State)
	assert.Nil(t, snap.Result)
}

func TestService_StartCustomersOutlivesCallerContext(t *testing.T) {
	defer goleak.VerifyNone(t)

	release := make(chan struct{})
	b := &fakeBackend{customersFn: func(ctx context.Context) ([]string, error) {
		<-release
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return []string{"a"}, nil
	}}
	svc := newTestService(b, DefaultOptions())

	ctx, cancel := context.WithCancel(context.Background())
	svc.StartCustomers(ctx)
	assert.Equal(t, StateLoading, svc.Snapshot().Customers.State)
	cancel()
	close(release)
	svc.Wait()

	snap := svc.Snapshot()
	assert.Equal(t, StateSuccess, snap.Customers.State)
	assert.Equal(t, []string{"a"}, snap.CustomerList)
}
