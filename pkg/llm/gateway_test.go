package llm

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nsundt-ai/evaluator-v16/pkg/config"
	"github.com/nsundt-ai/evaluator-v16/pkg/eventlog"
	"github.com/nsundt-ai/evaluator-v16/pkg/llm/providers"
)

// fakeProvider is a scriptable adapter for gateway tests.
type fakeProvider struct {
	name      string
	available bool
	result    *providers.Result
	err       error
	calls     int
}

func (f *fakeProvider) Name() string    { return f.name }
func (f *fakeProvider) Available() bool { return f.available }

func (f *fakeProvider) Generate(_ context.Context, _, _ string, _ providers.CallOptions) (*providers.Result, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

// readProviderEvents decodes the structured gateway events from the
// evaluation stream.
func readProviderEvents(t *testing.T, logDir string) []eventlog.EvaluationEvent {
	t.Helper()
	f, err := os.Open(filepath.Join(logDir, "evaluations.jsonl"))
	require.NoError(t, err)
	defer f.Close()

	var events []eventlog.EvaluationEvent
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var e eventlog.EvaluationEvent
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &e))
		events = append(events, e)
	}
	require.NoError(t, scanner.Err())
	return events
}

func newTestGateway(t *testing.T, adapters ...providers.Provider) (*Gateway, string) {
	t.Helper()
	cfg, err := config.Initialize(t.TempDir())
	require.NoError(t, err)
	logDir := t.TempDir()
	events, err := eventlog.New(logDir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = events.Close() })
	return NewGateway(cfg, events, adapters...), logDir
}

func TestGateway_FallbackOrdering(t *testing.T) {
	// Default chain is openai, anthropic, google. O throws, A succeeds.
	o := &fakeProvider{name: "openai", available: true, err: errors.New("rate limited")}
	a := &fakeProvider{name: "anthropic", available: true, result: &providers.Result{
		Content: `{"ok": true}`, Model: "claude-sonnet-4", InputTokens: 100, OutputTokens: 50,
	}}
	g := &fakeProvider{name: "google", available: true, result: &providers.Result{Content: `{}`}}

	gw, logDir := newTestGateway(t, o, a, g)
	resp := gw.Call(context.Background(), Request{UserPrompt: "evaluate", Phase: "combined_evaluation"})

	require.True(t, resp.Success)
	assert.Equal(t, "anthropic", resp.Provider)
	assert.Equal(t, `{"ok": true}`, resp.Content)
	assert.Equal(t, 1, o.calls, "failed provider called exactly once")
	assert.Equal(t, 1, a.calls)
	assert.Equal(t, 0, g.calls, "chain stops at the first success")

	// Structured event stream: one provider_failed for O, then one
	// fallback_success for A.
	events := readProviderEvents(t, logDir)
	require.Len(t, events, 2)
	assert.Equal(t, eventlog.EventProviderFailed, events[0].EventType)
	assert.Equal(t, "openai", events[0].Provider)
	assert.Equal(t, "combined_evaluation", events[0].PhaseName)
	assert.False(t, events[0].Success)
	assert.Equal(t, eventlog.EventFallbackSuccess, events[1].EventType)
	assert.Equal(t, "anthropic", events[1].Provider)
	assert.True(t, events[1].Success)
}

func TestGateway_AllProvidersFail(t *testing.T) {
	o := &fakeProvider{name: "openai", available: true, err: errors.New("timeout")}
	a := &fakeProvider{name: "anthropic", available: true, err: errors.New("overloaded")}
	g := &fakeProvider{name: "google", available: true, err: providers.ErrSafetyBlocked}

	gw, logDir := newTestGateway(t, o, a, g)
	resp := gw.Call(context.Background(), Request{UserPrompt: "evaluate"})

	require.False(t, resp.Success)
	assert.Equal(t, "none", resp.Provider)
	assert.Contains(t, resp.Error, "all LLM providers failed")
	assert.Contains(t, resp.Error, "safety")
	assert.Equal(t, 1, o.calls)
	assert.Equal(t, 1, a.calls)
	assert.Equal(t, 1, g.calls)

	// One provider_failed per provider, no success event.
	events := readProviderEvents(t, logDir)
	require.Len(t, events, 3)
	for i, want := range []string{"openai", "anthropic", "google"} {
		assert.Equal(t, eventlog.EventProviderFailed, events[i].EventType)
		assert.Equal(t, want, events[i].Provider)
	}

	// The aggregate failure lands in the error stream.
	errLog, err := os.ReadFile(filepath.Join(logDir, "errors.jsonl"))
	require.NoError(t, err)
	assert.Contains(t, string(errLog), "llm_aggregate")
}

func TestGateway_SkipsUnavailableProviders(t *testing.T) {
	o := &fakeProvider{name: "openai", available: false}
	a := &fakeProvider{name: "anthropic", available: true, result: &providers.Result{
		Content: `{"ok": true}`, Model: "claude-sonnet-4",
	}}

	gw, logDir := newTestGateway(t, o, a)
	resp := gw.Call(context.Background(), Request{UserPrompt: "evaluate"})

	require.True(t, resp.Success)
	assert.Equal(t, "anthropic", resp.Provider)
	assert.Equal(t, 0, o.calls, "unavailable provider never invoked")

	events := readProviderEvents(t, logDir)
	require.Len(t, events, 2)
	assert.Equal(t, eventlog.EventProviderUnavailable, events[0].EventType)
	assert.Equal(t, "openai", events[0].Provider)
	assert.Equal(t, eventlog.EventFallbackSuccess, events[1].EventType)
	assert.Equal(t, "anthropic", events[1].Provider)
}

func TestGateway_EmptyContentTriggersFallback(t *testing.T) {
	o := &fakeProvider{name: "openai", available: true, result: &providers.Result{Content: "```json\n```"}}
	a := &fakeProvider{name: "anthropic", available: true, result: &providers.Result{Content: `{"score": 1}`}}

	gw, _ := newTestGateway(t, o, a)
	resp := gw.Call(context.Background(), Request{UserPrompt: "evaluate"})

	require.True(t, resp.Success)
	assert.Equal(t, "anthropic", resp.Provider, "empty post-sanitization content advances the chain")
}

func TestGateway_CostEstimation(t *testing.T) {
	t.Run("reported tokens", func(t *testing.T) {
		o := &fakeProvider{name: "openai", available: true, result: &providers.Result{
			Content: `{}`, InputTokens: 2000, OutputTokens: 1000,
		}}
		gw, logDir := newTestGateway(t, o)
		resp := gw.Call(context.Background(), Request{UserPrompt: "x"})
		require.True(t, resp.Success)
		assert.Equal(t, 3000, resp.TokensUsed)
		// 2 * 0.00015 + 1 * 0.0006 at the default openai rates.
		assert.InDelta(t, 0.0009, resp.CostEstimate, 1e-9)

		// The chain head succeeding emits primary_success.
		events := readProviderEvents(t, logDir)
		require.Len(t, events, 1)
		assert.Equal(t, eventlog.EventPrimarySuccess, events[0].EventType)
	})

	t.Run("missing tokens use the 1000/500 estimate", func(t *testing.T) {
		g := &fakeProvider{name: "google", available: true, result: &providers.Result{Content: `{}`}}
		gw, _ := newTestGateway(t, g)
		resp := gw.Call(context.Background(), Request{UserPrompt: "x"})
		require.True(t, resp.Success)
		assert.Zero(t, resp.TokensUsed)
		assert.InDelta(t, 1.0*0.00015+0.5*0.0006, resp.CostEstimate, 1e-9)
	})
}

func TestGateway_AvailableProviders(t *testing.T) {
	o := &fakeProvider{name: "openai", available: false}
	a := &fakeProvider{name: "anthropic", available: true}
	gw, _ := newTestGateway(t, o, a)
	assert.Equal(t, []string{"anthropic"}, gw.AvailableProviders())
}
