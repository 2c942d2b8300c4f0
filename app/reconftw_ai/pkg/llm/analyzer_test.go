package llm

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/iWorld-y/reconftw_ai/app/reconftw_ai/pkg/config"
	"github.com/iWorld-y/reconftw_ai/app/reconftw_ai/pkg/model"
	"github.com/iWorld-y/reconftw_ai/app/reconftw_ai/pkg/prompt"
)

// fakeGenerator 记录调用次数与收到的 Prompt
type fakeGenerator struct {
	calls   atomic.Int32
	mu      sync.Mutex
	prompts []string
	models  []string

	reply string
	err   error
	panic bool
}

func (f *fakeGenerator) Generate(ctx context.Context, modelID, p string) (string, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.prompts = append(f.prompts, p)
	f.models = append(f.models, modelID)
	f.mu.Unlock()
	if f.panic {
		panic("boom")
	}
	return f.reply, f.err
}

func (f *fakeGenerator) Name() string { return "Fake" }

func testCatalog(t *testing.T) *prompt.Catalog {
	t.Helper()
	c, err := prompt.New(map[string]map[string]string{
		"brief": {"subdomains": "SUBS:{data}"},
	})
	require.NoError(t, err)
	return c
}

func TestAnalyzeSkipsInvalidData(t *testing.T) {
	gen := &fakeGenerator{reply: "unused"}
	a := NewAnalyzer(gen, testCatalog(t), "m1", model.ReportBrief)

	for _, data := range []string{"", "  \n\t", "[Error] Directory /x/hosts does not exist.", "  [Error] Failed to read a: b"} {
		res := a.Analyze(context.Background(), model.CategoryHosts, data)
		assert.True(t, res.Failed())
		assert.Equal(t, "No valid data available for hosts.", res.Text)
		assert.Equal(t, "[Error] No valid data available for hosts.", res.Render())
	}
	assert.Zero(t, gen.calls.Load())
}

func TestAnalyzeSendsDataMixedWithReadFailures(t *testing.T) {
	inputs := []string{
		"[Error] Failed to read hosts/a.bin: content is not valid UTF-8 text\n--- hosts/m.txt ---\n1.2.3.4:22",
		"--- hosts/m.txt ---\n1.2.3.4:22\n[Error] Failed to read hosts/z.bin: content is not valid UTF-8 text",
	}
	for _, data := range inputs {
		gen := &fakeGenerator{reply: "port 22 exposed"}
		a := NewAnalyzer(gen, testCatalog(t), "m", model.ReportBrief)

		res := a.Analyze(context.Background(), model.CategoryHosts, data)
		assert.Equal(t, model.OK("port 22 exposed"), res)
		require.Len(t, gen.prompts, 1)
		assert.Contains(t, gen.prompts[0], "--- hosts/m.txt ---\n1.2.3.4:22")
	}
}

func TestAnalyzeSkipsOnlyReadFailures(t *testing.T) {
	gen := &fakeGenerator{reply: "unused"}
	a := NewAnalyzer(gen, testCatalog(t), "m", model.ReportBrief)

	data := "[Error] Failed to read osint/a.bin: content is not valid UTF-8 text\n" +
		"[Error] Failed to read osint/b.bin: content is not valid UTF-8 text"
	res := a.Analyze(context.Background(), model.CategoryOSINT, data)
	assert.Equal(t, "No valid data available for osint.", res.Text)
	assert.Zero(t, gen.calls.Load())
}

func TestAnalyzeSendsInfoSentinel(t *testing.T) {
	gen := &fakeGenerator{reply: "nothing to report"}
	a := NewAnalyzer(gen, testCatalog(t), "m1", model.ReportBrief)

	res := a.Analyze(context.Background(), model.CategoryWebs, "[Info] No files found in /x/webs.")
	assert.False(t, res.Failed())
	assert.EqualValues(t, 1, gen.calls.Load())
}

func TestAnalyzeSuccess(t *testing.T) {
	gen := &fakeGenerator{reply: "  three risky hosts\n"}
	a := NewAnalyzer(gen, testCatalog(t), "gemini-x", model.ReportBrief)

	res := a.Analyze(context.Background(), model.CategorySubdomains, "--- subdomains/a.txt ---\nsub.example.com")
	assert.Equal(t, model.OK("  three risky hosts\n"), res)
	require.Len(t, gen.prompts, 1)
	assert.Equal(t, "SUBS:--- subdomains/a.txt ---\nsub.example.com", gen.prompts[0])
	assert.Equal(t, []string{"gemini-x"}, gen.models)

	assert.Equal(t, "gemini-x", a.Model())
	assert.Equal(t, model.ReportBrief, a.ReportType())
}

func TestAnalyzeUsesDefaultTemplate(t *testing.T) {
	gen := &fakeGenerator{reply: "ok"}
	a := NewAnalyzer(gen, testCatalog(t), "m", model.ReportExecutive)

	a.Analyze(context.Background(), model.CategoryOSINT, "emails")
	require.Len(t, gen.prompts, 1)
	assert.Equal(t, "Analyze this reconnaissance data and highlight high-risk findings:\nemails", gen.prompts[0])
}

func TestAnalyzeFailures(t *testing.T) {
	tests := []struct {
		name string
		gen  *fakeGenerator
		want string
	}{
		{"service error", &fakeGenerator{err: errors.New("quota exceeded")}, "Failed to process webs with Fake: quota exceeded"},
		{"empty response", &fakeGenerator{reply: " \n"}, "Failed to process webs with Fake: empty response"},
		{"panic", &fakeGenerator{panic: true}, "Failed to process webs with Fake: panic: boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAnalyzer(tt.gen, testCatalog(t), "m", model.ReportBrief)
			res := a.Analyze(context.Background(), model.CategoryWebs, "https://example.com")
			assert.True(t, res.Failed())
			assert.Equal(t, tt.want, res.Text)
			assert.EqualValues(t, 1, tt.gen.calls.Load())
		})
	}
}

func TestAnalyzeLimiterError(t *testing.T) {
	gen := &fakeGenerator{reply: "ok"}
	limiter := rate.NewLimiter(rate.Limit(1), 1)
	a := NewAnalyzer(gen, testCatalog(t), "m", model.ReportBrief, WithLimiter(limiter))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := a.Analyze(ctx, model.CategoryHosts, "1.2.3.4")
	assert.True(t, res.Failed())
	assert.Contains(t, res.Text, "Failed to process hosts with Fake")
	assert.Zero(t, gen.calls.Load())
}

func TestNewLimiter(t *testing.T) {
	unlimited := NewLimiter(0, 5)
	assert.Equal(t, rate.Inf, unlimited.Limit())

	l := NewLimiter(120, 0)
	assert.InDelta(t, 2.0, float64(l.Limit()), 1e-9)
	assert.Equal(t, 1, l.Burst())

	l = NewLimiter(60, 4)
	assert.Equal(t, 4, l.Burst())
}

func TestNewGeneratorErrors(t *testing.T) {
	_, err := NewGenerator(context.Background(), config.LLMConfig{Provider: config.ProviderGemini}, "")
	assert.EqualError(t, err, "llm api key is missing")

	_, err = NewGenerator(context.Background(), config.LLMConfig{Provider: "claude"}, "key")
	assert.EqualError(t, err, "unknown llm provider: claude")
}
