package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// resetFlags clears values and Changed state that cobra keeps between
// Execute calls in one process.
func resetFlags(c *cobra.Command) {
	reset := func(fl *pflag.Flag) {
		_ = fl.Value.Set(fl.DefValue)
		fl.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// runCmd executes the root command with args and returns stdout.
func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	cfg = nil
	logger = zap.NewNop()

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := runCmd(t, args...)
	require.NoError(t, err, "command %v", args)
	return out
}

// isolate points HOME at a temp dir, clears credentials and creates a CSV
// store with both sheets.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, k := range []string{"STORE_ID", "SPREADSHEET_ID", "KPILENS_STORE_ID", "LLM_API_KEY", "GEMINI_API_KEY",
		"KPILENS_LLM_API_KEY", "KPILENS_LLM_BASE_URL", "KPILENS_LLM_MODEL"} {
		t.Setenv(k, "")
	}

	store := filepath.Join(home, "kpi")
	require.NoError(t, os.MkdirAll(store, 0o755))
	write := func(name, body string) {
		require.NoError(t, os.WriteFile(filepath.Join(store, name+".csv"), []byte(body), 0o644))
	}
	write("統合データ", "項目,実績,計画,前月,前年\n"+
		"売上高,\"1,100,000\",\"1,000,000\",\"1,080,000\",\"1,050,000\"\n"+
		"販管費,\"300,000\",\"301,000\",\"299,000\",\"298,000\"\n")
	write("年度集計", "年度,売上\n2024,\"12,000,000\"\n")
	t.Setenv("STORE_ID", store)
	return store
}

func TestCLI_FetchDatasets(t *testing.T) {
	store := isolate(t)

	out := mustRun(t, "fetch", "consolidated")
	var ds []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &ds))
	require.Len(t, ds, 2)
	assert.Equal(t, "1,100,000", ds[0]["実績"])

	dest := filepath.Join(store, "..", "all.json")
	mustRun(t, "fetch", "--all", "--output", dest)
	b, err := os.ReadFile(dest)
	require.NoError(t, err)
	var all map[string][]map[string]any
	require.NoError(t, json.Unmarshal(b, &all))
	assert.Len(t, all["consolidated"], 2)
	assert.Len(t, all["yearlySummary"], 1)

	_, err = runCmd(t, "fetch")
	assert.Error(t, err)
	_, err = runCmd(t, "fetch", "monthly")
	assert.ErrorContains(t, err, "unknown dataset")
}

func TestCLI_FetchWithoutStoreID(t *testing.T) {
	isolate(t)
	t.Setenv("STORE_ID", "")

	_, err := runCmd(t, "fetch", "yearly")
	assert.EqualError(t, err, "configuration error: STORE_ID is not set")
}

func TestCLI_StoreFlagOverridesEnv(t *testing.T) {
	store := isolate(t)
	t.Setenv("STORE_ID", filepath.Join(store, "missing"))

	_, err := runCmd(t, "fetch", "yearly")
	require.Error(t, err)
	out := mustRun(t, "fetch", "yearly", "--store", store)
	assert.Contains(t, out, "12,000,000")
}

func TestCLI_Scan(t *testing.T) {
	isolate(t)

	out := mustRun(t, "scan", "consolidated")
	assert.True(t, strings.HasPrefix(out, "[ANOMALY SCAN]\nDataset: consolidated\n"))
	assert.Contains(t, out, "| 売上高 | 1,100,000 | 1,000,000 | +10.0% |")

	out = mustRun(t, "scan", "consolidated", "--json", "--top", "0")
	var s struct {
		Findings []struct {
			Name    string   `json:"name"`
			Reasons []string `json:"reasons"`
		} `json:"findings"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &s))
	require.Len(t, s.Findings, 2)
	assert.Equal(t, []string{"plan_variance"}, s.Findings[0].Reasons)
	assert.Empty(t, s.Findings[1].Reasons)
}

func TestCLI_PromptDryRun(t *testing.T) {
	isolate(t)
	dataFile := filepath.Join(t.TempDir(), "ctx.json")
	require.NoError(t, os.WriteFile(dataFile, []byte(`[{"Revenue":"1,000,000"}]`), 0o644))

	out := mustRun(t, "prompt", "今月の売上は？", "--data-file", dataFile)
	var req struct {
		Contents []struct {
			Role  string `json:"role"`
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"contents"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &req))
	text := req.Contents[0].Parts[0].Text
	assert.Equal(t, "user", req.Contents[0].Role)
	assert.Contains(t, text, "1,000,000")
	assert.True(t, strings.HasSuffix(text, "【質問】\n今月の売上は？"))

	out = mustRun(t, "prompt", "q", "--dataset", "yearly")
	assert.Contains(t, out, "12,000,000")
}

func stubUpstream(t *testing.T, status int, body string) (*httptest.Server, *int32) {
	t.Helper()
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	t.Setenv("KPILENS_LLM_BASE_URL", srv.URL)
	return srv, &hits
}

func TestCLI_Ask(t *testing.T) {
	isolate(t)
	_, hits := stubUpstream(t, http.StatusOK, `{"candidates":[{"content":{"parts":[{"text":"# 結論\n売上は計画比 **+10.0%**"}]}}]}`)
	t.Setenv("GEMINI_API_KEY", "k")

	out := mustRun(t, "ask", "今月の売上は？")
	assert.Equal(t, "# 結論\n売上は計画比 **+10.0%**\n", out)

	out = mustRun(t, "ask", "今月の売上は？", "--html")
	assert.Contains(t, out, "<strong>+10.0%</strong>")
	assert.Equal(t, int32(2), atomic.LoadInt32(hits))
}

func TestCLI_AskUpstreamError(t *testing.T) {
	isolate(t)
	stubUpstream(t, http.StatusForbidden, `{"error":{"message":"bad key"}}`)
	t.Setenv("LLM_API_KEY", "k")

	_, err := runCmd(t, "ask", "q", "--data-file", os.DevNull)
	assert.ErrorContains(t, err, "bad key")
}

func TestCLI_AskWithoutKeyDoesNotCallUpstream(t *testing.T) {
	isolate(t)
	_, hits := stubUpstream(t, http.StatusOK, `{}`)

	_, err := runCmd(t, "ask", "q")
	assert.EqualError(t, err, "configuration error: LLM_API_KEY is not set")
	assert.Equal(t, int32(0), atomic.LoadInt32(hits))
}

func TestCLI_ConfigSetShow(t *testing.T) {
	isolate(t)

	mustRun(t, "config", "set", "llm_model", "gemini-test")
	mustRun(t, "config", "set", "llm_api_key", "abcdef123456")
	_, err := runCmd(t, "config", "set", "http_timeout_sec", "soon")
	assert.Error(t, err)
	_, err = runCmd(t, "config", "set", "nope", "x")
	assert.ErrorContains(t, err, "unknown key")

	out := mustRun(t, "config", "show")
	assert.Contains(t, out, "llm_model: gemini-test\n")
	assert.Contains(t, out, "llm_api_key: abc****456\n")
	assert.NotContains(t, out, "abcdef123456")
	assert.Contains(t, out, "yearly_sheet: 年度集計\n")
}
