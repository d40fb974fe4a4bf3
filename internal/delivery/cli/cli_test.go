package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/user/debugpanel/internal/adapter/memory"
	"github.com/user/debugpanel/internal/delivery/http/handler"
	"github.com/user/debugpanel/internal/delivery/http/response"
	"github.com/user/debugpanel/internal/delivery/http/router"
	"github.com/user/debugpanel/internal/entity"
	"github.com/user/debugpanel/internal/usecase"
	"github.com/user/debugpanel/pkg/metrics"
)

type fakePrompter struct {
	username, password string
	asked              []string
}

func (p *fakePrompter) Prompt(label string) (string, error) {
	p.asked = append(p.asked, label)
	return p.username, nil
}

func (p *fakePrompter) PromptSecret(label string) (string, error) {
	p.asked = append(p.asked, label)
	return p.password, nil
}

type harness struct {
	app      *App
	stdout   *bytes.Buffer
	stderr   *bytes.Buffer
	prompter *fakePrompter
}

func newHarness() *harness {
	h := &harness{stdout: &bytes.Buffer{}, stderr: &bytes.Buffer{}, prompter: &fakePrompter{}}
	h.app = &App{
		Stdin:    strings.NewReader(""),
		Stdout:   h.stdout,
		Stderr:   h.stderr,
		Prompter: h.prompter,
	}
	return h
}

func (h *harness) run(args ...string) int {
	return Execute(context.Background(), h.app, args)
}

type mockNode struct {
	*httptest.Server
}

func newMockNode(t *testing.T) mockNode {
	t.Helper()
	m := metrics.New()
	panel := usecase.NewPanel(entity.Credentials{Username: "u", Password: "p"}, memory.NewActionLogRepo(0), m, zap.NewNop())
	srv := httptest.NewServer(router.New(handler.NewHandler(panel, zap.NewNop()), m, zap.NewNop()))
	t.Cleanup(srv.Close)
	return mockNode{srv}
}

func (n mockNode) received(t *testing.T) []response.ReceivedActionResponse {
	t.Helper()
	resp, err := http.Get(n.URL + "/api/requests")
	require.NoError(t, err)
	defer resp.Body.Close()
	var got response.ReceivedActionsResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	return got.Actions
}

func TestCrawlSubcommand(t *testing.T) {
	a, b := newMockNode(t), newMockNode(t)
	h := newHarness()

	code := h.run("crawl", "-n", a.URL, "-n", b.URL, "-a", "X", "-a", "Y", "-U", "u", "-P", "p", "--table-format", "csv")
	require.Equal(t, ExitOK, code, h.stderr.String())

	assert.Equal(t,
		"AUID,"+a.URL+","+b.URL+"\nX,Requested,Requested\nY,Requested,Requested\n",
		h.stdout.String())
	assert.Len(t, a.received(t), 2)
	assert.Len(t, b.received(t), 2)
	assert.Empty(t, h.prompter.asked)
}

func TestLegacyFlagForm(t *testing.T) {
	n := newMockNode(t)
	h := newHarness()

	code := h.run("--poll", "-n", n.URL, "-U", "u", "-P", "p", "--table-format", "csv", "A1", "A2")
	require.Equal(t, ExitOK, code, h.stderr.String())
	assert.Equal(t, "AUID,"+n.URL+"\nA1,Requested\nA2,Requested\n", h.stdout.String())

	for _, action := range n.received(t) {
		assert.Equal(t, "Start V3 Poll", action.Action)
	}
}

func TestNodeScopedAlias(t *testing.T) {
	n := newMockNode(t)
	h := newHarness()

	code := h.run("rc", "-n", n.URL, "-U", "u", "-P", "p", "--table-format", "json")
	require.Equal(t, ExitOK, code, h.stderr.String())

	var doc struct {
		Operation string `json:"operation"`
		Results   []struct {
			Node   string `json:"node"`
			Result string `json:"result"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(h.stdout.Bytes(), &doc))
	assert.Equal(t, "reload-config", doc.Operation)
	require.Len(t, doc.Results, 1)
	assert.Equal(t, entity.RequestedText, doc.Results[0].Result)
}

func TestDeepCrawlDepth(t *testing.T) {
	n := newMockNode(t)
	h := newHarness()

	code := h.run("dc", "-n", n.URL, "-a", "X", "-d", "5", "-U", "u", "-P", "p")
	require.Equal(t, ExitOK, code, h.stderr.String())
	got := n.received(t)
	require.Len(t, got, 1)
	assert.Equal(t, "5", got[0].Params["depth"])

	h = newHarness()
	require.Equal(t, ExitOK, h.run("dc", "-n", n.URL, "-a", "X", "-U", "u", "-P", "p"))
	assert.Equal(t, "123", n.received(t)[1].Params["depth"])
}

func TestConfigurationErrorsSendNothing(t *testing.T) {
	n := newMockNode(t)
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty.txt")
	require.NoError(t, os.WriteFile(empty, []byte("# nothing\n\n"), 0o600))

	tests := []struct {
		name string
		args []string
	}{
		{"no operation", []string{"-n", n.URL}},
		{"two operations", []string{"--crawl", "--poll", "-n", n.URL, "-a", "X"}},
		{"no nodes", []string{"crawl", "-a", "X"}},
		{"no auids", []string{"crawl", "-n", n.URL}},
		{"empty list file", []string{"crawl", "-n", n.URL, "-A", empty}},
		{"missing list file", []string{"crawl", "-n", n.URL, "-A", filepath.Join(dir, "nope.txt")}},
		{"depth outside deep-crawl", []string{"crawl", "-n", n.URL, "-a", "X", "--depth", "3"}},
		{"negative depth", []string{"dc", "-n", n.URL, "-a", "X", "--depth", "-1"}},
		{"negative pool size", []string{"crawl", "-n", n.URL, "-a", "X", "--pool-size", "-2"}},
		{"zero pool size", []string{"crawl", "-n", n.URL, "-a", "X", "--pool-size", "0"}},
		{"node operation with AUIDs", []string{"--reload-config", "-n", n.URL, "X"}},
		{"bad pool type", []string{"crawl", "-n", n.URL, "-a", "X", "--pool-type", "fiber-pool"}},
		{"deprecated and current username", []string{"crawl", "-n", n.URL, "-a", "X", "-u", "u", "-U", "u"}},
		{"deprecated and current pool type", []string{"crawl", "-n", n.URL, "-a", "X", "--process-pool", "--pool-type", "thread-pool"}},
		{"keep-going and fail-fast", []string{"crawl", "-n", n.URL, "-a", "X", "--keep-going", "--fail-fast"}},
		{"bad table format", []string{"crawl", "-n", n.URL, "-a", "X", "--table-format", "html"}},
		{"bad wait", []string{"crawl", "-n", n.URL, "-a", "X", "--wait", "soon"}},
		{"unknown flag", []string{"crawl", "--frobnicate"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness()
			args := append(tt.args, "-U", "u", "-P", "p")
			assert.Equal(t, ExitConfigError, h.run(args...), h.stdout.String())
			assert.Contains(t, h.stderr.String(), "Error:")
		})
	}
	assert.Empty(t, n.received(t))
}

func TestFailedJobsExitCode(t *testing.T) {
	n := newMockNode(t)

	h := newHarness()
	code := h.run("cp", "-n", n.URL, "-U", "u", "-P", "wrong", "--table-format", "csv")
	assert.Equal(t, ExitJobsFailed, code)
	assert.Contains(t, h.stdout.String(), "bad username or password")
	assert.Contains(t, h.stderr.String(), "1 of 1 jobs failed")

	h = newHarness()
	assert.Equal(t, ExitOK, h.run("cp", "-n", n.URL, "-U", "u", "-P", "wrong", "--keep-going"))
}

func TestPromptsForMissingCredentials(t *testing.T) {
	n := newMockNode(t)
	h := newHarness()
	h.prompter.username, h.prompter.password = "u", "p"

	require.Equal(t, ExitOK, h.run("cp", "-n", n.URL))
	assert.Equal(t, []string{"UI username", "UI password"}, h.prompter.asked)
}

func TestDeprecatedCredentialFlags(t *testing.T) {
	n := newMockNode(t)
	h := newHarness()
	require.Equal(t, ExitOK, h.run("cp", "-n", n.URL, "-u", "u", "-p", "p"), h.stderr.String())
	assert.Empty(t, h.prompter.asked)
}

func TestCredentialsFromEnvironment(t *testing.T) {
	n := newMockNode(t)
	t.Setenv("DEBUGPANEL_USERNAME", "u")
	t.Setenv("DEBUGPANEL_PASSWORD", "p")
	h := newHarness()
	require.Equal(t, ExitOK, h.run("cp", "-n", n.URL), h.stderr.String())
	assert.Empty(t, h.prompter.asked)
}

func TestListFilesAndMetrics(t *testing.T) {
	a, b := newMockNode(t), newMockNode(t)
	dir := t.TempDir()
	nodes := filepath.Join(dir, "nodes.txt")
	auids := filepath.Join(dir, "auids.txt")
	metricsFile := filepath.Join(dir, "debugpanel.prom")
	require.NoError(t, os.WriteFile(nodes, []byte("# production\n"+a.URL+"\n\n"+b.URL+"  # second\n"), 0o600))
	require.NoError(t, os.WriteFile(auids, []byte("Z\n"), 0o600))

	h := newHarness()
	code := h.run("validate-files", "-N", nodes, "-a", "X", "-A", auids, "-U", "u", "-P", "p",
		"--table-format", "csv", "--metrics-file", metricsFile, "--wait", "0.01")
	require.Equal(t, ExitOK, code, h.stderr.String())
	assert.Equal(t,
		"AUID,"+a.URL+","+b.URL+"\nX,Requested,Requested\nZ,Requested,Requested\n",
		h.stdout.String())

	data, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `debugpanel_jobs_total{operation="validate-files",outcome="success"} 4`)
}

func TestProgressBarGoesToStderr(t *testing.T) {
	n := newMockNode(t)
	h := newHarness()
	require.Equal(t, ExitOK, h.run("crawl", "-n", n.URL, "-a", "X", "-U", "u", "-P", "p", "--progress", "--table-format", "csv"))
	assert.Contains(t, h.stderr.String(), "1/1")
	assert.NotContains(t, h.stdout.String(), "Progress")
}

func TestInfoCommands(t *testing.T) {
	h := newHarness()
	require.Equal(t, ExitOK, h.run("version"))
	assert.Contains(t, h.stdout.String(), "debugpanel "+Version)

	h = newHarness()
	require.Equal(t, ExitOK, h.run("copyright"))
	assert.Equal(t, copyright+"\n", h.stdout.String())

	h = newHarness()
	require.Equal(t, ExitOK, h.run("license"))
	assert.Contains(t, h.stdout.String(), "Redistribution and use in source and binary forms")
}

// TestJobWorkerHelper is not a real test: it is the child process started
// by the process pool in TestProcessPool.
func TestJobWorkerHelper(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	args := os.Args
	for i, arg := range args {
		if arg == "--" {
			args = args[i+1:]
			break
		}
	}
	app := &App{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
	os.Exit(Execute(context.Background(), app, args))
}

func TestProcessPool(t *testing.T) {
	n := newMockNode(t)
	h := newHarness()
	h.app.Executable = os.Args[0]
	h.app.WorkerArgs = []string{"-test.run=TestJobWorkerHelper", "--"}
	h.app.WorkerEnv = []string{"GO_WANT_HELPER_PROCESS=1"}

	code := h.run("check-substance", "-n", n.URL, "-a", "X", "-a", "a%b|c&d~e",
		"-U", "u", "-P", "p", "--pool-type", "process-pool", "--pool-size", "2", "--table-format", "csv")
	require.Equal(t, ExitOK, code, h.stderr.String())
	assert.Equal(t, "AUID,"+n.URL+"\nX,Requested\na%b|c&d~e,Requested\n", h.stdout.String())

	var auids []string
	for _, a := range n.received(t) {
		auids = append(auids, a.AUID)
	}
	assert.ElementsMatch(t, []string{"X", "a%b|c&d~e"}, auids)

	h = newHarness()
	h.app.Executable = os.Args[0]
	h.app.WorkerArgs = []string{"-test.run=TestJobWorkerHelper", "--"}
	h.app.WorkerEnv = []string{"GO_WANT_HELPER_PROCESS=1"}
	code = h.run("cs", "-n", n.URL, "-a", "X", "-U", "u", "-P", "nope", "--process-pool", "--table-format", "csv")
	assert.Equal(t, ExitJobsFailed, code)
	assert.Contains(t, h.stdout.String(), "bad username or password")
}
