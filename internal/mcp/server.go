// Package mcp exposes the judgment pipeline over the Model Context Protocol
// so agent hosts can classify changes, judge interactions, and read stored
// runs without shelling out to the CLI.
package mcp

import (
	"context"
	"fmt"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/odavlstudio/verax-sub011/internal/canonical"
	"github.com/odavlstudio/verax-sub011/internal/capture"
	"github.com/odavlstudio/verax-sub011/internal/confidence"
	"github.com/odavlstudio/verax-sub011/internal/judge"
	"github.com/odavlstudio/verax-sub011/internal/logging"
	"github.com/odavlstudio/verax-sub011/internal/promise"
	"github.com/odavlstudio/verax-sub011/internal/scope"
	"github.com/odavlstudio/verax-sub011/internal/store"
)

// Server wraps the MCP SDK server around the judgment pipeline. The store is
// optional; run-reading tools error cleanly when none is configured.
type Server struct {
	MCPServer *sdkmcp.Server
	Store     store.Store
}

// NewServer creates an MCP server with judgment and artifact tools.
func NewServer(st store.Store) *Server {
	s := &Server{Store: st}
	s.MCPServer = sdkmcp.NewServer(
		&sdkmcp.Implementation{Name: "verax", Version: "dev"},
		nil,
	)
	s.registerTools()
	return s
}

func (s *Server) registerTools() {
	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "classify_dom_change",
		Description: "Classify a before/after HTML pair: no-change, noise-only, in-scope, or out-of-scope, with change details.",
	}, s.handleClassify)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "judge_interaction",
		Description: "Judge one interaction from its captured signals. Returns the finding with status, level, and bounded confidence.",
	}, s.handleJudge)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "normalize_artifact",
		Description: "Rewrite arbitrary JSON into canonical form: volatile fields dropped, elapsed times bucketed, confidences rounded, keys and arrays deterministically ordered.",
	}, s.handleNormalize)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "list_runs",
		Description: "List stored judgment runs, newest first.",
	}, s.handleListRuns)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "get_run",
		Description: "Fetch one stored run's canonical artifact by run ID.",
	}, s.handleGetRun)
}

// --- Tool input/output types ---

type classifyInput struct {
	BeforeHTML string `json:"before_html" jsonschema:"document HTML before the interaction"`
	AfterHTML  string `json:"after_html" jsonschema:"document HTML after the interaction settled"`
}

type classifyOutput struct {
	Classification string   `json:"classification"`
	Changed        bool     `json:"changed"`
	Meaningful     bool     `json:"meaningful"`
	Category       string   `json:"category,omitempty"`
	Summary        string   `json:"summary,omitempty"`
	ChangedKinds   []string `json:"changed_kinds,omitempty"`
}

type judgeInput struct {
	PromiseID       string   `json:"promise_id" jsonschema:"identifier of the promise being judged"`
	Selector        string   `json:"selector,omitempty" jsonschema:"CSS selector the interaction targeted"`
	Kind            string   `json:"kind,omitempty" jsonschema:"promise kind (feedback, navigation, network, state, ui-state)"`
	BeforeHTML      string   `json:"before_html" jsonschema:"document HTML before the interaction"`
	AfterHTML       string   `json:"after_html" jsonschema:"document HTML after the interaction settled"`
	URLChanged      bool     `json:"url_changed,omitempty" jsonschema:"whether the page URL changed"`
	RequestCount    int      `json:"request_count,omitempty" jsonschema:"network requests observed after the interaction"`
	ConsoleErrors   int      `json:"console_errors,omitempty" jsonschema:"console errors observed after the interaction"`
	StateKeys       []string `json:"state_keys,omitempty" jsonschema:"storage keys that changed"`
	UIStateChanged  bool     `json:"ui_state_changed,omitempty" jsonschema:"whether a whitelisted UI state flip was observed"`
	SourceResolved  bool     `json:"source_resolved,omitempty" jsonschema:"whether project source was resolvable (full-project mode)"`
	TargetReachable bool     `json:"target_reachable" jsonschema:"whether the target URL was reachable"`
}

type judgeOutput struct {
	Type               string  `json:"type"`
	Status             string  `json:"status"`
	Level              string  `json:"level"`
	Confidence         float64 `json:"confidence"`
	EvidenceSufficient bool    `json:"evidence_sufficient"`
	Mode               string  `json:"mode"`
	Ceiling            float64 `json:"ceiling"`
	Description        string  `json:"description"`
}

type normalizeInput struct {
	ArtifactJSON string `json:"artifact_json" jsonschema:"JSON document to normalize"`
}

type normalizeOutput struct {
	Canonical string `json:"canonical"`
}

type listRunsInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"max runs to return (0 = all)"`
}

type runSummary struct {
	RunID     string  `json:"run_id"`
	Target    string  `json:"target"`
	Mode      string  `json:"mode"`
	Ceiling   float64 `json:"ceiling"`
	Failed    bool    `json:"failed"`
	CreatedAt string  `json:"created_at"`
}

type listRunsOutput struct {
	Runs []runSummary `json:"runs"`
}

type getRunInput struct {
	RunID string `json:"run_id" jsonschema:"run ID from list_runs"`
}

type getRunOutput struct {
	RunID    string `json:"run_id"`
	Failed   bool   `json:"failed"`
	Artifact string `json:"artifact"`
}

// --- Tool handlers ---

func (s *Server) handleClassify(_ context.Context, _ *sdkmcp.CallToolRequest, input classifyInput) (*sdkmcp.CallToolResult, classifyOutput, error) {
	res := scope.Classify(input.BeforeHTML, input.AfterHTML)
	out := classifyOutput{
		Classification: string(res.Classification),
		Changed:        res.Changed,
		Meaningful:     res.Meaningful,
	}
	if res.OutOfScope != nil {
		out.Category = res.OutOfScope.Category
		out.Summary = res.OutOfScope.Summary
	}
	if len(res.ElementsAdded) > 0 || len(res.ElementsRemoved) > 0 {
		out.ChangedKinds = append(out.ChangedKinds, "elements")
	}
	if len(res.AttributesChanged) > 0 {
		out.ChangedKinds = append(out.ChangedKinds, "attributes")
	}
	if len(res.ContentChanged) > 0 {
		out.ChangedKinds = append(out.ChangedKinds, "content")
	}
	return nil, out, nil
}

func (s *Server) handleJudge(ctx context.Context, _ *sdkmcp.CallToolRequest, input judgeInput) (*sdkmcp.CallToolResult, judgeOutput, error) {
	if strings.TrimSpace(input.PromiseID) == "" {
		return nil, judgeOutput{}, fmt.Errorf("judge_interaction: promise_id is required")
	}

	mode := confidence.ResolveMode(input.SourceResolved, input.TargetReachable)
	obs := capture.Observation{
		PromiseID:  input.PromiseID,
		BeforeHTML: input.BeforeHTML,
		AfterHTML:  input.AfterHTML,
		Navigation: capture.NavigationSummary{Available: true, URLChanged: input.URLChanged},
		Network:    capture.NetworkSummary{Available: true, RequestCount: input.RequestCount},
		Console:    capture.ConsoleSummary{Available: true, ErrorCount: input.ConsoleErrors},
		State:      capture.StateSummary{Available: true, ChangedKeys: input.StateKeys},
		UIState:    capture.UIStateSummary{Available: true, AlertTextChanged: input.UIStateChanged},
	}
	promises := map[string]promise.Promise{
		input.PromiseID: {ID: input.PromiseID, Selector: input.Selector, Kind: promise.Kind(input.Kind)},
	}

	runner := judge.Runner{Mode: &mode, Log: logging.New("mcp-judge")}
	res, err := runner.Judge(ctx, "mcp", "", promises, []capture.Observation{obs})
	if err != nil {
		return nil, judgeOutput{}, fmt.Errorf("judge_interaction: %w", err)
	}
	if len(res.Findings) == 0 {
		return nil, judgeOutput{}, fmt.Errorf("judge_interaction: finding was dropped by policy")
	}

	f := res.Findings[0]
	return nil, judgeOutput{
		Type:               f.Type,
		Status:             string(f.Status),
		Level:              string(f.Level),
		Confidence:         f.Confidence,
		EvidenceSufficient: f.EvidenceSufficient,
		Mode:               string(mode.Mode),
		Ceiling:            mode.Ceiling,
		Description:        f.Description,
	}, nil
}

func (s *Server) handleNormalize(_ context.Context, _ *sdkmcp.CallToolRequest, input normalizeInput) (*sdkmcp.CallToolResult, normalizeOutput, error) {
	canon, err := canonical.MarshalBytes([]byte(input.ArtifactJSON))
	if err != nil {
		return nil, normalizeOutput{}, fmt.Errorf("normalize_artifact: %w", err)
	}
	return nil, normalizeOutput{Canonical: string(canon)}, nil
}

func (s *Server) handleListRuns(_ context.Context, _ *sdkmcp.CallToolRequest, input listRunsInput) (*sdkmcp.CallToolResult, listRunsOutput, error) {
	if s.Store == nil {
		return nil, listRunsOutput{}, fmt.Errorf("list_runs: no store configured")
	}
	runs, err := s.Store.ListRuns(input.Limit)
	if err != nil {
		return nil, listRunsOutput{}, fmt.Errorf("list_runs: %w", err)
	}
	out := listRunsOutput{Runs: make([]runSummary, 0, len(runs))}
	for _, r := range runs {
		out.Runs = append(out.Runs, runSummary{
			RunID: r.ID, Target: r.Target, Mode: r.Mode,
			Ceiling: r.Ceiling, Failed: r.Failed, CreatedAt: r.CreatedAt,
		})
	}
	return nil, out, nil
}

func (s *Server) handleGetRun(_ context.Context, _ *sdkmcp.CallToolRequest, input getRunInput) (*sdkmcp.CallToolResult, getRunOutput, error) {
	if s.Store == nil {
		return nil, getRunOutput{}, fmt.Errorf("get_run: no store configured")
	}
	run, err := s.Store.GetRun(input.RunID)
	if err != nil {
		return nil, getRunOutput{}, fmt.Errorf("get_run %s: %w", input.RunID, err)
	}
	return nil, getRunOutput{RunID: run.ID, Failed: run.Failed, Artifact: string(run.Artifact)}, nil
}
