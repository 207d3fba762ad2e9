// Package evalmcp exposes the evaluation pipeline as MCP tools over
// stdio, so an agent can run evaluations and inspect run history without
// shelling out to the CLI.
package evalmcp

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"sireval/internal/evalrun"
	"sireval/internal/history"
	"sireval/internal/logging"
	"sireval/internal/metrics"
	"sireval/internal/resist"
	"sireval/internal/sierra"
)

// Server wraps the MCP SDK server with the evaluation tools registered.
type Server struct {
	MCPServer *sdkmcp.Server

	// mu serializes tool calls: the pipeline is batch-oriented and runs
	// one evaluation at a time.
	mu  sync.Mutex
	log *slog.Logger
}

// NewServer creates the sireval MCP server.
func NewServer(version string) *Server {
	s := &Server{
		MCPServer: sdkmcp.NewServer(
			&sdkmcp.Implementation{Name: "sireval", Version: version},
			nil,
		),
		log: logging.New("mcp"),
	}
	s.registerTools()
	return s
}

func (s *Server) registerTools() {
	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "run_evaluation",
		Description: "Evaluate model predictions against HIVdb reference calls. Returns the metric suite and merge counts.",
	}, s.handleRunEvaluation)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "flatten_reference",
		Description: "Flatten sierra-local JSON into per-(patient, gene, drug) reference records under a mapping policy.",
	}, s.handleFlattenReference)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "list_runs",
		Description: "List persisted evaluation runs from a history database, newest first.",
	}, s.handleListRuns)
}

// --- Tool input/output types ---

type runEvaluationInput struct {
	PredictionsPath string `json:"predictions_path" jsonschema:"CSV file with model predictions"`
	ReferencePath   string `json:"reference_path" jsonschema:"CSV or sierra-local JSON file with HIVdb calls"`
	Mapping         string `json:"mapping,omitempty" jsonschema:"level-to-label policy: default, conservative or strict"`
	OutputDir       string `json:"output_dir,omitempty" jsonschema:"directory for run artifacts; omit to skip writing"`
	HistoryDB       string `json:"history_db,omitempty" jsonschema:"SQLite history path; omit to skip recording"`
}

type runEvaluationOutput struct {
	NPredictions int             `json:"n_predictions"`
	NReference   int             `json:"n_reference"`
	NMatched     int             `json:"n_matched"`
	Report       *metrics.Report `json:"report"`
	Artifacts    []string        `json:"artifacts,omitempty"`
	RunID        int64           `json:"run_id,omitempty"`
}

type flattenReferenceInput struct {
	Path    string `json:"path" jsonschema:"sierra-local JSON file"`
	Mapping string `json:"mapping,omitempty" jsonschema:"level-to-label policy: default, conservative or strict"`
}

type flattenReferenceOutput struct {
	Records []resist.ReferenceRecord `json:"records"`
	Total   int                      `json:"total"`
}

type listRunsInput struct {
	HistoryDB string `json:"history_db" jsonschema:"SQLite history path"`
}

type runSummary struct {
	ID         int64   `json:"id"`
	CreatedAt  string  `json:"created_at"`
	Policy     string  `json:"mapping_policy"`
	NMatched   int     `json:"n_matched"`
	Accuracy   float64 `json:"accuracy"`
	MacroF1    float64 `json:"macro_f1"`
	CohenKappa float64 `json:"cohen_kappa"`
}

type listRunsOutput struct {
	Runs []runSummary `json:"runs"`
}

// --- Handlers ---

func (s *Server) handleRunEvaluation(_ context.Context, _ *sdkmcp.CallToolRequest, input runEvaluationInput) (*sdkmcp.CallToolResult, runEvaluationOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	policy, err := parseMapping(input.Mapping)
	if err != nil {
		return nil, runEvaluationOutput{}, err
	}

	s.log.Info("run_evaluation",
		"predictions", input.PredictionsPath,
		"reference", input.ReferencePath,
		"mapping", string(policy))

	res, err := evalrun.Run(evalrun.Options{
		PredictionsPath: input.PredictionsPath,
		ReferencePath:   input.ReferencePath,
		Policy:          policy,
		OutputDir:       input.OutputDir,
		HistoryDB:       input.HistoryDB,
	})
	if err != nil {
		return nil, runEvaluationOutput{}, err
	}

	return nil, runEvaluationOutput{
		NPredictions: res.Counts.Predictions,
		NReference:   res.Counts.Reference,
		NMatched:     res.Counts.Matched,
		Report:       res.Report,
		Artifacts:    res.Artifacts,
		RunID:        res.RunID,
	}, nil
}

func (s *Server) handleFlattenReference(_ context.Context, _ *sdkmcp.CallToolRequest, input flattenReferenceInput) (*sdkmcp.CallToolResult, flattenReferenceOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	policy, err := parseMapping(input.Mapping)
	if err != nil {
		return nil, flattenReferenceOutput{}, err
	}

	records, err := flattenFile(input.Path, policy)
	if err != nil {
		return nil, flattenReferenceOutput{}, err
	}
	return nil, flattenReferenceOutput{Records: records, Total: len(records)}, nil
}

func (s *Server) handleListRuns(_ context.Context, _ *sdkmcp.CallToolRequest, input listRunsInput) (*sdkmcp.CallToolResult, listRunsOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	store, err := history.Open(input.HistoryDB)
	if err != nil {
		return nil, listRunsOutput{}, err
	}
	defer store.Close()

	runs, err := store.ListRuns()
	if err != nil {
		return nil, listRunsOutput{}, err
	}

	out := listRunsOutput{Runs: make([]runSummary, 0, len(runs))}
	for _, r := range runs {
		out.Runs = append(out.Runs, runSummary{
			ID:         r.ID,
			CreatedAt:  r.CreatedAt.Format("2006-01-02 15:04:05"),
			Policy:     string(r.Policy),
			NMatched:   r.Counts.Matched,
			Accuracy:   r.Accuracy,
			MacroF1:    r.MacroF1,
			CohenKappa: r.CohenKappa,
		})
	}
	return nil, out, nil
}

func parseMapping(name string) (resist.Policy, error) {
	if name == "" {
		return resist.PolicyDefault, nil
	}
	return resist.ParsePolicy(name)
}

func flattenFile(path string, policy resist.Policy) ([]resist.ReferenceRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	seqs, err := sierra.Parse(data)
	if err != nil {
		return nil, err
	}
	return sierra.Flatten(seqs, policy), nil
}
