// Package mcp exposes the trial analysis as MCP tools over stdio.
//
// The server holds at most one loaded dataset at a time. load_results
// reads a CSV from disk; the query tools answer from the aggregation
// of that dataset until the next load replaces it.
package mcp

import (
	"context"
	"fmt"
	"math"
	"sync"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"witness/internal/analyze"
	"witness/internal/config"
	"witness/internal/format"
	"witness/internal/logging"
	"witness/internal/report"
	"witness/internal/trial"
)

// Server wraps the MCP SDK server and the currently loaded dataset.
type Server struct {
	MCPServer *sdkmcp.Server

	mu      sync.Mutex
	name    string
	trials  []trial.Trial
	result  *analyze.Result
	profile *config.Profile
}

// NewServer creates an MCP server with the analysis tools registered.
// profile supplies the default gate thresholds; nil means defaults.
func NewServer(profile *config.Profile) *Server {
	if profile == nil {
		profile = config.Default()
	}
	s := &Server{profile: profile}
	s.MCPServer = sdkmcp.NewServer(
		&sdkmcp.Implementation{Name: "witness", Version: "dev"},
		nil,
	)
	s.registerTools()
	return s
}

func (s *Server) registerTools() {
	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "load_results",
		Description: "Load a Fermat trial results CSV from disk. Replaces any previously loaded dataset.",
	}, s.handleLoadResults)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "get_summary",
		Description: "Get dataset totals: trial/prime/composite counts and the overall false-positive rate.",
	}, s.handleGetSummary)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "fp_rate_by_bits",
		Description: "Get the false-positive rate per bit-length bucket.",
	}, s.handleFPRateByBits)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "timing_by_bits",
		Description: "Get elapsed-time statistics (mean, p50, p90, p99 ns) per bit-length bucket.",
	}, s.handleTimingByBits)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "evaluate_gates",
		Description: "Evaluate pass/fail gates against the loaded dataset. Thresholds default to the analysis profile.",
	}, s.handleEvaluateGates)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "render_report",
		Description: "Render the full analysis report as text (ascii or markdown tables).",
	}, s.handleRenderReport)
}

// --- Tool input/output types ---

type loadResultsInput struct {
	Path string `json:"path" jsonschema:"path to the results CSV"`
	Name string `json:"name,omitempty" jsonschema:"dataset label for output (default: the path)"`
}

type loadResultsOutput struct {
	Dataset    string `json:"dataset"`
	Trials     int    `json:"trials"`
	Primes     int    `json:"primes"`
	Composites int    `json:"composites"`
}

type emptyInput struct{}

type summaryOutput struct {
	Dataset        string   `json:"dataset"`
	Trials         int      `json:"trials"`
	Primes         int      `json:"primes"`
	Composites     int      `json:"composites"`
	FalsePositives int      `json:"false_positives"`
	OverallFPRate  *float64 `json:"overall_fp_rate"` // null when undefined
	OverallFPText  string   `json:"overall_fp_text"`
	MeanElapsedNS  float64  `json:"mean_elapsed_ns"`
	P99ElapsedNS   float64  `json:"p99_elapsed_ns"`
}

type fpBucket struct {
	Bits           int      `json:"bits"`
	Trials         int      `json:"trials"`
	Composites     int      `json:"composites"`
	FalsePositives int      `json:"false_positives"`
	FPRate         *float64 `json:"fp_rate"` // null when the bucket has no composites
}

type fpRateOutput struct {
	Dataset string     `json:"dataset"`
	Buckets []fpBucket `json:"buckets"`
}

type timingBucket struct {
	Bits   int     `json:"bits"`
	Trials int     `json:"trials"`
	MeanNS float64 `json:"mean_ns"`
	P50NS  float64 `json:"p50_ns"`
	P90NS  float64 `json:"p90_ns"`
	P99NS  float64 `json:"p99_ns"`
}

type timingOutput struct {
	Dataset string         `json:"dataset"`
	Buckets []timingBucket `json:"buckets"`
}

type evaluateGatesInput struct {
	MaxOverallFPRate   *float64 `json:"max_overall_fp_rate,omitempty" jsonschema:"override the profile threshold"`
	MaxBucketFPRate    *float64 `json:"max_bucket_fp_rate,omitempty" jsonschema:"override the profile threshold"`
	MinCompositeSample *int     `json:"min_composite_sample,omitempty" jsonschema:"override the profile threshold"`
}

type gateResult struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Value     float64 `json:"value"`
	Threshold float64 `json:"threshold"`
	Pass      bool    `json:"pass"`
	Skipped   bool    `json:"skipped,omitempty"`
	Detail    string  `json:"detail,omitempty"`
}

type evaluateGatesOutput struct {
	Dataset string       `json:"dataset"`
	Pass    bool         `json:"pass"`
	Gates   []gateResult `json:"gates"`
}

type renderReportInput struct {
	Format string `json:"format,omitempty" jsonschema:"ascii or markdown (default ascii)"`
}

type renderReportOutput struct {
	Dataset string `json:"dataset"`
	Report  string `json:"report"`
}

// --- Handlers ---

func (s *Server) handleLoadResults(ctx context.Context, _ *sdkmcp.CallToolRequest, input loadResultsInput) (*sdkmcp.CallToolResult, loadResultsOutput, error) {
	logger := logging.New("mcp")
	if input.Path == "" {
		return nil, loadResultsOutput{}, fmt.Errorf("path is required")
	}

	trials, err := trial.ReadFile(input.Path)
	if err != nil {
		return nil, loadResultsOutput{}, fmt.Errorf("load_results: %w", err)
	}
	res := analyze.Run(trials)

	name := input.Name
	if name == "" {
		name = input.Path
	}

	s.mu.Lock()
	s.name = name
	s.trials = trials
	s.result = res
	s.mu.Unlock()

	logger.Info("dataset loaded", "name", name, "trials", len(trials))
	return nil, loadResultsOutput{
		Dataset:    name,
		Trials:     res.Summary.Trials,
		Primes:     res.Summary.Primes,
		Composites: res.Summary.Composites,
	}, nil
}

func (s *Server) handleGetSummary(ctx context.Context, _ *sdkmcp.CallToolRequest, _ emptyInput) (*sdkmcp.CallToolResult, summaryOutput, error) {
	name, res, err := s.loaded()
	if err != nil {
		return nil, summaryOutput{}, err
	}
	sum := res.Summary
	return nil, summaryOutput{
		Dataset:        name,
		Trials:         sum.Trials,
		Primes:         sum.Primes,
		Composites:     sum.Composites,
		FalsePositives: sum.FalsePositives,
		OverallFPRate:  finite(sum.OverallFPRate),
		OverallFPText:  format.Percent(sum.OverallFPRate),
		MeanElapsedNS:  sum.Elapsed.Mean,
		P99ElapsedNS:   sum.Elapsed.P99,
	}, nil
}

func (s *Server) handleFPRateByBits(ctx context.Context, _ *sdkmcp.CallToolRequest, _ emptyInput) (*sdkmcp.CallToolResult, fpRateOutput, error) {
	name, res, err := s.loaded()
	if err != nil {
		return nil, fpRateOutput{}, err
	}
	out := fpRateOutput{Dataset: name}
	for _, g := range res.ByBits {
		out.Buckets = append(out.Buckets, fpBucket{
			Bits:           g.Bits,
			Trials:         g.Trials,
			Composites:     g.Composites,
			FalsePositives: g.FalsePositives,
			FPRate:         finite(g.FPRate),
		})
	}
	return nil, out, nil
}

func (s *Server) handleTimingByBits(ctx context.Context, _ *sdkmcp.CallToolRequest, _ emptyInput) (*sdkmcp.CallToolResult, timingOutput, error) {
	name, res, err := s.loaded()
	if err != nil {
		return nil, timingOutput{}, err
	}
	out := timingOutput{Dataset: name}
	for _, g := range res.ByBits {
		out.Buckets = append(out.Buckets, timingBucket{
			Bits:   g.Bits,
			Trials: g.Trials,
			MeanNS: g.MeanElapsedNS,
			P50NS:  g.P50ElapsedNS,
			P90NS:  g.P90ElapsedNS,
			P99NS:  g.P99ElapsedNS,
		})
	}
	return nil, out, nil
}

func (s *Server) handleEvaluateGates(ctx context.Context, _ *sdkmcp.CallToolRequest, input evaluateGatesInput) (*sdkmcp.CallToolResult, evaluateGatesOutput, error) {
	name, res, err := s.loaded()
	if err != nil {
		return nil, evaluateGatesOutput{}, err
	}

	cfg := s.profile.Gates
	if input.MaxOverallFPRate != nil {
		cfg.MaxOverallFPRate = *input.MaxOverallFPRate
	}
	if input.MaxBucketFPRate != nil {
		cfg.MaxBucketFPRate = *input.MaxBucketFPRate
	}
	if input.MinCompositeSample != nil {
		cfg.MinCompositeSample = *input.MinCompositeSample
	}

	gates := analyze.EvaluateGates(res, cfg)
	out := evaluateGatesOutput{Dataset: name, Pass: analyze.GatesPass(gates)}
	for _, g := range gates {
		value := g.Value
		if math.IsNaN(value) {
			value = 0
		}
		out.Gates = append(out.Gates, gateResult{
			ID: g.ID, Name: g.Name,
			Value: value, Threshold: g.Threshold,
			Pass: g.Pass, Skipped: g.Skipped, Detail: g.Detail,
		})
	}
	return nil, out, nil
}

func (s *Server) handleRenderReport(ctx context.Context, _ *sdkmcp.CallToolRequest, input renderReportInput) (*sdkmcp.CallToolResult, renderReportOutput, error) {
	name, res, err := s.loaded()
	if err != nil {
		return nil, renderReportOutput{}, err
	}
	return nil, renderReportOutput{
		Dataset: name,
		Report:  report.Format(res, format.ParseMode(input.Format)),
	}, nil
}

// loaded returns the current dataset or an instructive error.
func (s *Server) loaded() (string, *analyze.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return "", nil, fmt.Errorf("no dataset loaded (call load_results first)")
	}
	return s.name, s.result, nil
}

// finite returns nil for NaN so the value serializes as JSON null.
func finite(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}
