package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/lshigami/Caracal/config"
	"github.com/lshigami/Caracal/internal/model"
	"github.com/rs/zerolog/log"
)

// TestCaseResult is the sandbox verdict for one test case.
type TestCaseResult struct {
	Index  int  `json:"index"`
	Passed bool `json:"passed"`
}

// CodeRunnerService executes candidate source against a question's test
// cases. The real sandbox is an external service; callers must bound every
// call with a context timeout and treat failure as zero passed cases.
type CodeRunnerService interface {
	Run(ctx context.Context, language, source string, testCases []model.TestCase) ([]TestCaseResult, error)
}

type sandboxRunRequest struct {
	Language  string             `json:"language"`
	Source    string             `json:"source"`
	TestCases []sandboxTestCase  `json:"test_cases"`
}

type sandboxTestCase struct {
	Index    int    `json:"index"`
	Input    string `json:"input"`
	Expected string `json:"expected"`
}

type sandboxRunResponse struct {
	Results []TestCaseResult `json:"results"`
}

type sandboxCodeRunner struct {
	cfg    *config.Config
	client *http.Client
}

// NewSandboxCodeRunner builds the HTTP client for the configured sandbox.
// With no SANDBOX_URL set the runner is non-functional and every Run call
// errors, which scoring treats as all test cases failed.
func NewSandboxCodeRunner(cfg *config.Config) CodeRunnerService {
	if cfg.Sandbox.URL == "" {
		log.Warn().Msg("SANDBOX_URL is not set. Code execution will be non-functional and coding answers will score zero.")
	}
	return &sandboxCodeRunner{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Sandbox.Timeout},
	}
}

func (s *sandboxCodeRunner) Run(ctx context.Context, language, source string, testCases []model.TestCase) ([]TestCaseResult, error) {
	if s.cfg.Sandbox.URL == "" {
		return nil, fmt.Errorf("sandbox not configured")
	}

	req := sandboxRunRequest{Language: language, Source: source}
	for i, tc := range testCases {
		req.TestCases = append(req.TestCases, sandboxTestCase{Index: i, Input: tc.Input, Expected: tc.Expected})
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal sandbox request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.Sandbox.URL+"/run", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build sandbox request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("sandbox call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sandbox returned status %d", resp.StatusCode)
	}

	var runResp sandboxRunResponse
	if err := json.NewDecoder(resp.Body).Decode(&runResp); err != nil {
		return nil, fmt.Errorf("decode sandbox response: %w", err)
	}
	return runResp.Results, nil
}
