package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"vendorwatch/internal/model"
)

// OllamaBackend is the offline variant: a locally served model with a
// JSON response-format hint. It never produces grounding sources.
type OllamaBackend struct {
	httpClient *http.Client
	baseURL    string
	model      string
}

func NewOllamaBackend(baseURL, model string) *OllamaBackend {
	return &OllamaBackend{
		httpClient: &http.Client{Timeout: 5 * time.Minute},
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		model:      model,
	}
}

type ollamaGenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Format string `json:"format"`
	Stream bool   `json:"stream"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

func (o *OllamaBackend) Analyze(ctx context.Context, domain string, scanType model.ScanType) (string, []model.Source, error) {
	if o.baseURL == "" || o.model == "" {
		return "", nil, fmt.Errorf("%w: Ollama URL or model is not set", ErrConfiguration)
	}

	prompt := fullScanPrompt(domain)
	if scanType == model.ScanQuick {
		prompt = quickScanPrompt(domain)
	}

	payload := ollamaGenerateRequest{
		Model:  o.model,
		Prompt: prompt,
		Format: "json",
		Stream: false,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	httpResp, err := o.httpClient.Do(req)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrConnectivity, err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return "", nil, fmt.Errorf("%w: reading response: %v", ErrConnectivity, err)
	}
	if httpResp.StatusCode != http.StatusOK {
		return "", nil, fmt.Errorf("%w: Ollama API returned %s", ErrConnectivity, httpResp.Status)
	}

	var resp ollamaGenerateResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return "", nil, fmt.Errorf("%w: decoding response envelope: %v", ErrConnectivity, err)
	}

	return resp.Response, nil, nil
}
