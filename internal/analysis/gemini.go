package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"vendorwatch/internal/model"
)

const geminiEndpoint = "https://generativelanguage.googleapis.com/v1beta/models"

type GeminiConfig struct {
	APIKey string
	Model  string
}

// GeminiBackend is the grounded variant: a single structured request to
// the hosted reasoning service with live-search augmentation enabled.
type GeminiBackend struct {
	httpClient *http.Client
	cfg        GeminiConfig
}

func NewGeminiBackend(cfg GeminiConfig) *GeminiBackend {
	if cfg.Model == "" {
		cfg.Model = "gemini-2.5-pro"
	}
	return &GeminiBackend{
		httpClient: &http.Client{Timeout: 5 * time.Minute},
		cfg:        cfg,
	}
}

type geminiRequest struct {
	Contents         []geminiContent       `json:"contents"`
	Tools            []geminiTool          `json:"tools,omitempty"`
	GenerationConfig *geminiGenerationConf `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiTool struct {
	GoogleSearch struct{} `json:"google_search"`
}

type geminiGenerationConf struct {
	Temperature float64 `json:"temperature"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
		GroundingMetadata struct {
			GroundingChunks []struct {
				Web struct {
					URI   string `json:"uri"`
					Title string `json:"title"`
				} `json:"web"`
			} `json:"groundingChunks"`
		} `json:"groundingMetadata"`
	} `json:"candidates"`
}

func (g *GeminiBackend) Analyze(ctx context.Context, domain string, scanType model.ScanType) (string, []model.Source, error) {
	prompt := fullScanPrompt(domain)
	if scanType == model.ScanQuick {
		prompt = quickScanPrompt(domain)
	}

	resp, err := g.generate(ctx, prompt, true)
	if err != nil {
		return "", nil, err
	}

	if len(resp.Candidates) == 0 {
		return "", nil, fmt.Errorf("%w: empty candidate list", ErrConnectivity)
	}
	cand := resp.Candidates[0]

	var text string
	for _, p := range cand.Content.Parts {
		text += p.Text
	}

	var sources []model.Source
	for _, chunk := range cand.GroundingMetadata.GroundingChunks {
		if chunk.Web.URI == "" || chunk.Web.Title == "" {
			continue
		}
		sources = append(sources, model.Source{Title: chunk.Web.Title, URI: chunk.Web.URI})
	}

	return text, sources, nil
}

// AnalyzeContract reviews contract text. Contract review runs without the
// search tool; it reasons over the supplied text only.
func (g *GeminiBackend) AnalyzeContract(ctx context.Context, contractText string) (string, error) {
	resp, err := g.generate(ctx, contractPrompt(contractText), false)
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: empty candidate list", ErrConnectivity)
	}
	var text string
	for _, p := range resp.Candidates[0].Content.Parts {
		text += p.Text
	}
	return text, nil
}

func (g *GeminiBackend) generate(ctx context.Context, prompt string, grounded bool) (*geminiResponse, error) {
	if g.cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: Gemini API key is not set", ErrConfiguration)
	}

	payload := geminiRequest{
		Contents:         []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: &geminiGenerationConf{Temperature: 0.1},
	}
	if grounded {
		payload.Tools = []geminiTool{{}}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	url := fmt.Sprintf("%s/%s:generateContent", geminiEndpoint, g.cfg.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.cfg.APIKey)

	httpResp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectivity, err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", ErrConnectivity, err)
	}
	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: Gemini API returned %s", ErrConnectivity, httpResp.Status)
	}

	var resp geminiResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("%w: decoding response envelope: %v", ErrConnectivity, err)
	}
	return &resp, nil
}
