package analysis

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"glucolog/domain"
)

const (
	defaultBaseURL    = "https://generativelanguage.googleapis.com/v1beta/models"
	defaultModel      = "gemini-1.5-flash"
	maxImageBytes     = 10 << 20
	imageFetchTimeout = 15 * time.Second
)

type (
	geminiPart struct {
		Text       string            `json:"text,omitempty"`
		InlineData *geminiInlineData `json:"inline_data,omitempty"`
	}

	geminiInlineData struct {
		MimeType string `json:"mime_type"`
		Data     string `json:"data"`
	}

	geminiContent struct {
		Role  string       `json:"role,omitempty"`
		Parts []geminiPart `json:"parts"`
	}

	geminiRequest struct {
		SystemInstruction *geminiContent         `json:"system_instruction,omitempty"`
		Contents          []geminiContent        `json:"contents"`
		GenerationConfig  geminiGenerationConfig `json:"generationConfig"`
	}

	geminiGenerationConfig struct {
		Temperature      float64 `json:"temperature"`
		ResponseMimeType string  `json:"responseMimeType,omitempty"`
	}

	geminiResponse struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}

	GeminiClient struct {
		apiKey      string
		model       string
		baseURL     string
		httpClient  *http.Client
		imageClient *http.Client
	}

	GeminiOption func(*GeminiClient)
)

func WithBaseURL(baseURL string) GeminiOption {
	return func(c *GeminiClient) { c.baseURL = strings.TrimRight(baseURL, "/") }
}

func WithHTTPClient(client *http.Client) GeminiOption {
	return func(c *GeminiClient) { c.httpClient = client }
}

func WithImageClient(client *http.Client) GeminiOption {
	return func(c *GeminiClient) { c.imageClient = client }
}

func NewGeminiClient(apiKey, model string, opts ...GeminiOption) *GeminiClient {
	if model == "" {
		model = defaultModel
	}
	c := &GeminiClient{
		apiKey:      apiKey,
		model:       model,
		baseURL:     defaultBaseURL,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		imageClient: &http.Client{Timeout: imageFetchTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *GeminiClient) AnalyzeText(ctx context.Context, description string) (domain.TextAnalysis, error) {
	text, err := c.generate(ctx, []geminiPart{{Text: textPrompt(description)}})
	if err != nil {
		return domain.TextAnalysis{}, err
	}

	var raw struct {
		EstimatedCarbs  *float64 `json:"estimatedCarbs"`
		EstimatedSugar  *float64 `json:"estimatedSugar"`
		Summary         string   `json:"summary"`
		CarbSource      string   `json:"carbSource"`
		FoodItems       []string `json:"foodItems"`
		Recommendations []string `json:"recommendations"`
	}
	if err := decodeJSON(text, '{', '}', &raw); err != nil {
		return domain.TextAnalysis{}, err
	}
	if raw.EstimatedCarbs == nil || *raw.EstimatedCarbs < 0 {
		return domain.TextAnalysis{}, newError(KindMalformed, errors.New("missing or negative estimatedCarbs"))
	}
	if raw.EstimatedSugar != nil && *raw.EstimatedSugar < 0 {
		return domain.TextAnalysis{}, newError(KindMalformed, errors.New("negative estimatedSugar"))
	}

	res := domain.TextAnalysis{
		EstimatedCarbs:  *raw.EstimatedCarbs,
		Summary:         strings.TrimSpace(raw.Summary),
		CarbSource:      strings.TrimSpace(raw.CarbSource),
		FoodItems:       raw.FoodItems,
		Recommendations: nonEmpty(raw.Recommendations),
	}
	if raw.EstimatedSugar != nil {
		res.EstimatedSugar = *raw.EstimatedSugar
	}
	return res, nil
}

func (c *GeminiClient) AnalyzePhoto(ctx context.Context, imageRef string) (domain.PhotoAnalysis, error) {
	if c.apiKey == "" {
		return domain.PhotoAnalysis{}, newError(KindUnavailable, ErrNoAPIKey)
	}
	inline, err := c.resolveImage(ctx, imageRef)
	if err != nil {
		return domain.PhotoAnalysis{}, err
	}

	text, err := c.generate(ctx, []geminiPart{{Text: photoPrompt}, {InlineData: inline}})
	if err != nil {
		return domain.PhotoAnalysis{}, err
	}

	var raw struct {
		Foods          []string `json:"foods"`
		Description    string   `json:"description"`
		CarbSource     string   `json:"carbSource"`
		EstimatedCarbs *float64 `json:"estimatedCarbs"`
	}
	if err := decodeJSON(text, '{', '}', &raw); err != nil {
		return domain.PhotoAnalysis{}, err
	}
	res := domain.PhotoAnalysis{
		Foods:       nonEmpty(raw.Foods),
		Description: strings.TrimSpace(raw.Description),
		CarbSource:  strings.TrimSpace(raw.CarbSource),
	}
	if raw.EstimatedCarbs != nil {
		if *raw.EstimatedCarbs < 0 {
			return domain.PhotoAnalysis{}, newError(KindMalformed, errors.New("negative estimatedCarbs"))
		}
		res.EstimatedCarbs = *raw.EstimatedCarbs
	} else if len(res.Foods) > 0 {
		return domain.PhotoAnalysis{}, newError(KindMalformed, errors.New("missing estimatedCarbs"))
	}
	return res, nil
}

func (c *GeminiClient) Clarify(ctx context.Context, description string) ([]string, error) {
	text, err := c.generate(ctx, []geminiPart{{Text: clarifyPrompt(description)}})
	if err != nil {
		return nil, err
	}

	var questions []string
	if err := decodeJSON(text, '[', ']', &questions); err != nil {
		return nil, err
	}
	return nonEmpty(questions), nil
}

func (c *GeminiClient) generate(ctx context.Context, parts []geminiPart) (string, error) {
	if c.apiKey == "" {
		return "", newError(KindUnavailable, ErrNoAPIKey)
	}

	body, err := json.Marshal(geminiRequest{
		SystemInstruction: &geminiContent{Parts: []geminiPart{{Text: systemInstruction}}},
		Contents:          []geminiContent{{Role: "user", Parts: parts}},
		GenerationConfig: geminiGenerationConfig{
			Temperature:      0.3,
			ResponseMimeType: "application/json",
		},
	})
	if err != nil {
		return "", newError(KindUpstream, err)
	}

	endpoint := fmt.Sprintf("%s/%s:generateContent?key=%s", c.baseURL, c.model, url.QueryEscape(c.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", newError(KindUpstream, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil || isTimeout(err) {
			return "", newError(KindTimeout, err)
		}
		return "", newError(KindUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		apiErr := fmt.Errorf("gemini API error: %s - %s", resp.Status, strings.TrimSpace(string(bodyBytes)))
		if resp.StatusCode == http.StatusTooManyRequests {
			return "", newError(KindQuota, apiErr)
		}
		return "", newError(KindUpstream, apiErr)
	}

	var geminiResp geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&geminiResp); err != nil {
		if ctx.Err() != nil {
			return "", newError(KindTimeout, err)
		}
		return "", newError(KindMalformed, err)
	}
	if len(geminiResp.Candidates) == 0 || len(geminiResp.Candidates[0].Content.Parts) == 0 {
		return "", newError(KindMalformed, errors.New("empty candidate list"))
	}

	var sb strings.Builder
	for _, p := range geminiResp.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String(), nil
}

// resolveImage inlines a data: URL as is and downloads http(s) references.
func (c *GeminiClient) resolveImage(ctx context.Context, ref string) (*geminiInlineData, error) {
	if strings.HasPrefix(ref, "data:") {
		mimeType, data, err := DecodeDataURL(ref)
		if err != nil {
			return nil, newError(KindMalformed, err)
		}
		return &geminiInlineData{MimeType: mimeType, Data: base64.StdEncoding.EncodeToString(data)}, nil
	}

	u, err := url.Parse(ref)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, newError(KindMalformed, fmt.Errorf("unsupported image reference %q", ref))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, newError(KindUpstream, err)
	}
	resp, err := c.imageClient.Do(req)
	if err != nil {
		if ctx.Err() != nil || isTimeout(err) {
			return nil, newError(KindTimeout, err)
		}
		return nil, newError(KindUpstream, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, newError(KindUpstream, fmt.Errorf("fetch image: %s", resp.Status))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, newError(KindUpstream, err)
	}
	if len(data) > maxImageBytes {
		return nil, newError(KindMalformed, errors.New("image exceeds 10MB"))
	}
	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return nil, newError(KindMalformed, fmt.Errorf("reference is %s, not an image", mtype.String()))
	}
	return &geminiInlineData{MimeType: mtype.String(), Data: base64.StdEncoding.EncodeToString(data)}, nil
}

// DecodeDataURL parses "data:<mime>;base64,<payload>".
func DecodeDataURL(ref string) (string, []byte, error) {
	header, payload, ok := strings.Cut(strings.TrimPrefix(ref, "data:"), ",")
	if !ok || !strings.HasSuffix(header, ";base64") {
		return "", nil, domain.ErrInvalidImage
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", domain.ErrInvalidImage, err)
	}
	mimeType := strings.TrimSuffix(header, ";base64")
	if mimeType == "" {
		mimeType = mimetype.Detect(data).String()
	}
	return mimeType, data, nil
}

func isTimeout(err error) bool {
	var te interface{ Timeout() bool }
	return errors.As(err, &te) && te.Timeout()
}

func nonEmpty(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s := strings.TrimSpace(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}
