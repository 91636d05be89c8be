package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/yungbote/brainforge-backend/internal/platform/ctxutil"
	"github.com/yungbote/brainforge-backend/internal/platform/envutil"
	"github.com/yungbote/brainforge-backend/internal/platform/logger"
)

// ErrNotConfigured is returned by constructors when OPENAI_API_KEY is unset.
var ErrNotConfigured = errors.New("missing OPENAI_API_KEY")

type ImageGeneration struct {
	Bytes         []byte
	MimeType      string
	RevisedPrompt string
}

// ImageClient is the subset of the OpenAI Images API the puzzle generator uses.
// Calls are never retried here; generation is expensive and callers decide.
type ImageClient interface {
	// GenerateImage renders prompt at size ("WxH"; empty uses the client default).
	GenerateImage(ctx context.Context, prompt, size string) (ImageGeneration, error)
	// EditImage produces a variant of image (PNG bytes) following prompt.
	EditImage(ctx context.Context, image []byte, prompt, size string) (ImageGeneration, error)
}

type Config struct {
	APIKey     string
	BaseURL    string
	ImageModel string
	ImageSize  string
	Timeout    time.Duration
}

// ConfigFromEnv reads OPENAI_* variables with the service defaults.
func ConfigFromEnv() Config {
	return Config{
		APIKey:     envutil.String("OPENAI_API_KEY", ""),
		BaseURL:    envutil.String("OPENAI_BASE_URL", "https://api.openai.com"),
		ImageModel: envutil.String("OPENAI_IMAGE_MODEL", "gpt-image-1"),
		ImageSize:  envutil.String("OPENAI_IMAGE_SIZE", "1024x1024"),
		Timeout:    envutil.Seconds("OPENAI_TIMEOUT_SECONDS", 180*time.Second),
	}
}

type client struct {
	log        *logger.Logger
	baseURL    string
	apiKey     string
	imageModel string
	imageSize  string
	httpClient *http.Client
}

func NewImageClient(log *logger.Logger, cfg Config) (ImageClient, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrNotConfigured
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 180 * time.Second
	}
	return &client{
		log:        log.With("service", "OpenAIImageClient"),
		baseURL:    baseURL,
		apiKey:     strings.TrimSpace(cfg.APIKey),
		imageModel: strings.TrimSpace(cfg.ImageModel),
		imageSize:  strings.TrimSpace(cfg.ImageSize),
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

type openAIHTTPError struct {
	StatusCode int
	Body       string
}

func (e *openAIHTTPError) Error() string {
	return fmt.Sprintf("openai http %d: %s", e.StatusCode, e.Body)
}

func (e *openAIHTTPError) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.StatusCode
}

// -------------------- Images API --------------------

type imagesGenerationRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	N              int    `json:"n,omitempty"`
	Size           string `json:"size,omitempty"`
	ResponseFormat string `json:"response_format,omitempty"` // b64_json|url
}

type imagesResponse struct {
	Data []struct {
		B64JSON       string `json:"b64_json"`
		URL           string `json:"url"`
		RevisedPrompt string `json:"revised_prompt"`
	} `json:"data"`
}

// gpt-image-* models always answer with b64_json and reject response_format.
func (c *client) responseFormat() string {
	if strings.HasPrefix(strings.ToLower(c.imageModel), "gpt-image-") {
		return ""
	}
	return "b64_json"
}

func (c *client) size(s string) string {
	if s = strings.TrimSpace(s); s != "" {
		return s
	}
	return c.imageSize
}

func (c *client) GenerateImage(ctx context.Context, prompt, size string) (ImageGeneration, error) {
	var out ImageGeneration
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return out, errors.New("image prompt required")
	}
	if c.imageModel == "" {
		return out, errors.New("missing OPENAI_IMAGE_MODEL")
	}
	req := imagesGenerationRequest{
		Model:          c.imageModel,
		Prompt:         prompt,
		N:              1,
		Size:           c.size(size),
		ResponseFormat: c.responseFormat(),
	}
	body, err := json.Marshal(req)
	if err != nil {
		return out, err
	}
	var resp imagesResponse
	if err := c.doOnce(ctx, "/v1/images/generations", bytes.NewReader(body), "application/json", &resp); err != nil {
		return out, err
	}
	return c.firstImage(ctx, resp)
}

func (c *client) EditImage(ctx context.Context, image []byte, prompt, size string) (ImageGeneration, error) {
	var out ImageGeneration
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return out, errors.New("edit prompt required")
	}
	if len(image) == 0 {
		return out, errors.New("edit source image required")
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fields := map[string]string{
		"model":  c.imageModel,
		"prompt": prompt,
		"n":      "1",
		"size":   c.size(size),
	}
	if rf := c.responseFormat(); rf != "" {
		fields["response_format"] = rf
	}
	for k, v := range fields {
		if v == "" {
			continue
		}
		if err := mw.WriteField(k, v); err != nil {
			return out, err
		}
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="image"; filename="image.png"`)
	h.Set("Content-Type", "image/png")
	part, err := mw.CreatePart(h)
	if err != nil {
		return out, err
	}
	if _, err := part.Write(image); err != nil {
		return out, err
	}
	if err := mw.Close(); err != nil {
		return out, err
	}

	var resp imagesResponse
	if err := c.doOnce(ctx, "/v1/images/edits", &buf, mw.FormDataContentType(), &resp); err != nil {
		return out, err
	}
	return c.firstImage(ctx, resp)
}

func (c *client) firstImage(ctx context.Context, resp imagesResponse) (ImageGeneration, error) {
	var out ImageGeneration
	if len(resp.Data) == 0 {
		return out, errors.New("no image returned")
	}
	item := resp.Data[0]
	out.RevisedPrompt = strings.TrimSpace(item.RevisedPrompt)
	if b64 := strings.TrimSpace(item.B64JSON); b64 != "" {
		raw, err := base64.StdEncoding.DecodeString(b64)
		if err != nil || len(raw) == 0 {
			return out, fmt.Errorf("decode image base64: %w", err)
		}
		out.Bytes = raw
		out.MimeType = "image/png"
		return out, nil
	}
	u := strings.TrimSpace(item.URL)
	if u == "" {
		return out, errors.New("image response missing b64_json and url")
	}
	b, ct, err := c.downloadBytes(ctx, u)
	if err != nil {
		return out, fmt.Errorf("download generated image: %w", err)
	}
	out.Bytes = b
	out.MimeType = strings.TrimSpace(strings.Split(ct, ";")[0])
	if out.MimeType == "" {
		out.MimeType = "image/png"
	}
	return out, nil
}

func (c *client) doOnce(ctx context.Context, path string, body io.Reader, contentType string, out any) error {
	start := time.Now()
	req, err := http.NewRequestWithContext(ctxutil.Default(ctx), http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return readErr
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.log.Warn("OpenAI images request failed", "path", path, "status", resp.StatusCode, "duration", time.Since(start).String())
		return &openAIHTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	c.log.Debug("OpenAI images request ok", "path", path, "duration", time.Since(start).String())
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("openai decode error: %w", err)
	}
	return nil
}

func (c *client) downloadBytes(ctx context.Context, rawURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctxutil.Default(ctx), http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", err
	}
	// Signed blob URLs break when an unrelated Authorization header is sent.
	if shouldAttachOpenAIAuth(c.baseURL, rawURL) {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", err
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return nil, "", readErr
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", &openAIHTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return raw, strings.TrimSpace(resp.Header.Get("Content-Type")), nil
}

func shouldAttachOpenAIAuth(baseURL, rawURL string) bool {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u == nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return false
	}
	if bu, err := url.Parse(strings.TrimSpace(baseURL)); err == nil && bu != nil {
		if baseHost := strings.ToLower(bu.Hostname()); baseHost != "" && host == baseHost {
			return true
		}
	}
	return host == "openai.com" || strings.HasSuffix(host, ".openai.com")
}
