// Package snackapi provides a client for the snack counter REST API.
package snackapi

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/abrezinsky/snackcounter/internal/errors"
	"github.com/abrezinsky/snackcounter/internal/logger"
	"github.com/abrezinsky/snackcounter/internal/models"
)

// DefaultTimeout bounds every request made by HTTPClient
const DefaultTimeout = 10 * time.Second

// File is an image attached to a create or update request
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Client defines the snack API operations
type Client interface {
	// List returns all snacks, newest first
	List(ctx context.Context) ([]models.Snack, error)
	// Get returns a single snack
	Get(ctx context.Context, id string) (*models.Snack, error)
	// Create stores a new snack. Either in.Img or file must be set.
	Create(ctx context.Context, in models.Snack, file *File) (*models.Snack, error)
	// Update merges patch (and an optional replacement image) over an existing snack
	Update(ctx context.Context, id string, patch models.SnackPatch, file *File) (*models.Snack, error)
	// Delete permanently removes a snack
	Delete(ctx context.Context, id string) error
	// AssetBase is the origin server-relative image paths resolve against
	AssetBase() string
}

// HTTPClient is a real HTTP client for the snack API
type HTTPClient struct {
	baseURL    string
	assetBase  string
	httpClient *http.Client
	log        logger.Logger
}

// Option configures an HTTPClient
type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) {
		c.httpClient.Timeout = d
	}
}

// WithAssetBase overrides the static asset origin derived from the base URL
func WithAssetBase(base string) Option {
	return func(c *HTTPClient) {
		c.assetBase = strings.TrimSuffix(base, "/")
	}
}

// NewHTTPClient creates a client for the API rooted at baseURL, e.g.
// "http://localhost:5000/api". Snack routes live under baseURL + "/snacks".
func NewHTTPClient(baseURL string, log logger.Logger, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		log:        log,
	}
	c.assetBase = origin(c.baseURL)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured API base URL
func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

// AssetBase returns the origin uploads are served from
func (c *HTTPClient) AssetBase() string {
	return c.assetBase
}

// origin returns scheme://host of raw, or raw itself when it cannot be parsed
func origin(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return raw
	}
	return u.Scheme + "://" + u.Host
}

// apiError mirrors the server's error body
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// do executes req and decodes a successful JSON response into out (if non-nil).
// Non-2xx responses are mapped to error kinds by status class.
func (c *HTTPClient) do(req *http.Request, out interface{}) error {
	c.log.Debug("Snack API request", "method", req.Method, "url", req.URL.String())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		var urlErr *url.Error
		if stderrors.As(err, &urlErr) && urlErr.Timeout() {
			return errors.Transport("request timed out", err)
		}
		return errors.Transport("failed to reach snack API", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Transport("failed to read response", err)
	}

	c.log.Debug("Snack API response", "status", resp.StatusCode, "bytes", len(body))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp.StatusCode, body)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return errors.Transport("failed to parse response", err)
	}
	return nil
}

func statusError(status int, body []byte) error {
	var e apiError
	if err := json.Unmarshal(body, &e); err != nil || e.Message == "" {
		e.Message = http.StatusText(status)
	}

	switch {
	case status == http.StatusBadRequest:
		return errors.Validation(e.Message)
	case status == http.StatusNotFound:
		return errors.NotFound(e.Message)
	default:
		return errors.Store(e.Message, fmt.Errorf("snack API returned status %d", status))
	}
}

func (c *HTTPClient) snacksURL(id string) string {
	if id == "" {
		return c.baseURL + "/snacks"
	}
	return c.baseURL + "/snacks/" + url.PathEscape(id)
}

// List returns all snacks, newest first
func (c *HTTPClient) List(ctx context.Context) ([]models.Snack, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.snacksURL(""), nil)
	if err != nil {
		return nil, errors.Transport("failed to create request", err)
	}

	var snacks []models.Snack
	if err := c.do(req, &snacks); err != nil {
		return nil, err
	}
	return snacks, nil
}

// Get returns a single snack by ID
func (c *HTTPClient) Get(ctx context.Context, id string) (*models.Snack, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.snacksURL(id), nil)
	if err != nil {
		return nil, errors.Transport("failed to create request", err)
	}

	var snack models.Snack
	if err := c.do(req, &snack); err != nil {
		return nil, err
	}
	return &snack, nil
}

// Create posts a multipart form with name, price, category and either the
// image file or the img URL
func (c *HTTPClient) Create(ctx context.Context, in models.Snack, file *File) (*models.Snack, error) {
	fields := map[string]string{
		"name":     in.Name,
		"price":    formatPrice(in.Price),
		"category": string(in.Category),
	}
	if file == nil {
		fields["img"] = in.Img
	}

	body, contentType, err := multipartBody(fields, file)
	if err != nil {
		return nil, errors.Transport("failed to encode request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.snacksURL(""), body)
	if err != nil {
		return nil, errors.Transport("failed to create request", err)
	}
	req.Header.Set("Content-Type", contentType)

	var snack models.Snack
	if err := c.do(req, &snack); err != nil {
		return nil, err
	}
	return &snack, nil
}

// Update sends a JSON patch, or a multipart form when a replacement image is attached
func (c *HTTPClient) Update(ctx context.Context, id string, patch models.SnackPatch, file *File) (*models.Snack, error) {
	var (
		body        io.Reader
		contentType string
	)

	if file == nil {
		data, err := json.Marshal(patchBody(patch))
		if err != nil {
			return nil, errors.Transport("failed to encode request", err)
		}
		body, contentType = bytes.NewReader(data), "application/json"
	} else {
		fields := map[string]string{}
		if patch.Name != nil {
			fields["name"] = *patch.Name
		}
		if patch.Price != nil {
			fields["price"] = formatPrice(*patch.Price)
		}
		if patch.Category != nil {
			fields["category"] = string(*patch.Category)
		}
		var err error
		body, contentType, err = multipartBody(fields, file)
		if err != nil {
			return nil, errors.Transport("failed to encode request", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.snacksURL(id), body)
	if err != nil {
		return nil, errors.Transport("failed to create request", err)
	}
	req.Header.Set("Content-Type", contentType)

	var snack models.Snack
	if err := c.do(req, &snack); err != nil {
		return nil, err
	}
	return &snack, nil
}

// Delete removes a snack by ID
func (c *HTTPClient) Delete(ctx context.Context, id string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.snacksURL(id), nil)
	if err != nil {
		return errors.Transport("failed to create request", err)
	}
	return c.do(req, nil)
}

type patchJSON struct {
	Name     *string          `json:"name,omitempty"`
	Price    *float64         `json:"price,omitempty"`
	Category *models.Category `json:"category,omitempty"`
	Img      *string          `json:"img,omitempty"`
}

// patchBody keeps a zero price: omitempty only drops nil pointers
func patchBody(p models.SnackPatch) patchJSON {
	return patchJSON{Name: p.Name, Price: p.Price, Category: p.Category, Img: p.Img}
}

func formatPrice(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}

func multipartBody(fields map[string]string, file *File) (io.Reader, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return nil, "", err
		}
	}
	if file != nil {
		fw, err := mw.CreateFormFile("img", file.Name)
		if err != nil {
			return nil, "", err
		}
		if _, err := fw.Write(file.Data); err != nil {
			return nil, "", err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}

// Ensure concrete types implement interfaces
var (
	_ Client = (*HTTPClient)(nil)
	_ Client = (*MockClient)(nil)
)
