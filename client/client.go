// Package client is a typed client of the admin API, used by the operator CLI.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"github.com/sendgrid/rest"

	"github.com/trezcool/sadaka/core/content"
	"github.com/trezcool/sadaka/core/media"
	"github.com/trezcool/sadaka/core/payment"
)

// APIError is returned for any non 2xx response.
type APIError struct {
	Status  int
	Message string
	Fields  map[string]string // validation errors by field, if any
}

func (err *APIError) Error() string {
	if len(err.Fields) == 0 {
		return fmt.Sprintf("%d: %s", err.Status, err.Message)
	}
	fields := make([]string, 0, len(err.Fields))
	for f, msg := range err.Fields {
		fields = append(fields, f+": "+msg)
	}
	return fmt.Sprintf("%d: %s (%s)", err.Status, err.Message, strings.Join(fields, "; "))
}

// IsStatus reports whether the cause of err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	apiErr, ok := errors.Cause(err).(*APIError)
	return ok && apiErr.Status == status
}

func newAPIError(res *rest.Response) *APIError {
	apiErr := &APIError{Status: res.StatusCode, Message: http.StatusText(res.StatusCode)}

	var body map[string]interface{}
	if err := json.Unmarshal([]byte(res.Body), &body); err != nil {
		if msg := strings.TrimSpace(res.Body); msg != "" {
			apiErr.Message = msg
		}
		return apiErr
	}
	if msg, ok := body["error"].(string); ok && len(body) == 1 {
		apiErr.Message = msg
		return apiErr
	}
	apiErr.Fields = make(map[string]string, len(body))
	for f, v := range body {
		if msg, ok := v.(string); ok {
			apiErr.Fields[f] = msg
		}
	}
	if res.StatusCode == http.StatusBadRequest {
		apiErr.Message = "invalid data"
	}
	return apiErr
}

type Client struct {
	baseURL string
	token   string
	rest    *rest.Client
}

// New returns a client of the API served at baseURL. httpClient defaults to http.DefaultClient.
func New(baseURL, token string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		rest:    &rest.Client{HTTPClient: httpClient},
	}
}

func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) Token() string { return c.token }

// Login authenticates a staff user & keeps the token for the next requests.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	var res struct {
		Token string `json:"token"`
	}
	in := map[string]string{"username": username, "password": password}
	if err := c.do(ctx, rest.Post, "/v1/users/login", nil, in, &res); err != nil {
		return "", errors.Wrap(err, "logging in")
	}
	c.token = res.Token
	return c.token, nil
}

func (c *Client) GetPage(ctx context.Context, key string) (content.Page, error) {
	var page content.Page
	err := c.do(ctx, rest.Get, "/v1/pages/"+key, nil, nil, &page)
	return page, errors.Wrapf(err, "getting page %s", key)
}

func (c *Client) PutPage(ctx context.Context, key string, page content.Page) (content.Page, error) {
	var saved content.Page
	err := c.do(ctx, rest.Put, "/v1/pages/"+key, nil, page, &saved)
	return saved, errors.Wrapf(err, "saving page %s", key)
}

func (c *Client) PatchPage(ctx context.Context, key string, patch content.PagePatch) (content.Page, error) {
	var saved content.Page
	err := c.do(ctx, rest.Patch, "/v1/pages/"+key, nil, patch, &saved)
	return saved, errors.Wrapf(err, "patching page %s", key)
}

// Quote returns the fee breakdown of a donation of amount (minor units).
func (c *Client) Quote(ctx context.Context, amount int64) (payment.Quote, error) {
	var q payment.Quote
	err := c.do(ctx, rest.Get, "/v1/public/quote", map[string]string{"amount": fmt.Sprint(amount)}, nil, &q)
	return q, errors.Wrap(err, "quoting fees")
}

func (c *Client) FAQs() *Collection[content.FAQ] {
	return &Collection[content.FAQ]{c: c, path: "/v1/faqs", name: "faq", id: func(f content.FAQ) string { return f.ID }}
}

func (c *Client) Features() *Collection[content.Feature] {
	return &Collection[content.Feature]{c: c, path: "/v1/features", name: "feature", id: func(f content.Feature) string { return f.ID }}
}

func (c *Client) Guides() *Collection[content.Guide] {
	return &Collection[content.Guide]{c: c, path: "/v1/guides", name: "guide", id: func(g content.Guide) string { return g.ID }}
}

func (c *Client) Testimonials() *Collection[content.Testimonial] {
	return &Collection[content.Testimonial]{c: c, path: "/v1/testimonials", name: "testimonial", id: func(t content.Testimonial) string { return t.ID }}
}

// UploadInput is a file to upload. When Text is set, the API returns it with Placeholder replaced by the file URL.
type UploadInput struct {
	Filename    string
	Content     io.Reader
	Folder      string
	Alt         string
	Placeholder string
	Text        *string
}

type UploadResult struct {
	Asset       media.Asset `json:"asset"`
	Placeholder string      `json:"placeholder"`
	Snippet     string      `json:"snippet"`
	Text        *string     `json:"text"`
	Replaced    bool        `json:"replaced"`
}

func (c *Client) Upload(ctx context.Context, in UploadInput) (UploadResult, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", in.Filename)
	if err != nil {
		return UploadResult{}, errors.Wrap(err, "creating form file")
	}
	if _, err = io.Copy(part, in.Content); err != nil {
		return UploadResult{}, errors.Wrap(err, "reading file")
	}
	fields := map[string]string{"folder": in.Folder, "alt": in.Alt, "placeholder": in.Placeholder}
	for name, val := range fields {
		if val == "" {
			continue
		}
		if err = w.WriteField(name, val); err != nil {
			return UploadResult{}, errors.Wrapf(err, "writing %s field", name)
		}
	}
	if in.Text != nil {
		if err = w.WriteField("text", *in.Text); err != nil {
			return UploadResult{}, errors.Wrap(err, "writing text field")
		}
	}
	if err = w.Close(); err != nil {
		return UploadResult{}, errors.Wrap(err, "closing form")
	}

	req := c.request(rest.Post, "/v1/uploads", nil)
	req.Headers["Content-Type"] = w.FormDataContentType()
	req.Body = body.Bytes()

	var res UploadResult
	if err = c.send(ctx, req, &res); err != nil {
		return UploadResult{}, errors.Wrapf(err, "uploading %s", in.Filename)
	}
	return res, nil
}

func (c *Client) request(method rest.Method, path string, query map[string]string) rest.Request {
	headers := map[string]string{"Accept": "application/json"}
	if c.token != "" {
		headers["Authorization"] = "Bearer " + c.token
	}
	return rest.Request{
		Method:      method,
		BaseURL:     c.baseURL + path,
		Headers:     headers,
		QueryParams: query,
	}
}

// do sends in (if not nil) as JSON & decodes the response into out (if not nil).
func (c *Client) do(ctx context.Context, method rest.Method, path string, query map[string]string, in, out interface{}) error {
	req := c.request(method, path, query)
	if in != nil {
		body, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(err, "encoding request")
		}
		req.Body = body
	}
	return c.send(ctx, req, out)
}

func (c *Client) send(ctx context.Context, req rest.Request, out interface{}) error {
	res, err := c.rest.SendWithContext(ctx, req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", req.Method, req.BaseURL)
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return newAPIError(res)
	}
	if out == nil || res.StatusCode == http.StatusNoContent {
		return nil
	}
	if err = json.Unmarshal([]byte(res.Body), out); err != nil {
		return errors.Wrap(err, "decoding response")
	}
	return nil
}
