package chatterbox

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// CSRFCookieName is the cookie the anti-forgery token is read from.
const CSRFCookieName = "csrftoken"

// Transport delivers commands to the room.
type Transport interface {
	Send(ctx context.Context, cmd Command) error
}

// HTTPTransport posts commands as form-encoded requests to the room URL.
type HTTPTransport struct {
	roomURL    *url.URL
	csrfToken  string
	httpClient *http.Client
}

// NewHTTPTransport creates a transport posting to roomURL. The client's
// cookie jar, when set, supplies the csrftoken cookie; fallbackToken is
// used when the jar has none.
func NewHTTPTransport(roomURL, fallbackToken string, client *http.Client) (*HTTPTransport, error) {
	u, err := url.Parse(roomURL)
	if err != nil {
		return nil, WrapError(ErrorInvalidConfig, "parse room URL", err)
	}
	if client == nil {
		client = &http.Client{Timeout: DefaultConfig().RequestTimeout}
	}
	return &HTTPTransport{roomURL: u, csrfToken: fallbackToken, httpClient: client}, nil
}

// SetHTTPClient allows setting a custom HTTP client.
func (t *HTTPTransport) SetHTTPClient(client *http.Client) {
	if client != nil {
		t.httpClient = client
	}
}

// CSRFToken returns the token the next request will carry.
func (t *HTTPTransport) CSRFToken() string {
	if jar := t.httpClient.Jar; jar != nil {
		for _, c := range jar.Cookies(t.roomURL) {
			if c.Name == CSRFCookieName {
				return c.Value
			}
		}
	}
	return t.csrfToken
}

// Send posts cmd and waits for the response status.
func (t *HTTPTransport) Send(ctx context.Context, cmd Command) error {
	body := strings.NewReader(cmd.Form().Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.roomURL.String(), body)
	if err != nil {
		return WrapError(ErrorTransport, "create request", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if token := t.CSRFToken(); token != "" {
		req.Header.Set("X-CSRFToken", token)
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return WrapError(ErrorTransport, "http request", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode >= 400 {
		return NewError(ErrorTransport, fmt.Sprintf("post %s: status %d", cmd.Mode, resp.StatusCode))
	}
	return nil
}

// timeoutTransport bounds each Send by a fixed timeout.
type timeoutTransport struct {
	Transport
	timeout time.Duration
}

func (t timeoutTransport) Send(ctx context.Context, cmd Command) error {
	if t.timeout <= 0 {
		return t.Transport.Send(ctx, cmd)
	}
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.Transport.Send(ctx, cmd)
}
