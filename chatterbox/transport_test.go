package chatterbox

import (
	"context"
	"errors"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/go-chi/chi/v5"
)

type postedForm struct {
	contentType string
	csrf        string
	form        url.Values
}

func newRoomServer(t *testing.T, status int) (*httptest.Server, <-chan postedForm) {
	t.Helper()
	posts := make(chan postedForm, 8)
	r := chi.NewRouter()
	r.Post("/{room}/", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		posts <- postedForm{
			contentType: r.Header.Get("Content-Type"),
			csrf:        r.Header.Get("X-CSRFToken"),
			form:        r.PostForm,
		}
		w.WriteHeader(status)
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, posts
}

func TestHTTPTransportSend(t *testing.T) {
	srv, posts := newRoomServer(t, http.StatusOK)
	roomURL := srv.URL + "/lobby/"

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	u, _ := url.Parse(roomURL)
	jar.SetCookies(u, []*http.Cookie{{Name: CSRFCookieName, Value: "from-cookie", Path: "/"}})

	tr, err := NewHTTPTransport(roomURL, "fallback", &http.Client{Jar: jar})
	if err != nil {
		t.Fatalf("new transport: %v", err)
	}
	cmd := Command{Mode: ModeMsg, Message: "hello there", Extras: map[string]string{"target": "alice"}}
	if err := tr.Send(context.Background(), cmd); err != nil {
		t.Fatalf("send: %v", err)
	}

	got := <-posts
	if got.contentType != "application/x-www-form-urlencoded" {
		t.Fatalf("unexpected content type %q", got.contentType)
	}
	if got.csrf != "from-cookie" {
		t.Fatalf("expected cookie csrf token, got %q", got.csrf)
	}
	if got.form.Get("mode") != "msg" || got.form.Get("message") != "hello there" || got.form.Get("target") != "alice" {
		t.Fatalf("unexpected form: %v", got.form)
	}
}

func TestHTTPTransportFallbackToken(t *testing.T) {
	srv, posts := newRoomServer(t, http.StatusOK)

	tr, err := NewHTTPTransport(srv.URL+"/lobby/", "fallback", &http.Client{})
	if err != nil {
		t.Fatalf("new transport: %v", err)
	}
	if err := tr.Send(context.Background(), Command{Mode: ModeNames}); err != nil {
		t.Fatalf("send: %v", err)
	}
	got := <-posts
	if got.csrf != "fallback" {
		t.Fatalf("expected fallback token, got %q", got.csrf)
	}
	if got.form.Get("mode") != "names" || got.form.Get("message") != "" {
		t.Fatalf("unexpected form: %v", got.form)
	}
}

func TestHTTPTransportErrorStatus(t *testing.T) {
	srv, _ := newRoomServer(t, http.StatusForbidden)

	tr, err := NewHTTPTransport(srv.URL+"/lobby/", "", nil)
	if err != nil {
		t.Fatalf("new transport: %v", err)
	}
	err = tr.Send(context.Background(), Command{Mode: ModeMessage, Message: "hi"})
	var ce *ChatError
	if !errors.As(err, &ce) || ce.Code != ErrorTransport {
		t.Fatalf("expected transport error, got %v", err)
	}
}
