package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/photomap/backend/internal/models"
)

// fakeSlackAPI serves the handful of Web API methods a session calls.
type fakeSlackAPI struct {
	mu    sync.Mutex
	forms map[string][]map[string]string
}

func newFakeSlackAPI(t *testing.T) (*fakeSlackAPI, *httptest.Server) {
	t.Helper()
	api := &fakeSlackAPI{forms: make(map[string][]map[string]string)}
	srv := httptest.NewServer(http.HandlerFunc(api.serve))
	t.Cleanup(srv.Close)
	return api, srv
}

func (a *fakeSlackAPI) serve(w http.ResponseWriter, r *http.Request) {
	method := strings.TrimPrefix(r.URL.Path, "/")
	_ = r.ParseForm()
	form := make(map[string]string)
	for k := range r.Form {
		form[k] = r.Form.Get(k)
	}
	a.mu.Lock()
	a.forms[method] = append(a.forms[method], form)
	a.mu.Unlock()

	var resp any
	switch method {
	case "users.info":
		resp = map[string]any{
			"ok":   true,
			"user": map[string]any{"id": form["user"], "name": "ada", "real_name": "Ada Lovelace"},
		}
	case "files.info":
		resp = map[string]any{
			"ok": true,
			"file": map[string]any{
				"id":          form["file"],
				"mimetype":    "image/jpeg",
				"url_private": "https://files.example.test/" + form["file"],
				"thumb_80":    "https://files.example.test/thumb",
				"channels":    []string{"C1"},
			},
			"comments": []any{},
			"paging":   map[string]any{"count": 0, "total": 0, "page": 1, "pages": 1},
		}
	case "chat.postMessage":
		resp = map[string]any{"ok": true, "channel": form["channel"], "ts": "1500000000.000100"}
	case "chat.postEphemeral":
		resp = map[string]any{"ok": true, "message_ts": "1500000000.000200"}
	default:
		resp = map[string]any{"ok": false, "error": "unknown_method"}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (a *fakeSlackAPI) calls(method string) []map[string]string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.forms[method]
}

func TestSlackSessionRoundTrip(t *testing.T) {
	api, srv := newFakeSlackAPI(t)
	ctx := context.Background()
	session := NewSlackSessionFactory("xoxb-test", srv.URL, NewDownloader(5*time.Second, 1))()

	profile, err := session.UserInfo(ctx, "U1")
	if err != nil {
		t.Fatalf("UserInfo: %v", err)
	}
	if *profile != (models.SlackProfile{ID: "U1", Name: "ada", RealName: "Ada Lovelace"}) {
		t.Fatalf("unexpected profile %+v", profile)
	}

	file, err := session.FileInfo(ctx, "F1")
	if err != nil {
		t.Fatalf("FileInfo: %v", err)
	}
	if file.ID != "F1" || file.Mimetype != "image/jpeg" || len(file.Channels) != 1 || file.Channels[0] != "C1" {
		t.Fatalf("unexpected file %+v", file)
	}

	pending := &models.File{ID: "F1", ThumbnailURL: file.Thumb80}
	if err := session.PostMessage(ctx, "C1", confirmationText, BuildConfirmation(pending)); err != nil {
		t.Fatalf("PostMessage: %v", err)
	}
	posts := api.calls("chat.postMessage")
	if len(posts) != 1 || posts[0]["channel"] != "C1" {
		t.Fatalf("unexpected postMessage calls %+v", posts)
	}
	if !strings.Contains(posts[0]["attachments"], `"callback_id":"F1"`) {
		t.Fatalf("attachment missing callback id: %s", posts[0]["attachments"])
	}

	if err := session.PostPrivate(ctx, "C1", "U1", replyAllowed); err != nil {
		t.Fatalf("PostPrivate: %v", err)
	}
	eph := api.calls("chat.postEphemeral")
	if len(eph) != 1 || eph[0]["user"] != "U1" || eph[0]["text"] != replyAllowed {
		t.Fatalf("unexpected postEphemeral calls %+v", eph)
	}
}

func TestSlackSessionSurfacesAPIErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":false,"error":"file_not_found"}`))
	}))
	defer srv.Close()

	session := NewSlackSessionFactory("xoxb-test", srv.URL, NewDownloader(time.Second, 1))()
	if _, err := session.FileInfo(context.Background(), "F404"); err == nil || !strings.Contains(err.Error(), "file_not_found") {
		t.Fatalf("expected file_not_found, got %v", err)
	}
}
