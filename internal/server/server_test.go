package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/threadstead/threadstead/internal/compiler"
	"github.com/threadstead/threadstead/internal/components"
	"github.com/threadstead/threadstead/internal/config"
	"github.com/threadstead/threadstead/internal/registry"
	"github.com/threadstead/threadstead/internal/types"
)

func newTestServer(t *testing.T) (*PreviewServer, string) {
	t.Helper()

	dir := t.TempDir()
	cfg := config.Default()
	cfg.Templates.ScanPaths = []string{dir}
	cfg.Development.HotReload = false

	reg := registry.New()
	require.NoError(t, components.RegisterBuiltins(reg))
	comp := compiler.New(reg, cfg.Compiler, nil)

	s, err := New(cfg, nil, reg, comp)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.watcher.Stop() })

	return s, dir
}

func writeTemplate(t *testing.T, dir, name, source string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+".html"), []byte(source), 0o644))
}

func get(t *testing.T, s *PreviewServer, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHandleHealth(t *testing.T) {
	s, _ := newTestServer(t)

	rec := get(t, s, "/api/health")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, float64(11), body["components"])
}

func TestHandleComponents(t *testing.T) {
	s, _ := newTestServer(t)

	rec := get(t, s, "/api/components")
	require.Equal(t, http.StatusOK, rec.Code)

	var list []struct {
		Name        string `json:"name"`
		Kind        string `json:"kind"`
		Interactive bool   `json:"interactive"`
		Props       map[string]struct {
			Type string   `json:"type"`
			Enum []string `json:"enum"`
		} `json:"props"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 11)

	// Sorted by name, so Bio comes first.
	assert.Equal(t, "Bio", list[0].Name)

	var photo *struct {
		Name        string `json:"name"`
		Kind        string `json:"kind"`
		Interactive bool   `json:"interactive"`
		Props       map[string]struct {
			Type string   `json:"type"`
			Enum []string `json:"enum"`
		} `json:"props"`
	}
	for i := range list {
		if list[i].Name == "ProfilePhoto" {
			photo = &list[i]
		}
	}
	require.NotNil(t, photo)
	assert.Equal(t, "leaf", photo.Kind)
	assert.True(t, photo.Interactive)
	assert.Equal(t, "enum", photo.Props["size"].Type)
	assert.Contains(t, photo.Props["size"].Enum, "xl")
}

func TestHandleIndexListsTemplates(t *testing.T) {
	s, dir := newTestServer(t)
	writeTemplate(t, dir, "pixel-smith", `<Bio />`)
	writeTemplate(t, dir, "moss-garden", `<Bio />`)
	writeTemplate(t, dir, "sketch_draft", `<Bio />`)

	rec := get(t, s, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `href="/home/pixel-smith"`)
	assert.Contains(t, body, `href="/home/moss-garden"`)
	assert.NotContains(t, body, "sketch_draft", "exclude patterns must apply")
}

func TestHandleIndexEscapesTemplateNames(t *testing.T) {
	s, dir := newTestServer(t)
	writeTemplate(t, dir, "tea&zines", `<Bio />`)

	rec := get(t, s, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "tea&amp;zines")
	assert.NotContains(t, body, ">tea&zines<")
}

func TestHandleHome(t *testing.T) {
	s, dir := newTestServer(t)
	writeTemplate(t, dir, "pixel-smith",
		`<div><ProfilePhoto size="xl" shape="circle" /><DisplayName as="h1" /><Bio /></div>`)

	rec := get(t, s, "/home/pixel-smith")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<!DOCTYPE html>")
	assert.Contains(t, body, "data-island=")
	assert.Contains(t, body, `id="stead-islands"`)
	assert.NotContains(t, body, "stead-error-overlay")
	assert.NotContains(t, body, "full_reload", "hot reload disabled in this test")
}

func TestHandleHome_CSSSidecar(t *testing.T) {
	s, dir := newTestServer(t)
	writeTemplate(t, dir, "pixel-smith", `<Bio />`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pixel-smith.css"),
		[]byte(".profile-bio { color: seagreen; }"), 0o644))

	rec := get(t, s, "/home/pixel-smith")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "color: seagreen")
}

func TestHandleHome_FallsBackOnFatalError(t *testing.T) {
	s, dir := newTestServer(t)
	writeTemplate(t, dir, "broken", `<div><span></div></span>`)

	rec := get(t, s, "/home/broken")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "stead-error-overlay")
	assert.Contains(t, body, "invalid_nesting")
	// The enhanced fallback still shows the platform layout.
	assert.Contains(t, body, "profile-bio")
}

func TestHandleHome_UnknownTemplate(t *testing.T) {
	s, _ := newTestServer(t)
	rec := get(t, s, "/home/nobody-here")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLoadTemplate_RejectsPathTraversal(t *testing.T) {
	s, dir := newTestServer(t)
	writeTemplate(t, dir, "real", `<Bio />`)

	for _, name := range []string{"", "../real", "sub/real", `sub\real`, ".."} {
		_, _, err := s.loadTemplate(name)
		assert.Error(t, err, "name %q must be rejected", name)
	}
}

func TestWatchRegistryBroadcastsCatalogChanges(t *testing.T) {
	s, _ := newTestServer(t)

	fake := &client{send: make(chan []byte, 16)}
	s.clientsMu.Lock()
	s.clients[fake] = struct{}{}
	s.clientsMu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events := s.registry.Watch()
	t.Cleanup(func() { s.registry.UnWatch(events) })
	go s.watchRegistry(ctx, events)

	require.NoError(t, s.registry.Register(&registry.Registration{
		Name:  "MoodRing",
		Props: map[string]registry.PropSpec{},
		Implementation: func(props map[string]any, data *types.ResidentData, children templ.Component) templ.Component {
			return templ.Raw("<span>mood</span>")
		},
	}))

	select {
	case raw := <-fake.send:
		var msg UpdateMessage
		require.NoError(t, json.Unmarshal(raw, &msg))
		assert.Equal(t, "components_updated", msg.Type)
	case <-time.After(time.Second):
		t.Fatal("no catalog update reached the client")
	}
}

func TestRenderPage_Manifest(t *testing.T) {
	s, dir := newTestServer(t)
	writeTemplate(t, dir, "pixel-smith", `<ProfilePhoto />`)

	rec := get(t, s, "/home/pixel-smith")
	body := rec.Body.String()

	start := `<script type="application/json" id="stead-islands">`
	require.Contains(t, body, start)
	assert.Contains(t, body, `"component":"ProfilePhoto"`)
}
