// Package server provides the ThreadStead preview server: it compiles
// profile templates from disk on demand, serves the rendered pages, and
// pushes live-reload notifications to connected browsers when watched
// template files change.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/threadstead/threadstead/internal/compiler"
	"github.com/threadstead/threadstead/internal/components"
	"github.com/threadstead/threadstead/internal/config"
	"github.com/threadstead/threadstead/internal/logging"
	"github.com/threadstead/threadstead/internal/registry"
	"github.com/threadstead/threadstead/internal/types"
	"github.com/threadstead/threadstead/internal/watcher"
)

// PreviewServer serves compiled profile templates with live reload.
type PreviewServer struct {
	cfg      *config.Config
	logger   logging.Logger
	registry *registry.Registry
	compiler *compiler.Compiler
	watcher  *watcher.FileWatcher

	httpServer *http.Server

	clients   map[*client]struct{}
	clientsMu sync.Mutex
}

// New creates a preview server over an already-populated registry.
func New(cfg *config.Config, logger logging.Logger, reg *registry.Registry, comp *compiler.Compiler) (*PreviewServer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("server requires configuration")
	}
	if logger == nil {
		logger = logging.NewLogger(nil)
	}

	fw, err := watcher.New(300*time.Millisecond, logger)
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}
	fw.AddFilter(watcher.TemplateFilter)

	s := &PreviewServer{
		cfg:      cfg,
		logger:   logger.WithComponent("server"),
		registry: reg,
		compiler: comp,
		watcher:  fw,
		clients:  make(map[*client]struct{}),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /", s.handleIndex)
	mux.HandleFunc("GET /home/{name}", s.handleHome)
	mux.HandleFunc("GET /api/components", s.handleComponents)
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("/ws", s.handleWebSocket)

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           s.withRequestID(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s, nil
}

// Start runs the server until ctx is cancelled, then shuts down gracefully.
func (s *PreviewServer) Start(ctx context.Context) error {
	if s.cfg.Development.HotReload {
		s.watcher.AddHandler(s.onTemplateChange)
		for _, path := range s.cfg.Templates.ScanPaths {
			if err := s.watcher.AddRecursive(path); err != nil {
				s.logger.Warn(ctx, err, "cannot watch template path", "path", path)
			}
		}
		s.watcher.Start(ctx)
		defer s.watcher.Stop()

		events := s.registry.Watch()
		defer s.registry.UnWatch(events)
		go s.watchRegistry(ctx, events)
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "preview server listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.closeClients()
	return s.httpServer.Shutdown(shutdownCtx)
}

func (s *PreviewServer) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		w.Header().Set("X-Request-ID", requestID)
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug(r.Context(), "request handled",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start).String(),
		)
	})
}

func (s *PreviewServer) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	names := s.templateNames()
	var sb strings.Builder
	sb.WriteString(`<!DOCTYPE html><html><head><title>ThreadStead Preview</title></head><body>`)
	sb.WriteString(`<h1>Pixel homes</h1><ul>`)
	for _, name := range names {
		fmt.Fprintf(&sb, `<li><a href="/home/%s">%s</a></li>`,
			html.EscapeString(url.PathEscape(name)), html.EscapeString(name))
	}
	sb.WriteString(`</ul></body></html>`)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(sb.String()))
}

func (s *PreviewServer) handleHome(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	source, css, err := s.loadTemplate(name)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	req := types.CompileRequest{
		Source:    source,
		CustomCSS: css,
		Data:      components.SampleResidentData(name),
		Options: types.CompileOptions{
			Mode:        types.ModeAdvanced,
			Optimize:    s.cfg.Compiler.Optimize,
			SEOMetadata: s.cfg.Compiler.SEOMetadata,
		},
	}

	result := s.compiler.Compile(r.Context(), req)
	if !result.Success {
		// The advanced compile failed fatally; present the next safer
		// mode instead of a blank page.
		fallbackReq := req
		fallbackReq.Options.Mode = types.ModeEnhanced
		fallback := s.compiler.Compile(r.Context(), fallbackReq)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(s.renderPage(name, fallback.Compiled, result.Errors)))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(s.renderPage(name, result.Compiled, nil)))
}

func (s *PreviewServer) handleComponents(w http.ResponseWriter, r *http.Request) {
	type propInfo struct {
		Type     string   `json:"type"`
		Required bool     `json:"required,omitempty"`
		Default  any      `json:"default,omitempty"`
		Enum     []string `json:"enum,omitempty"`
	}
	type componentInfo struct {
		Name        string              `json:"name"`
		Description string              `json:"description"`
		Kind        string              `json:"kind"`
		Interactive bool                `json:"interactive"`
		Props       map[string]propInfo `json:"props"`
	}

	var list []componentInfo
	for _, reg := range s.registry.GetAll() {
		info := componentInfo{
			Name:        reg.Name,
			Description: reg.Description,
			Kind:        reg.Kind.String(),
			Interactive: reg.Interactive,
			Props:       make(map[string]propInfo, len(reg.Props)),
		}
		for propName, spec := range reg.Props {
			info.Props[propName] = propInfo{
				Type:     string(spec.Type),
				Required: spec.Required,
				Default:  spec.Default,
				Enum:     spec.Enum,
			}
		}
		list = append(list, info)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(list)
}

func (s *PreviewServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":     "ok",
		"components": s.registry.Count(),
	})
}

// templateNames lists the template files available under the scan paths.
func (s *PreviewServer) templateNames() []string {
	seen := make(map[string]struct{})
	for _, dir := range s.cfg.Templates.ScanPaths {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".html") {
				continue
			}
			if s.excluded(entry.Name()) {
				continue
			}
			seen[strings.TrimSuffix(entry.Name(), ".html")] = struct{}{}
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *PreviewServer) excluded(fileName string) bool {
	for _, pattern := range s.cfg.Templates.ExcludePatterns {
		if matched, _ := filepath.Match(pattern, fileName); matched {
			return true
		}
	}
	return false
}

// loadTemplate reads <name>.html and its optional <name>.css sidecar from
// the scan paths. name must be a bare template name, never a path.
func (s *PreviewServer) loadTemplate(name string) (source, css string, err error) {
	if name == "" || strings.ContainsAny(name, "/\\") || strings.Contains(name, "..") {
		return "", "", fmt.Errorf("invalid template name %q", name)
	}

	for _, dir := range s.cfg.Templates.ScanPaths {
		htmlPath := filepath.Join(dir, name+".html")
		data, readErr := os.ReadFile(htmlPath)
		if readErr != nil {
			continue
		}
		source = string(data)
		if cssData, cssErr := os.ReadFile(filepath.Join(dir, name+".css")); cssErr == nil {
			css = string(cssData)
		}
		return source, css, nil
	}
	return "", "", fmt.Errorf("template %q not found", name)
}

// watchRegistry forwards component registry changes to connected browsers
// until ctx is cancelled or the event channel closes.
func (s *PreviewServer) watchRegistry(ctx context.Context, events <-chan registry.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			name := ""
			if event.Registration != nil {
				name = event.Registration.Name
			}
			s.logger.Info(ctx, "component catalog changed",
				"component", name,
				"change", event.Type.String(),
			)
			s.broadcast(catalogMessage())
		}
	}
}

func (s *PreviewServer) onTemplateChange(events []watcher.ChangeEvent) error {
	ctx := context.Background()
	for _, event := range events {
		s.logger.Info(ctx, "template changed", "path", event.Path, "type", event.Type.String())
	}
	s.broadcast(reloadMessage())
	return nil
}
