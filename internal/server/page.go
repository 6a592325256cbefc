package server

import (
	"encoding/json"
	"fmt"
	"html"
	"strings"

	"github.com/threadstead/threadstead/internal/types"
)

// renderPage wraps a compiled template in a full HTML document: head
// metadata, the owner's custom CSS, the static markup with island markers,
// the island manifest for hydration, and the live-reload client.
func (s *PreviewServer) renderPage(name string, compiled *types.CompiledTemplate, compileErrors []string) string {
	var sb strings.Builder

	title := name
	if compiled != nil && compiled.SEO != nil && compiled.SEO.Title != "" {
		title = compiled.SEO.Title
	}

	sb.WriteString("<!DOCTYPE html>\n<html>\n<head>\n")
	fmt.Fprintf(&sb, "<title>%s</title>\n", html.EscapeString(title))
	sb.WriteString(`<meta charset="utf-8" />` + "\n")
	if compiled != nil && compiled.SEO != nil && compiled.SEO.Description != "" {
		fmt.Fprintf(&sb, `<meta name="description" content="%s" />`+"\n",
			html.EscapeString(compiled.SEO.Description))
	}
	sb.WriteString(`<link rel="stylesheet" href="/assets/stead-base.css" />` + "\n")
	if compiled != nil && compiled.CustomCSS != "" {
		fmt.Fprintf(&sb, "<style>\n%s\n</style>\n", compiled.CustomCSS)
	}
	sb.WriteString("</head>\n<body>\n")

	if len(compileErrors) > 0 && s.cfg.Development.ErrorOverlay {
		sb.WriteString(`<div class="stead-error-overlay"><strong>Template failed to compile; showing fallback.</strong><ul>`)
		for _, msg := range compileErrors {
			fmt.Fprintf(&sb, "<li>%s</li>", html.EscapeString(msg))
		}
		sb.WriteString("</ul></div>\n")
	}

	if compiled != nil {
		sb.WriteString(compiled.StaticHTML)
		sb.WriteString("\n")
		sb.WriteString(islandManifest(compiled))
	}

	if s.cfg.Development.HotReload {
		sb.WriteString(liveReloadScript)
	}

	sb.WriteString("</body>\n</html>\n")
	return sb.String()
}

// islandManifest embeds the island records for the client hydrator.
func islandManifest(compiled *types.CompiledTemplate) string {
	if len(compiled.Islands) == 0 {
		return ""
	}
	manifest, err := json.Marshal(compiled.Islands)
	if err != nil {
		return ""
	}
	return fmt.Sprintf(`<script type="application/json" id="stead-islands">%s</script>`+"\n", manifest)
}

const liveReloadScript = `<script>
(function () {
	var proto = location.protocol === "https:" ? "wss://" : "ws://";
	var ws = new WebSocket(proto + location.host + "/ws");
	ws.onmessage = function (event) {
		var message = JSON.parse(event.data);
		if (message.type === "full_reload" || message.type === "components_updated") {
			location.reload();
		}
	};
})();
</script>
`
