package server

import (
	"html/template"
	"net/http"
)

// indexHTML is the browser page: the rendered graph plus a poller that
// refreshes the image when the document revision moves.
const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>jsongraph - {{.Source}}</title>
<style>
  body { margin: 0; font-family: ui-monospace, SFMono-Regular, Menlo, monospace; background: #1a1b26; color: #c0caf5; }
  header { display: flex; justify-content: space-between; padding: 0.6rem 1rem; border-bottom: 1px solid #3b4261; }
  header .source { color: #7aa2f7; }
  header .revision { color: #565f89; }
  main { padding: 1rem; text-align: center; }
  main img { max-width: 100%; background: #fff; border-radius: 4px; }
  footer { padding: 0.6rem 1rem; color: #565f89; font-size: 0.8rem; }
</style>
</head>
<body>
<header>
  <span class="source">{{.Source}}</span>
  <span class="revision">revision <span id="rev">{{.Revision}}</span></span>
</header>
<main>
  <img id="graph" src="/graph.svg" alt="document graph">
</main>
<footer>refreshes automatically when the document changes</footer>
<script>
let current = {{.Revision}};
async function poll() {
  try {
    const res = await fetch("/healthz");
    const body = await res.json();
    if (body.ok && body.data.revision !== current) {
      current = body.data.revision;
      document.getElementById("rev").textContent = current;
      document.getElementById("graph").src = "/graph.svg?rev=" + current;
    }
  } catch (e) {
    // server restarting; keep polling
  }
}
setInterval(poll, 2000);
</script>
</body>
</html>
`

var indexTemplate = template.Must(template.New("index").Parse(indexHTML))

type indexData struct {
	Source   string
	Revision uint64
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	data := indexData{Source: s.store.Source(), Revision: s.store.Revision()}
	if err := indexTemplate.Execute(w, data); err != nil {
		s.logger.Error("rendering index page", "err", err)
	}
}
