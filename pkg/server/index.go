package server

import (
	"html/template"
	"net/http"
)

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { margin: 0; font-family: sans-serif; display: flex; height: 100vh; }
#chart { flex: 1; position: relative; overflow: hidden; }
#chart svg { width: 100%; height: 100%; }
#tooltip { position: absolute; display: none; pointer-events: none; background: #fff;
  border: 1px solid #333; padding: 4px 8px; font-size: 12px; white-space: pre; }
#detail { width: 320px; border-left: 1px solid #ccc; padding: 12px; overflow-y: auto; }
</style>
</head>
<body>
<div id="chart"><div id="tooltip"></div></div>
<aside id="detail"><p>Select a section</p></aside>
<script>
(function () {
  const chart = document.getElementById('chart');
  const tip = document.getElementById('tooltip');
  const panel = document.getElementById('detail');
  const bound = new Map();
  let ws;

  function paths(id) { return chart.querySelectorAll('[data-section="' + CSS.escape(id) + '"]'); }
  function local(e) { const r = chart.getBoundingClientRect(); return {x: e.clientX - r.left, y: e.clientY - r.top}; }
  function send(msg) { if (ws && ws.readyState === 1) ws.send(JSON.stringify(msg)); }
  function viewport() { send({viewport: {w: chart.clientWidth, h: chart.clientHeight}}); }

  function bind(id) {
    const h = {
      enter: e => send({type: 'pointerenter', section: id, cursor: local(e)}),
      move: e => send({type: 'pointermove', cursor: local(e)}),
      leave: () => send({type: 'pointerleave', section: id}),
      click: () => send({type: 'click', section: id}),
    };
    paths(id).forEach(el => {
      if (el.tagName === 'text') return;
      el.addEventListener('mouseenter', h.enter);
      el.addEventListener('mousemove', h.move);
      el.addEventListener('mouseleave', h.leave);
      el.addEventListener('click', h.click);
    });
    bound.set(id, h);
  }

  function unbind(id) {
    const h = bound.get(id);
    if (!h) return;
    paths(id).forEach(el => {
      el.removeEventListener('mouseenter', h.enter);
      el.removeEventListener('mousemove', h.move);
      el.removeEventListener('mouseleave', h.leave);
      el.removeEventListener('click', h.click);
    });
    bound.delete(id);
  }

  function restyle(id, s) {
    paths(id).forEach(el => {
      if (el.tagName === 'text') {
        el.setAttribute('font-weight', s.emphasize_label ? 'bold' : 'normal');
        return;
      }
      el.setAttribute('class', s.class);
      el.setAttribute('fill', s.fill);
      el.setAttribute('fill-opacity', s.fill_opacity);
      el.setAttribute('stroke', s.stroke);
      el.setAttribute('stroke-opacity', s.stroke_opacity);
      el.setAttribute('stroke-width', s.stroke_width);
    });
  }

  async function loadChart() {
    const res = await fetch('chart.svg?popups=false');
    const svg = await res.text();
    chart.querySelectorAll('svg').forEach(el => el.remove());
    chart.insertAdjacentHTML('afterbegin', svg);
  }

  function handle(op) {
    switch (op.op) {
    case 'reset':
      bound.clear();
      return loadChart().then(viewport);
    case 'bind': return bind(op.section);
    case 'unbind': return unbind(op.section);
    case 'style': return restyle(op.section, op.style);
    case 'tooltip':
      tip.textContent = op.tooltip.lines.join('\n');
      tip.style.left = op.tooltip.position.left + 'px';
      tip.style.top = op.tooltip.position.top + 'px';
      tip.style.display = 'block';
      return;
    case 'hide': tip.style.display = 'none'; return;
    case 'detail': panel.innerHTML = op.html; return;
    }
  }

  function connect() {
    const proto = location.protocol === 'https:' ? 'wss:' : 'ws:';
    ws = new WebSocket(proto + '//' + location.host + '/live');
    let queue = Promise.resolve();
    ws.onmessage = e => { const op = JSON.parse(e.data); queue = queue.then(() => handle(op)); };
    ws.onclose = () => setTimeout(connect, 2000);
  }

  window.addEventListener('resize', viewport);
  connect();
})();
</script>
</body>
</html>
`))

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	title := "seatmap"
	if c := s.current(); c != nil && c.diagram.Name != "" {
		title = c.diagram.Name
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, struct{ Title string }{title}); err != nil {
		s.logger.Error("rendering index failed", "err", err)
	}
}
