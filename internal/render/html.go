package render

import (
	"bytes"
	"encoding/json"
	"html/template"
)

// DocumentTitle is the title of the interactive document.
const DocumentTitle = "Agent Trace"

type page struct {
	Title   string
	Width   int
	Height  int
	Changes int
	Files   int
	Payload template.JS
}

var pageTemplate = template.Must(template.New("trace").Parse(pageSource))

// RenderHTML produces a self-contained document that embeds data and draws
// the conversation/change graph client side with file and role filters.
func RenderHTML(data UIData) ([]byte, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	p := page{
		Title:   DocumentTitle,
		Width:   GraphWidth,
		Height:  GraphHeight(len(data.Changes), len(data.Conversations)),
		Changes: len(data.Changes),
		Files:   len(data.Files),
		// json.Marshal escapes <, > and &, so the payload cannot close the
		// script element.
		Payload: template.JS(payload),
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, p); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

const pageSource = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body{font-family:Arial,sans-serif;margin:0;color:#0f172a;background:#f8fafc;}
header{padding:16px 24px;background:#fff;border-bottom:1px solid #e2e8f0;display:flex;gap:16px;align-items:center;flex-wrap:wrap;}
header h1{font-size:18px;margin:0 16px 0 0;}
label{font-size:13px;color:#475569;}
select,button{font-size:13px;padding:4px 8px;}
main{display:flex;gap:24px;padding:24px;}
#graph-wrap{background:#fff;border:1px solid #e2e8f0;border-radius:8px;overflow:auto;}
#graph text{font-size:12px;}
#details{min-width:280px;max-width:360px;background:#fff;border:1px solid #e2e8f0;border-radius:8px;padding:16px;font-size:13px;}
#details h2{font-size:14px;margin-top:0;}
#details pre{white-space:pre-wrap;word-break:break-word;}
.change{cursor:pointer;}
.change:hover rect{stroke:#2563eb;}
</style>
</head>
<body>
<header>
<h1>{{.Title}}</h1>
<label>File <select id="file-filter"><option value="">All files</option></select></label>
<label>Role <select id="role-filter"><option value="">All roles</option></select></label>
<button id="reset" type="button">Reset Filters</button>
<span id="count">{{.Changes}} changes across {{.Files}} files</span>
</header>
<main>
<div id="graph-wrap">
<svg id="graph" xmlns="http://www.w3.org/2000/svg" width="{{.Width}}" height="{{.Height}}"></svg>
</div>
<aside id="details"><h2>Details</h2><p>Select a change to inspect it.</p></aside>
</main>
<script type="application/json" id="trace-data">{{.Payload}}</script>
<script>
(function () {
  var data = JSON.parse(document.getElementById("trace-data").textContent);
  var NS = "http://www.w3.org/2000/svg";
  var ROW = 52, LEFT = 40, RIGHT = 520, CONV_W = 420, CHANGE_W = 440, BOX_H = 36, MIN_H = 180;
  var graph = document.getElementById("graph");
  var fileSel = document.getElementById("file-filter");
  var roleSel = document.getElementById("role-filter");
  var details = document.getElementById("details");
  var count = document.getElementById("count");

  var convByKey = {};
  data.conversations.forEach(function (c) { convByKey[c.key] = c; });

  function roleOf(change) {
    var c = convByKey[change.conversationKey];
    return (c && c.role) || "unknown";
  }

  function addOption(sel, value) {
    var o = document.createElement("option");
    o.value = value;
    o.textContent = value;
    sel.appendChild(o);
  }

  data.files.forEach(function (f) { addOption(fileSel, f.file); });
  var seenRoles = {};
  data.conversations.forEach(function (c) {
    var r = c.role || "unknown";
    if (!seenRoles[r]) { seenRoles[r] = true; addOption(roleSel, r); }
  });

  function node(name, attrs, text) {
    var n = document.createElementNS(NS, name);
    Object.keys(attrs).forEach(function (k) { n.setAttribute(k, attrs[k]); });
    if (text !== undefined) { n.textContent = text; }
    return n;
  }

  function line(label, value) {
    var p = document.createElement("p");
    var b = document.createElement("strong");
    b.textContent = label + ": ";
    p.appendChild(b);
    p.appendChild(document.createTextNode(value === null || value === undefined || value === "" ? "unknown" : String(value)));
    return p;
  }

  function showDetails(change) {
    var c = convByKey[change.conversationKey] || {};
    details.textContent = "";
    var h = document.createElement("h2");
    h.textContent = change.file;
    details.appendChild(h);
    details.appendChild(line("Timestamp", change.timestamp));
    details.appendChild(line("Summary", change.summary));
    details.appendChild(line("Added", change.added));
    details.appendChild(line("Deleted", change.deleted));
    details.appendChild(line("AST nodes", change.astCount));
    details.appendChild(line("Conversation", c.id));
    details.appendChild(line("Message", c.messageId));
    details.appendChild(line("Role", c.role));
    if (c.excerpt) {
      var pre = document.createElement("pre");
      pre.textContent = c.excerpt;
      details.appendChild(pre);
    }
  }

  function render() {
    var file = fileSel.value;
    var role = roleSel.value;
    var changes = data.changes.filter(function (ch) {
      return (!file || ch.file === file) && (!role || roleOf(ch) === role);
    });
    var keys = [];
    var rowOf = {};
    changes.forEach(function (ch) {
      if (!(ch.conversationKey in rowOf)) {
        rowOf[ch.conversationKey] = keys.length;
        keys.push(ch.conversationKey);
      }
    });

    while (graph.firstChild) { graph.removeChild(graph.firstChild); }
    graph.setAttribute("height", Math.max(MIN_H, (Math.max(changes.length, keys.length) + 1) * ROW));
    graph.appendChild(node("rect", {width: "100%", height: "100%", fill: "#fff"}));
    graph.appendChild(node("text", {x: LEFT, y: 24, fill: "#111"}, "Conversation"));
    graph.appendChild(node("text", {x: RIGHT, y: 24, fill: "#111"}, "Change"));

    keys.forEach(function (key, i) {
      var c = convByKey[key] || {};
      var y = 52 + i * ROW;
      graph.appendChild(node("rect", {x: LEFT, y: y, width: CONV_W, height: BOX_H, rx: 6, fill: "#f2f4f8", stroke: "#cbd5e1"}));
      graph.appendChild(node("text", {x: LEFT + 10, y: y + 22, fill: "#111"}, (c.role || "unknown") + " " + (c.messageId || "unknown")));
    });

    changes.forEach(function (ch, i) {
      var y = 52 + i * ROW;
      var g = node("g", {"class": "change"});
      g.appendChild(node("rect", {x: RIGHT, y: y, width: CHANGE_W, height: BOX_H, rx: 6, fill: "#eef6ff", stroke: "#93c5fd"}));
      g.appendChild(node("text", {x: RIGHT + 10, y: y + 16, fill: "#0f172a"}, ch.file || "unknown"));
      g.appendChild(node("text", {x: RIGHT + 10, y: y + 30, fill: "#475569"}, ch.summary || "unknown"));
      g.addEventListener("click", function () { showDetails(ch); });
      graph.appendChild(g);
      var y1 = 70 + rowOf[ch.conversationKey] * ROW;
      graph.appendChild(node("line", {x1: LEFT + CONV_W, y1: y1, x2: RIGHT, y2: 70 + i * ROW, stroke: "#94a3b8", "stroke-width": 1.5}));
    });

    count.textContent = changes.length + " of " + data.changes.length + " changes";
  }

  fileSel.addEventListener("change", render);
  roleSel.addEventListener("change", render);
  document.getElementById("reset").addEventListener("click", function () {
    fileSel.value = "";
    roleSel.value = "";
    render();
  });
  render();
})();
</script>
</body>
</html>
`
