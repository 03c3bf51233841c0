package render

import (
	"html"
	"regexp"
	"strings"
)

// scriptOpen matches the start of every script tag regardless of case.
var scriptOpen = regexp.MustCompile(`(?i)<script`)

var bodyClose = regexp.MustCompile(`(?i)</body>`)

// InjectNonce adds nonce="<nonce>" to every script tag in page. An empty page
// yields an empty string.
func InjectNonce(page, nonce string) string {
	if page == "" {
		return ""
	}
	return scriptOpen.ReplaceAllLiteralString(page, `<script nonce="`+html.EscapeString(nonce)+`"`)
}

// LiveReloadScript returns the client that reloads the page when the server
// announces a change on the websocket at path.
func LiveReloadScript(path string) string {
	return `<script>
(function () {
  var proto = location.protocol === "https:" ? "wss://" : "ws://";
  var ws = new WebSocket(proto + location.host + "` + html.EscapeString(path) + `");
  ws.onmessage = function (event) {
    var message = JSON.parse(event.data);
    if (message.type === "full_reload") {
      window.location.reload();
    }
  };
})();
</script>`
}

// InjectLiveReload places the reload client right before the last </body>,
// or at the end when the page has no body element.
func InjectLiveReload(page, path string) string {
	script := LiveReloadScript(path)

	locs := bodyClose.FindAllStringIndex(page, -1)
	if len(locs) == 0 {
		return page + script
	}
	at := locs[len(locs)-1][0]

	var b strings.Builder
	b.Grow(len(page) + len(script))
	b.WriteString(page[:at])
	b.WriteString(script)
	b.WriteString(page[at:])
	return b.String()
}
