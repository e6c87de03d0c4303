package server

import (
	"html/template"
	"net/http"

	"github.com/jrsteele09/go-idp-core/auth"
)

// The web-message document posts the authorization response to the
// opener/parent frame. With a relay URI the payload is wrapped once
// more so the client's relay frame can forward it.
const webMessageDocument = `<!DOCTYPE html>
<html>
<head><title>Authorization Response</title></head>
<body>
<script type="text/javascript">
(function(window) {
	var targetOrigin = {{.TargetOrigin}};
	var authorizationResponse = {type: "authorization_response", response: {{.Payload}}};
	var mainWin = window.opener || window.parent;
	{{if .RelayURI}}
	mainWin.postMessage({
		type: "relay_response",
		request: {url: {{.RelayURI}}, target: {{.RelayTarget}}, body: authorizationResponse}
	}, targetOrigin);
	{{else}}
	mainWin.postMessage(authorizationResponse, targetOrigin);
	{{end}}
})(this);
</script>
</body>
</html>`

var webMessageTemplate = template.Must(template.New("web_message").Parse(webMessageDocument))

func (s *Server) writeWebMessage(w http.ResponseWriter, message *auth.WebMessage) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := webMessageTemplate.Execute(w, message); err != nil {
		s.log.Error().Err(err).Msg("render web message")
	}
}
