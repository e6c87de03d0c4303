package server

import (
	"html/template"
	"net/http"

	"github.com/jrsteele09/go-idp-core/auth"
)

// The form-post document submits the authorization response to the
// client's redirect_uri as an HTML form (response_mode=form_post).
const formPostDocument = `<!DOCTYPE html>
<html>
<head><title>Authorization Response</title></head>
<body onload="document.forms[0].submit()">
<form method="post" action="{{.TargetURL}}">
{{range $name, $values := .Values}}{{range $values}}<input type="hidden" name="{{$name}}" value="{{.}}"/>
{{end}}{{end}}</form>
</body>
</html>`

var formPostTemplate = template.Must(template.New("form_post").Parse(formPostDocument))

func (s *Server) writeFormPost(w http.ResponseWriter, formPost *auth.FormPost) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := formPostTemplate.Execute(w, formPost); err != nil {
		s.log.Error().Err(err).Msg("render form post")
	}
}
