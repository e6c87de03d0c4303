package server

import (
	"html/template"
	"net/http"

	"github.com/jrsteele09/go-idp-core/auth"
)

// Minimal hosted screens. Real deployments replace these with the forms
// subsystem; the routes exist so flow redirects always land somewhere.
const screenDocument = `<!DOCTYPE html>
<html>
<head><title>Sign in</title></head>
<body>
<main data-screen="{{.Screen}}" data-state="{{.State}}">
{{if .Done}}<p>You are signed in. You can close this window.</p>
{{else if .Error}}<p role="alert">{{.Error}}{{if .ErrorDescription}}: {{.ErrorDescription}}{{end}}</p>
{{else}}<p>Continue signing in.</p>
{{end}}
</main>
</body>
</html>`

var screenTemplate = template.Must(template.New("screen").Parse(screenDocument))

type screenData struct {
	Screen           string
	State            string
	Done             bool
	Error            string
	ErrorDescription string
}

// ScreenHandler renders a hosted login screen. A state of "$ending" is
// the forms subsystem's terminal marker: the attempt is over and no
// login session backs it.
func (s *Server) ScreenHandler(screen string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		state := query.Get("state")

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		if err := screenTemplate.Execute(w, screenData{
			Screen:           screen,
			State:            state,
			Done:             state == auth.SentinelEnding,
			Error:            query.Get("error"),
			ErrorDescription: query.Get("error_description"),
		}); err != nil {
			s.log.Error().Err(err).Msg("render screen")
		}
	}
}
