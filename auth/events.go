package auth

import "github.com/rs/zerolog"

// Events writes the structured authentication event stream. Every
// login, silent auth and logout outcome is recorded here, success and
// failure alike.
type Events struct {
	log zerolog.Logger
}

func NewEvents(log zerolog.Logger) *Events {
	return &Events{log: log}
}

func (e *Events) LoginSucceeded(tenantID, userID, connection string) {
	e.log.Info().
		Str("event", "successful_login").
		Str("tenant_id", tenantID).
		Str("user_id", userID).
		Str("connection", connection).
		Msg("login succeeded")
}

func (e *Events) LoginFailed(tenantID, connection, description string) {
	e.log.Warn().
		Str("event", "failed_login").
		Str("tenant_id", tenantID).
		Str("connection", connection).
		Str("description", description).
		Msg("login failed")
}

func (e *Events) SilentAuthSucceeded(tenantID, userID string) {
	e.log.Info().
		Str("event", "successful_silent_auth").
		Str("tenant_id", tenantID).
		Str("user_id", userID).
		Msg("silent authentication succeeded")
}

func (e *Events) SilentAuthFailed(tenantID, description string) {
	e.log.Info().
		Str("event", "failed_silent_auth").
		Str("tenant_id", tenantID).
		Str("description", description).
		Msg("silent authentication failed")
}

func (e *Events) LoggedOut(tenantID, userID string) {
	e.log.Info().
		Str("event", "logout").
		Str("tenant_id", tenantID).
		Str("user_id", userID).
		Msg("session revoked")
}
