package domain

import "time"

// TokenPair is what authenticate and refresh hand back to the client.
type TokenPair struct {
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	TokenType    string        `json:"token_type"` // always "Bearer"
	ExpiresIn    time.Duration `json:"expires_in"` // access token lifetime
	SessionID    string        `json:"session_id"`
}
