package dto

import "time"

// Res is the generic envelope for error answers.
type Res struct {
	ResponseCode    string `json:"responseCode"`
	ResponseMessage string `json:"responseMessage"`
}

// CallbackQuery is the query string of the OAuth redirect back to us.
type CallbackQuery struct {
	Code             string `form:"code"`
	State            string `form:"state"`
	Error            string `form:"error"`
	ErrorDescription string `form:"error_description"`
}

// TokenExchangeRequest is posted to the trusted backend holding the client secret.
type TokenExchangeRequest struct {
	Code        string `json:"code"`
	RedirectURI string `json:"redirectUri"`
}

// TokenExchangeResponse accepts both camelCase and OAuth2 snake_case answers.
type TokenExchangeResponse struct {
	AccessToken      string `json:"accessToken"`
	ExpiresInSeconds int64  `json:"expiresInSeconds"`
	AccessTokenAlt   string `json:"access_token"`
	ExpiresInAlt     int64  `json:"expires_in"`
}

func (r TokenExchangeResponse) Token() string {
	if r.AccessToken != "" {
		return r.AccessToken
	}
	return r.AccessTokenAlt
}

func (r TokenExchangeResponse) ExpiresIn() int64 {
	if r.ExpiresInSeconds != 0 {
		return r.ExpiresInSeconds
	}
	return r.ExpiresInAlt
}

type ManualTokenRequest struct {
	Token    string  `json:"token" binding:"required"`
	TTLHours float64 `json:"ttlHours"`
}

type AuthStatusResponse struct {
	Authenticated bool       `json:"authenticated"`
	State         string     `json:"state"`
	Origin        string     `json:"origin,omitempty"`
	ExpiresAt     *time.Time `json:"expiresAt,omitempty"`
	SessionToken  string     `json:"sessionToken,omitempty"`
	Error         string     `json:"error,omitempty"`
}
