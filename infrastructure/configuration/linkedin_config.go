package configuration

import (
	"fmt"
	"os"
	"strings"
)

func initLinkedIn(c *Config) {
	scheme := "http"
	if c.App.TLSEnabled {
		scheme = "https"
	}
	defaultRedirect := fmt.Sprintf("%s://localhost:%d/auth/linkedin/callback", scheme, c.App.Port)

	li := &c.LinkedIn
	li.ClientID = getConfigValue(li.ClientID, "LINKEDIN_CLIENT_ID", "")
	li.ClientSecret = getConfigValue(li.ClientSecret, "LINKEDIN_CLIENT_SECRET", "")
	li.RedirectURI = getConfigValue(li.RedirectURI, "LINKEDIN_REDIRECT_URI", defaultRedirect)
	li.ProxyBaseURL = getConfigValue(li.ProxyBaseURL, "LINKEDIN_PROXY_BASE_URL", "")
	li.ExchangeMode = strings.ToLower(getConfigValue(li.ExchangeMode, "LINKEDIN_EXCHANGE_MODE", "simulated"))
	li.ExchangeURL = getConfigValue(li.ExchangeURL, "LINKEDIN_EXCHANGE_URL", "")

	if c.App.TLSEnabled && li.RedirectURI != "" && !hasHTTPS(li.RedirectURI) {
		li.RedirectURI = toHTTPSCallback(li.RedirectURI)
	}
	if li.ClientID == "" {
		// login still works end to end with the simulated exchanger
		li.ClientID = "local-client"
	}
	if li.ExchangeMode == "backend" && li.ExchangeURL == "" {
		li.ExchangeMode = "simulated"
	}
	if li.ExchangeMode == "oauth2" && li.ClientSecret == "" {
		li.ExchangeMode = "simulated"
	}
}

// BaseURL is where upstream API calls go: the proxy when configured, else the API host.
func (l LinkedIn) BaseURL() string {
	if l.ProxyBaseURL != "" {
		return strings.TrimRight(l.ProxyBaseURL, "/")
	}
	return strings.TrimRight(l.APIBaseURL, "/")
}

// Scopes splits the space separated scope string.
func (l LinkedIn) Scopes() []string {
	return strings.Fields(l.Scope)
}

// getConfigValue gets value from environment first, then config, then default
func getConfigValue(configValue, envKey, defaultValue string) string {
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	if configValue != "" && !strings.HasPrefix(configValue, "YOUR_") {
		return configValue
	}
	return defaultValue
}
