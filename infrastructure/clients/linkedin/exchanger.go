package linkedin

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"post-manager/domain/dto"
	"post-manager/domain/model"

	"github.com/go-resty/resty/v2"
	"github.com/jonboulle/clockwork"
	"golang.org/x/oauth2"
)

// SimulatedExchanger issues a fake token without calling anyone.
type SimulatedExchanger struct {
	clock clockwork.Clock
}

func NewSimulatedExchanger(clock clockwork.Clock) *SimulatedExchanger {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &SimulatedExchanger{clock: clock}
}

func (e *SimulatedExchanger) Exchange(_ context.Context, code, _ string) (*dto.TokenExchangeResponse, error) {
	if strings.TrimSpace(code) == "" {
		return nil, errors.New("authorization code is empty")
	}
	return &dto.TokenExchangeResponse{
		AccessToken:      "simulated_access_token_" + strconv.FormatInt(e.clock.Now().UnixMilli(), 10),
		ExpiresInSeconds: 3600,
	}, nil
}

// BackendExchanger posts the code to a trusted backend that holds the client secret.
type BackendExchanger struct {
	client *resty.Client
	url    string
}

func NewBackendExchanger(url string, timeout time.Duration) *BackendExchanger {
	c := resty.New().
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if timeout > 0 {
		c.SetTimeout(timeout)
	}
	return &BackendExchanger{client: c, url: url}
}

func (e *BackendExchanger) Exchange(ctx context.Context, code, redirectURI string) (*dto.TokenExchangeResponse, error) {
	var result dto.TokenExchangeResponse
	resp, err := e.client.R().
		SetContext(ctx).
		SetBody(dto.TokenExchangeRequest{Code: code, RedirectURI: redirectURI}).
		SetResult(&result).
		Post(e.url)
	if err != nil {
		return nil, fmt.Errorf("post exchange backend: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, &model.UpstreamError{StatusCode: resp.StatusCode(), Body: resp.String()}
	}
	if result.Token() == "" {
		return nil, errors.New("exchange backend returned no access token")
	}
	return &dto.TokenExchangeResponse{AccessToken: result.Token(), ExpiresInSeconds: result.ExpiresIn()}, nil
}

// OAuth2Exchanger performs the code exchange in process with the client secret.
type OAuth2Exchanger struct {
	config *oauth2.Config
	clock  clockwork.Clock
}

func NewOAuth2Exchanger(config *oauth2.Config, clock clockwork.Clock) *OAuth2Exchanger {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &OAuth2Exchanger{config: config, clock: clock}
}

func (e *OAuth2Exchanger) Exchange(ctx context.Context, code, redirectURI string) (*dto.TokenExchangeResponse, error) {
	var opts []oauth2.AuthCodeOption
	if redirectURI != "" && redirectURI != e.config.RedirectURL {
		opts = append(opts, oauth2.SetAuthURLParam("redirect_uri", redirectURI))
	}
	tok, err := e.config.Exchange(ctx, code, opts...)
	if err != nil {
		return nil, fmt.Errorf("oauth2 exchange: %w", err)
	}
	expiresIn := tok.ExpiresIn
	if expiresIn <= 0 && !tok.Expiry.IsZero() {
		expiresIn = int64(tok.Expiry.Sub(e.clock.Now()).Seconds())
	}
	return &dto.TokenExchangeResponse{AccessToken: tok.AccessToken, ExpiresInSeconds: expiresIn}, nil
}

// NewOAuth2Config builds the authorization code config for LinkedIn.
func NewOAuth2Config(clientID, clientSecret, redirectURI, authURL, tokenURL string, scopes []string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURI,
		Scopes:       scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:   authURL,
			TokenURL:  tokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}
