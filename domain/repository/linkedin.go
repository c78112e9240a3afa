package repository

import (
	"context"

	"post-manager/domain/dto"
	"post-manager/domain/model"
)

// IRequestExecutor performs authenticated calls against the social API.
// A non-2xx answer is returned as *model.UpstreamError.
type IRequestExecutor interface {
	Get(ctx context.Context, path, token string) ([]byte, error)
	Send(ctx context.Context, method, path, token string, body interface{}) ([]byte, error)
}

// ITokenExchanger turns an authorization code into an access token.
type ITokenExchanger interface {
	Exchange(ctx context.Context, code, redirectURI string) (*dto.TokenExchangeResponse, error)
}

// IEndpointCatalog builds the ordered cascade for a member.
type IEndpointCatalog interface {
	PostEndpoints(profile *model.Profile) []model.EndpointSpec
	ScheduledEndpoints(profile *model.Profile) []model.EndpointSpec
	ProfileEndpoint() string
}
