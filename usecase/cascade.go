package usecase

import (
	"bytes"
	"context"
	"errors"
	"time"

	"post-manager/domain/model"
	"post-manager/domain/repository"
	"post-manager/infrastructure/logger"

	"github.com/tidwall/gjson"
)

var errUnparseableBody = errors.New("response body is not JSON")

type IEndpointCascade interface {
	FetchFirstSuccessful(ctx context.Context, endpoints []model.EndpointSpec, token string) (*model.SourcedPayload, error)
}

// EndpointCascade tries candidate endpoints strictly one after another and
// stops at the first one answering with a parseable body.
type EndpointCascade struct {
	executor       repository.IRequestExecutor
	attemptTimeout time.Duration
}

func NewEndpointCascade(executor repository.IRequestExecutor, attemptTimeout time.Duration) *EndpointCascade {
	return &EndpointCascade{executor: executor, attemptTimeout: attemptTimeout}
}

type attemptResult struct {
	payload []byte
	err     error
}

func (c *EndpointCascade) FetchFirstSuccessful(ctx context.Context, endpoints []model.EndpointSpec, token string) (*model.SourcedPayload, error) {
	lg := logger.GetLogger()
	exhausted := &model.AllEndpointsExhausted{}

	for i, ep := range endpoints {
		if err := ctx.Err(); err != nil {
			exhausted.Failures = append(exhausted.Failures, &model.EndpointFailure{Kind: ep.Kind, Ordinal: i, Path: ep.Path, Err: err})
			break
		}

		res := c.attempt(ctx, ep, token)
		if res.err == nil {
			lg.WithFields(map[string]interface{}{
				"kind":    ep.Kind,
				"ordinal": i,
			}).Info("Endpoint answered")
			return &model.SourcedPayload{Payload: res.payload, Kind: ep.Kind, Ordinal: i, Path: ep.Path}, nil
		}

		lg.WithFields(map[string]interface{}{
			"kind":    ep.Kind,
			"ordinal": i,
			"path":    ep.Path,
			"error":   res.err,
		}).Warn("Endpoint failed, trying next")
		exhausted.Failures = append(exhausted.Failures, &model.EndpointFailure{Kind: ep.Kind, Ordinal: i, Path: ep.Path, Err: res.err})
	}

	return nil, exhausted
}

func (c *EndpointCascade) attempt(ctx context.Context, ep model.EndpointSpec, token string) attemptResult {
	if c.attemptTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.attemptTimeout)
		defer cancel()
	}

	body, err := c.executor.Get(ctx, ep.Path, token)
	if err != nil {
		return attemptResult{err: err}
	}
	if len(bytes.TrimSpace(body)) == 0 || !gjson.ValidBytes(body) {
		return attemptResult{err: errUnparseableBody}
	}
	return attemptResult{payload: body}
}
