package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"post-manager/domain/model"
	"post-manager/usecase"
)

type MockExecutor struct {
	mock.Mock
}

func (m *MockExecutor) Get(ctx context.Context, path, token string) ([]byte, error) {
	args := m.Called(ctx, path, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockExecutor) Send(ctx context.Context, method, path, token string, body interface{}) ([]byte, error) {
	args := m.Called(ctx, method, path, token, body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

var cascadeEndpoints = []model.EndpointSpec{
	{Path: "/shares", Kind: model.KindShares},
	{Path: "/ugcPosts", Kind: model.KindUGCPosts},
	{Path: "/posts", Kind: model.KindStructuredFeed},
	{Path: "/me/settings", Kind: model.KindSettingsBlob},
}

func TestCascade_StopsAtFirstSuccess(t *testing.T) {
	ex := new(MockExecutor)
	var order []string
	record := func(args mock.Arguments) { order = append(order, args.String(1)) }

	ex.On("Get", mock.Anything, "/shares", "tok").Run(record).Return(nil, &model.UpstreamError{StatusCode: 403, Body: "denied"}).Once()
	ex.On("Get", mock.Anything, "/ugcPosts", "tok").Run(record).Return([]byte("<html>"), nil).Once()
	ex.On("Get", mock.Anything, "/posts", "tok").Run(record).Return([]byte(`{"elements":[]}`), nil).Once()

	c := usecase.NewEndpointCascade(ex, time.Second)
	got, err := c.FetchFirstSuccessful(context.Background(), cascadeEndpoints, "tok")
	require.NoError(t, err)

	assert.Equal(t, model.KindStructuredFeed, got.Kind)
	assert.Equal(t, 2, got.Ordinal)
	assert.Equal(t, "/posts", got.Path)
	assert.JSONEq(t, `{"elements":[]}`, string(got.Payload))
	assert.Equal(t, []string{"/shares", "/ugcPosts", "/posts"}, order)
	ex.AssertNotCalled(t, "Get", mock.Anything, "/me/settings", mock.Anything)
}

func TestCascade_AllFailIsExhausted(t *testing.T) {
	ex := new(MockExecutor)
	for _, ep := range cascadeEndpoints {
		ex.On("Get", mock.Anything, ep.Path, "tok").Return(nil, errors.New("boom")).Once()
	}

	c := usecase.NewEndpointCascade(ex, time.Second)
	got, err := c.FetchFirstSuccessful(context.Background(), cascadeEndpoints, "tok")
	assert.Nil(t, got)

	var exhausted *model.AllEndpointsExhausted
	require.ErrorAs(t, err, &exhausted)
	require.Len(t, exhausted.Failures, len(cascadeEndpoints))
	for i, f := range exhausted.Failures {
		assert.Equal(t, i, f.Ordinal)
		assert.Equal(t, cascadeEndpoints[i].Kind, f.Kind)
	}
	ex.AssertExpectations(t)
}

func TestCascade_EmptyListIsExhausted(t *testing.T) {
	c := usecase.NewEndpointCascade(new(MockExecutor), time.Second)
	_, err := c.FetchFirstSuccessful(context.Background(), nil, "tok")

	var exhausted *model.AllEndpointsExhausted
	require.ErrorAs(t, err, &exhausted)
	assert.Empty(t, exhausted.Failures)
}

func TestCascade_EmptyBodyIsFailure(t *testing.T) {
	ex := new(MockExecutor)
	ex.On("Get", mock.Anything, "/shares", "tok").Return([]byte("  "), nil).Once()
	ex.On("Get", mock.Anything, "/ugcPosts", "tok").Return([]byte(`[]`), nil).Once()

	c := usecase.NewEndpointCascade(ex, 0)
	got, err := c.FetchFirstSuccessful(context.Background(), cascadeEndpoints[:2], "tok")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Ordinal)
}

func TestCascade_AttemptGetsDeadline(t *testing.T) {
	ex := new(MockExecutor)
	ex.On("Get", mock.Anything, "/shares", "tok").Run(func(args mock.Arguments) {
		ctx := args.Get(0).(context.Context)
		_, ok := ctx.Deadline()
		assert.True(t, ok)
	}).Return([]byte(`{}`), nil).Once()

	c := usecase.NewEndpointCascade(ex, 50*time.Millisecond)
	_, err := c.FetchFirstSuccessful(context.Background(), cascadeEndpoints[:1], "tok")
	require.NoError(t, err)
}

func TestCascade_CancelledContextStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := usecase.NewEndpointCascade(new(MockExecutor), time.Second)
	_, err := c.FetchFirstSuccessful(ctx, cascadeEndpoints, "tok")
	assert.ErrorIs(t, err, context.Canceled)
}
