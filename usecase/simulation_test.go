package usecase_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"post-manager/domain/dto"
	"post-manager/domain/model"
	"post-manager/usecase"
)

func TestSimulation_Posts(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	sim := usecase.NewSimulation(clock, 0)

	posts := sim.Posts(context.Background())
	require.Len(t, posts, 5)
	for i, p := range posts {
		assert.True(t, strings.HasPrefix(p.ID, "linkedin_"))
		assert.Contains(t, []model.PostStatus{model.StatusPublished, model.StatusDraft}, p.Status)
		assert.Nil(t, p.ScheduledDate)
		assert.Less(t, p.Engagement.Likes, uint(100))
		assert.Less(t, p.Engagement.Comments, uint(30))
		assert.Less(t, p.Engagement.Shares, uint(15))
		assert.Equal(t, clock.Now().AddDate(0, 0, -(i+1)), p.CreatedAt)
	}
	assert.Equal(t, "LinkedIn API Post 1", posts[0].Title)
}

func TestSimulation_ScheduledPostsAreInTheFuture(t *testing.T) {
	for _, start := range []time.Time{
		time.Date(2024, 3, 1, 0, 0, 1, 0, time.UTC),
		time.Date(2024, 3, 1, 23, 59, 59, 0, time.UTC),
		time.Date(2024, 12, 31, 18, 0, 0, 0, time.UTC),
	} {
		clock := clockwork.NewFakeClockAt(start)
		posts := usecase.NewSimulation(clock, 0).ScheduledPosts(context.Background())

		require.Len(t, posts, 3)
		for _, p := range posts {
			assert.Equal(t, model.StatusScheduled, p.Status)
			require.NotNil(t, p.ScheduledDate)
			assert.True(t, p.ScheduledDate.After(start), "%s not after %s", p.ScheduledDate, start)
		}
		assert.Equal(t, 10, posts[0].ScheduledDate.Hour())
		assert.True(t, posts[0].ScheduledDate.Before(*posts[2].ScheduledDate))
	}
}

func TestSimulation_Acks(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	sim := usecase.NewSimulation(clock, 0)
	ctx := context.Background()
	in := dto.PostPayload{"title": "Hi", "content": "Body", "status": "draft"}

	created := sim.CreateAck(ctx, in)
	for k, v := range in {
		assert.Equal(t, v, created[k])
	}
	assert.Equal(t, "linkedin_1709294400000", created["id"])
	assert.Equal(t, "2024-03-01T12:00:00Z", created["createdAt"])
	assert.NotContains(t, in, "id", "input must not be mutated")

	updated := sim.UpdateAck(ctx, "linkedin_7", in)
	assert.Equal(t, "linkedin_7", updated["id"])
	assert.Contains(t, updated, "updatedAt")
	assert.Equal(t, "Hi", updated["title"])

	assert.Equal(t, dto.DeleteAck{Success: true, ID: "linkedin_7"}, sim.DeleteAck(ctx, "linkedin_7"))
}

func TestSimulation_DelayUsesClock(t *testing.T) {
	clock := clockwork.NewFakeClock()
	sim := usecase.NewSimulation(clock, 800*time.Millisecond)

	done := make(chan *model.Profile, 1)
	go func() { done <- sim.Profile(context.Background()) }()

	require.NoError(t, clock.BlockUntilContext(context.Background(), 1))
	select {
	case <-done:
		t.Fatal("returned before the simulated delay elapsed")
	default:
	}
	clock.Advance(800 * time.Millisecond)

	p := <-done
	assert.True(t, p.Simulated)
	assert.Equal(t, "Demo", p.FirstName)
	assert.Equal(t, "User", p.LastName)
}

func TestSimulation_DelayHonoursContext(t *testing.T) {
	sim := usecase.NewSimulation(clockwork.NewFakeClock(), time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Len(t, sim.Posts(ctx), 5)
}
