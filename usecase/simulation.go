package usecase

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"post-manager/domain/dto"
	"post-manager/domain/model"

	"github.com/jonboulle/clockwork"
)

const (
	simulatedPostCount      = 5
	simulatedScheduledCount = 3
	maxSimulatedLikes       = 100
	maxSimulatedComments    = 30
	maxSimulatedShares      = 15
	simulatedProfileID      = "simulated-user-id"
)

// Simulation produces placeholder data whenever the live path cannot.
// None of its operations fail.
type Simulation struct {
	clock clockwork.Clock
	delay time.Duration

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewSimulation(clock clockwork.Clock, delay time.Duration) *Simulation {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Simulation{
		clock: clock,
		delay: delay,
		rnd:   rand.New(rand.NewSource(clock.Now().UnixNano())),
	}
}

// wait imitates network latency. A cancelled context only shortens it.
func (s *Simulation) wait(ctx context.Context) {
	if s.delay <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-s.clock.After(s.delay):
	}
}

func (s *Simulation) intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rnd.Intn(n)
}

func (s *Simulation) Profile(ctx context.Context) *model.Profile {
	s.wait(ctx)
	return &model.Profile{
		ID:        simulatedProfileID,
		FirstName: "Demo",
		LastName:  "User",
		Headline:  "Simulated LinkedIn profile",
		Simulated: true,
	}
}

func (s *Simulation) Posts(ctx context.Context) []model.Post {
	s.wait(ctx)
	now := s.clock.Now().UTC()
	posts := make([]model.Post, 0, simulatedPostCount)
	for i := 1; i <= simulatedPostCount; i++ {
		status := model.StatusPublished
		if s.intn(2) == 1 {
			status = model.StatusDraft
		}
		posts = append(posts, model.Post{
			ID:        fmt.Sprintf("linkedin_%d_%d", now.UnixMilli(), i),
			Title:     fmt.Sprintf("LinkedIn API Post %d", i),
			Content:   fmt.Sprintf("This is content for post %d imported from LinkedIn API.", i),
			Status:    status,
			CreatedAt: now.AddDate(0, 0, -i),
			Engagement: model.Engagement{
				Likes:    uint(s.intn(maxSimulatedLikes)),
				Comments: uint(s.intn(maxSimulatedComments)),
				Shares:   uint(s.intn(maxSimulatedShares)),
			},
		})
	}
	return posts
}

// ScheduledPosts returns posts due on the following days, each at (9+i):00 local time.
func (s *Simulation) ScheduledPosts(ctx context.Context) []model.Post {
	s.wait(ctx)
	now := s.clock.Now()
	posts := make([]model.Post, 0, simulatedScheduledCount)
	for i := 1; i <= simulatedScheduledCount; i++ {
		at := time.Date(now.Year(), now.Month(), now.Day()+i, 9+i, 0, 0, 0, now.Location())
		if !at.After(now) {
			at = now.Add(time.Duration(i) * time.Hour)
		}
		posts = append(posts, model.Post{
			ID:            fmt.Sprintf("linkedin_scheduled_%d_%d", now.UnixMilli(), i),
			Title:         fmt.Sprintf("Scheduled LinkedIn Post %d", i),
			Content:       fmt.Sprintf("This is content for scheduled post %d imported from LinkedIn API.", i),
			Status:        model.StatusScheduled,
			CreatedAt:     now.UTC(),
			ScheduledDate: &at,
		})
	}
	return posts
}

func (s *Simulation) CreateAck(ctx context.Context, data dto.PostPayload) dto.PostPayload {
	s.wait(ctx)
	now := s.clock.Now().UTC()
	ack := copyPayload(data)
	ack["id"] = fmt.Sprintf("linkedin_%d", now.UnixMilli())
	ack["createdAt"] = now.Format(time.RFC3339Nano)
	return ack
}

func (s *Simulation) UpdateAck(ctx context.Context, id string, data dto.PostPayload) dto.PostPayload {
	s.wait(ctx)
	ack := copyPayload(data)
	ack["id"] = id
	ack["updatedAt"] = s.clock.Now().UTC().Format(time.RFC3339Nano)
	return ack
}

func (s *Simulation) DeleteAck(ctx context.Context, id string) dto.DeleteAck {
	s.wait(ctx)
	return dto.DeleteAck{Success: true, ID: id}
}

func copyPayload(data dto.PostPayload) dto.PostPayload {
	out := make(dto.PostPayload, len(data)+2)
	for k, v := range data {
		out[k] = v
	}
	return out
}
