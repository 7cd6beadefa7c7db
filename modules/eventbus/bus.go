// Package eventbus is a process-local, best-effort pub-sub (spec §4.7). It
// is deliberately built on channels and a mutex rather than a third-party
// broker: see DESIGN.md for why no pack dependency fits an in-process,
// best-effort, single-binary fan-out.
package eventbus

import "sync"

// Topic names the closed set of event tags (spec §4.7).
type Topic string

const (
	TopicCVGenerationStarted   Topic = "cv_generation_started"
	TopicCVGenerationComplete  Topic = "cv_generation_complete"
	TopicCVGenerationError     Topic = "cv_generation_error"
	TopicApplicationAuthorized Topic = "application_authorized"
	TopicApplicationRejected   Topic = "application_rejected"
	TopicApplicationSubmitted  Topic = "application_submitted"
	TopicScraperFinished       Topic = "scraper_finished"
	TopicScraperError          Topic = "scraper_error"
	TopicReviewReady           Topic = "review_ready"
	TopicReviewExpiring        Topic = "review_expiring"
	TopicModelPullProgress     Topic = "model_pull_progress"
	TopicModelPullComplete     Topic = "model_pull_complete"
)

// Event is the envelope delivered to subscribers.
type Event struct {
	Topic   Topic
	Payload any
}

const subscriberQueueSize = 64

// Bus is a best-effort, non-blocking, in-process pub-sub. Emit never
// blocks: a subscriber whose queue is full is quarantined (unsubscribed)
// rather than stalling the publisher.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[Topic]map[int]chan Event
	nextID      int
}

func New() *Bus {
	return &Bus{subscribers: make(map[Topic]map[int]chan Event)}
}

// Subscribe registers for a topic and returns a receive channel plus an
// unsubscribe function.
func (b *Bus) Subscribe(topic Topic) (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.subscribers[topic] == nil {
		b.subscribers[topic] = make(map[int]chan Event)
	}
	id := b.nextID
	b.nextID++
	ch := make(chan Event, subscriberQueueSize)
	b.subscribers[topic][id] = ch

	unsubscribe := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if subs, ok := b.subscribers[topic]; ok {
			if c, ok := subs[id]; ok {
				delete(subs, id)
				close(c)
			}
		}
	}
	return ch, unsubscribe
}

// Emit delivers to every current subscriber of topic. A subscriber whose
// buffer is full is dropped (quarantined) rather than blocking the emitter.
func (b *Bus) Emit(topic Topic, payload any) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subscribers[topic]
	for id, ch := range subs {
		select {
		case ch <- Event{Topic: topic, Payload: payload}:
		default:
			delete(subs, id)
			close(ch)
		}
	}
}
