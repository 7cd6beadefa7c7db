package eventbus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBus_DeliversToSubscriber(t *testing.T) {
	bus := New()
	ch, unsubscribe := bus.Subscribe(TopicReviewReady)
	defer unsubscribe()

	bus.Emit(TopicReviewReady, "application-1")

	select {
	case evt := <-ch:
		assert.Equal(t, TopicReviewReady, evt.Topic)
		assert.Equal(t, "application-1", evt.Payload)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestBus_SlowSubscriberIsQuarantinedNotBlocking(t *testing.T) {
	bus := New()
	ch, _ := bus.Subscribe(TopicScraperFinished)

	for i := 0; i < subscriberQueueSize+10; i++ {
		bus.Emit(TopicScraperFinished, i)
	}

	bus.mu.RLock()
	_, stillSubscribed := bus.subscribers[TopicScraperFinished][0]
	bus.mu.RUnlock()

	drained := 0
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				goto done
			}
			drained++
		default:
			goto done
		}
	}
done:
	assert.LessOrEqual(t, drained, subscriberQueueSize)
	assert.False(t, stillSubscribed, "a subscriber whose queue filled up is unsubscribed")
}

func TestBus_EmitWithNoSubscribersDoesNotPanic(t *testing.T) {
	bus := New()
	assert.NotPanics(t, func() {
		bus.Emit(TopicCVGenerationStarted, nil)
	})
}
