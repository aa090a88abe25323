// Package broker passes the progress channel of a running generation
// pipeline from its producer goroutine to the first SSE subscriber.
//
// The producer is the goroutine spawned by the HTTP POST that starts a
// generation run. The first consumer is the handler returning the SSE
// stream. Later consumers (usually reconnects) wait until the producer is
// finished and then fall back to the persisted transmission.
package broker

type publication struct {
	runID   string
	channel chan string
}

type subscription struct {
	runID string
	reply chan chan string
}

type ProgressBroker struct {
	stopChannel      chan struct{}
	publishChannel   chan publication
	unpublishChannel chan string
	subscribeChannel chan subscription
}

// New creates a ProgressBroker. Call Start in a goroutine and Stop to shut
// it down.
func New() *ProgressBroker {
	return &ProgressBroker{
		stopChannel:      make(chan struct{}),
		publishChannel:   make(chan publication),
		unpublishChannel: make(chan string),
		subscribeChannel: make(chan subscription),
	}
}

// Start listens for publish, unpublish, and subscribe events. It blocks
// until Stop is called, so it should run in its own goroutine.
func (b *ProgressBroker) Start() {
	producers := map[string]chan string{}
	waiting := map[string][]chan chan string{}
	for {
		select {
		case <-b.stopChannel:
			return

		case sub := <-b.subscribeChannel:
			producer, ok := producers[sub.runID]
			if !ok {
				// Producer finished or never started; the subscriber falls
				// back to persisted data.
				close(sub.reply)
				break
			}
			if _, taken := waiting[sub.runID]; !taken {
				// First subscriber gets the producer's channel.
				waiting[sub.runID] = []chan chan string{}
				sub.reply <- producer
				break
			}
			// Later subscribers wait for the producer to finish.
			waiting[sub.runID] = append(waiting[sub.runID], sub.reply)

		case pub := <-b.publishChannel:
			producers[pub.runID] = pub.channel

		case runID := <-b.unpublishChannel:
			// Unblock everyone still waiting on this run.
			for _, reply := range waiting[runID] {
				close(reply)
			}
			delete(producers, runID)
			delete(waiting, runID)
		}
	}
}

// Stop shuts down the broker goroutine.
func (b *ProgressBroker) Stop() {
	close(b.stopChannel)
}

// Publish registers the progress channel for a run. Use an unbuffered
// channel so the producer blocks until a consumer attaches or, with a
// timeout on the producer side, gives up.
func (b *ProgressBroker) Publish(runID string, channel chan string) {
	b.publishChannel <- publication{runID: runID, channel: channel}
}

// Unpublish removes the run. Subscribers still waiting on it are released
// with a closed reply so they can fetch persisted data instead.
func (b *ProgressBroker) Unpublish(runID string) {
	b.unpublishChannel <- runID
}

// Subscribe returns a channel that yields the producer's progress channel.
// It is closed without a value when the run is unknown, already claimed and
// finished, or finishes while waiting.
func (b *ProgressBroker) Subscribe(runID string) chan chan string {
	reply := make(chan chan string, 1)
	b.subscribeChannel <- subscription{runID: runID, reply: reply}
	return reply
}
