package agent

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

const defaultMaxConcurrent = 4

// Target is one agent callback to fire for a posted message.
type Target struct {
	AgentID string
	Name    string
	URL     string
}

// Reply is a successful agent response.
type Reply struct {
	AgentID string
	Body    string
}

// Dispatcher fans a message out to agent callbacks. Dispatch is synchronous
// with respect to the caller: it returns only once every call has settled.
// Failures are logged and dropped, never returned; a misbehaving agent must
// not fail the message post that mentioned it.
type Dispatcher struct {
	client *Client
	sem    chan struct{}
	log    *zap.Logger
}

func NewDispatcher(client *Client, maxConcurrent int, log *zap.Logger) *Dispatcher {
	if maxConcurrent <= 0 {
		maxConcurrent = defaultMaxConcurrent
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{
		client: client,
		sem:    make(chan struct{}, maxConcurrent),
		log:    log,
	}
}

// Dispatch calls every target with the message content and collects the
// successful replies. Each target fires independently; the returned order
// is not the target order.
func (d *Dispatcher) Dispatch(ctx context.Context, targets []Target, content string) []Reply {
	if len(targets) == 0 {
		return nil
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		replies []Reply
	)
	for _, target := range targets {
		wg.Add(1)
		go func(t Target) {
			defer wg.Done()
			d.sem <- struct{}{}
			defer func() { <-d.sem }()

			body, err := d.client.Call(ctx, t.URL, content)
			if err != nil {
				d.log.Warn("agent callback failed",
					zap.String("agent_id", t.AgentID),
					zap.String("agent_name", t.Name),
					zap.Error(err))
				return
			}
			mu.Lock()
			replies = append(replies, Reply{AgentID: t.AgentID, Body: body})
			mu.Unlock()
		}(target)
	}
	wg.Wait()
	return replies
}
