package stub

import (
	"context"
	"sync"

	"github.com/evote-ccr/control-component/network"
)

// Publisher records published envelopes in memory.
type Publisher struct {
	mu        sync.Mutex
	published []*network.Envelope
	err       error
	notify    chan *network.Envelope
}

var _ network.Publisher = (*Publisher)(nil)

// NewPublisher creates a publisher that buffers up to capacity notifications on Published().
func NewPublisher(capacity int) *Publisher {
	return &Publisher{notify: make(chan *network.Envelope, capacity)}
}

func (p *Publisher) Publish(_ context.Context, envelope *network.Envelope) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, envelope)
	select {
	case p.notify <- envelope:
	default:
	}
	return nil
}

// FailWith makes every following Publish call return err. A nil err restores delivery.
func (p *Publisher) FailWith(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err = err
}

// Envelopes returns a copy of all envelopes published so far.
func (p *Publisher) Envelopes() []*network.Envelope {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*network.Envelope(nil), p.published...)
}

// Published notifies about every published envelope while the buffer has room.
func (p *Publisher) Published() <-chan *network.Envelope {
	return p.notify
}
