package realtime

import "sync"

// FakePublisher records published alerts in memory. Test only.
type FakePublisher struct {
	mu     sync.Mutex
	alerts map[string][]Alert
}

func NewFakePublisher() *FakePublisher {
	return &FakePublisher{alerts: make(map[string][]Alert)}
}

func (p *FakePublisher) Publish(channel string, alert Alert) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.alerts[channel] = append(p.alerts[channel], alert)
	return nil
}

// AlertsFor returns all alerts published to the channel so far.
func (p *FakePublisher) AlertsFor(channel string) []Alert {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Alert{}, p.alerts[channel]...)
}

var _ Publisher = (*FakePublisher)(nil)
