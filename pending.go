package chatbot

import "sync"

// pendingTable maps correlation ids to single-use reply channels.
type pendingTable struct {
	mu      sync.Mutex
	waiters map[string]chan *Event
	closed  bool
}

func newPendingTable() *pendingTable {
	return &pendingTable{waiters: make(map[string]chan *Event)}
}

// register adds a waiter for id. It returns false once the table is closed.
func (p *pendingTable) register(id string) (chan *Event, bool) {
	ch := make(chan *Event, 1)
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, false
	}
	p.waiters[id] = ch
	return ch, true
}

// resolve delivers ev to the waiter for id and removes it. Unknown ids
// are ignored.
func (p *pendingTable) resolve(id string, ev *Event) bool {
	p.mu.Lock()
	ch, ok := p.waiters[id]
	if ok {
		delete(p.waiters, id)
	}
	p.mu.Unlock()

	if !ok {
		return false
	}
	ch <- ev
	return true
}

// remove drops the waiter for id without resolving it.
func (p *pendingTable) remove(id string) {
	p.mu.Lock()
	delete(p.waiters, id)
	p.mu.Unlock()
}

// closeAll drops every waiter and rejects future registrations. Waiters
// observe closure through the client's done channel.
func (p *pendingTable) closeAll() {
	p.mu.Lock()
	p.closed = true
	p.waiters = make(map[string]chan *Event)
	p.mu.Unlock()
}

func (p *pendingTable) size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.waiters)
}
