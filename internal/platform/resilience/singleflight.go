package resilience

import "sync"

// SingleFlight collapses concurrent calls that share a key into one
// execution. The cache uses it so a burst of identical league requests
// after a TTL expiry costs a single upstream fetch.
//
// The zero value is ready to use.
type SingleFlight struct {
	mu       sync.Mutex
	inflight map[string]*flightResult
}

// flightResult carries one execution's outcome to every waiter. The
// channel closes once val and err are final.
type flightResult struct {
	done chan struct{}
	val  any
	err  error
}

// Do runs fn once per key among concurrent callers. Every caller gets
// the same value and error; shared reports whether this caller waited
// on another goroutine's execution instead of running fn itself.
func (g *SingleFlight) Do(key string, fn func() (any, error)) (val any, err error, shared bool) {
	g.mu.Lock()
	if existing, ok := g.inflight[key]; ok {
		g.mu.Unlock()
		<-existing.done
		return existing.val, existing.err, true
	}

	result := &flightResult{done: make(chan struct{})}
	if g.inflight == nil {
		g.inflight = make(map[string]*flightResult)
	}
	g.inflight[key] = result
	g.mu.Unlock()

	result.val, result.err = fn()

	g.mu.Lock()
	delete(g.inflight, key)
	g.mu.Unlock()
	close(result.done)

	return result.val, result.err, false
}
