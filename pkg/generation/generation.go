package generation

import "sync/atomic"

// Token identifies one request issued through a Guard.
type Token uint64

/*
Guard implements last-request-wins bookkeeping for asynchronous resolutions.
Each new request takes a Token from Next. When the resolution finishes it asks
Current whether its token is still the newest one and only commits its result
if so. Outdated work is not cancelled, its result is simply dropped.

The zero value is ready to use.
*/
type Guard struct {
	current atomic.Uint64
}

// Next invalidates every outstanding token and returns a new one.
func (g *Guard) Next() Token {
	return Token(g.current.Add(1))
}

// Current reports whether t is the most recently issued token.
func (g *Guard) Current(t Token) bool {
	return g.current.Load() == uint64(t)
}

// Invalidate makes every outstanding token stale without issuing a new one.
func (g *Guard) Invalidate() {
	g.current.Add(1)
}
