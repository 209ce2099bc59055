package generation

import (
	"sync"
	"testing"
)

func TestGuardLastRequestWins(t *testing.T) {
	t.Parallel()

	var g Guard

	first := g.Next()
	if !g.Current(first) {
		t.Fatal("first token should be current right after Next")
	}

	second := g.Next()
	if g.Current(first) {
		t.Error("first token should be stale after a second Next")
	}
	if !g.Current(second) {
		t.Error("second token should be current")
	}
}

func TestGuardInvalidate(t *testing.T) {
	t.Parallel()

	var g Guard

	token := g.Next()
	g.Invalidate()

	if g.Current(token) {
		t.Error("token should be stale after Invalidate")
	}
}

func TestGuardConcurrentNext(t *testing.T) {
	t.Parallel()

	var (
		g  Guard
		wg sync.WaitGroup
	)

	tokens := make([]Token, 50)

	for i := range tokens {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tokens[i] = g.Next()
		}()
	}

	wg.Wait()

	currentCount := 0
	for _, token := range tokens {
		if g.Current(token) {
			currentCount++
		}
	}

	if currentCount != 1 {
		t.Errorf("expected exactly one current token, got %d", currentCount)
	}
}
