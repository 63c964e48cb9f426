package llm

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// limited bounds concurrent in-flight generation calls.
type limited struct {
	inner Generator
	sem   *semaphore.Weighted
}

// Limit wraps inner so that at most n Generate calls run concurrently.
// Acquisition honors ctx, so a caller waiting for a slot can still be
// cancelled.
func Limit(inner Generator, n int) Generator {
	return &limited{
		inner: inner,
		sem:   semaphore.NewWeighted(int64(n)),
	}
}

func (l *limited) Generate(ctx context.Context, system, prompt string) (string, error) {
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer l.sem.Release(1)
	return l.inner.Generate(ctx, system, prompt)
}
