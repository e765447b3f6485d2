package video

import (
	"context"
	"strings"
	"time"

	"ai-video-studio/internal/domain/ports/adapter"
	"ai-video-studio/internal/infra/metrics"
)

var _ adapter.VideoGenerator = (*MultiGenerator)(nil)

const tokenSep = "|"

// MultiGenerator submits to the default provider and prefixes the returned
// token with the provider name, so jobs keep polling the provider that
// accepted them after the default changes.
type MultiGenerator struct {
	defaultProvider string
	byProvider      map[string]adapter.VideoGenerator
}

func NewMultiGenerator(defaultProvider string, byProvider map[string]adapter.VideoGenerator) *MultiGenerator {
	norm := make(map[string]adapter.VideoGenerator, len(byProvider))
	for name, g := range byProvider {
		if g != nil {
			norm[strings.ToLower(name)] = g
		}
	}
	return &MultiGenerator{defaultProvider: strings.ToLower(defaultProvider), byProvider: norm}
}

func (m *MultiGenerator) pick(provider string) (string, adapter.VideoGenerator) {
	if g := m.byProvider[provider]; g != nil {
		return provider, g
	}
	if g := m.byProvider[m.defaultProvider]; g != nil {
		return m.defaultProvider, g
	}
	// last resort: first available
	for name, g := range m.byProvider {
		return name, g
	}
	return "", nil
}

func (m *MultiGenerator) Submit(ctx context.Context, req adapter.SubmitRequest) (string, error) {
	name, g := m.pick(m.defaultProvider)
	if g == nil {
		return "", errNoProvider
	}
	start := time.Now()
	tok, err := g.Submit(ctx, req)
	metrics.ObserveProviderCall(name, "submit", time.Since(start).Milliseconds(), err == nil)
	if err != nil {
		return "", err
	}
	return name + tokenSep + tok, nil
}

func (m *MultiGenerator) PollStatus(ctx context.Context, h adapter.JobHandle) (adapter.RemoteStatus, error) {
	provider, tok := splitToken(h.Token)
	name, g := m.pick(provider)
	if g == nil {
		return adapter.RemoteStatus{}, errNoProvider
	}
	h.Token = tok
	start := time.Now()
	st, err := g.PollStatus(ctx, h)
	metrics.ObserveProviderCall(name, "poll", time.Since(start).Milliseconds(), err == nil)
	return st, err
}

// splitToken accepts tokens without a prefix and returns them unchanged.
func splitToken(token string) (provider, rest string) {
	if i := strings.Index(token, tokenSep); i > 0 {
		return strings.ToLower(token[:i]), token[i+len(tokenSep):]
	}
	return "", token
}
