package suggestion

import "context"

type StatsSource interface {
	UserMessageStats(ctx context.Context, userID string) (Stats, error)
}

type Engine struct {
	source StatsSource
}

func NewEngine(source StatsSource) *Engine {
	return &Engine{source: source}
}

// Derive recomputes suggestions from the user's current history. Nothing is persisted.
func (e *Engine) Derive(ctx context.Context, userID string) (Set, Metrics, error) {
	stats, err := e.source.UserMessageStats(ctx, userID)
	if err != nil {
		return Set{}, Metrics{}, err
	}
	metrics := Aggregate(stats)
	return Classify(metrics), metrics, nil
}
