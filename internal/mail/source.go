package mail

import (
	"context"
	"log/slog"
)

// SourceConfig configures a TieredSource. Tiers are tried in order; every
// listed message is post-filtered against Exclusions regardless of what the
// provider's own query filtering did.
type SourceConfig struct {
	Tiers      [][]string
	Exclusions []string
	PageSize   int
}

// TieredSource selects the threads one pipeline run will process. It pages
// each tier until the target thread count is reached, then stops; tiers
// beyond that point are never queried.
type TieredSource struct {
	provider Provider
	tiers    [][]string
	exclude  map[string]struct{}
	query    string
	pageSize int
	logger   *slog.Logger
}

// NewTieredSource validates cfg and builds a source over provider.
func NewTieredSource(provider Provider, cfg SourceConfig, log *slog.Logger) (*TieredSource, error) {
	if provider == nil {
		return nil, ErrMissingProvider
	}
	if len(cfg.Tiers) == 0 {
		return nil, ErrNoTiers
	}
	if cfg.PageSize <= 0 {
		return nil, ErrInvalidPageSize
	}
	if log == nil {
		log = slog.Default()
	}

	exclude := make(map[string]struct{}, len(cfg.Exclusions))
	for _, label := range cfg.Exclusions {
		exclude[label] = struct{}{}
	}

	return &TieredSource{
		provider: provider,
		tiers:    cfg.Tiers,
		exclude:  exclude,
		query:    ExclusionQuery(cfg.Exclusions),
		pageSize: cfg.PageSize,
		logger:   log.With("component", "mail_source"),
	}, nil
}

// Fetch collects up to threadCount distinct threads, each holding at most
// messageCap messages in discovery order. A short result is not an error:
// when every tier is exhausted before the target is met, whatever was found
// is returned. Provider failures abort the walk and surface as a
// *RetrievalError.
func (s *TieredSource) Fetch(ctx context.Context, threadCount, messageCap int) ([]Thread, error) {
	if threadCount <= 0 {
		return nil, ErrInvalidThreadCount
	}
	if messageCap <= 0 {
		return nil, ErrInvalidMessageCap
	}

	acc := newAccumulator(messageCap)

	for tierIdx, tier := range s.tiers {
		if acc.count() >= threadCount {
			break
		}

		pageToken := ""
		for acc.count() < threadCount {
			refs, next, err := s.provider.List(ctx, tier, s.query, pageToken, s.pageSize)
			if err != nil {
				return nil, &RetrievalError{Op: "list", Tier: tierIdx, Err: err}
			}

			// The whole page is grouped even if the target count is crossed
			// partway through; only the next page fetch is skipped.
			for _, ref := range refs {
				msg, err := s.provider.Get(ctx, ref.ID)
				if err != nil {
					return nil, &RetrievalError{Op: "get", Tier: tierIdx, Err: err}
				}
				if s.excluded(msg.Labels) {
					continue
				}
				acc.add(msg)
			}

			if next == "" {
				break
			}
			pageToken = next
		}

		s.logger.Debug("tier scan complete",
			"tier", tierIdx,
			"labels", tier,
			"threads", acc.count())
	}

	threads := acc.threads(threadCount)
	s.logger.Info("thread retrieval complete",
		"threads", len(threads),
		"target", threadCount)
	return threads, nil
}

func (s *TieredSource) excluded(labels []string) bool {
	for _, label := range labels {
		if _, ok := s.exclude[label]; ok {
			return true
		}
	}
	return false
}

// accumulator groups messages by thread in first-seen order, capping the
// number of messages kept per thread.
type accumulator struct {
	order      []string
	groups     map[string][]Item
	messageCap int
}

func newAccumulator(messageCap int) *accumulator {
	return &accumulator{
		groups:     make(map[string][]Item),
		messageCap: messageCap,
	}
}

// add places msg into its thread group. A new thread starts at position 1;
// a known thread is extended only while below the cap. Re-encountering a
// thread in a later tier therefore extends it, never duplicates it.
func (a *accumulator) add(msg Message) {
	items, seen := a.groups[msg.ThreadID]
	if !seen {
		a.order = append(a.order, msg.ThreadID)
		a.groups[msg.ThreadID] = []Item{{
			MessageID: msg.ID,
			ThreadID:  msg.ThreadID,
			Labels:    msg.Labels,
			Position:  1,
		}}
		return
	}
	if len(items) < a.messageCap {
		a.groups[msg.ThreadID] = append(items, Item{
			MessageID: msg.ID,
			ThreadID:  msg.ThreadID,
			Labels:    msg.Labels,
			Position:  len(items) + 1,
		})
	}
}

func (a *accumulator) count() int {
	return len(a.order)
}

// threads returns up to limit groups in discovery order. Truncation drops
// whole threads, never individual messages.
func (a *accumulator) threads(limit int) []Thread {
	if limit > len(a.order) {
		limit = len(a.order)
	}
	out := make([]Thread, 0, limit)
	for _, id := range a.order[:limit] {
		out = append(out, Thread{ID: id, Messages: a.groups[id]})
	}
	return out
}
