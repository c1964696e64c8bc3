package memory

import (
	"cmp"
	"context"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/streamhub/engagement-hub/internal/domain/content"
	"github.com/streamhub/engagement-hub/internal/domain/relation"
	"github.com/streamhub/engagement-hub/internal/domain/shared"
)

// ContentStore keeps videos, comments and channels in maps. Relation-based
// filters (liked_by, subscribed_by, subscribers_of) read from the attached
// RelationStore.
type ContentStore struct {
	mu        sync.RWMutex
	videos    map[string]*content.Video
	comments  map[string]*content.Comment
	channels  map[string]*content.Channel
	relations *RelationStore
	fail      error

	// GetByIDsCalls counts batched lookups.
	GetByIDsCalls atomic.Int64
}

// NewContentStore creates an empty store joined to relations.
func NewContentStore(relations *RelationStore) *ContentStore {
	return &ContentStore{
		videos:    make(map[string]*content.Video),
		comments:  make(map[string]*content.Comment),
		channels:  make(map[string]*content.Channel),
		relations: relations,
	}
}

// SetFail makes every subsequent read return err.
func (s *ContentStore) SetFail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = err
}

// SaveChannel implements content.Writer.
func (s *ContentStore) SaveChannel(_ context.Context, c *content.Channel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *c
	s.channels[c.ID] = &cp
	return nil
}

// SaveVideo implements content.Writer.
func (s *ContentStore) SaveVideo(_ context.Context, v *content.Video) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *v
	s.videos[v.ID] = &cp
	return nil
}

// SaveComment implements content.Writer.
func (s *ContentStore) SaveComment(_ context.Context, c *content.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *c
	s.comments[c.ID] = &cp
	return nil
}

// GetByID implements content.Store.
func (s *ContentStore) GetByID(_ context.Context, kind content.Kind, id string) (content.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.fail != nil {
		return nil, s.fail
	}
	if it := s.lookup(kind, id); it != nil {
		return it, nil
	}
	return nil, shared.ErrContentNotFound
}

// GetByIDs implements content.Store.
func (s *ContentStore) GetByIDs(_ context.Context, kind content.Kind, ids []string) (map[string]content.Item, error) {
	s.GetByIDsCalls.Add(1)
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.fail != nil {
		return nil, s.fail
	}
	out := make(map[string]content.Item, len(ids))
	for _, id := range ids {
		if it := s.lookup(kind, id); it != nil {
			out[id] = it
		}
	}
	return out, nil
}

// Exists implements content.Store.
func (s *ContentStore) Exists(_ context.Context, kind content.Kind, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.fail != nil {
		return false, s.fail
	}
	return s.lookup(kind, id) != nil, nil
}

func (s *ContentStore) lookup(kind content.Kind, id string) content.Item {
	switch kind {
	case content.KindVideo:
		if v, ok := s.videos[id]; ok {
			cp := *v
			return &cp
		}
	case content.KindComment:
		if c, ok := s.comments[id]; ok {
			cp := *c
			return &cp
		}
	case content.KindChannel:
		if c, ok := s.channels[id]; ok {
			cp := *c
			return &cp
		}
	}
	return nil
}

// Query implements content.Store.
func (s *ContentStore) Query(_ context.Context, q content.Query) ([]content.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.fail != nil {
		return nil, s.fail
	}

	items := s.match(q.Kind, q.Filter)
	sort.SliceStable(items, func(i, j int) bool {
		c := compare(items[i], items[j], q.Sort)
		if c == 0 {
			return items[i].ItemID() < items[j].ItemID()
		}
		if q.Direction == shared.SortAsc {
			return c < 0
		}
		return c > 0
	})

	if q.Skip >= len(items) {
		return []content.Item{}, nil
	}
	end := q.Skip + q.Take
	if end > len(items) {
		end = len(items)
	}
	return items[q.Skip:end], nil
}

// Count implements content.Store.
func (s *ContentStore) Count(_ context.Context, kind content.Kind, filter content.Filter) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.fail != nil {
		return 0, s.fail
	}
	return int64(len(s.match(kind, filter))), nil
}

func (s *ContentStore) match(kind content.Kind, f content.Filter) []content.Item {
	var out []content.Item
	search := strings.ToLower(f.Search)

	switch kind {
	case content.KindVideo:
		var liked map[string]struct{}
		if f.LikedBy != "" {
			liked = s.relations.TargetsOf(f.LikedBy, relation.KindVideoLike)
		}
		for _, v := range s.videos {
			if !v.IsPublished && !f.IncludeUnpublished {
				continue
			}
			if f.OwnerID != "" && v.OwnerID != f.OwnerID {
				continue
			}
			if liked != nil {
				if _, ok := liked[v.ID]; !ok {
					continue
				}
			}
			if search != "" &&
				!strings.Contains(strings.ToLower(v.Title), search) &&
				!strings.Contains(strings.ToLower(v.Description), search) {
				continue
			}
			cp := *v
			out = append(out, &cp)
		}
	case content.KindComment:
		for _, c := range s.comments {
			if c.VideoID != f.VideoID {
				continue
			}
			cp := *c
			out = append(out, &cp)
		}
	case content.KindChannel:
		var subscribed, subscribers map[string]struct{}
		if f.SubscribedBy != "" {
			subscribed = s.relations.TargetsOf(f.SubscribedBy, relation.KindSubscription)
		}
		if f.SubscribersOf != "" {
			subscribers = s.relations.ActorsOf(f.SubscribersOf, relation.KindSubscription)
		}
		for _, c := range s.channels {
			if subscribed != nil {
				if _, ok := subscribed[c.ID]; !ok {
					continue
				}
			}
			if subscribers != nil {
				if _, ok := subscribers[c.ID]; !ok {
					continue
				}
			}
			if search != "" &&
				!strings.Contains(strings.ToLower(c.Username), search) &&
				!strings.Contains(strings.ToLower(c.FullName), search) {
				continue
			}
			cp := *c
			out = append(out, &cp)
		}
	}
	return out
}

func compare(a, b content.Item, col content.Column) int {
	switch col {
	case content.ColumnDuration:
		return cmp.Compare(a.(*content.Video).Duration, b.(*content.Video).Duration)
	case content.ColumnViews:
		return cmp.Compare(a.(*content.Video).Views, b.(*content.Video).Views)
	case content.ColumnTitle:
		return strings.Compare(a.(*content.Video).Title, b.(*content.Video).Title)
	case content.ColumnUsername:
		return strings.Compare(a.(*content.Channel).Username, b.(*content.Channel).Username)
	default:
		return a.ItemCreatedAt().Compare(b.ItemCreatedAt())
	}
}

var (
	_ content.Store  = (*ContentStore)(nil)
	_ content.Writer = (*ContentStore)(nil)
)
