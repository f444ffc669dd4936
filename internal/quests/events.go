package quests

type ChangeKind string

const (
	ChangeLoaded     ChangeKind = "loaded"
	ChangeCreated    ChangeKind = "created"
	ChangeUpdated    ChangeKind = "updated"
	ChangeCompleted  ChangeKind = "completed"
	ChangeAbandoned  ChangeKind = "abandoned"
	ChangeReconciled ChangeKind = "reconciled"
	ChangeLanguage   ChangeKind = "language"
)

// Change tells subscribers that state moved; they re-read what they need.
type Change struct {
	Kind    ChangeKind
	QuestID string
}

const subscriberBuffer = 16

// Subscribe returns a channel of changes. Sends never block the store; a
// subscriber that falls behind misses events, not state.
func (s *Store) Subscribe() <-chan Change {
	ch := make(chan Change, subscriberBuffer)
	s.mu.Lock()
	s.subs = append(s.subs, ch)
	s.mu.Unlock()
	return ch
}

func (s *Store) publish(c Change) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- c:
		default:
		}
	}
}
