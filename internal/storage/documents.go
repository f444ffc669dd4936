package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sandeepkv93/questd/internal/model"
)

const (
	KeyQuests   = "quest_master_quests"
	KeyStats    = "quest_master_stats"
	KeyLanguage = "quest_master_language"
)

// Snapshot is everything the application persists.
type Snapshot struct {
	Quests   []model.Quest
	Stats    model.UserStats
	Language model.Language
}

func DefaultSnapshot() Snapshot {
	return Snapshot{
		Quests:   []model.Quest{},
		Stats:    model.DefaultUserStats(),
		Language: model.DefaultLanguage,
	}
}

// Documents maps a Snapshot onto the three fixed keys of a Repository.
type Documents struct {
	repo Repository
}

func NewDocuments(repo Repository) *Documents {
	return &Documents{repo: repo}
}

// Load reads each document; a missing key keeps its default.
func (d *Documents) Load(ctx context.Context) (Snapshot, error) {
	out := DefaultSnapshot()
	if err := d.loadJSON(ctx, KeyQuests, &out.Quests); err != nil {
		return Snapshot{}, err
	}
	if out.Quests == nil {
		out.Quests = []model.Quest{}
	}
	if err := d.loadJSON(ctx, KeyStats, &out.Stats); err != nil {
		return Snapshot{}, err
	}
	var lang string
	if err := d.loadJSON(ctx, KeyLanguage, &lang); err != nil {
		return Snapshot{}, err
	}
	if lang != "" {
		out.Language = model.ParseLanguage(lang)
	}
	return out, nil
}

// Save writes all documents in one call so quests and stats never diverge.
func (d *Documents) Save(ctx context.Context, snap Snapshot) error {
	quests := snap.Quests
	if quests == nil {
		quests = []model.Quest{}
	}
	entries := make(map[string]string, 3)
	for key, v := range map[string]any{
		KeyQuests:   quests,
		KeyStats:    snap.Stats,
		KeyLanguage: string(snap.Language),
	} {
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode %s: %w", key, err)
		}
		entries[key] = string(raw)
	}
	return d.repo.SetMany(ctx, entries)
}

// LastSaved reports when any document was last written. ok is false when
// nothing has been saved yet.
func (d *Documents) LastSaved(ctx context.Context) (at time.Time, ok bool, err error) {
	keys, err := d.repo.Keys(ctx)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("list keys: %w", err)
	}
	for _, key := range keys {
		switch key {
		case KeyQuests, KeyStats, KeyLanguage:
		default:
			continue
		}
		ts, err := d.repo.UpdatedAt(ctx, key)
		if err != nil {
			return time.Time{}, false, fmt.Errorf("read %s timestamp: %w", key, err)
		}
		if !ok || ts.After(at) {
			at, ok = ts, true
		}
	}
	return at, ok, nil
}

func (d *Documents) loadJSON(ctx context.Context, key string, dst any) error {
	raw, err := d.repo.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return fmt.Errorf("read %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}
