package ledger

import (
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"grumini-backend/internal/models"
)

// HistoryStore is append-only; entries are never mutated or deleted
// through the API.
type HistoryStore struct {
	col *collection[models.HistoryEntry]
}

func NewHistoryStore(dataDir string) *HistoryStore {
	return &HistoryStore{col: newCollection[models.HistoryEntry](filepath.Join(dataDir, "history.json"))}
}

func (s *HistoryStore) ListByUser(userID int64) ([]models.HistoryEntry, error) {
	records, err := s.col.snapshot()
	if err != nil {
		return nil, err
	}

	entries := make([]models.HistoryEntry, 0)
	for _, e := range records {
		if e.UserID == userID {
			entries = append(entries, e)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
	return entries, nil
}

func (s *HistoryStore) Append(e models.HistoryEntry) (models.HistoryEntry, error) {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	if e.Time == "" {
		e.Time = e.CreatedAt.Format(time.RFC3339)
	}
	err := s.col.update(func(records []models.HistoryEntry) ([]models.HistoryEntry, error) {
		return append(records, e), nil
	})
	if err != nil {
		return models.HistoryEntry{}, err
	}
	return e, nil
}
