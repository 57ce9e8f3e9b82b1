package ledger

import (
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"grumini-backend/internal/models"
)

type ExportStore struct {
	col *collection[models.Export]
}

func NewExportStore(dataDir string) *ExportStore {
	return &ExportStore{col: newCollection[models.Export](filepath.Join(dataDir, "exports.json"))}
}

func (s *ExportStore) ListByUser(userID int64) ([]models.Export, error) {
	records, err := s.col.snapshot()
	if err != nil {
		return nil, err
	}

	exports := make([]models.Export, 0)
	for _, e := range records {
		if e.UserID == userID {
			exports = append(exports, e)
		}
	}
	sort.Slice(exports, func(i, j int) bool {
		return exports[i].CreatedAt.After(exports[j].CreatedAt)
	})
	return exports, nil
}

func (s *ExportStore) Insert(e models.Export) (models.Export, error) {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	err := s.col.update(func(records []models.Export) ([]models.Export, error) {
		return append(records, e), nil
	})
	if err != nil {
		return models.Export{}, err
	}
	return e, nil
}

func (s *ExportStore) Delete(id string, userID int64) error {
	return s.col.update(func(records []models.Export) ([]models.Export, error) {
		for i, e := range records {
			if e.ID != id {
				continue
			}
			if e.UserID != userID {
				return nil, ErrForbidden
			}
			return append(records[:i], records[i+1:]...), nil
		}
		return nil, ErrNotFound
	})
}
