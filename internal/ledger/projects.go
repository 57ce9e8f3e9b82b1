package ledger

import (
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"grumini-backend/internal/models"
)

type ProjectStore struct {
	col *collection[models.Project]
}

func NewProjectStore(dataDir string) *ProjectStore {
	return &ProjectStore{col: newCollection[models.Project](filepath.Join(dataDir, "projects.json"))}
}

// ListByUser returns the user's projects newest first. With excludeAnalysis
// set, analysis-tagged and analysis-upload projects are dropped.
func (s *ProjectStore) ListByUser(userID int64, excludeAnalysis bool) ([]models.Project, error) {
	records, err := s.col.snapshot()
	if err != nil {
		return nil, err
	}

	projects := make([]models.Project, 0)
	for _, p := range records {
		if p.UserID != userID {
			continue
		}
		if excludeAnalysis && p.IsAnalysis() {
			continue
		}
		projects = append(projects, p)
	}
	sort.Slice(projects, func(i, j int) bool {
		return projects[i].CreatedAt.After(projects[j].CreatedAt)
	})
	return projects, nil
}

// Get returns the project regardless of owner; callers enforce ownership
// with ErrForbidden semantics via GetOwned.
func (s *ProjectStore) Get(id string) (*models.Project, error) {
	records, err := s.col.snapshot()
	if err != nil {
		return nil, err
	}
	for _, p := range records {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, ErrNotFound
}

// GetOwned returns ErrNotFound for a missing project and ErrForbidden for a
// project owned by someone else.
func (s *ProjectStore) GetOwned(id string, userID int64) (*models.Project, error) {
	p, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if p.UserID != userID {
		return nil, ErrForbidden
	}
	return p, nil
}

// Insert assigns a fresh UUID and creation timestamp when unset.
func (s *ProjectStore) Insert(p models.Project) (models.Project, error) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	err := s.col.update(func(records []models.Project) ([]models.Project, error) {
		return append(records, p), nil
	})
	if err != nil {
		return models.Project{}, err
	}
	return p, nil
}

// Delete removes the record and returns the removed project so the caller
// can clean up its backing file.
func (s *ProjectStore) Delete(id string, userID int64) (*models.Project, error) {
	var removed *models.Project
	err := s.col.update(func(records []models.Project) ([]models.Project, error) {
		for i, p := range records {
			if p.ID != id {
				continue
			}
			if p.UserID != userID {
				return nil, ErrForbidden
			}
			deleted := p
			removed = &deleted
			return append(records[:i], records[i+1:]...), nil
		}
		return nil, ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}

// Rate upserts the 1-10 scores on the record. A nil score leaves the
// existing value in place.
func (s *ProjectStore) Rate(id string, userID int64, brandScore, satisfactionScore *int) (*models.Project, error) {
	for _, score := range []*int{brandScore, satisfactionScore} {
		if score != nil && (*score < 1 || *score > 10) {
			return nil, fmt.Errorf("score %d: %w", *score, ErrScoreOutOfRange)
		}
	}

	var rated *models.Project
	err := s.col.update(func(records []models.Project) ([]models.Project, error) {
		for i := range records {
			if records[i].ID != id {
				continue
			}
			if records[i].UserID != userID {
				return nil, ErrForbidden
			}
			if brandScore != nil {
				records[i].BrandScore = brandScore
			}
			if satisfactionScore != nil {
				records[i].SatisfactionScore = satisfactionScore
			}
			rated = &records[i]
			return records, nil
		}
		return nil, ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return rated, nil
}

// AppendChat appends turns to the project's stored conversation.
func (s *ProjectStore) AppendChat(id string, userID int64, turns ...models.ChatTurn) (*models.Project, error) {
	var updated *models.Project
	err := s.col.update(func(records []models.Project) ([]models.Project, error) {
		for i := range records {
			if records[i].ID != id {
				continue
			}
			if records[i].UserID != userID {
				return nil, ErrForbidden
			}
			records[i].ChatHistory = append(records[i].ChatHistory, turns...)
			updated = &records[i]
			return records, nil
		}
		return nil, ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ReplaceImage re-points an existing project at a newly generated asset,
// replacing title and reasoning and bumping the creation timestamp.
func (s *ProjectStore) ReplaceImage(id string, userID int64, title, imageURL, reasoning string) (*models.Project, error) {
	var updated *models.Project
	err := s.col.update(func(records []models.Project) ([]models.Project, error) {
		for i := range records {
			if records[i].ID != id {
				continue
			}
			if records[i].UserID != userID {
				return nil, ErrForbidden
			}
			records[i].Title = title
			records[i].ImageURL = imageURL
			records[i].Reasoning = reasoning
			records[i].CreatedAt = time.Now().UTC()
			updated = &records[i]
			return records, nil
		}
		return nil, ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
