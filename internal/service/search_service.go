package service

import (
	"fmt"

	"github.com/stroycontrol/geomap-backend/internal/models"
	"github.com/stroycontrol/geomap-backend/internal/repository"
)

// SearchService exposes text, radius and structured search over project
// records. Stateless passthroughs; no caching.
type SearchService struct {
	repo *repository.ProjectRepository
}

// NewSearchService creates a new search service
func NewSearchService(repo *repository.ProjectRepository) *SearchService {
	return &SearchService{repo: repo}
}

// Search performs a case-insensitive substring search over name, address
// and description.
func (s *SearchService) Search(orgID int64, query string, limit int) ([]models.Project, error) {
	if query == "" {
		return nil, fmt.Errorf("search query is required")
	}
	return s.repo.Search(orgID, query, limit)
}

// SearchNearby returns projects within radiusKm of a point, nearest first.
func (s *SearchService) SearchNearby(orgID int64, lat, lng, radiusKm float64, limit int) ([]repository.NearbyProject, error) {
	if radiusKm <= 0 {
		return nil, fmt.Errorf("radiusKm must be positive")
	}
	return s.repo.SearchNearby(orgID, lat, lng, radiusKm, limit)
}

// SearchByComponents performs a structured search over parsed address
// components.
func (s *SearchService) SearchByComponents(orgID int64, filter models.SearchFilter) ([]models.Project, error) {
	if filter.City == "" && filter.Street == "" && filter.Status == "" {
		return nil, fmt.Errorf("at least one of city, street or status is required")
	}
	return s.repo.SearchByComponents(orgID, filter)
}

// Suggest returns capped autocomplete candidates for a partial query.
func (s *SearchService) Suggest(orgID int64, query string, limit int) ([]repository.Suggestion, error) {
	if query == "" {
		return []repository.Suggestion{}, nil
	}
	return s.repo.Suggest(orgID, query, limit)
}
