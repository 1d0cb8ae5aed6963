package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/stroycontrol/geomap-backend/internal/geo"
	"github.com/stroycontrol/geomap-backend/internal/models"
)

// maxSearchResults caps search queries that arrive without an explicit limit.
const maxSearchResults = 50

const projectColumns = `id, organization_id, name, address, description, status,
	budget_amount, latitude, longitude, planned_value, earned_value, actual_cost,
	start_date, end_date, updated_at`

// ProjectRepository handles read-only database access to project records.
// Rows without coordinates are excluded from every spatial query.
type ProjectRepository struct {
	db *sql.DB
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(db *sql.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// FindInBounds retrieves geocoded projects of an organization inside a
// bounding box, narrowed by tile filters. The health filter is not applied
// here: health is derived from metrics after the fetch.
func (r *ProjectRepository) FindInBounds(orgID int64, b geo.Bounds, filter models.TileFilter) ([]models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects`

	conditions := []string{
		"organization_id = ?",
		"latitude IS NOT NULL",
		"longitude IS NOT NULL",
		"latitude BETWEEN ? AND ?",
		"longitude BETWEEN ? AND ?",
	}
	args := []interface{}{orgID, b.South, b.North, b.West, b.East}

	if filter.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.BudgetMin > 0 {
		conditions = append(conditions, "budget_amount >= ?")
		args = append(args, filter.BudgetMin)
	}
	if filter.BudgetMax > 0 {
		conditions = append(conditions, "budget_amount <= ?")
		args = append(args, filter.BudgetMax)
	}

	query += " WHERE " + strings.Join(conditions, " AND ") + " ORDER BY id"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query projects in bounds: %w", err)
	}
	defer rows.Close()

	return scanProjects(rows)
}

// FindWithCoordinates retrieves geocoded projects of an organization for
// heatmap generation, narrowed by status, date range and optional bounds.
func (r *ProjectRepository) FindWithCoordinates(orgID int64, filter models.HeatmapFilter) ([]models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects`

	conditions := []string{
		"organization_id = ?",
		"latitude IS NOT NULL",
		"longitude IS NOT NULL",
	}
	args := []interface{}{orgID}

	if filter.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.StartDate != "" {
		conditions = append(conditions, "start_date >= ?")
		args = append(args, filter.StartDate)
	}
	if filter.EndDate != "" {
		conditions = append(conditions, "end_date <= ?")
		args = append(args, filter.EndDate)
	}
	if filter.HasBounds() {
		conditions = append(conditions, "latitude BETWEEN ? AND ?", "longitude BETWEEN ? AND ?")
		args = append(args, filter.South, filter.North, filter.West, filter.East)
	}

	query += " WHERE " + strings.Join(conditions, " AND ") + " ORDER BY id"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query projects with coordinates: %w", err)
	}
	defer rows.Close()

	return scanProjects(rows)
}

// CountRecentWorks counts completed work records of a project since the
// given time. Drives the activity heatmap metric.
func (r *ProjectRepository) CountRecentWorks(projectID int64, since time.Time) (int, error) {
	var count int
	err := r.db.QueryRow(
		`SELECT COUNT(*) FROM completed_works WHERE project_id = ? AND completed_at >= ?`,
		projectID, since,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count recent works: %w", err)
	}
	return count, nil
}

// Search performs a case-insensitive substring search over project name,
// address and description.
func (r *ProjectRepository) Search(orgID int64, text string, limit int) ([]models.Project, error) {
	if limit <= 0 || limit > maxSearchResults {
		limit = maxSearchResults
	}
	pattern := "%" + strings.ToLower(text) + "%"

	query := `SELECT ` + projectColumns + ` FROM projects
		WHERE organization_id = ?
		AND (LOWER(name) LIKE ? OR LOWER(address) LIKE ? OR LOWER(description) LIKE ?)
		ORDER BY name LIMIT ?`

	rows, err := r.db.Query(query, orgID, pattern, pattern, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search projects: %w", err)
	}
	defer rows.Close()

	return scanProjects(rows)
}

// NearbyProject is a project with its distance from a search origin.
type NearbyProject struct {
	models.Project
	DistanceKm float64 `json:"distance_km"`
}

// SearchNearby retrieves geocoded projects within radiusKm of a point,
// nearest first. Distance is computed in SQL with the Haversine formula so
// filtering and ordering stay in the database.
func (r *ProjectRepository) SearchNearby(orgID int64, lat, lng, radiusKm float64, limit int) ([]NearbyProject, error) {
	if limit <= 0 || limit > maxSearchResults {
		limit = maxSearchResults
	}

	query := `SELECT * FROM (
		SELECT ` + projectColumns + `,
			(` + fmt.Sprintf("%.1f", geo.EarthRadiusMeters/1000) + ` * acos(
				min(1.0, max(-1.0,
					cos(radians(?)) * cos(radians(latitude)) * cos(radians(longitude) - radians(?))
					+ sin(radians(?)) * sin(radians(latitude))
				))
			)) AS distance_km
		FROM projects
		WHERE organization_id = ? AND latitude IS NOT NULL AND longitude IS NOT NULL
	) WHERE distance_km < ? ORDER BY distance_km LIMIT ?`

	rows, err := r.db.Query(query, lat, lng, lat, orgID, radiusKm, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search nearby projects: %w", err)
	}
	defer rows.Close()

	var results []NearbyProject
	for rows.Next() {
		var p NearbyProject
		if err := scanProjectFields(rows, &p.Project, &p.DistanceKm); err != nil {
			return nil, err
		}
		results = append(results, p)
	}
	return results, rows.Err()
}

// SearchByComponents performs a structured search joined against parsed
// address components (city, street).
func (r *ProjectRepository) SearchByComponents(orgID int64, filter models.SearchFilter) ([]models.Project, error) {
	limit := filter.Limit
	if limit <= 0 || limit > maxSearchResults {
		limit = maxSearchResults
	}

	query := `SELECT DISTINCT p.id, p.organization_id, p.name, p.address, p.description, p.status,
		p.budget_amount, p.latitude, p.longitude, p.planned_value, p.earned_value, p.actual_cost,
		p.start_date, p.end_date, p.updated_at
		FROM projects p
		JOIN project_address_components ac ON ac.project_id = p.id`

	conditions := []string{"p.organization_id = ?"}
	args := []interface{}{orgID}

	if filter.City != "" {
		conditions = append(conditions, "ac.component = 'city' AND LOWER(ac.value) = ?")
		args = append(args, strings.ToLower(filter.City))
	}
	if filter.Street != "" {
		conditions = append(conditions,
			"EXISTS (SELECT 1 FROM project_address_components s WHERE s.project_id = p.id AND s.component = 'street' AND LOWER(s.value) LIKE ?)")
		args = append(args, "%"+strings.ToLower(filter.Street)+"%")
	}
	if filter.Status != "" {
		conditions = append(conditions, "p.status = ?")
		args = append(args, filter.Status)
	}

	query += " WHERE " + strings.Join(conditions, " AND ") + " ORDER BY p.name LIMIT ?"
	args = append(args, limit)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search by components: %w", err)
	}
	defer rows.Close()

	return scanProjects(rows)
}

// Suggestion is a lightweight autocomplete entry.
type Suggestion struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
}

// Suggest returns capped autocomplete candidates matching a name or address
// prefix substring.
func (r *ProjectRepository) Suggest(orgID int64, text string, limit int) ([]Suggestion, error) {
	if limit <= 0 || limit > 10 {
		limit = 10
	}
	pattern := "%" + strings.ToLower(text) + "%"

	rows, err := r.db.Query(
		`SELECT id, name, address FROM projects
		WHERE organization_id = ? AND (LOWER(name) LIKE ? OR LOWER(address) LIKE ?)
		ORDER BY name LIMIT ?`,
		orgID, pattern, pattern, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query suggestions: %w", err)
	}
	defer rows.Close()

	var suggestions []Suggestion
	for rows.Next() {
		var s Suggestion
		if err := rows.Scan(&s.ID, &s.Name, &s.Address); err != nil {
			return nil, fmt.Errorf("failed to scan suggestion: %w", err)
		}
		suggestions = append(suggestions, s)
	}
	return suggestions, rows.Err()
}

func scanProjects(rows *sql.Rows) ([]models.Project, error) {
	var projects []models.Project
	for rows.Next() {
		var p models.Project
		if err := scanProjectFields(rows, &p); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func scanProjectFields(rows *sql.Rows, p *models.Project, extra ...interface{}) error {
	dest := []interface{}{
		&p.ID, &p.OrganizationID, &p.Name, &p.Address, &p.Description, &p.Status,
		&p.BudgetAmount, &p.Latitude, &p.Longitude,
		&p.PlannedValue, &p.EarnedValue, &p.ActualCost,
		&p.StartDate, &p.EndDate, &p.UpdatedAt,
	}
	dest = append(dest, extra...)
	if err := rows.Scan(dest...); err != nil {
		return fmt.Errorf("failed to scan project: %w", err)
	}
	return nil
}
