package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/ankitmittal-AIPM/meal-taxonomy/internal/brain"
	"github.com/ankitmittal-AIPM/meal-taxonomy/internal/domain"
	"gorm.io/gorm"
)

// MealRepository handles canonical meal data operations.
type MealRepository struct {
	db       *gorm.DB
	postgres bool
}

// NewMealRepository creates a new MealRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *MealRepository: repository instance bound to db.
func NewMealRepository(db *gorm.DB) *MealRepository {
	return &MealRepository{
		db:       db,
		postgres: db.Dialector.Name() == "postgres",
	}
}

// Create inserts a new canonical meal record.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - meal: meal record to persist.
// Returns:
//   - error: non-nil if the insert fails.
func (r *MealRepository) Create(ctx context.Context, meal *domain.Meal) error {
	return r.db.WithContext(ctx).Create(meal).Error
}

// GetByID retrieves a meal by its ID.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: meal ID.
// Returns:
//   - *domain.Meal: meal record if found.
//   - error: non-nil if lookup fails.
func (r *MealRepository) GetByID(ctx context.Context, id string) (*domain.Meal, error) {
	var meal domain.Meal
	if err := r.db.WithContext(ctx).First(&meal, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &meal, nil
}

// GetByIDs retrieves meals by a list of IDs.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - ids: list of meal IDs.
// Returns:
//   - []domain.Meal: matching meal records.
//   - error: non-nil if the query fails.
func (r *MealRepository) GetByIDs(ctx context.Context, ids []string) ([]domain.Meal, error) {
	if len(ids) == 0 {
		return []domain.Meal{}, nil
	}
	var meals []domain.Meal
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&meals).Error; err != nil {
		return nil, fmt.Errorf("failed to get meals by IDs: %w", err)
	}
	return meals, nil
}

// List retrieves meals with pagination, newest first.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - limit: maximum number of records to return.
//   - offset: number of records to skip.
// Returns:
//   - []domain.Meal: matching meal records.
//   - error: non-nil if the query fails.
func (r *MealRepository) List(ctx context.Context, limit, offset int) ([]domain.Meal, error) {
	var meals []domain.Meal
	if err := r.db.WithContext(ctx).
		Limit(limit).
		Offset(offset).
		Order("created_at DESC").
		Find(&meals).Error; err != nil {
		return nil, err
	}
	return meals, nil
}

// Count returns the total number of canonical meals.
// Parameters:
//   - ctx: context for cancellation and deadlines.
// Returns:
//   - int64: number of meal records.
//   - error: non-nil if the query fails.
func (r *MealRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Meal{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// candidateRow is the raw scan target for the search queries.
type candidateRow struct {
	ID              string
	Title           string
	TitleNormalized string
	Relevance       float64
}

// SearchCandidates runs the primary indexed candidate search for the given
// query text. On PostgreSQL it combines full-text rank over search_text with
// trigram similarity over title_normalized, so candidates carry a relevance
// signal. On SQLite the query degrades to token LIKE matching with no
// relevance signal, which the scorer treats as zero relevance spread.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - query: normalized query text.
//   - filters: optional attribute filters applied to the meal meta document.
//   - limit: maximum number of candidates to return.
// Returns:
//   - []brain.Candidate: ranked candidate rows.
//   - error: non-nil if the query fails.
func (r *MealRepository) SearchCandidates(ctx context.Context, query string, filters brain.CandidateFilters, limit int) ([]brain.Candidate, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}
	if r.postgres {
		return r.searchCandidatesPostgres(ctx, query, filters, limit)
	}
	return r.searchCandidatesSQLite(ctx, query, filters, limit)
}

func (r *MealRepository) searchCandidatesPostgres(ctx context.Context, query string, filters brain.CandidateFilters, limit int) ([]brain.Candidate, error) {
	sql := `
		SELECT id, title, title_normalized,
		       ts_rank(to_tsvector('simple', coalesce(search_text, '')), plainto_tsquery('simple', @q))
		       + similarity(title_normalized, @q) AS relevance
		FROM meals
		WHERE (to_tsvector('simple', coalesce(search_text, '')) @@ plainto_tsquery('simple', @q)
		       OR title_normalized % @q)`
	args := map[string]interface{}{"q": query, "limit": limit}
	if filters.Diet != "" {
		sql += ` AND (meta::jsonb ->> 'diet') = @diet`
		args["diet"] = filters.Diet
	}
	if filters.Course != "" {
		sql += ` AND (meta::jsonb ->> 'course') = @course`
		args["course"] = filters.Course
	}
	if filters.Region != "" {
		sql += ` AND region_tags::jsonb @> to_jsonb(@region::text)`
		args["region"] = filters.Region
	}
	sql += ` ORDER BY relevance DESC LIMIT @limit`

	var rows []candidateRow
	if err := r.db.WithContext(ctx).Raw(sql, args).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("candidate search failed: %w", err)
	}
	out := make([]brain.Candidate, 0, len(rows))
	for _, row := range rows {
		out = append(out, brain.Candidate{
			ID:              row.ID,
			Title:           row.Title,
			TitleNormalized: row.TitleNormalized,
			Relevance:       row.Relevance,
			HasRelevance:    true,
		})
	}
	return out, nil
}

func (r *MealRepository) searchCandidatesSQLite(ctx context.Context, query string, filters brain.CandidateFilters, limit int) ([]brain.Candidate, error) {
	q := r.db.WithContext(ctx).Model(&domain.Meal{})
	for _, token := range strings.Fields(query) {
		q = q.Where("title_normalized LIKE ? OR search_text LIKE ?", "%"+token+"%", "%"+token+"%")
	}
	if filters.Diet != "" {
		q = q.Where("meta LIKE ?", `%"diet":`+jsonLike(filters.Diet)+`%`)
	}
	if filters.Course != "" {
		q = q.Where("meta LIKE ?", `%"course":`+jsonLike(filters.Course)+`%`)
	}
	if filters.Region != "" {
		q = q.Where("region_tags LIKE ?", "%"+jsonLike(filters.Region)+"%")
	}

	var meals []domain.Meal
	if err := q.Limit(limit).Find(&meals).Error; err != nil {
		return nil, fmt.Errorf("candidate search failed: %w", err)
	}
	out := make([]brain.Candidate, 0, len(meals))
	for _, m := range meals {
		out = append(out, brain.Candidate{
			ID:              m.ID,
			Title:           m.Title,
			TitleNormalized: m.TitleNormalized,
		})
	}
	return out, nil
}

// ScanByNamePrefix is the degraded retrieval path: a substring match on
// title_normalized for the query's first token. Candidates carry no relevance
// signal.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - token: first token of the normalized query.
//   - limit: maximum number of candidates to return.
// Returns:
//   - []brain.Candidate: matching candidate rows.
//   - error: non-nil if the query fails.
func (r *MealRepository) ScanByNamePrefix(ctx context.Context, token string, limit int) ([]brain.Candidate, error) {
	if strings.TrimSpace(token) == "" {
		return nil, nil
	}
	var meals []domain.Meal
	if err := r.db.WithContext(ctx).
		Where("title_normalized LIKE ?", "%"+token+"%").
		Limit(limit).
		Find(&meals).Error; err != nil {
		return nil, fmt.Errorf("name prefix scan failed: %w", err)
	}
	out := make([]brain.Candidate, 0, len(meals))
	for _, m := range meals {
		out = append(out, brain.Candidate{
			ID:              m.ID,
			Title:           m.Title,
			TitleNormalized: m.TitleNormalized,
		})
	}
	return out, nil
}

// jsonLike renders a string the way encoding/json does inside a meta document,
// for crude LIKE matching against the serialized text column.
func jsonLike(value string) string {
	return `"` + strings.ReplaceAll(value, `"`, `\"`) + `"`
}
