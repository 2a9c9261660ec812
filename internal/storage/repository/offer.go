package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/magabrotheeeer/subscription-calendar/internal/models"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// FindSimilar ищет предложения той же категории или компании каталога
// либо с названием, содержащим q.Title. Результат отсортирован по цене.
func (s *Storage) FindSimilar(ctx context.Context, q models.OfferQuery) ([]models.Offer, error) {
	const op = "storage.FindSimilar"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var categoryID, companyID sql.NullInt64
	if q.Category.Assigned() {
		categoryID = sql.NullInt64{Int64: q.Category.ID, Valid: true}
	}
	if q.Company.Formal() {
		companyID = sql.NullInt64{Int64: q.Company.ID, Valid: true}
	}
	title := likeEscaper.Replace(strings.TrimSpace(q.Title))

	query := `SELECT o.id, o.title, o.price, o.category_id, cat.name, o.company_id, co.name, COALESCE(o.url, '')
			  FROM offers o
			  LEFT JOIN categories cat ON cat.id = o.category_id
			  LEFT JOIN companies co ON co.id = o.company_id
			  WHERE (($1::bigint IS NOT NULL AND o.category_id = $1)
			      OR ($2::bigint IS NOT NULL AND o.company_id = $2)
			      OR ($3::text <> '' AND o.title ILIKE '%' || $3 || '%'))
			    AND ($4::numeric IS NULL OR o.price < $4)
			  ORDER BY o.price, o.id
			  LIMIT $5`
	rows, err := s.DB.QueryContext(ctx, query, categoryID, companyID, title, q.MaxPrice, q.Limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]models.Offer, 0)
	for rows.Next() {
		var (
			offer   models.Offer
			catID   sql.NullInt64
			catName sql.NullString
			coID    sql.NullInt64
			coName  sql.NullString
		)
		if err := rows.Scan(&offer.ID, &offer.Title, &offer.Price, &catID, &catName, &coID, &coName, &offer.URL); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		offer.Category = models.NoCategory()
		if catID.Valid {
			offer.Category = models.HasCategory(catID.Int64, catName.String)
		}
		offer.Company = models.NoCompany()
		if coID.Valid {
			offer.Company = models.FormalCompany(coID.Int64, coName.String)
		}
		result = append(result, offer)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
