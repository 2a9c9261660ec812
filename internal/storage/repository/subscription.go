package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/magabrotheeeer/subscription-calendar/internal/models"
	"github.com/magabrotheeeer/subscription-calendar/internal/storage"
)

const selectSubscription = `SELECT s.id, s.user_uid, s.title, s.price, s.due_type, s.due_day,
				s.start_date, s.end_date, s.category_id, cat.name, s.company_id, co.name, s.custom_company
			  FROM subscriptions s
			  LEFT JOIN categories cat ON cat.id = s.category_id
			  LEFT JOIN companies co ON co.id = s.company_id`

// Create вставляет новую подписку и возвращает её ID.
func (s *Storage) Create(ctx context.Context, sub models.Subscription) (int64, error) {
	const op = "storage.Create"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	categoryID, companyID, customCompany := referenceColumns(sub)
	query := `INSERT INTO subscriptions (user_uid, title, price, due_type, due_day,
			      start_date, end_date, category_id, company_id, custom_company)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			  RETURNING id`
	var newID int64
	err := s.DB.QueryRowContext(ctx, query,
		sub.UserID, sub.Title, sub.Price, string(sub.DueType), sub.DueDay,
		sub.StartDatetime, nullTime(sub.EndDatetime), categoryID, companyID, customCompany).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, mapWriteError(err))
	}
	return newID, nil
}

// Read возвращает подписку пользователя по ID.
func (s *Storage) Read(ctx context.Context, userID string, id int64) (*models.Subscription, error) {
	const op = "storage.Read"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := selectSubscription + ` WHERE s.id = $1 AND s.user_uid = $2`
	row := s.DB.QueryRowContext(ctx, query, id, userID)

	sub, err := scanSubscription(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &sub, nil
}

// Update перезаписывает подписку целиком и возвращает количество изменённых строк.
func (s *Storage) Update(ctx context.Context, sub models.Subscription) (int, error) {
	const op = "storage.Update"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	categoryID, companyID, customCompany := referenceColumns(sub)
	query := `UPDATE subscriptions
			  SET title = $1, price = $2, due_type = $3, due_day = $4, start_date = $5,
			      end_date = $6, category_id = $7, company_id = $8, custom_company = $9,
			      updated_at = now()
			  WHERE id = $10 AND user_uid = $11`
	result, err := s.DB.ExecContext(ctx, query,
		sub.Title, sub.Price, string(sub.DueType), sub.DueDay, sub.StartDatetime,
		nullTime(sub.EndDatetime), categoryID, companyID, customCompany, sub.ID, sub.UserID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, mapWriteError(err))
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// Remove удаляет подписку пользователя и возвращает количество удалённых строк.
func (s *Storage) Remove(ctx context.Context, userID string, id int64) (int, error) {
	const op = "storage.Remove"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM subscriptions WHERE id = $1 AND user_uid = $2`
	result, err := s.DB.ExecContext(ctx, query, id, userID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// List возвращает все подписки пользователя в порядке создания.
func (s *Storage) List(ctx context.Context, userID string) ([]models.Subscription, error) {
	const op = "storage.List"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := selectSubscription + ` WHERE s.user_uid = $1 ORDER BY s.id`
	rows, err := s.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]models.Subscription, 0)
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSubscription(row scanner) (models.Subscription, error) {
	var (
		sub           models.Subscription
		dueType       string
		endDate       sql.NullTime
		categoryID    sql.NullInt64
		categoryName  sql.NullString
		companyID     sql.NullInt64
		companyName   sql.NullString
		customCompany sql.NullString
	)
	if err := row.Scan(&sub.ID, &sub.UserID, &sub.Title, &sub.Price, &dueType, &sub.DueDay,
		&sub.StartDatetime, &endDate, &categoryID, &categoryName, &companyID, &companyName,
		&customCompany); err != nil {
		return models.Subscription{}, err
	}

	sub.DueType = models.DueType(dueType)
	sub.StartDatetime = sub.StartDatetime.UTC()
	if endDate.Valid {
		end := endDate.Time.UTC()
		sub.EndDatetime = &end
	}

	sub.Category = models.NoCategory()
	if categoryID.Valid {
		sub.Category = models.HasCategory(categoryID.Int64, categoryName.String)
	}

	switch {
	case companyID.Valid:
		sub.Company = models.FormalCompany(companyID.Int64, companyName.String)
	case customCompany.Valid && customCompany.String != "":
		sub.Company = models.CustomCompanyName(customCompany.String)
	default:
		sub.Company = models.NoCompany()
	}
	return sub, nil
}

func referenceColumns(sub models.Subscription) (categoryID, companyID sql.NullInt64, customCompany sql.NullString) {
	if sub.Category.Assigned() {
		categoryID = sql.NullInt64{Int64: sub.Category.ID, Valid: true}
	}
	switch sub.Company.Kind {
	case models.CompanyFormal:
		companyID = sql.NullInt64{Int64: sub.Company.ID, Valid: true}
	case models.CompanyCustom:
		customCompany = sql.NullString{String: sub.Company.Name, Valid: true}
	}
	return categoryID, companyID, customCompany
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// foreignKeyViolation код ошибки PostgreSQL для нарушения внешнего ключа.
const foreignKeyViolation = "23503"

func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
		return storage.ErrUnknownReference
	}
	return err
}
