package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/magabrotheeeer/vpn-store/internal/models"
)

const productColumns = `id, name, provider, duration, price, original_price, features,
	category, is_active, stock, logo, rating, created_at, updated_at`

func scanProduct(row rowScanner) (*models.Product, error) {
	p := &models.Product{}
	var originalPrice sql.NullInt64
	var features []byte
	if err := row.Scan(&p.ID, &p.Name, &p.Provider, &p.Duration, &p.Price, &originalPrice,
		&features, &p.Category, &p.IsActive, &p.Stock, &p.Logo, &p.Rating,
		&p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if originalPrice.Valid {
		p.OriginalPrice = &originalPrice.Int64
	}
	if err := json.Unmarshal(features, &p.Features); err != nil {
		return nil, fmt.Errorf("decode features: %w", err)
	}
	return p, nil
}

func encodeFeatures(features []string) ([]byte, error) {
	if features == nil {
		features = []string{}
	}
	return json.Marshal(features)
}

// CreateProduct добавляет товар в каталог.
func (s *Storage) CreateProduct(ctx context.Context, p models.Product) (*models.Product, error) {
	const op = "storage.CreateProduct"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	features, err := encodeFeatures(p.Features)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	query := `INSERT INTO products (name, provider, duration, price, original_price, features,
				  category, is_active, stock, logo, rating)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			  RETURNING ` + productColumns
	created, err := scanProduct(s.DB.QueryRowContext(ctx, query,
		p.Name, p.Provider, p.Duration, p.Price, p.OriginalPrice, features,
		p.Category, p.IsActive, p.Stock, p.Logo, p.Rating))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return created, nil
}

// GetProduct возвращает товар по ID.
func (s *Storage) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	const op = "storage.GetProduct"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	p, err := scanProduct(s.DB.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return p, nil
}

// ListProducts возвращает страницу каталога и общее число подходящих товаров.
func (s *Storage) ListProducts(ctx context.Context, filter models.ProductFilter) ([]*models.Product, int, error) {
	const op = "storage.ListProducts"
	select {
	case <-ctx.Done():
		return nil, 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var conds []string
	var args []any
	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, "%"+search+"%")
		conds = append(conds, fmt.Sprintf("(name ILIKE $%d OR provider ILIKE $%d)", len(args), len(args)))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		conds = append(conds, fmt.Sprintf("category = $%d", len(args)))
	}
	if filter.ActiveOnly {
		conds = append(conds, "is_active = true")
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	query := fmt.Sprintf(`SELECT %s FROM products%s ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d`,
		productColumns, where, len(args)+1, len(args)+2)
	rows, err := s.DB.QueryContext(ctx, query, append(args, filter.Limit, filter.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]*models.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, p)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return result, total, nil
}

// UpdateProduct перезаписывает поля товара.
func (s *Storage) UpdateProduct(ctx context.Context, p models.Product) (*models.Product, error) {
	const op = "storage.UpdateProduct"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	features, err := encodeFeatures(p.Features)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	query := `UPDATE products
			  SET name = $1, provider = $2, duration = $3, price = $4, original_price = $5,
			      features = $6, category = $7, is_active = $8, stock = $9, logo = $10,
			      rating = $11, updated_at = NOW()
			  WHERE id = $12
			  RETURNING ` + productColumns
	updated, err := scanProduct(s.DB.QueryRowContext(ctx, query,
		p.Name, p.Provider, p.Duration, p.Price, p.OriginalPrice, features,
		p.Category, p.IsActive, p.Stock, p.Logo, p.Rating, p.ID))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return updated, nil
}

// DeleteProduct удаляет товар. Заказы хранят копию строк и не затрагиваются.
func (s *Storage) DeleteProduct(ctx context.Context, id string) error {
	const op = "storage.DeleteProduct"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	result, err := s.DB.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, mapError(err))
	}
	return expectOneRow(op, result)
}

// CountProducts возвращает количество товаров.
func (s *Storage) CountProducts(ctx context.Context) (int, error) {
	const op = "storage.CountProducts"
	var n int
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&n); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}
