package sql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/iyhunko/product-catalog/internal/apperr"
	"github.com/iyhunko/product-catalog/internal/model"
	"github.com/iyhunko/product-catalog/internal/repository"
)

const productColumns = "id, name, description, category, upc, price, has_image, created_at"

// ProductRepository implements repository.ProductRepository on PostgreSQL.
type ProductRepository struct {
	db  *sql.DB
	txn *sql.Tx
}

// NewProductRepository creates a new ProductRepository instance.
func NewProductRepository(db *sql.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// getExecutor returns the active executor (transaction if exists, otherwise db)
func (r *ProductRepository) getExecutor() dbExecutor {
	if r.txn != nil {
		return r.txn
	}
	return r.db
}

// Create inserts a new product and sets its store-assigned ID.
// A duplicate UPC yields an *apperr.ConflictError.
func (r *ProductRepository) Create(ctx context.Context, product *model.Product) (*model.Product, error) {
	product.InitMeta()

	query := `INSERT INTO products (name, description, category, upc, price, has_image, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`

	stmt, err := r.getExecutor().PrepareContext(ctx, query)
	if err != nil {
		return nil, upstream("prepare insert statement", err)
	}
	defer stmt.Close()

	err = stmt.QueryRowContext(ctx,
		product.Name, product.Description, product.Category, product.UPC, product.Price, product.HasImage, product.CreatedAt,
	).Scan(&product.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperr.Conflict("product", "upc", product.UPC)
		}
		return nil, upstream("insert product", err)
	}

	return product, nil
}

// FindByID retrieves a single product by ID.
func (r *ProductRepository) FindByID(ctx context.Context, id int64) (*model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	stmt, err := r.getExecutor().PrepareContext(ctx, query)
	if err != nil {
		return nil, upstream("prepare select statement", err)
	}
	defer stmt.Close()

	product, err := scanProduct(stmt.QueryRowContext(ctx, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("product", id)
		}
		return nil, upstream("query product", err)
	}

	return product, nil
}

// List retrieves products newest-first based on the provided query.
func (r *ProductRepository) List(ctx context.Context, query repository.Query) ([]*model.Product, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString("SELECT " + productColumns + " FROM products WHERE 1=1")

	var args []any
	argIndex := 1

	if query.Paginator != nil {
		queryBuilder.WriteString(fmt.Sprintf(" AND (created_at, id) < ($%d, $%d)", argIndex, argIndex+1))
		args = append(args, query.Paginator.LastCreatedAt, query.Paginator.LastID)
		argIndex += 2
	}

	// Order by created_at DESC, id DESC for consistent pagination
	queryBuilder.WriteString(" ORDER BY created_at DESC, id DESC")

	limit := query.Limit
	if limit <= 0 {
		limit = repository.DefaultPaginationLimit
	}
	queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d", argIndex))
	args = append(args, limit)

	stmt, err := r.getExecutor().PrepareContext(ctx, queryBuilder.String())
	if err != nil {
		return nil, upstream("prepare select statement", err)
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx, args...)
	if err != nil {
		return nil, upstream("query products", err)
	}
	defer rows.Close()

	var products []*model.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, upstream("scan product", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, upstream("iterate products", err)
	}

	return products, nil
}

// ListNames returns the names of all catalog products.
func (r *ProductRepository) ListNames(ctx context.Context) ([]string, error) {
	rows, err := r.getExecutor().QueryContext(ctx, `SELECT name FROM products ORDER BY id`)
	if err != nil {
		return nil, upstream("query product names", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, upstream("scan product name", err)
		}
		names = append(names, name)
	}
	if err = rows.Err(); err != nil {
		return nil, upstream("iterate product names", err)
	}
	return names, nil
}

// MarkImaged flags the product as having an image. Calling it again is a no-op.
func (r *ProductRepository) MarkImaged(ctx context.Context, id int64) error {
	result, err := r.getExecutor().ExecContext(ctx, `UPDATE products SET has_image = TRUE WHERE id = $1`, id)
	if err != nil {
		return upstream("mark product imaged", err)
	}
	return expectAffected(result, "product", id)
}

// DeleteByID deletes a product by ID. Pairings must be removed first, see TransactionalRepository.
func (r *ProductRepository) DeleteByID(ctx context.Context, id int64) error {
	query := `DELETE FROM products WHERE id = $1`

	stmt, err := r.getExecutor().PrepareContext(ctx, query)
	if err != nil {
		return upstream("prepare delete statement", err)
	}
	defer stmt.Close()

	result, err := stmt.ExecContext(ctx, id)
	if err != nil {
		return upstream("delete product", err)
	}

	return expectAffected(result, "product", id)
}

func expectAffected(result sql.Result, resource string, id int64) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return upstream("get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperr.NotFound(resource, id)
	}
	return nil
}

func scanProduct(row rowScanner) (*model.Product, error) {
	var p model.Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Category, &p.UPC, &p.Price, &p.HasImage, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
