package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(cred *Credentials) (*Repository, error) {
	psqlconn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cred.Host,
		cred.Port,
		cred.User,
		cred.Password,
		cred.DBName)

	db, err := sql.Open("postgres", psqlconn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if e2 := db.Ping(); e2 != nil {
		return nil, fmt.Errorf("failed to ping database: %w", e2)
	}

	db.SetMaxOpenConns(100)
	db.SetMaxIdleConns(10)
	return &Repository{db: db}, nil
}

func (r *Repository) RunMigrations(cred *Credentials) error {
	driver, err := postgres.WithInstance(r.db, &postgres.Config{
		MigrationsTable: "orders_schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", cred.MigrationsDirPath),
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if e2 := m.Up(); e2 != nil && !errors.Is(e2, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", e2)
	}

	return nil
}

func (r *Repository) CreateAddress(ctx context.Context, address *domain.Address) error {
	query := `INSERT INTO addresses (id, customer_id, address_line, city, state, postal_code, country, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())`

	_, err := r.db.ExecContext(ctx, query,
		address.ID,
		address.CustomerID,
		address.AddressLine,
		address.City,
		address.State,
		address.PostalCode,
		address.Country)
	if err != nil {
		return fmt.Errorf("insert address: %w", err)
	}
	return nil
}

func (r *Repository) CreateOrderWithItems(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin order transaction: %w", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO orders
	          (id, customer_id, address_id, total_amount, currency, reference, transaction_id,
	           payment_status, payment_method, status, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())`

	_, insertErr := tx.ExecContext(ctx, query,
		order.ID,
		order.CustomerID,
		order.AddressID,
		order.TotalAmount,
		order.Currency,
		order.Reference,
		order.TransactionID,
		order.PaymentStatus,
		order.PaymentMethod,
		order.Status)

	if insertErr != nil {
		var pqErr *pq.Error
		if errors.As(insertErr, &pqErr) && pqErr.Code == "23505" {
			// retried attempt: the order for this reference already exists
			return r.GetOrderByReference(ctx, order.Reference)
		}
		return nil, fmt.Errorf("insert order: %w", insertErr)
	}

	itemQuery := `INSERT INTO order_items
	              (order_id, product_id, product_name, product_slug, image_url, quantity, price)
	              VALUES ($1, $2, $3, $4, $5, $6, $7)`
	for _, item := range order.Items {
		if _, err := tx.ExecContext(ctx, itemQuery,
			order.ID,
			item.ProductID,
			item.ProductName,
			item.ProductSlug,
			item.ImageURL,
			item.Quantity,
			item.Price); err != nil {
			return nil, fmt.Errorf("insert order item %s: %w", item.ProductID, err)
		}
	}

	payload, err := MarshalOrderEvent(order)
	if err != nil {
		return nil, err
	}
	if err := insertOutboxEventTx(ctx, tx, order.ID.String(), EventOrderCreated, payload); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit order transaction: %w", err)
	}
	return order, nil
}

const orderColumns = `id, customer_id, address_id, total_amount, currency, reference, transaction_id,
	payment_status, payment_method, status, created_at, updated_at`

func (r *Repository) GetOrderByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders WHERE id = $1`, orderColumns)
	return r.queryOrder(ctx, query, id)
}

func (r *Repository) GetOrderByReference(ctx context.Context, reference string) (*domain.Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders WHERE reference = $1`, orderColumns)
	return r.queryOrder(ctx, query, reference)
}

func (r *Repository) queryOrder(ctx context.Context, query string, arg interface{}) (*domain.Order, error) {
	var order domain.Order
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&order.ID,
		&order.CustomerID,
		&order.AddressID,
		&order.TotalAmount,
		&order.Currency,
		&order.Reference,
		&order.TransactionID,
		&order.PaymentStatus,
		&order.PaymentMethod,
		&order.Status,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query order: %w", err)
	}

	items, err := r.loadItems(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	order.Items = items
	return &order, nil
}

func (r *Repository) loadItems(ctx context.Context, orderID uuid.UUID) ([]domain.OrderItem, error) {
	query := `SELECT product_id, product_name, product_slug, image_url, quantity, price
	          FROM order_items WHERE order_id = $1 ORDER BY product_id`

	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(
			&item.ProductID,
			&item.ProductName,
			&item.ProductSlug,
			&item.ImageURL,
			&item.Quantity,
			&item.Price,
		); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return items, nil
}

func (r *Repository) ListOrdersByCustomer(ctx context.Context, customerID string) ([]*domain.Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders WHERE customer_id = $1 ORDER BY created_at DESC`, orderColumns)

	rows, err := r.db.QueryContext(ctx, query, customerID)
	if err != nil {
		return nil, fmt.Errorf("query orders by customer: %w", err)
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		var order domain.Order
		if err := rows.Scan(
			&order.ID,
			&order.CustomerID,
			&order.AddressID,
			&order.TotalAmount,
			&order.Currency,
			&order.Reference,
			&order.TransactionID,
			&order.PaymentStatus,
			&order.PaymentMethod,
			&order.Status,
			&order.CreatedAt,
			&order.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, &order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	for _, order := range orders {
		items, err := r.loadItems(ctx, order.ID)
		if err != nil {
			return nil, err
		}
		order.Items = items
	}
	return orders, nil
}

// UpdatePaymentByTransactionID is a pure overwrite keyed by transaction id,
// so replayed webhook deliveries converge on the same final state. When the
// payment settles as APPROVED the fulfillment status auto-advances from
// PENDING to PAID in the same statement.
func (r *Repository) UpdatePaymentByTransactionID(ctx context.Context, transactionID string, status domain.PaymentStatus) (*domain.Order, error) {
	query := `UPDATE orders
	          SET payment_status = $2,
	              status = CASE WHEN $2 = 'APPROVED' AND status = 'PENDING' THEN 'PAID' ELSE status END,
	              updated_at = NOW()
	          WHERE transaction_id = $1
	          RETURNING id`

	var id uuid.UUID
	err := r.db.QueryRowContext(ctx, query, transactionID, status).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update payment status: %w", err)
	}

	return r.GetOrderByID(ctx, id)
}

func (r *Repository) UpdateOrderStatus(ctx context.Context, id uuid.UUID, from, to domain.OrderStatus) error {
	query := `UPDATE orders SET status = $3, updated_at = NOW() WHERE id = $1 AND status = $2`

	result, err := r.db.ExecContext(ctx, query, id, from, to)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if affected == 0 {
		// the row moved underneath us, or the order does not exist
		return ErrInvalidTransition
	}
	return nil
}

func (r *Repository) InsertOutboxEvent(ctx context.Context, aggregateID, eventType string, payload []byte) error {
	return insertOutboxEvent(ctx, r.db, aggregateID, eventType, payload)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func insertOutboxEvent(ctx context.Context, db execer, aggregateID, eventType string, payload []byte) error {
	query := `INSERT INTO outbox_events (aggregate_id, event_type, payload, created_at)
	          VALUES ($1, $2, $3, NOW())`
	if _, err := db.ExecContext(ctx, query, aggregateID, eventType, payload); err != nil {
		return fmt.Errorf("insert outbox event: %w", err)
	}
	return nil
}

func insertOutboxEventTx(ctx context.Context, tx *sql.Tx, aggregateID, eventType string, payload []byte) error {
	return insertOutboxEvent(ctx, tx, aggregateID, eventType, payload)
}

func (r *Repository) GetUnprocessedEvents(ctx context.Context, limit int) ([]*OutboxEvent, error) {
	query := `SELECT id, aggregate_id, event_type, payload, created_at
	          FROM outbox_events WHERE processed_at IS NULL ORDER BY id LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query outbox events: %w", err)
	}
	defer rows.Close()

	var events []*OutboxEvent
	for rows.Next() {
		var event OutboxEvent
		if err := rows.Scan(&event.ID, &event.AggregateID, &event.EventType, &event.Payload, &event.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan outbox event: %w", err)
		}
		events = append(events, &event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return events, nil
}

func (r *Repository) MarkEventAsProcessed(ctx context.Context, id int64) error {
	query := `UPDATE outbox_events SET processed_at = NOW() WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("mark outbox event processed: %w", err)
	}
	return nil
}

func (r *Repository) GetApprovedUnpaidOrders(ctx context.Context) ([]*domain.Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders
	          WHERE payment_status = 'APPROVED' AND status = 'PENDING'
	          ORDER BY created_at`, orderColumns)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query approved unpaid orders: %w", err)
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		var order domain.Order
		if err := rows.Scan(
			&order.ID,
			&order.CustomerID,
			&order.AddressID,
			&order.TotalAmount,
			&order.Currency,
			&order.Reference,
			&order.TransactionID,
			&order.PaymentStatus,
			&order.PaymentMethod,
			&order.Status,
			&order.CreatedAt,
			&order.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, &order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return orders, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}
