package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/fitkart/storefront-api/internal/domain"
	"github.com/fitkart/storefront-api/internal/repository"
	"github.com/fitkart/storefront-api/pkg/errors"
)

type orderRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *sql.DB, logger *zap.Logger) repository.OrderRepository {
	return &orderRepository{
		db:     db,
		logger: logger,
	}
}

const orderColumns = `
	id, order_number, user_id, shipping_address, subtotal, shipping, discount, total,
	coupon_code, status, payment_status, tracking_number, carrier, shipment_id,
	expected_at, shipped_at, delivered_at, confirmed_at,
	confirmation_sent, confirmation_sent_at, cancel_reason, created_at, updated_at
`

func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}

	addressJSON, err := json.Marshal(order.Address)
	if err != nil {
		return fmt.Errorf("failed to marshal shipping address: %w", err)
	}

	query := `
		INSERT INTO orders (
			id, order_number, user_id, shipping_address, subtotal, shipping, discount,
			total, coupon_code, status, payment_status, confirmation_sent
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at
	`
	err = tx.QueryRowContext(ctx, query,
		order.ID, order.OrderNumber, order.UserID, addressJSON,
		order.Subtotal, order.Shipping, order.Discount, order.Total,
		order.CouponCode, order.Status, order.PaymentStatus, order.ConfirmationSent,
	).Scan(&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		r.logger.Error("Failed to insert order", zap.Error(err))
		return err
	}

	if err := insertItems(ctx, tx, order.ID, order.Items); err != nil {
		return err
	}

	return tx.Commit()
}

func insertItems(ctx context.Context, tx *sql.Tx, orderID uuid.UUID, items []domain.OrderItem) error {
	query := `
		INSERT INTO order_items (order_id, position, product_id, name, price, quantity, image, variant)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	for i, item := range items {
		if _, err := tx.ExecContext(ctx, query,
			orderID, i, item.ProductID, item.Name, item.Price, item.Quantity,
			item.Image, item.Variant,
		); err != nil {
			return fmt.Errorf("failed to insert order item: %w", err)
		}
	}
	return nil
}

func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	return r.getOne(ctx, query, id)
}

func (r *orderRepository) GetByNumber(ctx context.Context, orderNumber string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE order_number = $1`
	return r.getOne(ctx, query, orderNumber)
}

func (r *orderRepository) getOne(ctx context.Context, query string, arg interface{}) (*domain.Order, error) {
	row := r.db.QueryRowContext(ctx, query, arg)
	order, err := scanOrder(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, &errors.ErrNotFound{Resource: "order", ID: fmt.Sprintf("%v", arg)}
		}
		r.logger.Error("Failed to query order", zap.Error(err))
		return nil, err
	}

	if err := r.loadItems(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var order domain.Order
	var addressJSON []byte
	var couponCode, trackingNumber, carrier, shipmentID, cancelReason sql.NullString
	var expectedAt, shippedAt, deliveredAt, confirmedAt, confirmationSentAt sql.NullTime

	err := row.Scan(
		&order.ID, &order.OrderNumber, &order.UserID, &addressJSON,
		&order.Subtotal, &order.Shipping, &order.Discount, &order.Total,
		&couponCode, &order.Status, &order.PaymentStatus,
		&trackingNumber, &carrier, &shipmentID,
		&expectedAt, &shippedAt, &deliveredAt, &confirmedAt,
		&order.ConfirmationSent, &confirmationSentAt, &cancelReason,
		&order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(addressJSON, &order.Address); err != nil {
		return nil, fmt.Errorf("failed to unmarshal shipping address: %w", err)
	}

	if couponCode.Valid {
		order.CouponCode = &couponCode.String
	}
	if trackingNumber.Valid {
		order.TrackingNumber = &trackingNumber.String
	}
	if carrier.Valid {
		order.Carrier = &carrier.String
	}
	if shipmentID.Valid {
		order.ShipmentID = &shipmentID.String
	}
	if cancelReason.Valid {
		order.CancelReason = &cancelReason.String
	}
	if expectedAt.Valid {
		order.ExpectedAt = &expectedAt.Time
	}
	if shippedAt.Valid {
		order.ShippedAt = &shippedAt.Time
	}
	if deliveredAt.Valid {
		order.DeliveredAt = &deliveredAt.Time
	}
	if confirmedAt.Valid {
		order.ConfirmedAt = &confirmedAt.Time
	}
	if confirmationSentAt.Valid {
		order.ConfirmationSentAt = &confirmationSentAt.Time
	}

	return &order, nil
}

func (r *orderRepository) loadItems(ctx context.Context, order *domain.Order) error {
	query := `
		SELECT product_id, name, price, quantity, image, variant
		FROM order_items
		WHERE order_id = $1
		ORDER BY position
	`
	rows, err := r.db.QueryContext(ctx, query, order.ID)
	if err != nil {
		r.logger.Error("Failed to query order items", zap.Error(err))
		return err
	}
	defer rows.Close()

	order.Items = order.Items[:0]
	for rows.Next() {
		var item domain.OrderItem
		var image, variant sql.NullString
		if err := rows.Scan(&item.ProductID, &item.Name, &item.Price, &item.Quantity, &image, &variant); err != nil {
			return err
		}
		if image.Valid {
			item.Image = &image.String
		}
		if variant.Valid {
			item.Variant = &variant.String
		}
		order.Items = append(order.Items, item)
	}
	return rows.Err()
}

func (r *orderRepository) List(ctx context.Context, filter repository.OrderFilter) ([]*domain.Order, int, error) {
	where := "WHERE 1=1"
	args := []interface{}{}
	idx := 1

	if filter.UserID != nil {
		where += fmt.Sprintf(" AND user_id = $%d", idx)
		args = append(args, *filter.UserID)
		idx++
	}
	if filter.Status != nil {
		where += fmt.Sprintf(" AND status = $%d", idx)
		args = append(args, *filter.Status)
		idx++
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM orders "+where, args...).Scan(&total); err != nil {
		r.logger.Error("Failed to count orders", zap.Error(err))
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	query := fmt.Sprintf(
		`SELECT %s FROM orders %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		orderColumns, where, idx, idx+1,
	)
	args = append(args, limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to query orders", zap.Error(err))
		return nil, 0, err
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	for _, order := range orders {
		if err := r.loadItems(ctx, order); err != nil {
			return nil, 0, err
		}
	}
	return orders, total, nil
}

func (r *orderRepository) Update(ctx context.Context, order *domain.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	addressJSON, err := json.Marshal(order.Address)
	if err != nil {
		return fmt.Errorf("failed to marshal shipping address: %w", err)
	}

	query := `
		UPDATE orders SET
			shipping_address = $2, subtotal = $3, shipping = $4, discount = $5,
			total = $6, coupon_code = $7, status = $8, payment_status = $9,
			tracking_number = $10, carrier = $11, shipment_id = $12,
			expected_at = $13, shipped_at = $14, delivered_at = $15, confirmed_at = $16,
			confirmation_sent = $17, confirmation_sent_at = $18, cancel_reason = $19,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err = tx.QueryRowContext(ctx, query,
		order.ID, addressJSON, order.Subtotal, order.Shipping, order.Discount,
		order.Total, order.CouponCode, order.Status, order.PaymentStatus,
		order.TrackingNumber, order.Carrier, order.ShipmentID,
		order.ExpectedAt, order.ShippedAt, order.DeliveredAt, order.ConfirmedAt,
		order.ConfirmationSent, order.ConfirmationSentAt, order.CancelReason,
	).Scan(&order.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return &errors.ErrNotFound{Resource: "order", ID: order.ID.String()}
		}
		r.logger.Error("Failed to update order", zap.Error(err))
		return err
	}

	// Items are replaced wholesale; pre-shipment edits rewrite the full line set.
	if _, err := tx.ExecContext(ctx, `DELETE FROM order_items WHERE order_id = $1`, order.ID); err != nil {
		return fmt.Errorf("failed to clear order items: %w", err)
	}
	if err := insertItems(ctx, tx, order.ID, order.Items); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *orderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete order", zap.Error(err))
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return &errors.ErrNotFound{Resource: "order", ID: id.String()}
	}
	return nil
}

func (r *orderRepository) AppendAudit(ctx context.Context, entry *domain.AuditEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	query := `
		INSERT INTO order_audit (id, order_id, actor_id, actor_name, actor_email, reason, fields)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		entry.ID, entry.OrderID, entry.ActorID, entry.ActorName, entry.ActorEmail,
		entry.Reason, pq.Array(entry.Fields),
	).Scan(&entry.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to append audit entry", zap.Error(err))
		return err
	}
	return nil
}

func (r *orderRepository) ListAudit(ctx context.Context, orderID uuid.UUID) ([]*domain.AuditEntry, error) {
	query := `
		SELECT id, order_id, actor_id, actor_name, actor_email, reason, fields, created_at
		FROM order_audit
		WHERE order_id = $1
		ORDER BY created_at
	`
	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		r.logger.Error("Failed to query audit entries", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var entries []*domain.AuditEntry
	for rows.Next() {
		var entry domain.AuditEntry
		if err := rows.Scan(
			&entry.ID, &entry.OrderID, &entry.ActorID, &entry.ActorName,
			&entry.ActorEmail, &entry.Reason, pq.Array(&entry.Fields), &entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		entries = append(entries, &entry)
	}
	return entries, rows.Err()
}

func (r *orderRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM orders WHERE user_id = $1 AND status <> 'cancelled'`,
		userID,
	).Scan(&count)
	return count, err
}

func (r *orderRepository) CountByUserAndCoupon(ctx context.Context, userID uuid.UUID, code string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM orders WHERE user_id = $1 AND coupon_code = $2 AND status <> 'cancelled'`,
		userID, code,
	).Scan(&count)
	return count, err
}
