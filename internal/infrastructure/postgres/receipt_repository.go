package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/mesa-api/internal/domain"
	"github.com/jhoicas/mesa-api/internal/domain/entity"
	"github.com/jhoicas/mesa-api/internal/domain/repository"
)

var _ repository.ReceiptRepository = (*ReceiptRepo)(nil)

// ReceiptRepo comprobantes en una tabla tipada; los montos van como NUMERIC (pgx-shopspring-decimal).
type ReceiptRepo struct {
	q Querier
}

// NewReceiptRepository construye el adaptador.
func NewReceiptRepository(q Querier) *ReceiptRepo {
	return &ReceiptRepo{q: q}
}

// Save inserta o reemplaza el comprobante de una orden.
func (r *ReceiptRepo) Save(ctx context.Context, rc *entity.Receipt) error {
	lines, err := json.Marshal(rc.Lines)
	if err != nil {
		return fmt.Errorf("marshal receipt lines: %w", err)
	}
	query := `
		INSERT INTO receipts (session_id, order_number, table_id, take_away_code, user_name, payment_method,
			subtotal, service_charge, total, notes, lines, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (session_id, order_number) DO UPDATE SET
			take_away_code = EXCLUDED.take_away_code, user_name = EXCLUDED.user_name,
			payment_method = EXCLUDED.payment_method, subtotal = EXCLUDED.subtotal,
			service_charge = EXCLUDED.service_charge, total = EXCLUDED.total,
			notes = EXCLUDED.notes, lines = EXCLUDED.lines`
	_, err = r.q.Exec(ctx, query,
		rc.SessionID, rc.OrderNumber, rc.TableID, rc.TakeAwayCode, rc.UserName, string(rc.PaymentMethod),
		rc.Subtotal, rc.ServiceCharge, rc.Total, rc.Notes, lines, rc.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert receipt: %w", err)
	}
	return nil
}

// Get obtiene el comprobante de una orden de la sesión.
func (r *ReceiptRepo) Get(ctx context.Context, sessionID string, orderNumber int64) (*entity.Receipt, error) {
	query := `
		SELECT session_id, order_number, table_id, take_away_code, user_name, payment_method,
			subtotal, service_charge, total, notes, lines, created_at
		FROM receipts WHERE session_id = $1 AND order_number = $2`
	var (
		rc     entity.Receipt
		method string
		lines  []byte
	)
	err := r.q.QueryRow(ctx, query, sessionID, orderNumber).Scan(
		&rc.SessionID, &rc.OrderNumber, &rc.TableID, &rc.TakeAwayCode, &rc.UserName, &method,
		&rc.Subtotal, &rc.ServiceCharge, &rc.Total, &rc.Notes, &lines, &rc.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get receipt: %w", err)
	}
	rc.PaymentMethod = entity.PaymentMethod(method)
	if err := json.Unmarshal(lines, &rc.Lines); err != nil {
		return nil, fmt.Errorf("unmarshal receipt lines: %w", err)
	}
	return &rc, nil
}
