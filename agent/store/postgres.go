package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

// PostgresConfig configures the Postgres-backed store.
type PostgresConfig struct {
	DSN          string        `envconfig:"DSN" split_words:"true" required:"true"`
	DialTimeout  time.Duration `envconfig:"DIAL_TIMEOUT" split_words:"true" default:"5s"`
	MaxOpenConns int           `envconfig:"MAX_OPEN_CONNS" split_words:"true" default:"8"`
}

type dbUser struct {
	bun.BaseModel `bun:"table:users"`

	UserID    string `bun:"user_id,pk"`
	Name      string `bun:"name,notnull"`
	Phone     string `bun:"phone"`
	Email     string `bun:"email"`
	CreatedAt string `bun:"created_at"`
}

type dbProduct struct {
	bun.BaseModel `bun:"table:products"`

	ProductID     string  `bun:"product_id,pk"`
	Name          string  `bun:"name,notnull"`
	Description   string  `bun:"description"`
	Price         float64 `bun:"price,notnull"`
	Category      string  `bun:"category"`
	InStock       bool    `bun:"in_stock"`
	StockQuantity int     `bun:"stock_quantity"`
}

type dbOrder struct {
	bun.BaseModel `bun:"table:orders"`

	OrderID      string  `bun:"order_id,pk"`
	UserID       string  `bun:"user_id,notnull"`
	Status       string  `bun:"status,notnull"`
	Amount       float64 `bun:"amount,notnull"`
	DeliveryDate string  `bun:"delivery_date"`
	Address      string  `bun:"address"`
	CreatedAt    string  `bun:"created_at"`
}

type dbOrderItem struct {
	bun.BaseModel `bun:"table:order_items"`

	ID          int64  `bun:"id,pk,autoincrement"`
	OrderID     string `bun:"order_id,notnull"`
	ProductName string `bun:"product_name,notnull"`
	Quantity    int    `bun:"quantity"`
}

type dbTicket struct {
	bun.BaseModel `bun:"table:tickets"`

	TicketID  string `bun:"ticket_id,pk"`
	OrderID   string `bun:"order_id,notnull"`
	Issue     string `bun:"issue,notnull"`
	Status    string `bun:"status,notnull"`
	CreatedAt string `bun:"created_at"`
}

type dbReturn struct {
	bun.BaseModel `bun:"table:returns"`

	OrderID      string `bun:"order_id,pk"`
	Status       string `bun:"status,notnull"`
	RefundStatus string `bun:"refund_status,notnull"`
	Reason       string `bun:"reason"`
	CreatedAt    string `bun:"created_at"`
}

type dbRecommendation struct {
	bun.BaseModel `bun:"table:recommendations"`

	ID          int64  `bun:"id,pk,autoincrement"`
	UserID      string `bun:"user_id,notnull"`
	ProductName string `bun:"product_name,notnull"`
}

type dbWishlistEntry struct {
	bun.BaseModel `bun:"table:wishlists"`

	ID        int64  `bun:"id,pk,autoincrement"`
	UserID    string `bun:"user_id,notnull,unique:wishlists_user_product"`
	ProductID string `bun:"product_id,notnull,unique:wishlists_user_product"`
}

type dbIDSequence struct {
	bun.BaseModel `bun:"table:id_sequences"`

	EntityType string `bun:"entity_type,pk"`
	NextValue  int64  `bun:"next_value,notnull"`
}

// PostgresStore implements Store on Postgres via bun.
type PostgresStore struct {
	db *bun.DB
}

func NewPostgresStore(cfg PostgresConfig) (*PostgresStore, error) {
	if cfg.DSN == "" {
		return nil, errors.New("postgres dsn is required")
	}

	connector := pgdriver.NewConnector(
		pgdriver.WithDSN(cfg.DSN),
		pgdriver.WithDialTimeout(cfg.DialTimeout),
	)
	sqldb := sql.OpenDB(connector)
	sqldb.SetMaxOpenConns(cfg.MaxOpenConns)

	return &PostgresStore{db: bun.NewDB(sqldb, pgdialect.New())}, nil
}

// CreateSchema creates all tables and seeds the ID sequences. Safe to call
// repeatedly.
func (s *PostgresStore) CreateSchema(ctx context.Context) error {
	models := []any{
		(*dbUser)(nil),
		(*dbProduct)(nil),
		(*dbOrder)(nil),
		(*dbOrderItem)(nil),
		(*dbTicket)(nil),
		(*dbReturn)(nil),
		(*dbRecommendation)(nil),
		(*dbWishlistEntry)(nil),
		(*dbIDSequence)(nil),
	}
	for _, model := range models {
		if _, err := s.db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("create table for %T: %w", model, err)
		}
	}

	for entity, next := range seedCounters {
		seq := dbIDSequence{EntityType: string(entity), NextValue: next}
		if _, err := s.db.NewInsert().Model(&seq).On("CONFLICT (entity_type) DO NOTHING").Exec(ctx); err != nil {
			return fmt.Errorf("seed id sequence %s: %w", entity, err)
		}
	}
	return nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) User(ctx context.Context, userID string) (User, error) {
	var u dbUser
	err := s.db.NewSelect().Model(&u).Where("user_id = ?", userID).Scan(ctx)
	if err != nil {
		return User{}, mapNotFound(err, "user", userID)
	}

	var orderIDs []string
	err = s.db.NewSelect().
		Model((*dbOrder)(nil)).
		Column("order_id").
		Where("user_id = ?", userID).
		Order("created_at").
		Scan(ctx, &orderIDs)
	if err != nil {
		return User{}, fmt.Errorf("list orders for user %s: %w", userID, err)
	}

	return User{
		UserID: u.UserID,
		Name:   u.Name,
		Phone:  u.Phone,
		Email:  u.Email,
		Orders: orderIDs,
	}, nil
}

func (s *PostgresStore) Order(ctx context.Context, orderID string) (Order, error) {
	var o dbOrder
	err := s.db.NewSelect().Model(&o).Where("order_id = ?", orderID).Scan(ctx)
	if err != nil {
		return Order{}, mapNotFound(err, "order", orderID)
	}

	var items []string
	err = s.db.NewSelect().
		Model((*dbOrderItem)(nil)).
		Column("product_name").
		Where("order_id = ?", orderID).
		Order("id").
		Scan(ctx, &items)
	if err != nil {
		return Order{}, fmt.Errorf("list items for order %s: %w", orderID, err)
	}

	return Order{
		OrderID:      o.OrderID,
		UserID:       o.UserID,
		Status:       o.Status,
		Items:        items,
		Amount:       o.Amount,
		DeliveryDate: o.DeliveryDate,
		Address:      o.Address,
		CreatedAt:    o.CreatedAt,
	}, nil
}

func (s *PostgresStore) Product(ctx context.Context, productID string) (Product, error) {
	var p dbProduct
	err := s.db.NewSelect().Model(&p).Where("product_id = ?", productID).Scan(ctx)
	if err != nil {
		return Product{}, mapNotFound(err, "product", productID)
	}
	return Product{
		ProductID:     p.ProductID,
		Name:          p.Name,
		Description:   p.Description,
		Price:         p.Price,
		Category:      p.Category,
		InStock:       p.InStock,
		StockQuantity: p.StockQuantity,
	}, nil
}

func (s *PostgresStore) Ticket(ctx context.Context, ticketID string) (Ticket, error) {
	var t dbTicket
	err := s.db.NewSelect().Model(&t).Where("ticket_id = ?", ticketID).Scan(ctx)
	if err != nil {
		return Ticket{}, mapNotFound(err, "ticket", ticketID)
	}
	return Ticket{
		TicketID:  t.TicketID,
		OrderID:   t.OrderID,
		Issue:     t.Issue,
		Status:    t.Status,
		CreatedAt: t.CreatedAt,
	}, nil
}

func (s *PostgresStore) Return(ctx context.Context, orderID string) (Return, error) {
	var r dbReturn
	err := s.db.NewSelect().Model(&r).Where("order_id = ?", orderID).Scan(ctx)
	if err != nil {
		return Return{}, mapNotFound(err, "return for order", orderID)
	}
	return Return{
		OrderID:      r.OrderID,
		Status:       r.Status,
		RefundStatus: r.RefundStatus,
		Reason:       r.Reason,
		CreatedAt:    r.CreatedAt,
	}, nil
}

func (s *PostgresStore) UpdateOrderAddress(ctx context.Context, orderID, address string) error {
	res, err := s.db.NewUpdate().
		Model((*dbOrder)(nil)).
		Set("address = ?", address).
		Where("order_id = ?", orderID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update address for order %s: %w", orderID, err)
	}
	return requireAffected(res, "order", orderID)
}

func (s *PostgresStore) CreateTicket(ctx context.Context, t Ticket) error {
	exists, err := s.db.NewSelect().Model((*dbOrder)(nil)).Where("order_id = ?", t.OrderID).Exists(ctx)
	if err != nil {
		return fmt.Errorf("check order %s: %w", t.OrderID, err)
	}
	if !exists {
		return fmt.Errorf("order %s: %w", t.OrderID, ErrNotFound)
	}

	row := dbTicket{
		TicketID:  t.TicketID,
		OrderID:   t.OrderID,
		Issue:     t.Issue,
		Status:    t.Status,
		CreatedAt: t.CreatedAt,
	}
	if _, err := s.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		return fmt.Errorf("create ticket %s: %w", t.TicketID, err)
	}
	return nil
}

func (s *PostgresStore) CreateReturn(ctx context.Context, r Return) error {
	exists, err := s.db.NewSelect().Model((*dbOrder)(nil)).Where("order_id = ?", r.OrderID).Exists(ctx)
	if err != nil {
		return fmt.Errorf("check order %s: %w", r.OrderID, err)
	}
	if !exists {
		return fmt.Errorf("order %s: %w", r.OrderID, ErrNotFound)
	}

	row := dbReturn{
		OrderID:      r.OrderID,
		Status:       r.Status,
		RefundStatus: r.RefundStatus,
		Reason:       r.Reason,
		CreatedAt:    r.CreatedAt,
	}
	_, err = s.db.NewInsert().
		Model(&row).
		On("CONFLICT (order_id) DO UPDATE").
		Set("status = EXCLUDED.status").
		Set("refund_status = EXCLUDED.refund_status").
		Set("reason = EXCLUDED.reason").
		Set("created_at = EXCLUDED.created_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("create return for order %s: %w", r.OrderID, err)
	}
	return nil
}

func (s *PostgresStore) UpdateRefundStatus(ctx context.Context, orderID, refundStatus string) error {
	res, err := s.db.NewUpdate().
		Model((*dbReturn)(nil)).
		Set("refund_status = ?", refundStatus).
		Where("order_id = ?", orderID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update refund status for order %s: %w", orderID, err)
	}
	return requireAffected(res, "return for order", orderID)
}

func (s *PostgresStore) Recommendations(ctx context.Context, userID string) ([]string, error) {
	var names []string
	err := s.db.NewSelect().
		Model((*dbRecommendation)(nil)).
		Column("product_name").
		Where("user_id = ?", userID).
		Order("id").
		Scan(ctx, &names)
	if err != nil {
		return nil, fmt.Errorf("recommendations for user %s: %w", userID, err)
	}
	return names, nil
}

func (s *PostgresStore) Wishlist(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := s.db.NewSelect().
		Model((*dbWishlistEntry)(nil)).
		Column("product_id").
		Where("user_id = ?", userID).
		Order("product_id").
		Scan(ctx, &ids)
	if err != nil {
		return nil, fmt.Errorf("wishlist for user %s: %w", userID, err)
	}
	return ids, nil
}

func (s *PostgresStore) AddToWishlist(ctx context.Context, userID, productID string) error {
	exists, err := s.db.NewSelect().Model((*dbProduct)(nil)).Where("product_id = ?", productID).Exists(ctx)
	if err != nil {
		return fmt.Errorf("check product %s: %w", productID, err)
	}
	if !exists {
		return fmt.Errorf("product %s: %w", productID, ErrNotFound)
	}

	entry := dbWishlistEntry{UserID: userID, ProductID: productID}
	_, err = s.db.NewInsert().Model(&entry).On("CONFLICT (user_id, product_id) DO NOTHING").Exec(ctx)
	if err != nil {
		return fmt.Errorf("add product %s to wishlist for user %s: %w", productID, userID, err)
	}
	return nil
}

func (s *PostgresStore) NextID(ctx context.Context, entity EntityType) (string, error) {
	prefix, ok := idPrefixes[entity]
	if !ok {
		return "", fmt.Errorf("unknown entity type %q", entity)
	}

	var next int64
	err := s.db.NewRaw(
		"UPDATE id_sequences SET next_value = next_value + 1 WHERE entity_type = ? RETURNING next_value",
		string(entity),
	).Scan(ctx, &next)
	if err != nil {
		return "", fmt.Errorf("next id for %s: %w", entity, err)
	}
	return fmt.Sprintf("%s%d", prefix, next), nil
}

func mapNotFound(err error, kind, id string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
	}
	return fmt.Errorf("load %s %s: %w", kind, id, err)
}

func requireAffected(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected for %s %s: %w", kind, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
	}
	return nil
}
