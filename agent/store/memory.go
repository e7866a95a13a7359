package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MemoryStore is an in-process Store seeded with demo data. The store is
// shared across sessions, so all access goes through one mutex.
type MemoryStore struct {
	mu sync.Mutex

	users    map[string]User
	products map[string]Product
	orders   map[string]Order
	tickets  map[string]Ticket
	returns  map[string]Return

	recommendations map[string][]string
	wishlists       map[string]map[string]bool

	counters map[EntityType]int64
}

// NewMemoryStore returns an empty store with seed counters initialized.
func NewMemoryStore() *MemoryStore {
	counters := make(map[EntityType]int64, len(seedCounters))
	for k, v := range seedCounters {
		counters[k] = v
	}
	return &MemoryStore{
		users:           make(map[string]User),
		products:        make(map[string]Product),
		orders:          make(map[string]Order),
		tickets:         make(map[string]Ticket),
		returns:         make(map[string]Return),
		recommendations: make(map[string][]string),
		wishlists:       make(map[string]map[string]bool),
		counters:        counters,
	}
}

// NewSeededMemoryStore returns a store populated with the demo dataset.
func NewSeededMemoryStore() *MemoryStore {
	s := NewMemoryStore()
	s.seed()
	return s
}

func (s *MemoryStore) seed() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range []User{
		{UserID: "u101", Name: "Alex", Phone: "555-1234", Email: "alex@example.com"},
		{UserID: "u202", Name: "Mehedi", Phone: "017xx-xxxxx", Email: "mehedi@cartup.local"},
		{UserID: "u303", Name: "Sarah", Phone: "555-5678", Email: "sarah@example.com"},
	} {
		s.users[u.UserID] = u
	}

	for _, p := range []Product{
		{ProductID: "p001", Name: "Smartphone", Description: "Latest model smartphone with advanced features", Price: 299.99, Category: "Electronics", InStock: true, StockQuantity: 50},
		{ProductID: "p002", Name: "Wireless Earbuds", Description: "High-quality wireless earbuds with noise cancellation", Price: 79.99, Category: "Electronics", InStock: true, StockQuantity: 100},
		{ProductID: "p003", Name: "Phone Case", Description: "Protective case for smartphones", Price: 19.99, Category: "Accessories", InStock: true, StockQuantity: 200},
		{ProductID: "p004", Name: "USB-C Charger", Description: "Fast charging USB-C cable", Price: 15.99, Category: "Accessories", InStock: true, StockQuantity: 150},
		{ProductID: "p005", Name: "Laptop", Description: "High-performance laptop for work and gaming", Price: 899.99, Category: "Electronics", InStock: true, StockQuantity: 25},
	} {
		s.products[p.ProductID] = p
	}

	for _, o := range []Order{
		{OrderID: "o301", UserID: "u101", Status: "Delivered", Items: []string{"Smartphone", "Charger"}, Amount: 320.00, DeliveryDate: "2025-11-06", Address: "12 Baker Street, Dhaka", CreatedAt: "2025-11-01"},
		{OrderID: "o302", UserID: "u101", Status: "In Transit", Items: []string{"Wireless Earbuds"}, Amount: 79.99, DeliveryDate: "2025-11-10", Address: "12 Baker Street, Dhaka", CreatedAt: "2025-11-05"},
		{OrderID: "o401", UserID: "u202", Status: "Processing", Items: []string{"Phone Case"}, Amount: 19.99, Address: "SUST Hall, Sylhet", CreatedAt: "2025-11-08"},
		{OrderID: "o402", UserID: "u303", Status: "Delivered", Items: []string{"Laptop"}, Amount: 899.99, DeliveryDate: "2025-11-07", Address: "456 Main Street, New York", CreatedAt: "2025-11-02"},
	} {
		s.orders[o.OrderID] = o
	}

	s.tickets["t501"] = Ticket{TicketID: "t501", OrderID: "o301", Issue: "Damaged product", Status: "Resolved", CreatedAt: "2025-11-03"}

	s.recommendations["u101"] = []string{"Phone Case", "Wireless Earbuds"}
	s.recommendations["u202"] = []string{"USB-C Charger", "Phone Case"}
	s.recommendations["u303"] = []string{"Wireless Earbuds", "USB-C Charger"}
}

func (s *MemoryStore) User(_ context.Context, userID string) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return User{}, fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}

	orderIDs := make([]string, 0, 2)
	for id, o := range s.orders {
		if o.UserID == userID {
			orderIDs = append(orderIDs, id)
		}
	}
	sort.Strings(orderIDs)
	u.Orders = orderIDs
	return u, nil
}

func (s *MemoryStore) Order(_ context.Context, orderID string) (Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[orderID]
	if !ok {
		return Order{}, fmt.Errorf("order %s: %w", orderID, ErrNotFound)
	}
	return o, nil
}

func (s *MemoryStore) Product(_ context.Context, productID string) (Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[productID]
	if !ok {
		return Product{}, fmt.Errorf("product %s: %w", productID, ErrNotFound)
	}
	return p, nil
}

func (s *MemoryStore) Ticket(_ context.Context, ticketID string) (Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tickets[ticketID]
	if !ok {
		return Ticket{}, fmt.Errorf("ticket %s: %w", ticketID, ErrNotFound)
	}
	return t, nil
}

func (s *MemoryStore) Return(_ context.Context, orderID string) (Return, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.returns[orderID]
	if !ok {
		return Return{}, fmt.Errorf("return for order %s: %w", orderID, ErrNotFound)
	}
	return r, nil
}

func (s *MemoryStore) UpdateOrderAddress(_ context.Context, orderID, address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[orderID]
	if !ok {
		return fmt.Errorf("order %s: %w", orderID, ErrNotFound)
	}
	o.Address = address
	s.orders[orderID] = o
	return nil
}

func (s *MemoryStore) CreateTicket(_ context.Context, t Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orders[t.OrderID]; !ok {
		return fmt.Errorf("order %s: %w", t.OrderID, ErrNotFound)
	}
	s.tickets[t.TicketID] = t
	return nil
}

// CreateReturn creates or overwrites the return record for an order; a
// repeated return request replaces the previous one.
func (s *MemoryStore) CreateReturn(_ context.Context, r Return) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orders[r.OrderID]; !ok {
		return fmt.Errorf("order %s: %w", r.OrderID, ErrNotFound)
	}
	s.returns[r.OrderID] = r
	return nil
}

func (s *MemoryStore) UpdateRefundStatus(_ context.Context, orderID, refundStatus string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.returns[orderID]
	if !ok {
		return fmt.Errorf("return for order %s: %w", orderID, ErrNotFound)
	}
	r.RefundStatus = refundStatus
	s.returns[orderID] = r
	return nil
}

func (s *MemoryStore) Recommendations(_ context.Context, userID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	recs := s.recommendations[userID]
	out := make([]string, len(recs))
	copy(out, recs)
	return out, nil
}

func (s *MemoryStore) Wishlist(_ context.Context, userID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.wishlists[userID]))
	for id := range s.wishlists[userID] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *MemoryStore) AddToWishlist(_ context.Context, userID, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[productID]; !ok {
		return fmt.Errorf("product %s: %w", productID, ErrNotFound)
	}
	if s.wishlists[userID] == nil {
		s.wishlists[userID] = make(map[string]bool)
	}
	s.wishlists[userID][productID] = true
	return nil
}

func (s *MemoryStore) NextID(_ context.Context, entity EntityType) (string, error) {
	prefix, ok := idPrefixes[entity]
	if !ok {
		return "", fmt.Errorf("unknown entity type %q", entity)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.counters[entity]++
	return fmt.Sprintf("%s%d", prefix, s.counters[entity]), nil
}
