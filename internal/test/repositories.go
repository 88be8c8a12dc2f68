package test

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/domain/repository"
)

type memoryState struct {
	buyers   map[int64]model.Buyer
	stock    map[int64]model.VariantStock
	orders   map[int64]model.Order
	items    map[int64]model.OrderItem
	coupons  map[int64]model.Coupon
	usages   []model.CouponUsage
	payments map[int64]model.Payment
	refunds  map[int64]model.PaymentRefund
	numbers  map[string]int64
	nextID   int64
}

func (s *memoryState) clone() *memoryState {
	return &memoryState{
		buyers:   maps.Clone(s.buyers),
		stock:    maps.Clone(s.stock),
		orders:   maps.Clone(s.orders),
		items:    maps.Clone(s.items),
		coupons:  maps.Clone(s.coupons),
		usages:   slices.Clone(s.usages),
		payments: maps.Clone(s.payments),
		refunds:  maps.Clone(s.refunds),
		numbers:  maps.Clone(s.numbers),
		nextID:   s.nextID,
	}
}

func (s *memoryState) id() int64 {
	s.nextID++
	return s.nextID
}

// MemoryStore is an in-memory repository.Transactor. Transactions are
// serialized and a failed transaction restores the state it started from.
type MemoryStore struct {
	mu    sync.Mutex
	state *memoryState

	// FailOn makes the named operation return the error, e.g. "items.create".
	FailOn map[string]error
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: &memoryState{
		buyers:   map[int64]model.Buyer{},
		stock:    map[int64]model.VariantStock{},
		orders:   map[int64]model.Order{},
		items:    map[int64]model.OrderItem{},
		coupons:  map[int64]model.Coupon{},
		payments: map[int64]model.Payment{},
		refunds:  map[int64]model.PaymentRefund{},
		numbers:  map[string]int64{},
	}}
}

var _ repository.Transactor = (*MemoryStore)(nil)

// WithinTransaction runs fn under the store lock.
func (m *MemoryStore) WithinTransaction(ctx context.Context, fn func(ctx context.Context, tx repository.Tx) error) (err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.state.clone()
	defer func() {
		if p := recover(); p != nil {
			m.state = snapshot
			panic(p)
		}
		if err != nil {
			m.state = snapshot
		}
	}()

	return fn(ctx, &memoryTx{store: m})
}

// SeedBuyer registers a buyer.
func (m *MemoryStore) SeedBuyer(id int64, createdAt time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.buyers[id] = model.Buyer{ID: id, CreatedAt: createdAt}
}

// SeedVariant sets stock counters of a variant.
func (m *MemoryStore) SeedVariant(id int64, stock, reserved, threshold int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v := model.VariantStock{VariantID: id, StockQuantity: stock, ReservedQuantity: reserved, LowStockThreshold: threshold}
	v.RecomputeFlags()
	m.state.stock[id] = v
}

// SeedCoupon stores coupon and returns its id.
func (m *MemoryStore) SeedCoupon(c model.Coupon) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.ID == 0 {
		c.ID = m.state.id()
	}
	m.state.coupons[c.ID] = c
	return c.ID
}

// SeedOrder stores order and its items as given and returns the order id.
func (m *MemoryStore) SeedOrder(o model.Order, items ...model.OrderItem) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if o.ID == 0 {
		o.ID = m.state.id()
	}
	o.Items = nil
	m.state.orders[o.ID] = o
	for _, item := range items {
		if item.ID == 0 {
			item.ID = m.state.id()
		}
		item.OrderID = o.ID
		m.state.items[item.ID] = item
	}
	return o.ID
}

// SeedPayment stores payment and returns its id.
func (m *MemoryStore) SeedPayment(p model.Payment) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID == 0 {
		p.ID = m.state.id()
	}
	m.state.payments[p.ID] = p
	return p.ID
}

// Variant returns current counters of a variant.
func (m *MemoryStore) Variant(id int64) model.VariantStock {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.stock[id]
}

// Order returns the stored order with its items.
func (m *MemoryStore) Order(id int64) (model.Order, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.state.orders[id]
	if !ok {
		return model.Order{}, false
	}
	o.Items = m.state.itemsOf(id)
	return o, true
}

// OrderCount returns the number of stored orders.
func (m *MemoryStore) OrderCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.state.orders)
}

// ItemCount returns the number of stored order items.
func (m *MemoryStore) ItemCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.state.items)
}

// Coupon returns the stored coupon.
func (m *MemoryStore) Coupon(id int64) model.Coupon {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.coupons[id]
}

// CouponUsages returns usage rows recorded for coupon.
func (m *MemoryStore) CouponUsages(couponID int64) []model.CouponUsage {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.CouponUsage
	for _, u := range m.state.usages {
		if u.CouponID == couponID {
			out = append(out, u)
		}
	}
	return out
}

// Payment returns the stored payment.
func (m *MemoryStore) Payment(id int64) model.Payment {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.payments[id]
}

// Refunds returns refunds recorded for order ordered by id.
func (m *MemoryStore) Refunds(orderID int64) []model.PaymentRefund {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.PaymentRefund
	for _, r := range m.state.refunds {
		if r.OrderID == orderID {
			out = append(out, r)
		}
	}
	slices.SortFunc(out, func(a, b model.PaymentRefund) int { return int(a.ID - b.ID) })
	return out
}

func (s *memoryState) itemsOf(orderID int64) []model.OrderItem {
	var out []model.OrderItem
	for _, item := range s.items {
		if item.OrderID == orderID {
			out = append(out, item)
		}
	}
	slices.SortFunc(out, func(a, b model.OrderItem) int { return int(a.ID - b.ID) })
	return out
}

func cloneOrder(o model.Order) (*model.Order, error) {
	history, err := model.NewStatusHistory(o.History.Entries())
	if err != nil {
		return nil, err
	}
	o.History = history
	o.Items = nil
	return &o, nil
}

type memoryTx struct {
	store *MemoryStore
}

func (t *memoryTx) state() *memoryState { return t.store.state }

func (t *memoryTx) fail(op string) error {
	if t.store.FailOn == nil {
		return nil
	}
	return t.store.FailOn[op]
}

func (t *memoryTx) Orders() repository.OrderRepository        { return memoryOrders{t} }
func (t *memoryTx) Items() repository.OrderItemRepository     { return memoryItems{t} }
func (t *memoryTx) Inventory() repository.InventoryRepository { return memoryInventory{t} }
func (t *memoryTx) Coupons() repository.CouponRepository      { return memoryCoupons{t} }
func (t *memoryTx) Payments() repository.PaymentRepository    { return memoryPayments{t} }
func (t *memoryTx) Users() repository.UserRepository          { return memoryUsers{t} }

type memoryOrders struct{ *memoryTx }

func (r memoryOrders) NextNumber(_ context.Context, day time.Time) (string, error) {
	key := day.UTC().Format("20060102")
	r.state().numbers[key]++
	return fmt.Sprintf("ORD-%s-%06d", key, r.state().numbers[key]), nil
}

func (r memoryOrders) Create(_ context.Context, order *model.Order) error {
	if err := r.fail("orders.create"); err != nil {
		return err
	}
	for _, existing := range r.state().orders {
		if existing.Number == order.Number {
			return domainErrors.ErrAlreadyExists
		}
	}
	if !order.Subtotal.IsPositive() || order.Total.IsNegative() {
		return domainErrors.ErrInvariantViolation
	}
	order.ID = r.state().id()
	stored, err := cloneOrder(*order)
	if err != nil {
		return err
	}
	r.state().orders[order.ID] = *stored
	return nil
}

func (r memoryOrders) get(id int64) (*model.Order, error) {
	o, ok := r.state().orders[id]
	if !ok || o.DeletedAt != nil {
		return nil, domainErrors.ErrNotFound
	}
	return cloneOrder(o)
}

func (r memoryOrders) GetForUpdate(_ context.Context, id int64) (*model.Order, error) {
	return r.get(id)
}

func (r memoryOrders) GetByID(_ context.Context, id int64) (*model.Order, error) {
	return r.get(id)
}

func (r memoryOrders) ListByBuyer(_ context.Context, buyerID int64) ([]model.Order, error) {
	var out []model.Order
	for _, o := range r.state().orders {
		if o.BuyerID == buyerID && o.DeletedAt == nil {
			c, err := cloneOrder(o)
			if err != nil {
				return nil, err
			}
			out = append(out, *c)
		}
	}
	slices.SortFunc(out, func(a, b model.Order) int { return int(b.ID - a.ID) })
	return out, nil
}

func (r memoryOrders) CountByBuyer(_ context.Context, buyerID int64) (int, error) {
	count := 0
	for _, o := range r.state().orders {
		if o.BuyerID == buyerID {
			count++
		}
	}
	return count, nil
}

func (r memoryOrders) Update(_ context.Context, order *model.Order) error {
	if err := r.fail("orders.update"); err != nil {
		return err
	}
	existing, ok := r.state().orders[order.ID]
	if !ok || existing.DeletedAt != nil {
		return domainErrors.ErrNotFound
	}
	if order.History.Len() < existing.History.Len() || order.Total.IsNegative() {
		return domainErrors.ErrInvariantViolation
	}
	stored, err := cloneOrder(*order)
	if err != nil {
		return err
	}
	r.state().orders[order.ID] = *stored
	return nil
}

func (r memoryOrders) SoftDelete(_ context.Context, id int64, at time.Time) error {
	o, ok := r.state().orders[id]
	if !ok || o.DeletedAt != nil {
		return domainErrors.ErrNotFound
	}
	o.DeletedAt = &at
	r.state().orders[id] = o
	return nil
}

type memoryItems struct{ *memoryTx }

func (r memoryItems) Create(_ context.Context, item *model.OrderItem) error {
	if err := r.fail("items.create"); err != nil {
		return err
	}
	if item.Quantity <= 0 {
		return domainErrors.ErrInvariantViolation
	}
	item.ID = r.state().id()
	r.state().items[item.ID] = *item
	return nil
}

func (r memoryItems) ListByOrder(_ context.Context, orderID int64) ([]model.OrderItem, error) {
	return r.state().itemsOf(orderID), nil
}

func (r memoryItems) GetForUpdate(_ context.Context, orderID, itemID int64) (*model.OrderItem, error) {
	item, ok := r.state().items[itemID]
	if !ok || item.OrderID != orderID {
		return nil, domainErrors.ErrNotFound
	}
	return &item, nil
}

func (r memoryItems) Update(_ context.Context, item *model.OrderItem) error {
	if _, ok := r.state().items[item.ID]; !ok {
		return domainErrors.ErrNotFound
	}
	r.state().items[item.ID] = *item
	return nil
}

type memoryInventory struct{ *memoryTx }

func (r memoryInventory) Reserve(_ context.Context, variantID int64, qty int) (*model.VariantStock, error) {
	v, ok := r.state().stock[variantID]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	if err := v.Reserve(qty); err != nil {
		return nil, err
	}
	v.UpdatedAt = time.Now()
	r.state().stock[variantID] = v
	return &v, nil
}

func (r memoryInventory) Release(_ context.Context, variantID int64, qty int) (*model.VariantStock, error) {
	if err := r.fail("inventory.release"); err != nil {
		return nil, err
	}
	v, ok := r.state().stock[variantID]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	if err := v.Release(qty); err != nil {
		return nil, err
	}
	v.UpdatedAt = time.Now()
	r.state().stock[variantID] = v
	return &v, nil
}

func (r memoryInventory) Get(_ context.Context, variantID int64) (*model.VariantStock, error) {
	v, ok := r.state().stock[variantID]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	return &v, nil
}

type memoryCoupons struct{ *memoryTx }

func (r memoryCoupons) GetByCode(_ context.Context, code string) (*model.Coupon, error) {
	for _, c := range r.state().coupons {
		if strings.EqualFold(c.Code, code) {
			return &c, nil
		}
	}
	return nil, domainErrors.ErrNotFound
}

func (r memoryCoupons) CountUsages(_ context.Context, couponID, userID int64) (int, error) {
	count := 0
	for _, u := range r.state().usages {
		if u.CouponID == couponID && u.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (r memoryCoupons) RecordUsage(_ context.Context, usage *model.CouponUsage) error {
	c, ok := r.state().coupons[usage.CouponID]
	if !ok {
		return domainErrors.ErrNotFound
	}
	if c.UsageCapReached() {
		return domainErrors.ErrCouponExhausted
	}
	c.CurrentUses++
	r.state().coupons[c.ID] = c
	usage.ID = r.state().id()
	r.state().usages = append(r.state().usages, *usage)
	return nil
}

type memoryPayments struct{ *memoryTx }

func (r memoryPayments) Create(_ context.Context, payment *model.Payment) error {
	for _, p := range r.state().payments {
		if p.Reference == payment.Reference {
			return domainErrors.ErrAlreadyExists
		}
	}
	payment.ID = r.state().id()
	r.state().payments[payment.ID] = *payment
	return nil
}

func (r memoryPayments) LatestRefundable(_ context.Context, orderID int64) (*model.Payment, error) {
	var latest *model.Payment
	for _, p := range r.state().payments {
		if p.OrderID != orderID || !p.Status.Refundable() {
			continue
		}
		if latest == nil || p.ID > latest.ID {
			candidate := p
			latest = &candidate
		}
	}
	if latest == nil {
		return nil, domainErrors.ErrNotFound
	}
	return latest, nil
}

func (r memoryPayments) UpdateStatus(_ context.Context, paymentID int64, status model.PaymentStatus) error {
	p, ok := r.state().payments[paymentID]
	if !ok {
		return domainErrors.ErrNotFound
	}
	p.Status = status
	r.state().payments[paymentID] = p
	return nil
}

func (r memoryPayments) RefundedTotal(_ context.Context, paymentID int64) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, refund := range r.state().refunds {
		if refund.PaymentID == paymentID && refund.Status.Counts() {
			total = total.Add(refund.Amount)
		}
	}
	return total, nil
}

func (r memoryPayments) CreateRefund(_ context.Context, refund *model.PaymentRefund) error {
	if err := r.fail("payments.create_refund"); err != nil {
		return err
	}
	refund.ID = r.state().id()
	r.state().refunds[refund.ID] = *refund
	return nil
}

func (r memoryPayments) GetRefundForUpdate(_ context.Context, refundID int64) (*model.PaymentRefund, error) {
	refund, ok := r.state().refunds[refundID]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	return &refund, nil
}

func (r memoryPayments) UpdateRefundStatus(_ context.Context, refund *model.PaymentRefund) error {
	if _, ok := r.state().refunds[refund.ID]; !ok {
		return domainErrors.ErrNotFound
	}
	r.state().refunds[refund.ID] = *refund
	return nil
}

type memoryUsers struct{ *memoryTx }

func (r memoryUsers) GetBuyer(_ context.Context, id int64) (*model.Buyer, error) {
	b, ok := r.state().buyers[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	return &b, nil
}
