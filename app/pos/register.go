package pos

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shashiranjanraj/paintpos/app/models"
)

// Register is one cashier's cart plus the state that makes it safe to
// commit: a mutex, an in-flight flag and the cart's idempotency key.
//
// The key is generated with the cart and rotated only when the cart is
// cleared, so resubmitting the same cart after a failure reuses it.
type Register struct {
	mu       sync.Mutex
	cart     *Cart
	key      string
	inFlight bool

	// lastUsed is guarded by the owning Registers' mutex.
	lastUsed time.Time
}

func NewRegister() *Register {
	return &Register{cart: NewCart(), key: uuid.NewString()}
}

// View is a read-only copy of a register's cart.
type View struct {
	CustomerName   string          `json:"customerName"`
	Items          []Line          `json:"items"`
	Total          decimal.Decimal `json:"total"`
	IdempotencyKey string          `json:"idempotencyKey"`
	Committing     bool            `json:"committing"`
}

func (r *Register) View() View {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.viewLocked()
}

func (r *Register) viewLocked() View {
	return View{
		CustomerName:   r.cart.CustomerName(),
		Items:          r.cart.Lines(),
		Total:          r.cart.Total(),
		IdempotencyKey: r.key,
		Committing:     r.inFlight,
	}
}

// mutate runs fn against the cart unless a commit is in flight.
func (r *Register) mutate(fn func(c *Cart)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.inFlight {
		return ErrCommitInProgress
	}
	fn(r.cart)
	return nil
}

func (r *Register) AddItem(p models.Product) error {
	return r.mutate(func(c *Cart) { c.AddItem(p) })
}

func (r *Register) RemoveItem(id string) error {
	return r.mutate(func(c *Cart) { c.RemoveItem(id) })
}

func (r *Register) SetQuantity(id string, qty int) (int, error) {
	var stored int
	err := r.mutate(func(c *Cart) { stored = c.SetQuantity(id, qty) })
	return stored, err
}

func (r *Register) SetCustomerName(name string) error {
	return r.mutate(func(c *Cart) { c.SetCustomerName(name) })
}

// Clear empties the cart and issues a new idempotency key. Clearing an
// empty cart keeps its key.
func (r *Register) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.inFlight {
		return ErrCommitInProgress
	}
	r.clearLocked()
	return nil
}

func (r *Register) clearLocked() {
	if r.cart.IsEmpty() && r.cart.CustomerName() == "" {
		return
	}
	r.cart.Clear()
	r.key = uuid.NewString()
}

// ticket is the frozen cart a commit works from.
type ticket struct {
	customerName string
	items        []models.TransactionItem
	lines        []Line
	total        decimal.Decimal
	key          string
}

// begin marks the register busy and freezes the cart. customerName, when
// non-empty, replaces the cart's customer name first.
func (r *Register) begin(customerName string) (ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.inFlight {
		return ticket{}, ErrCommitInProgress
	}
	if customerName != "" {
		r.cart.SetCustomerName(customerName)
	}
	r.inFlight = true
	return ticket{
		customerName: r.cart.CustomerName(),
		items:        r.cart.Items(),
		lines:        r.cart.Lines(),
		total:        r.cart.Total(),
		key:          r.key,
	}, nil
}

// end releases the register; a successful commit also clears the cart.
func (r *Register) end(success bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inFlight = false
	if success {
		r.clearLocked()
	}
}

// Registers maps session IDs to registers.
type Registers struct {
	mu   sync.Mutex
	regs map[string]*Register
	now  func() time.Time
}

func NewRegisters() *Registers {
	return &Registers{regs: map[string]*Register{}, now: time.Now}
}

// Get returns the session's register, creating it on first use.
func (rs *Registers) Get(sessionID string) *Register {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	r, ok := rs.regs[sessionID]
	if !ok {
		r = NewRegister()
		rs.regs[sessionID] = r
	}
	r.lastUsed = rs.now()
	return r
}

// Drop discards the session's register and its cart.
func (rs *Registers) Drop(sessionID string) {
	rs.mu.Lock()
	delete(rs.regs, sessionID)
	rs.mu.Unlock()
}

// Sweep drops registers not used for longer than idle and returns how many
// were dropped. A register with a commit in flight is kept.
func (rs *Registers) Sweep(idle time.Duration) int {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	cutoff := rs.now().Add(-idle)
	dropped := 0
	for id, r := range rs.regs {
		if !r.lastUsed.Before(cutoff) {
			continue
		}
		r.mu.Lock()
		busy := r.inFlight
		r.mu.Unlock()
		if busy {
			continue
		}
		delete(rs.regs, id)
		dropped++
	}
	return dropped
}

// SetClock replaces the clock used to stamp and sweep registers.
func (rs *Registers) SetClock(now func() time.Time) {
	rs.mu.Lock()
	rs.now = now
	rs.mu.Unlock()
}

func (rs *Registers) Len() int {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return len(rs.regs)
}
