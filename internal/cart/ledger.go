// Package cart implements the cart ledger: line identity, merge and split of
// line items on add and edit, derived totals and the editing pointer.
//
// A Ledger is not safe for concurrent use. Callers serialize access per session.
package cart

import (
	"errors"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	// ErrInvalidQuantity flags an add with a non-positive quantity. The ledger is left untouched.
	ErrInvalidQuantity = errors.New("quantity must be positive")
	// ErrInvalidSelection flags an add without a usable configuration.
	ErrInvalidSelection = errors.New("invalid selection")
)

// Store persists ledger snapshots. Both calls are best effort; Load returns
// no items and no error when nothing has been saved yet.
type Store interface {
	Save(items []LineItem) error
	Load() ([]LineItem, error)
}

// Editing points at the line currently being reconfigured.
type Editing struct {
	LineID      string      `json:"lineId"`
	ProductType ProductType `json:"productType"`
	ProductID   string      `json:"productId"`
}

// Snapshot is a read-only view of the ledger.
type Snapshot struct {
	Items   []LineItem      `json:"items"`
	Total   decimal.Decimal `json:"total"`
	Count   int             `json:"count"`
	Editing *Editing        `json:"editing"`
}

// Ledger owns the cart's line items.
type Ledger struct {
	items    []LineItem
	editing  *Editing
	store    Store
	notifier Notifier
	logger   *zap.Logger
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithStore persists the items after every mutation.
func WithStore(s Store) Option {
	return func(l *Ledger) { l.store = s }
}

// WithNotifier delivers one notification per mutation.
func WithNotifier(n Notifier) Option {
	return func(l *Ledger) { l.notifier = n }
}

// WithLogger sets the logger used for rejected input and persistence failures.
func WithLogger(logger *zap.Logger) Option {
	return func(l *Ledger) { l.logger = logger }
}

// NewLedger returns an empty ledger.
func NewLedger(opts ...Option) *Ledger {
	l := &Ledger{
		notifier: discardNotifier{},
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Restore replaces the items with the stored snapshot. Line ids are derived
// again and duplicate lines are merged, so a stale or hand-edited snapshot
// cannot break the one-line-per-id invariant. A failed load leaves the ledger empty.
func (l *Ledger) Restore() {
	l.items = nil
	l.editing = nil
	if l.store == nil {
		return
	}

	stored, err := l.store.Load()
	if err != nil {
		l.logger.Warn("cart snapshot load failed", zap.Error(err))
		return
	}

	for _, item := range stored {
		cfg, ok := normalize(item.Config)
		if !ok || item.Quantity <= 0 || validate(cfg) != nil {
			l.logger.Debug("dropping invalid stored line", zap.String("line_id", item.LineID))
			continue
		}
		item.Config = cloneConfig(cfg)
		item.ProductType = item.Config.ProductType()
		item.LineID = LineID(item.ProductID, item.Config)
		if i := l.index(item.LineID); i >= 0 {
			l.items[i].Quantity += item.Quantity
			continue
		}
		l.items = append(l.items, item)
	}
}

// AddOrUpdate adds a configured product. Without an edit in progress the
// quantity accumulates into a line with the same identity. With an edit in
// progress the edited line is re-specified: kept in place with its quantity
// replaced when the identity is unchanged, otherwise removed and the new
// configuration merged or appended.
func (l *Ledger) AddOrUpdate(sel Selection, quantity int) error {
	if quantity <= 0 {
		l.logger.Warn("rejected cart add",
			zap.String("product_id", sel.ProductID),
			zap.Int("quantity", quantity),
			zap.Error(ErrInvalidQuantity))
		return ErrInvalidQuantity
	}
	cfg, ok := normalize(sel.Config)
	if !ok {
		l.logger.Warn("rejected cart add",
			zap.String("product_id", sel.ProductID),
			zap.Error(ErrInvalidSelection))
		return ErrInvalidSelection
	}
	if err := validate(cfg); err != nil {
		l.logger.Warn("rejected cart add", zap.String("product_id", sel.ProductID), zap.Error(err))
		return err
	}

	cfg = cloneConfig(cfg)
	line := LineItem{
		LineID:      LineID(sel.ProductID, cfg),
		ProductID:   sel.ProductID,
		ProductType: cfg.ProductType(),
		Name:        sel.Name,
		Config:      cfg,
		UnitPrice:   UnitPrice(cfg, sel.Price),
		Quantity:    quantity,
	}

	if l.editing == nil {
		if i := l.index(line.LineID); i >= 0 {
			l.items[i].Quantity += quantity
			l.commit(Notification{Event: QuantityUpdated, Name: l.items[i].Name, Quantity: l.items[i].Quantity})
			return nil
		}
		l.items = append(l.items, line)
		l.commit(Notification{Event: ItemAdded, Name: line.Name, Quantity: quantity})
		return nil
	}

	editedID := l.editing.LineID
	l.editing = nil

	if editedID == line.LineID {
		if i := l.index(editedID); i >= 0 {
			l.items[i] = line
		} else {
			l.items = append(l.items, line)
		}
		l.commit(Notification{Event: ItemUpdated, Name: line.Name, Quantity: line.Quantity})
		return nil
	}

	if i := l.index(editedID); i >= 0 {
		l.removeAt(i)
	}
	if i := l.index(line.LineID); i >= 0 {
		l.items[i].Quantity += quantity
		l.commit(Notification{Event: ItemUpdated, Name: l.items[i].Name, Quantity: l.items[i].Quantity})
		return nil
	}
	l.items = append(l.items, line)
	l.commit(Notification{Event: ItemUpdated, Name: line.Name, Quantity: line.Quantity})
	return nil
}

// Remove deletes a line. Removing an unknown line is a silent no-op.
func (l *Ledger) Remove(lineID string) bool {
	i := l.index(lineID)
	if i < 0 {
		return false
	}
	name := l.items[i].Name
	l.removeAt(i)
	if l.editing != nil && l.editing.LineID == lineID {
		l.editing = nil
	}
	l.commit(Notification{Event: ItemRemoved, Name: name})
	return true
}

// SetQuantity overwrites a line's quantity. A quantity of zero or less removes the line.
func (l *Ledger) SetQuantity(lineID string, quantity int) bool {
	if quantity <= 0 {
		return l.Remove(lineID)
	}
	i := l.index(lineID)
	if i < 0 {
		return false
	}
	l.items[i].Quantity = quantity
	l.commit(Notification{Event: QuantityUpdated, Name: l.items[i].Name, Quantity: quantity})
	return true
}

// Clear empties the cart and abandons any edit.
func (l *Ledger) Clear() {
	l.items = nil
	l.editing = nil
	l.commit(Notification{Event: CartCleared})
}

// BeginEdit points the editor at a line. Any edit already in progress is
// abandoned first; if the line does not exist the ledger stays idle.
func (l *Ledger) BeginEdit(lineID string) (Editing, bool) {
	l.editing = nil
	i := l.index(lineID)
	if i < 0 {
		return Editing{}, false
	}
	e := Editing{
		LineID:      l.items[i].LineID,
		ProductType: l.items[i].ProductType,
		ProductID:   l.items[i].ProductID,
	}
	l.editing = &e
	return e, true
}

// CancelEdit returns the editing pointer to idle without touching any line.
func (l *Ledger) CancelEdit() {
	l.editing = nil
}

// Editing returns the line being edited, if any.
func (l *Ledger) Editing() (Editing, bool) {
	if l.editing == nil {
		return Editing{}, false
	}
	return *l.editing, true
}

// Line returns a copy of the line with the given id.
func (l *Ledger) Line(lineID string) (LineItem, bool) {
	i := l.index(lineID)
	if i < 0 {
		return LineItem{}, false
	}
	return copyLine(l.items[i]), true
}

// Items returns a copy of the lines in display order.
func (l *Ledger) Items() []LineItem {
	out := make([]LineItem, len(l.items))
	for i, item := range l.items {
		out[i] = copyLine(item)
	}
	return out
}

// Total is the sum of unit price times quantity over all lines.
func (l *Ledger) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range l.items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// Count is the total number of units in the cart.
func (l *Ledger) Count() int {
	count := 0
	for _, item := range l.items {
		count += item.Quantity
	}
	return count
}

// Snapshot returns the items, derived totals and editing pointer.
func (l *Ledger) Snapshot() Snapshot {
	snap := Snapshot{
		Items: l.Items(),
		Total: l.Total(),
		Count: l.Count(),
	}
	if e, ok := l.Editing(); ok {
		snap.Editing = &e
	}
	return snap
}

func (l *Ledger) index(lineID string) int {
	for i := range l.items {
		if l.items[i].LineID == lineID {
			return i
		}
	}
	return -1
}

func (l *Ledger) removeAt(i int) {
	l.items = append(l.items[:i], l.items[i+1:]...)
}

// commit persists the items and then notifies. A failed save is logged and
// the in-memory state stays authoritative.
func (l *Ledger) commit(n Notification) {
	if l.store != nil {
		if err := l.store.Save(l.Items()); err != nil {
			l.logger.Warn("cart snapshot save failed", zap.Error(err))
		}
	}
	l.notifier.Notify(n)
}

func copyLine(item LineItem) LineItem {
	item.Config = cloneConfig(item.Config)
	return item
}
