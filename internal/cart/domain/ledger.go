package domain

// Ledger is the ordered list of cart entries. A Ledger value is never mutated
// in place: Apply always builds a new backing array.
type Ledger struct {
	entries []Entry
}

// Action is a ledger transition. The set is closed: Replace, Upsert,
// SetQuantity and Remove.
type Action interface {
	apply(entries []Entry) []Entry
}

type replaceAction struct{ entries []Entry }

type upsertAction struct {
	product Product
	delta   int
}

type setQuantityAction struct {
	productID string
	quantity  int
}

type removeAction struct{ productID string }

// Replace discards the current entries. Non-positive quantities are dropped
// and duplicate product ids are merged so a bad remote payload cannot break
// the ledger invariants.
func Replace(entries []Entry) Action { return replaceAction{entries: entries} }

// Upsert adds delta to an existing entry or appends a new one. Callers pass delta >= 1.
func Upsert(p Product, delta int) Action { return upsertAction{product: p, delta: delta} }

// SetQuantity sets an absolute quantity; quantity <= 0 removes the entry.
func SetQuantity(productID string, quantity int) Action {
	return setQuantityAction{productID: productID, quantity: quantity}
}

func Remove(productID string) Action { return removeAction{productID: productID} }

func NewLedger(entries ...Entry) Ledger {
	return Ledger{}.Apply(Replace(entries))
}

func (l Ledger) Apply(a Action) Ledger {
	if a == nil {
		return l
	}
	return Ledger{entries: a.apply(l.entries)}
}

// Entries returns a copy of the entries in insertion order.
func (l Ledger) Entries() []Entry {
	out := make([]Entry, len(l.entries))
	for i, e := range l.entries {
		out[i] = Entry{Product: e.Product.Clone(), Quantity: e.Quantity}
	}
	return out
}

func (l Ledger) Len() int { return len(l.entries) }

func (l Ledger) Quantity(productID string) (int, bool) {
	if i := indexOf(l.entries, productID); i >= 0 {
		return l.entries[i].Quantity, true
	}
	return 0, false
}

func (l Ledger) Contains(productID string) bool {
	return indexOf(l.entries, productID) >= 0
}

func (l Ledger) Entry(productID string) (Entry, bool) {
	if i := indexOf(l.entries, productID); i >= 0 {
		e := l.entries[i]
		return Entry{Product: e.Product.Clone(), Quantity: e.Quantity}, true
	}
	return Entry{}, false
}

func (a replaceAction) apply(_ []Entry) []Entry {
	out := make([]Entry, 0, len(a.entries))
	for _, e := range a.entries {
		if e.Quantity <= 0 {
			continue
		}
		if i := indexOf(out, e.Product.ID); i >= 0 {
			out[i].Quantity += e.Quantity
			continue
		}
		out = append(out, Entry{Product: e.Product.Clone(), Quantity: e.Quantity})
	}
	return out
}

func (a upsertAction) apply(entries []Entry) []Entry {
	out := make([]Entry, len(entries), len(entries)+1)
	copy(out, entries)
	if i := indexOf(out, a.product.ID); i >= 0 {
		out[i].Quantity += a.delta
		if out[i].Quantity <= 0 {
			return append(out[:i], out[i+1:]...)
		}
		return out
	}
	if a.delta <= 0 {
		return out
	}
	return append(out, Entry{Product: a.product.Clone(), Quantity: a.delta})
}

func (a setQuantityAction) apply(entries []Entry) []Entry {
	if a.quantity <= 0 {
		return removeAction{productID: a.productID}.apply(entries)
	}
	out := make([]Entry, len(entries))
	copy(out, entries)
	if i := indexOf(out, a.productID); i >= 0 {
		out[i].Quantity = a.quantity
	}
	return out
}

func (a removeAction) apply(entries []Entry) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.Product.ID != a.productID {
			out = append(out, e)
		}
	}
	return out
}

func indexOf(entries []Entry, productID string) int {
	for i := range entries {
		if entries[i].Product.ID == productID {
			return i
		}
	}
	return -1
}
