// Package memstore provides the in-memory implementation of
// investigation.Store and investigation.Index. Entity collections are
// supplied at construction and held for the session; transactions and
// customers are immutable, alerts change only through whole-record swaps.
package memstore

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/linnemanlabs/risklens/internal/investigation"
)

// Store holds the session's entities behind one RWMutex. Reads return
// copies; the correlation index is id-based and resolved against live
// records under the same lock, so it can never be observed stale.
type Store struct {
	mu sync.RWMutex

	customers     map[string]*investigation.Customer
	customerOrder []string

	transactions map[string]*investigation.Transaction
	txnOrder     []string
	txnPos       map[string]int // transaction id -> collection position

	alerts     map[string]*investigation.Alert
	alertOrder []string

	// derived: customer id -> owned entity ids, in collection order
	txnsByCustomer   map[string][]string
	alertsByCustomer map[string][]string
}

// New builds a Store from the supplied collections, validating identity and
// referential invariants. Duplicate ids, dangling customer references,
// empty or cross-customer related-transaction sets, and out-of-domain enum
// values are rejected.
func New(customers []investigation.Customer, transactions []investigation.Transaction, alerts []investigation.Alert) (*Store, error) {
	s := &Store{
		customers:        make(map[string]*investigation.Customer, len(customers)),
		transactions:     make(map[string]*investigation.Transaction, len(transactions)),
		txnPos:           make(map[string]int, len(transactions)),
		alerts:           make(map[string]*investigation.Alert, len(alerts)),
		txnsByCustomer:   make(map[string][]string),
		alertsByCustomer: make(map[string][]string),
	}

	for i := range customers {
		c := customers[i]
		if c.ID == "" {
			return nil, fmt.Errorf("memstore: customer %d: empty id: %w", i, investigation.ErrInvalidInput)
		}
		if _, dup := s.customers[c.ID]; dup {
			return nil, fmt.Errorf("memstore: duplicate customer id %s: %w", c.ID, investigation.ErrDataIntegrity)
		}
		s.customers[c.ID] = &c
		s.customerOrder = append(s.customerOrder, c.ID)
	}

	for i := range transactions {
		t := transactions[i]
		if t.ID == "" {
			return nil, fmt.Errorf("memstore: transaction %d: empty id: %w", i, investigation.ErrInvalidInput)
		}
		if _, dup := s.transactions[t.ID]; dup {
			return nil, fmt.Errorf("memstore: duplicate transaction id %s: %w", t.ID, investigation.ErrDataIntegrity)
		}
		if _, ok := s.customers[t.CustomerID]; !ok {
			return nil, fmt.Errorf("memstore: transaction %s references unknown customer %s: %w",
				t.ID, t.CustomerID, investigation.ErrDataIntegrity)
		}
		if t.Amount.IsNegative() {
			return nil, fmt.Errorf("memstore: transaction %s: negative amount %s: %w",
				t.ID, t.Amount, investigation.ErrInvalidInput)
		}
		if !t.Type.Valid() {
			return nil, fmt.Errorf("memstore: transaction %s: unknown type %q: %w",
				t.ID, t.Type, investigation.ErrInvalidInput)
		}
		s.transactions[t.ID] = &t
		s.txnPos[t.ID] = len(s.txnOrder)
		s.txnOrder = append(s.txnOrder, t.ID)
		s.txnsByCustomer[t.CustomerID] = append(s.txnsByCustomer[t.CustomerID], t.ID)
	}

	for i := range alerts {
		a := alerts[i].Clone()
		if a.ID == "" {
			return nil, fmt.Errorf("memstore: alert %d: empty id: %w", i, investigation.ErrInvalidInput)
		}
		if _, dup := s.alerts[a.ID]; dup {
			return nil, fmt.Errorf("memstore: duplicate alert id %s: %w", a.ID, investigation.ErrDataIntegrity)
		}
		if _, ok := s.customers[a.CustomerID]; !ok {
			return nil, fmt.Errorf("memstore: alert %s references unknown customer %s: %w",
				a.ID, a.CustomerID, investigation.ErrDataIntegrity)
		}
		if !a.Status.Valid() {
			return nil, fmt.Errorf("memstore: alert %s: unknown status %q: %w",
				a.ID, a.Status, investigation.ErrInvalidInput)
		}
		if !a.Severity.Valid() {
			return nil, fmt.Errorf("memstore: alert %s: unknown severity %q: %w",
				a.ID, a.Severity, investigation.ErrInvalidInput)
		}
		if len(a.RelatedTransactionIDs) == 0 {
			return nil, fmt.Errorf("memstore: alert %s has no related transactions: %w",
				a.ID, investigation.ErrDataIntegrity)
		}
		for _, txnID := range a.RelatedTransactionIDs {
			t, ok := s.transactions[txnID]
			if !ok {
				return nil, fmt.Errorf("memstore: alert %s references unknown transaction %s: %w",
					a.ID, txnID, investigation.ErrDataIntegrity)
			}
			if t.CustomerID != a.CustomerID {
				return nil, fmt.Errorf("memstore: alert %s (customer %s) references transaction %s of customer %s: %w",
					a.ID, a.CustomerID, txnID, t.CustomerID, investigation.ErrDataIntegrity)
			}
		}
		s.alerts[a.ID] = &a
		s.alertOrder = append(s.alertOrder, a.ID)
		s.alertsByCustomer[a.CustomerID] = append(s.alertsByCustomer[a.CustomerID], a.ID)
	}

	return s, nil
}

// Customer retrieves a customer by id. Returns a copy.
func (s *Store) Customer(_ context.Context, id string) (*investigation.Customer, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.customers[id]
	if !ok {
		return nil, false, nil
	}
	cp := cloneCustomer(*c)
	return &cp, true, nil
}

// Customers returns a snapshot of the customer collection in load order.
func (s *Store) Customers(_ context.Context) ([]investigation.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]investigation.Customer, 0, len(s.customerOrder))
	for _, id := range s.customerOrder {
		out = append(out, cloneCustomer(*s.customers[id]))
	}
	return out, nil
}

// Transaction retrieves a transaction by id. Returns a copy.
func (s *Store) Transaction(_ context.Context, id string) (*investigation.Transaction, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.transactions[id]
	if !ok {
		return nil, false, nil
	}
	cp := *t
	return &cp, true, nil
}

// Transactions returns a snapshot of the transaction collection in load
// order.
func (s *Store) Transactions(_ context.Context) ([]investigation.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]investigation.Transaction, 0, len(s.txnOrder))
	for _, id := range s.txnOrder {
		out = append(out, *s.transactions[id])
	}
	return out, nil
}

// Alert retrieves an alert by id. Returns a deep copy.
func (s *Store) Alert(_ context.Context, id string) (*investigation.Alert, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.alerts[id]
	if !ok {
		return nil, false, nil
	}
	cp := a.Clone()
	return &cp, true, nil
}

// Alerts returns a snapshot of the alert collection in load order.
func (s *Store) Alerts(_ context.Context) ([]investigation.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]investigation.Alert, 0, len(s.alertOrder))
	for _, id := range s.alertOrder {
		out = append(out, s.alerts[id].Clone())
	}
	return out, nil
}

// ReplaceAlert atomically swaps the whole alert record. The customer binding
// and related-transaction set are fixed at creation; a replace that changes
// them is rejected before the swap.
func (s *Store) ReplaceAlert(_ context.Context, a *investigation.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.alerts[a.ID]
	if !ok {
		return fmt.Errorf("memstore: replace alert %s: %w", a.ID, investigation.ErrNotFound)
	}
	if a.CustomerID != cur.CustomerID {
		return fmt.Errorf("memstore: replace alert %s: customer binding changed: %w",
			a.ID, investigation.ErrDataIntegrity)
	}
	if !slices.Equal(a.RelatedTransactionIDs, cur.RelatedTransactionIDs) {
		return fmt.Errorf("memstore: replace alert %s: related transaction set changed: %w",
			a.ID, investigation.ErrDataIntegrity)
	}

	cp := a.Clone()
	s.alerts[a.ID] = &cp
	return nil
}

// TransactionsForAlert resolves the alert's related transaction ids in
// transaction-collection order. A related id that fails to resolve is a
// data-integrity error, never silently dropped.
func (s *Store) TransactionsForAlert(_ context.Context, alertID string) ([]investigation.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.alerts[alertID]
	if !ok {
		return nil, fmt.Errorf("memstore: transactions for alert %s: %w", alertID, investigation.ErrNotFound)
	}

	out := make([]investigation.Transaction, 0, len(a.RelatedTransactionIDs))
	for _, id := range a.RelatedTransactionIDs {
		t, ok := s.transactions[id]
		if !ok {
			return nil, fmt.Errorf("memstore: alert %s references unknown transaction %s: %w",
				alertID, id, investigation.ErrDataIntegrity)
		}
		out = append(out, *t)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return s.txnPos[out[i].ID] < s.txnPos[out[j].ID]
	})
	return out, nil
}

// AlertsForCustomer returns every alert raised against the customer, in
// load order, reflecting the latest committed mutations.
func (s *Store) AlertsForCustomer(_ context.Context, customerID string) ([]investigation.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.customers[customerID]; !ok {
		return nil, fmt.Errorf("memstore: alerts for customer %s: %w", customerID, investigation.ErrNotFound)
	}

	ids := s.alertsByCustomer[customerID]
	out := make([]investigation.Alert, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.alerts[id].Clone())
	}
	return out, nil
}

// TransactionsForCustomer returns every transaction booked by the customer,
// in collection order.
func (s *Store) TransactionsForCustomer(_ context.Context, customerID string) ([]investigation.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.customers[customerID]; !ok {
		return nil, fmt.Errorf("memstore: transactions for customer %s: %w", customerID, investigation.ErrNotFound)
	}

	ids := s.txnsByCustomer[customerID]
	out := make([]investigation.Transaction, 0, len(ids))
	for _, id := range ids {
		out = append(out, *s.transactions[id])
	}
	return out, nil
}

func cloneCustomer(c investigation.Customer) investigation.Customer {
	cp := c
	if c.BeneficialOwners != nil {
		cp.BeneficialOwners = append([]string(nil), c.BeneficialOwners...)
	}
	return cp
}
