package investigation

import "context"

// Store holds the session's entity collections. Lookups return copies;
// list methods return snapshots in load order. ReplaceAlert is the only
// mutation the store accepts, and only the Service calls it.
type Store interface {
	Customer(ctx context.Context, id string) (*Customer, bool, error)
	Customers(ctx context.Context) ([]Customer, error)
	Transaction(ctx context.Context, id string) (*Transaction, bool, error)
	Transactions(ctx context.Context) ([]Transaction, error)
	Alert(ctx context.Context, id string) (*Alert, bool, error)
	Alerts(ctx context.Context) ([]Alert, error)

	// ReplaceAlert atomically swaps the whole alert record. Returns
	// ErrNotFound if the id is unknown. A reader never observes a partial
	// write or a stale index entry for the replaced alert.
	ReplaceAlert(ctx context.Context, a *Alert) error
}

// Index answers correlation queries without rescanning the collections.
// Results always reflect the latest committed mutation.
type Index interface {
	// TransactionsForAlert resolves the alert's related transaction ids in
	// transaction-collection order. Returns ErrNotFound for an unknown
	// alert and ErrDataIntegrity if a related id does not resolve.
	TransactionsForAlert(ctx context.Context, alertID string) ([]Transaction, error)

	// AlertsForCustomer returns every alert raised against the customer.
	AlertsForCustomer(ctx context.Context, customerID string) ([]Alert, error)

	// TransactionsForCustomer returns every transaction booked by the
	// customer, in collection order.
	TransactionsForCustomer(ctx context.Context, customerID string) ([]Transaction, error)
}
