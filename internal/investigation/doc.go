// Package investigation provides the business boundary for RiskLens's AML
// case work. It defines the entity model (customers, transactions, alerts),
// the Store and Index contracts, the Service (alert lifecycle: status machine
// and append-only notes), the stateless transaction query engine, and the
// dashboard aggregation rollups.
package investigation
