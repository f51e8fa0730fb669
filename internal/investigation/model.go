package investigation

import (
	"slices"

	"github.com/shopspring/decimal"
)

// RiskLevel grades customers and alerts.
type RiskLevel string

const (
	RiskLow      RiskLevel = "Low"
	RiskMedium   RiskLevel = "Medium"
	RiskHigh     RiskLevel = "High"
	RiskCritical RiskLevel = "Critical"
)

// RiskLevels is the fixed histogram bucket order for severity rollups.
var RiskLevels = []RiskLevel{RiskLow, RiskMedium, RiskHigh, RiskCritical}

// Valid reports whether r is a recognized risk level.
func (r RiskLevel) Valid() bool {
	return slices.Contains(RiskLevels, r)
}

// TransactionType classifies how money moved.
type TransactionType string

const (
	TypeWireTransfer   TransactionType = "Wire Transfer"
	TypeCashDeposit    TransactionType = "Cash Deposit"
	TypeACH            TransactionType = "ACH"
	TypeATMWithdrawal  TransactionType = "ATM Withdrawal"
	TypeCryptoExchange TransactionType = "Crypto Exchange"
)

// TransactionTypes lists every recognized transaction type.
var TransactionTypes = []TransactionType{
	TypeWireTransfer,
	TypeCashDeposit,
	TypeACH,
	TypeATMWithdrawal,
	TypeCryptoExchange,
}

// Valid reports whether t is a recognized transaction type.
func (t TransactionType) Valid() bool {
	return slices.Contains(TransactionTypes, t)
}

// AlertStatus tracks where an alert is in its investigation lifecycle.
type AlertStatus string

const (
	// StatusNew means triggered upstream, not yet picked up by an analyst.
	StatusNew AlertStatus = "New"

	// StatusInProgress means an analyst is actively investigating.
	StatusInProgress AlertStatus = "In Progress"

	// StatusFalsePositive means the activity was explained as benign.
	StatusFalsePositive AlertStatus = "False Positive"

	// StatusEscalatedSAR means a Suspicious Activity Report was filed.
	StatusEscalatedSAR AlertStatus = "Escalated (SAR Filed)"

	// StatusClosed means the case was concluded without escalation.
	StatusClosed AlertStatus = "Closed"
)

// AlertStatuses lists every recognized alert status.
var AlertStatuses = []AlertStatus{
	StatusNew,
	StatusInProgress,
	StatusFalsePositive,
	StatusEscalatedSAR,
	StatusClosed,
}

// Valid reports whether s is a recognized alert status.
func (s AlertStatus) Valid() bool {
	return slices.Contains(AlertStatuses, s)
}

// Terminal reports whether s concludes an investigation. Terminal alerts can
// only be closed or explicitly re-opened to In Progress.
func (s AlertStatus) Terminal() bool {
	return s == StatusFalsePositive || s == StatusEscalatedSAR || s == StatusClosed
}

// CustomerType distinguishes natural persons from legal entities.
type CustomerType string

const (
	CustomerIndividual CustomerType = "Individual"
	CustomerEntity     CustomerType = "Entity"
)

// Customer is a KYC-profiled account holder. Customers are created at data
// load and updated only by out-of-scope review processes.
type Customer struct {
	ID             string       `json:"id"`
	Name           string       `json:"name"`
	Type           CustomerType `json:"type"`
	RiskLevel      RiskLevel    `json:"riskLevel"`
	Occupation     string       `json:"occupation"`
	Country        string       `json:"country"`
	PEPStatus      bool         `json:"pepStatus"`
	KYCVerified    bool         `json:"kycVerified"`
	LastReviewDate string       `json:"lastReviewDate"`

	// BeneficialOwners is populated for entity customers only.
	BeneficialOwners []string `json:"beneficialOwners,omitempty"`
}

// Transaction is a single movement of funds, immutable after load. Date is a
// "YYYY-MM-DD HH:MM" string so chronological order equals lexicographic
// order.
type Transaction struct {
	ID                     string          `json:"id"`
	CustomerID             string          `json:"customerId"`
	Date                   string          `json:"date"`
	Amount                 decimal.Decimal `json:"amount"`
	Currency               string          `json:"currency"`
	Type                   TransactionType `json:"type"`
	CounterpartyCountry    string          `json:"counterpartyCountry"`
	MerchantOrCounterparty string          `json:"merchantOrCounterparty"`
	Flagged                bool            `json:"flagged,omitempty"`
}

// Alert is a detection hit raised upstream against a customer. Status and
// analyst notes are the only fields that change after creation, and only
// through the Service. CustomerName is denormalized at creation time and may
// drift from the live customer record.
type Alert struct {
	ID                    string      `json:"id"`
	CustomerID            string      `json:"customerId"`
	CustomerName          string      `json:"customerName"`
	TriggerDate           string      `json:"triggerDate"`
	RuleName              string      `json:"ruleName"`
	Severity              RiskLevel   `json:"severity"`
	Status                AlertStatus `json:"status"`
	AnalystNotes          []string    `json:"analystNotes"`
	RelatedTransactionIDs []string    `json:"relatedTransactionIds"`
}

// Clone returns a deep copy safe to hand across the store boundary.
func (a Alert) Clone() Alert {
	cp := a
	cp.AnalystNotes = slices.Clone(a.AnalystNotes)
	cp.RelatedTransactionIDs = slices.Clone(a.RelatedTransactionIDs)
	return cp
}
