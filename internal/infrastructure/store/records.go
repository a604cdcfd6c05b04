package store

import (
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a referenced row does not exist
	ErrNotFound = errors.New("record not found")
	// ErrOverflow is returned when a quantity total leaves the int64 range
	ErrOverflow = errors.New("stock total out of range")
)

// Event kinds stored on the ledger
const (
	KindRecord     = "record"
	KindWithdrawal = "withdrawal"
)

// Material is a registered, trackable item
type Material struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	InitialStock int64     `json:"initial_stock"`
	Unit         string    `json:"unit"`
	CreatedAt    time.Time `json:"created_at"`
}

// StockEvent is an immutable ledger entry for one material on one date
type StockEvent struct {
	ID         int64     `json:"id"`
	MaterialID int64     `json:"material_id"`
	Date       time.Time `json:"date"`
	Produced   int64     `json:"produced"`
	Sold       int64     `json:"sold"`
	Kind       string    `json:"kind"`
	CreatedAt  time.Time `json:"created_at"`
}

// Totals holds the summed quantities of a set of ledger entries
type Totals struct {
	Produced int64
	Sold     int64
}

// Add returns t with one more entry applied
func (t Totals) Add(produced, sold int64) (Totals, error) {
	p, err := CheckedAdd(t.Produced, produced)
	if err != nil {
		return t, err
	}
	s, err := CheckedAdd(t.Sold, sold)
	if err != nil {
		return t, err
	}
	return Totals{Produced: p, Sold: s}, nil
}

func CheckedAdd(a, b int64) (int64, error) {
	c := a + b
	if (c > a) != (b > 0) {
		return 0, ErrOverflow
	}
	return c, nil
}

func CheckedSub(a, b int64) (int64, error) {
	c := a - b
	if (c < a) != (b > 0) {
		return 0, ErrOverflow
	}
	return c, nil
}

// MaterialTotals pairs a material with the totals over all of its events
type MaterialTotals struct {
	Material
	Totals
}

// PeriodTotals is one aggregated report row, grouped by material name and unit
type PeriodTotals struct {
	Name     string
	Unit     string
	Produced int64
	Sold     int64
}
