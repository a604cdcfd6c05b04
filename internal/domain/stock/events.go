package stock

import "time"

const (
	EventStockRecorded  = "StockRecorded"
	EventStockWithdrawn = "StockWithdrawn"
)

type StockRecorded struct {
	MaterialID int64     `json:"material_id"`
	EventID    int64     `json:"event_id"`
	Date       string    `json:"date"`
	Produced   int64     `json:"produced"`
	Sold       int64     `json:"sold"`
	RecordedAt time.Time `json:"recorded_at"`
}

type StockWithdrawn struct {
	MaterialID     int64     `json:"material_id"`
	EventID        int64     `json:"event_id"`
	Date           string    `json:"date"`
	Quantity       int64     `json:"quantity"`
	RemainingStock int64     `json:"remaining_stock"`
	WithdrawnAt    time.Time `json:"withdrawn_at"`
}
