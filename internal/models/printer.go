package models

import "time"

// PrinterStatus represents the status of a receipt printer worker
type PrinterStatus string

const (
	PrinterOnline  PrinterStatus = "online"
	PrinterOffline PrinterStatus = "offline"
)

// Printer represents a registered receipt printer worker
type Printer struct {
	ID              int           `json:"id,omitempty" db:"id"`
	CreatedAt       time.Time     `json:"created_at,omitempty" db:"created_at"`
	Name            string        `json:"printer_name" db:"name"`
	Status          PrinterStatus `json:"status" db:"status"`
	LastSeen        time.Time     `json:"last_seen" db:"last_seen"`
	ReceiptsPrinted int           `json:"receipts_printed" db:"receipts_printed"`
}

// PrinterStatusResponse represents the response for printer status queries
type PrinterStatusResponse struct {
	PrinterName     string    `json:"printer_name"`
	Status          string    `json:"status"`
	ReceiptsPrinted int       `json:"receipts_printed"`
	LastSeen        time.Time `json:"last_seen"`
}

// IsOnline checks if a printer is considered online based on its heartbeat.
func (p *Printer) IsOnline(heartbeatInterval time.Duration) bool {
	if p.Status == PrinterOffline {
		return false
	}

	// Consider the printer offline if last seen more than 2 heartbeats ago
	threshold := 2 * heartbeatInterval
	return time.Since(p.LastSeen) <= threshold
}
