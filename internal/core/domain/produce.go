package domain

import "time"

// Transaction is a single custody event in a produce's history. From is nil
// for the genesis (registration) event. Immutable once appended; append
// order is chronological order.
type Transaction struct {
	From      *string   `json:"from,omitempty"`
	To        string    `json:"to"`
	Timestamp time.Time `json:"timestamp"`
	Details   string    `json:"details"`
	NewPrice  *uint64   `json:"new_price,omitempty"`
}

// Produce is the ledger-owned aggregate tracked through the custody chain.
// Created by a farmer, mutated only by transfers, never deleted.
type Produce struct {
	ID             uint64        `json:"id"`
	ProduceType    string        `json:"produce_type"`
	Origin         string        `json:"origin"`
	Quality        string        `json:"quality"`
	Price          uint64        `json:"price"`
	CurrentOwner   string        `json:"current_owner"`
	RegisteredTime time.Time     `json:"registered_time"`
	History        []Transaction `json:"history"`
}

// LastTo returns the most recent custody holder recorded in history, or the
// empty string when history is empty.
func (p *Produce) LastTo() string {
	if len(p.History) == 0 {
		return ""
	}
	return p.History[len(p.History)-1].To
}
