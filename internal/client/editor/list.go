package editor

import (
	"sync"

	"github.com/ErlanBelekov/shiptrack/internal/client/api"
)

// ShipmentList is the client's shared view of shipments. Safe for concurrent use.
type ShipmentList struct {
	mu    sync.RWMutex
	items []api.Shipment
}

func NewShipmentList(items ...api.Shipment) *ShipmentList {
	return &ShipmentList{items: append([]api.Shipment(nil), items...)}
}

// Merge replaces the entry with the same ID, or appends s.
func (l *ShipmentList) Merge(s api.Shipment) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i := range l.items {
		if l.items[i].ID == s.ID {
			l.items[i] = s
			return
		}
	}
	l.items = append(l.items, s)
}

// Replace swaps the whole list, e.g. after a fresh ListShipments call.
func (l *ShipmentList) Replace(items []api.Shipment) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = append([]api.Shipment(nil), items...)
}

// Items returns a copy.
func (l *ShipmentList) Items() []api.Shipment {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]api.Shipment(nil), l.items...)
}
