// Package events holds what the status brokers share.
package events

import "clientportal/internal/domain"

// Offer puts event on ch without blocking. When ch is full the oldest queued
// event is discarded, so the latest status for a slot always reaches the
// subscriber. ch must have a single sender. Reports whether an event was dropped.
func Offer(ch chan domain.StatusEvent, event domain.StatusEvent) bool {
	select {
	case ch <- event:
		return false
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- event:
	default:
	}
	return true
}
