package ecofleet

import (
	"encoding/json"
	"fmt"

	"github.com/seconds-app/courier-bridge/pkg/courier"
)

// Webhook is the Ecofleet callback shape, correlated by Ecofleet's own order
// id.
type Webhook struct {
	Status   string `json:"status"`
	OrderID  string `json:"orderId"`
	SignedBy string `json:"signedBy,omitempty"`
	ETA      string `json:"eta,omitempty"`
}

// ParseWebhook decodes an Ecofleet callback body.
func ParseWebhook(body []byte) (*Webhook, error) {
	var w Webhook
	if err := json.Unmarshal(body, &w); err != nil {
		return nil, fmt.Errorf("failed to decode ecofleet webhook: %w", err)
	}
	if w.OrderID == "" {
		return nil, fmt.Errorf("ecofleet webhook missing orderId")
	}
	return &w, nil
}

// ToEvent normalizes the callback into a canonical event.
func (w *Webhook) ToEvent() *courier.Event {
	return &courier.Event{
		Provider:      providerName,
		Kind:          courier.EventStatus,
		ProviderJobID: w.OrderID,
		NativeStatus:  w.Status,
		DropoffETA:    parseTime(w.ETA),
	}
}
