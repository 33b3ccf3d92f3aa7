package streetstream

import (
	"encoding/json"
	"fmt"

	"github.com/seconds-app/courier-bridge/pkg/courier"
)

// Webhook is the StreetStream callback shape. StreetStream does not echo the
// client reference, so events correlate by its own job id.
type Webhook struct {
	Status string `json:"status"`
	JobID  string `json:"jobId"`
}

// ParseWebhook decodes a StreetStream callback body.
func ParseWebhook(body []byte) (*Webhook, error) {
	var w Webhook
	if err := json.Unmarshal(body, &w); err != nil {
		return nil, fmt.Errorf("failed to decode street_stream webhook: %w", err)
	}
	if w.JobID == "" {
		return nil, fmt.Errorf("street_stream webhook missing jobId")
	}
	return &w, nil
}

// ToEvent normalizes the callback into a canonical event.
func (w *Webhook) ToEvent() *courier.Event {
	return &courier.Event{
		Provider:      providerName,
		Kind:          courier.EventStatus,
		ProviderJobID: w.JobID,
		NativeStatus:  w.Status,
	}
}
