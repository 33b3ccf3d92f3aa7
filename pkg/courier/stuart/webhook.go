package stuart

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/seconds-app/courier-bridge/pkg/courier"
)

// Webhook is the Stuart delivery-update callback shape: a job or delivery
// scoped event wrapping the changed record.
type Webhook struct {
	Event string      `json:"event"` // "job" or "delivery"
	Type  string      `json:"type"`  // "create" or "update"
	Data  WebhookData `json:"data"`
}

// WebhookData carries the changed job/delivery fields.
type WebhookData struct {
	ID              int64          `json:"id"`
	JobID           int64          `json:"job_id,omitempty"`
	Status          string         `json:"status"`
	ClientReference string         `json:"client_reference,omitempty"`
	ETAToDestination string        `json:"eta_to_destination,omitempty"`
	Driver          *WebhookDriver `json:"driver,omitempty"`
}

// WebhookDriver is the assigned courier block on delivery events.
type WebhookDriver struct {
	DisplayName   string `json:"display_name"`
	Phone         string `json:"phone"`
	TransportType string `json:"transport_type"`
}

// ParseWebhook decodes a Stuart callback body.
func ParseWebhook(body []byte) (*Webhook, error) {
	var w Webhook
	if err := json.Unmarshal(body, &w); err != nil {
		return nil, fmt.Errorf("failed to decode stuart webhook: %w", err)
	}
	if w.Event != "job" && w.Event != "delivery" {
		return nil, fmt.Errorf("unrecognised stuart event %q", w.Event)
	}
	return &w, nil
}

// ToEvent normalizes the callback into a canonical event. Delivery events
// correlate by the echoed client reference; job events by Stuart's own job
// id.
func (w *Webhook) ToEvent() *courier.Event {
	ev := &courier.Event{
		Provider:     providerName,
		Kind:         courier.EventStatus,
		NativeStatus: w.Data.Status,
	}

	if w.Data.ClientReference != "" {
		ev.Reference = w.Data.ClientReference
	} else {
		jobID := w.Data.JobID
		if jobID == 0 {
			jobID = w.Data.ID
		}
		ev.ProviderJobID = strconv.FormatInt(jobID, 10)
	}

	if eta := parseTime(w.Data.ETAToDestination); eta != nil {
		ev.DropoffETA = eta
	}
	if w.Data.Driver != nil {
		ev.Driver = courier.DriverInfo{
			Name:      w.Data.Driver.DisplayName,
			Phone:     w.Data.Driver.Phone,
			Transport: w.Data.Driver.TransportType,
		}
	}
	return ev
}
