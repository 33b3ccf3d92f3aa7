package gophr

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/seconds-app/courier-bridge/pkg/courier"
)

// Webhook callback types Gophr sends.
const (
	WebhookStatusUpdate = "status_update"
	WebhookETAUpdate    = "eta_update"
)

// flexBool decodes the loose boolean encodings Gophr sends: true/false, 0/1,
// and their quoted string forms.
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	s := string(bytes.Trim(data, `"`))
	switch s {
	case "true":
		*b = true
		return nil
	case "false", "null", "":
		*b = false
		return nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid finished flag %s", data)
	}
	*b = n != 0
	return nil
}

// Webhook is the Gophr callback shape. Gophr echoes the external_id the job
// was created with, so events correlate straight back to the job reference.
type Webhook struct {
	APIKey      string   `json:"api_key"`
	WebhookType string   `json:"webhook_type"` // "status_update" or "eta_update"
	Status      string   `json:"status"`
	ExternalID  string   `json:"external_id"`
	JobID       string   `json:"job_id"`
	Finished    flexBool `json:"finished"`
	PickupETA   string   `json:"pickup_eta,omitempty"`
	DeliveryETA string   `json:"delivery_eta,omitempty"`
	CourierName string   `json:"courier_name,omitempty"`
}

// ParseWebhook decodes a Gophr callback body.
func ParseWebhook(body []byte) (*Webhook, error) {
	var w Webhook
	if err := json.Unmarshal(body, &w); err != nil {
		return nil, fmt.Errorf("failed to decode gophr webhook: %w", err)
	}
	if w.WebhookType != WebhookStatusUpdate && w.WebhookType != WebhookETAUpdate {
		return nil, fmt.Errorf("unrecognised gophr webhook type %q", w.WebhookType)
	}
	return &w, nil
}

// Verify checks the api_key field Gophr includes as shared-secret
// authentication.
func (w *Webhook) Verify(apiKey string) bool {
	return apiKey == "" || w.APIKey == apiKey
}

// ToEvent normalizes the callback into a canonical event. ETA updates carry
// the eta kind so they can never transition job status.
func (w *Webhook) ToEvent() *courier.Event {
	kind := courier.EventStatus
	if w.WebhookType == WebhookETAUpdate {
		kind = courier.EventETA
	}

	return &courier.Event{
		Provider:      providerName,
		Kind:          kind,
		Reference:     w.ExternalID,
		ProviderJobID: w.JobID,
		NativeStatus:  w.Status,
		Finished:      bool(w.Finished),
		PickupETA:     parseTime(w.PickupETA),
		DropoffETA:    parseTime(w.DeliveryETA),
		Driver:        courier.DriverInfo{Name: w.CourierName},
	}
}
