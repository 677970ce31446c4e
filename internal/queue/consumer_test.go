package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/iliyamo/septic-crm/internal/model"
)

func TestHandleMessageDeliversEvent(t *testing.T) {
	email := "jane@example.com"
	lead := model.Lead{ID: "l1", Name: "Jane", Email: &email, Stage: "lead",
		CreatedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	body, err := json.Marshal(NewLeadCreatedEvent(lead))
	if err != nil {
		t.Fatal(err)
	}

	var got LeadCreatedEvent
	err = handleMessage(context.Background(), body, func(_ context.Context, ev LeadCreatedEvent) error {
		got = ev
		return nil
	})
	if err != nil {
		t.Fatalf("handleMessage: %v", err)
	}
	back := got.Lead()
	if back.ID != "l1" || back.Name != "Jane" || back.Email == nil || *back.Email != email {
		t.Errorf("round-tripped lead = %+v", back)
	}
	if !back.CreatedAt.Equal(lead.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", back.CreatedAt, lead.CreatedAt)
	}
}

func TestHandleMessageRejectsBadInput(t *testing.T) {
	never := func(context.Context, LeadCreatedEvent) error {
		t.Error("handler called for invalid message")
		return nil
	}
	if err := handleMessage(context.Background(), []byte("{"), never); err == nil {
		t.Error("malformed JSON accepted")
	}
	if err := handleMessage(context.Background(), []byte(`{"name":"x"}`), never); err == nil {
		t.Error("event without lead_id accepted")
	}
}

func TestHandleMessagePropagatesDeliveryError(t *testing.T) {
	boom := errors.New("smtp down")
	err := handleMessage(context.Background(), []byte(`{"lead_id":"l1","name":"x"}`),
		func(context.Context, LeadCreatedEvent) error { return boom })
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want wrapped %v", err, boom)
	}
}
