package kafka

import (
	"encoding/json"
	"testing"

	"github.com/Fe2Far/fiap-challenge4/pkg/common/models"
)

func TestBuildMessageCarriesEventHeaders(t *testing.T) {
	msg, event, err := buildMessage(models.EventDiagnosisCompleted, "diagnosis-service", map[string]interface{}{"label": "Normal_Weight"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(msg.Key) != event.ID {
		t.Fatalf("expected key %s, got %s", event.ID, msg.Key)
	}
	if len(msg.Headers) != 2 || string(msg.Headers[0].Value) != models.EventDiagnosisCompleted {
		t.Fatalf("unexpected headers %+v", msg.Headers)
	}

	var decoded models.Event
	if err := json.Unmarshal(msg.Value, &decoded); err != nil {
		t.Fatalf("payload is not an event: %v", err)
	}
	if decoded.Data["label"] != "Normal_Weight" {
		t.Fatalf("expected label in payload, got %v", decoded.Data)
	}
}
