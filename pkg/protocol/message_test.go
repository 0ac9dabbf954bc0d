package protocol

import (
	"errors"
	"testing"

	"github.com/teslashibe/go-moto-ergo/pkg/analysis"
	"github.com/teslashibe/go-moto-ergo/pkg/comfort"
)

func TestNewMessage(t *testing.T) {
	tests := []struct {
		name    string
		msgType MessageType
		data    interface{}
		wantErr bool
	}{
		{
			name:    "analyze message",
			msgType: TypeAnalyze,
			data:    analysis.Input{RidingStyle: comfort.Touring},
		},
		{
			name:    "nil data",
			msgType: TypePing,
			data:    nil,
		},
		{
			name:    "unmarshalable data",
			msgType: TypeReport,
			data:    make(chan int),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := NewMessage(tt.msgType, tt.data)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewMessage() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if msg.Type != tt.msgType {
				t.Errorf("NewMessage() type = %v, want %v", msg.Type, tt.msgType)
			}
			if msg.Timestamp == 0 {
				t.Error("NewMessage() timestamp should be set")
			}
		})
	}
}

func TestAnalyzeRoundTrip(t *testing.T) {
	in := analysis.Input{Mode: analysis.ModeManual, RidingStyle: comfort.Sport}
	msg, err := NewAnalyzeMessage(42, in)
	if err != nil {
		t.Fatalf("NewAnalyzeMessage: %v", err)
	}

	data, err := msg.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}

	parsed, err := ParseMessage(data)
	if err != nil {
		t.Fatalf("ParseMessage: %v", err)
	}
	if parsed.Type != TypeAnalyze || parsed.Seq != 42 {
		t.Errorf("parsed = %+v", parsed)
	}

	var got analysis.Input
	if err := parsed.ParseData(&got); err != nil {
		t.Fatalf("ParseData: %v", err)
	}
	if got.Mode != analysis.ModeManual || got.RidingStyle != comfort.Sport {
		t.Errorf("input = %+v", got)
	}
}

func TestParseMessageErrors(t *testing.T) {
	if _, err := ParseMessage([]byte("not json")); err == nil {
		t.Error("expected error for invalid JSON")
	}
	if _, err := ParseMessage([]byte(`{"data": {}}`)); err == nil {
		t.Error("expected error for missing type")
	}
}

func TestNewErrorMessage(t *testing.T) {
	msg := NewErrorMessage(7, errors.New("boom"))
	if msg.Type != TypeError || msg.Seq != 7 {
		t.Errorf("msg = %+v", msg)
	}
	var data ErrorData
	if err := msg.ParseData(&data); err != nil || data.Error != "boom" {
		t.Errorf("ParseData = %+v, %v", data, err)
	}
}
