package web

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	gws "github.com/gorilla/websocket"
	"github.com/teslashibe/go-moto-ergo/pkg/analysis"
	"github.com/teslashibe/go-moto-ergo/pkg/calibration"
	"github.com/teslashibe/go-moto-ergo/pkg/comfort"
	"github.com/teslashibe/go-moto-ergo/pkg/comparison"
	"github.com/teslashibe/go-moto-ergo/pkg/ergonomics"
	"github.com/teslashibe/go-moto-ergo/pkg/geometry"
	"github.com/teslashibe/go-moto-ergo/pkg/protocol"
	"github.com/teslashibe/go-moto-ergo/pkg/rider"
)

func sampleInput() analysis.Input {
	return analysis.Input{
		Rider: rider.Profile{HeightMM: 1750},
		Primary: analysis.Bike{
			Label:    "Naked",
			TireSpec: "180/55 ZR17",
			Calibration: calibration.CalibrationPoints{
				Top: geometry.Ref(400, 600),
				Bot: geometry.Ref(400, 1200),
			},
			Markers: ergonomics.MarkerSet{
				Seat: geometry.Ref(500, 500),
				Peg:  geometry.Ref(550, 900),
				Bar:  geometry.Ref(900, 300),
			},
		},
	}
}

func doJSON(t *testing.T, app *fiber.App, method, target string, body interface{}) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("Request error: %v", err)
	}
	return resp
}

func decode(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode: %v", err)
	}
}

func TestHealth(t *testing.T) {
	s := NewServer(Options{Version: "1.2.3"})
	resp := doJSON(t, s.App(), "GET", "/health", nil)
	if resp.StatusCode != 200 {
		t.Fatalf("Status = %d, want 200", resp.StatusCode)
	}
	var body map[string]interface{}
	decode(t, resp, &body)
	if body["status"] != "ok" || body["version"] != "1.2.3" {
		t.Errorf("body = %v", body)
	}
}

func TestTire(t *testing.T) {
	s := NewServer(Options{})
	tests := []struct {
		name     string
		query    string
		status   int
		diameter float64
	}{
		{"valid", "/api/tire?spec=190/50%20ZR17", 200, 621.8},
		{"no construction letter", "/api/tire?spec=120/70-17", 200, 599.8},
		{"garbage", "/api/tire?spec=abc", 400, 0},
		{"missing", "/api/tire", 400, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doJSON(t, s.App(), "GET", tt.query, nil)
			if resp.StatusCode != tt.status {
				t.Fatalf("Status = %d, want %d", resp.StatusCode, tt.status)
			}
			if tt.status != 200 {
				return
			}
			var body TireResponse
			decode(t, resp, &body)
			if d := body.OuterDiameterMM - tt.diameter; d > 1e-9 || d < -1e-9 {
				t.Errorf("OuterDiameterMM = %v, want %v", body.OuterDiameterMM, tt.diameter)
			}
		})
	}
}

func TestZones(t *testing.T) {
	s := NewServer(Options{DefaultStyle: comfort.Touring})

	resp := doJSON(t, s.App(), "GET", "/api/zones", nil)
	var all struct {
		DefaultStyle comfort.RidingStyle                               `json:"default_style"`
		Styles       map[comfort.RidingStyle]map[comfort.AngleType]any `json:"styles"`
	}
	decode(t, resp, &all)
	if all.DefaultStyle != comfort.Touring {
		t.Errorf("default_style = %s, want touring", all.DefaultStyle)
	}
	if len(all.Styles) != len(comfort.RidingStyles) {
		t.Errorf("styles = %d, want %d", len(all.Styles), len(comfort.RidingStyles))
	}

	resp = doJSON(t, s.App(), "GET", "/api/zones?style=sport", nil)
	if resp.StatusCode != 200 {
		t.Errorf("Status = %d, want 200", resp.StatusCode)
	}
	resp = doJSON(t, s.App(), "GET", "/api/zones?style=chopper", nil)
	if resp.StatusCode != 400 {
		t.Errorf("Status = %d, want 400", resp.StatusCode)
	}
}

func TestRiderEstimate(t *testing.T) {
	s := NewServer(Options{})

	resp := doJSON(t, s.App(), "GET", "/api/rider/estimate?height=1800", nil)
	var body struct {
		HeightMM float64                  `json:"height_mm"`
		Segments ergonomics.RiderSegments `json:"segments"`
	}
	decode(t, resp, &body)
	if body.HeightMM != 1800 {
		t.Errorf("height_mm = %v", body.HeightMM)
	}
	if body.Segments != rider.EstimateSegments(1800) {
		t.Errorf("segments = %+v", body.Segments)
	}

	resp = doJSON(t, s.App(), "GET", "/api/rider/estimate?height=-5", nil)
	if resp.StatusCode != 400 {
		t.Errorf("Status = %d, want 400", resp.StatusCode)
	}
}

func TestAnalyze(t *testing.T) {
	s := NewServer(Options{DefaultStyle: comfort.Sport})

	resp := doJSON(t, s.App(), "POST", "/api/analyze", sampleInput())
	if resp.StatusCode != 200 {
		t.Fatalf("Status = %d, want 200", resp.StatusCode)
	}
	var r analysis.Report
	decode(t, resp, &r)
	if r.RidingStyle != comfort.Sport {
		t.Errorf("RidingStyle = %s, want server default sport", r.RidingStyle)
	}
	if r.Primary.Angles.Count() != 4 {
		t.Errorf("angles = %+v", r.Primary.Angles)
	}

	resp = doJSON(t, s.App(), "POST", "/api/analyze", analysis.Input{Mode: "sketch"})
	if resp.StatusCode != 400 {
		t.Errorf("Status = %d, want 400 for unknown mode", resp.StatusCode)
	}

	huge := sampleInput()
	huge.Primary.Markers.Peg = geometry.Ref(0, 1e200)
	huge.Primary.Markers.Bar = geometry.Ref(1e200, -1e200)
	resp = doJSON(t, s.App(), "POST", "/api/analyze", huge)
	if resp.StatusCode != 400 {
		t.Errorf("Status = %d, want 400 for out-of-range coordinates", resp.StatusCode)
	}

	req := httptest.NewRequest("POST", "/api/analyze", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	raw, _ := s.App().Test(req)
	if raw.StatusCode != 400 {
		t.Errorf("Status = %d, want 400 for bad JSON", raw.StatusCode)
	}
}

func TestComparisonCRUD(t *testing.T) {
	store := comparison.NewMemoryStore()
	s := NewServer(Options{Store: store})
	app := s.App()

	resp := doJSON(t, app, "POST", "/api/comparisons/", ComparisonRequest{Name: "Mine", Input: sampleInput()})
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("create Status = %d, want 201", resp.StatusCode)
	}
	var created comparison.Comparison
	decode(t, resp, &created)
	if created.ID == "" || created.Name != "Mine" {
		t.Fatalf("created = %+v", created)
	}

	resp = doJSON(t, app, "GET", "/api/comparisons/", nil)
	var list struct {
		Count int `json:"count"`
	}
	decode(t, resp, &list)
	if list.Count != 1 {
		t.Errorf("count = %d, want 1", list.Count)
	}

	resp = doJSON(t, app, "PUT", "/api/comparisons/"+created.ID, ComparisonRequest{Input: sampleInput()})
	var updated comparison.Comparison
	decode(t, resp, &updated)
	if updated.Name != "Untitled comparison" || !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Errorf("updated = %+v", updated)
	}

	resp = doJSON(t, app, "GET", "/api/comparisons/"+created.ID+"/report", nil)
	if resp.StatusCode != 200 {
		t.Fatalf("report Status = %d", resp.StatusCode)
	}
	var r analysis.Report
	decode(t, resp, &r)
	if r.Primary.Label != "Naked" {
		t.Errorf("report label = %q", r.Primary.Label)
	}

	resp = doJSON(t, app, "DELETE", "/api/comparisons/"+created.ID, nil)
	if resp.StatusCode != fiber.StatusNoContent {
		t.Errorf("delete Status = %d, want 204", resp.StatusCode)
	}

	for _, target := range []string{"/api/comparisons/" + created.ID, "/api/comparisons/" + created.ID + "/report"} {
		resp = doJSON(t, app, "GET", target, nil)
		if resp.StatusCode != 404 {
			t.Errorf("GET %s Status = %d, want 404", target, resp.StatusCode)
		}
	}
	resp = doJSON(t, app, "DELETE", "/api/comparisons/"+created.ID, nil)
	if resp.StatusCode != 404 {
		t.Errorf("second delete Status = %d, want 404", resp.StatusCode)
	}
}

func TestOverlayPNG(t *testing.T) {
	store := comparison.NewMemoryStore()
	s := NewServer(Options{Store: store})

	cmp := &comparison.Comparison{Name: "png", Input: sampleInput()}
	if err := store.Save(cmp); err != nil {
		t.Fatalf("Save: %v", err)
	}

	resp := doJSON(t, s.App(), "GET", "/api/comparisons/"+cmp.ID+"/overlay.png?width=200&height=150", nil)
	if resp.StatusCode != 200 {
		t.Fatalf("Status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q", ct)
	}
	img, err := png.Decode(resp.Body)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if img.Bounds().Dx() != 200 || img.Bounds().Dy() != 150 {
		t.Errorf("bounds = %v", img.Bounds())
	}

	resp = doJSON(t, s.App(), "GET", "/api/comparisons/"+cmp.ID+"/overlay.png?width=0", nil)
	if resp.StatusCode != 400 {
		t.Errorf("Status = %d, want 400 for zero width", resp.StatusCode)
	}

	empty := &comparison.Comparison{Name: "empty"}
	store.Save(empty)
	resp = doJSON(t, s.App(), "GET", "/api/comparisons/"+empty.ID+"/overlay.png", nil)
	if resp.StatusCode != fiber.StatusUnprocessableEntity {
		t.Errorf("Status = %d, want 422 for no markers", resp.StatusCode)
	}
}

func TestViewerReceivesUpdates(t *testing.T) {
	store := comparison.NewMemoryStore()
	s := NewServer(Options{Store: store})

	cmp := &comparison.Comparison{Name: "watched", Input: sampleInput()}
	store.Save(cmp)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	go s.Serve(ln)
	defer s.Shutdown(context.Background())

	ws, _, err := gws.DefaultDialer.Dial("ws://"+ln.Addr().String()+"/ws/comparisons/"+cmp.ID, nil)
	if err != nil {
		t.Fatalf("WebSocket dial error: %v", err)
	}
	defer ws.Close()

	deadline := time.Now().Add(time.Second)
	for s.viewers.ClientCount(cmp.ID) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("viewer never joined the comparison room")
		}
		time.Sleep(5 * time.Millisecond)
	}

	resp := doJSON(t, s.App(), "PUT", "/api/comparisons/"+cmp.ID, ComparisonRequest{Name: "renamed", Input: sampleInput()})
	if resp.StatusCode != 200 {
		t.Fatalf("PUT Status = %d", resp.StatusCode)
	}

	ws.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err := ws.ReadMessage()
	if err != nil {
		t.Fatalf("Read error: %v", err)
	}
	msg, err := protocol.ParseMessage(data)
	if err != nil {
		t.Fatalf("ParseMessage: %v", err)
	}
	if msg.Type != protocol.TypeComparisonUpdated {
		t.Errorf("Type = %s, want comparison_updated", msg.Type)
	}
	var payload protocol.ComparisonData
	msg.ParseData(&payload)
	if payload.Name != "renamed" || payload.Report == nil {
		t.Errorf("payload = %+v", payload)
	}
}
