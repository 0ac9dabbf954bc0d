package web

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/teslashibe/go-moto-ergo/internal/log"
	"github.com/teslashibe/go-moto-ergo/pkg/analysis"
	"github.com/teslashibe/go-moto-ergo/pkg/calibration"
	"github.com/teslashibe/go-moto-ergo/pkg/comfort"
	"github.com/teslashibe/go-moto-ergo/pkg/comparison"
	"github.com/teslashibe/go-moto-ergo/pkg/protocol"
	"github.com/teslashibe/go-moto-ergo/pkg/render"
	"github.com/teslashibe/go-moto-ergo/pkg/rider"
)

// errorHandler renders every error as {"error": "..."} with a status code
// derived from the package sentinel it wraps.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		code = fe.Code
	case errors.Is(err, comparison.ErrNotFound):
		code = fiber.StatusNotFound
	case errors.Is(err, analysis.ErrInvalidInput):
		code = fiber.StatusBadRequest
	case errors.Is(err, render.ErrNothingToDraw):
		code = fiber.StatusUnprocessableEntity
	}
	if code >= fiber.StatusInternalServerError {
		log.Error("request failed", "path", c.Path(), "error", err)
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}

// handleHealth reports liveness and a few counters
func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":      "ok",
		"version":     s.version,
		"comparisons": s.store.Count(),
		"viewers":     s.viewers.TotalClients(),
		"live":        s.live.GetStats(),
	})
}

// TireResponse is the body of GET /api/tire
type TireResponse struct {
	Spec            string               `json:"spec"`
	Tire            calibration.TireSpec `json:"tire"`
	SidewallMM      float64              `json:"sidewall_mm"`
	OuterDiameterMM float64              `json:"outer_diameter_mm"`
}

// handleTire parses a tire size string
func (s *Server) handleTire(c *fiber.Ctx) error {
	spec := c.Query("spec")
	t, ok := calibration.ParseTireSpec(spec)
	if !ok {
		return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("unrecognised tire spec %q", spec))
	}
	return c.JSON(TireResponse{
		Spec:            spec,
		Tire:            t,
		SidewallMM:      t.SidewallMM(),
		OuterDiameterMM: t.OuterDiameterMM(),
	})
}

// handleZones returns the comfort table, optionally for one riding style
func (s *Server) handleZones(c *fiber.Ctx) error {
	bands := s.analyzer.Zones().Bands()
	style := c.Query("style")
	if style == "" {
		return c.JSON(fiber.Map{"default_style": s.style, "styles": bands})
	}
	rs, ok := comfort.ParseRidingStyle(style)
	if !ok {
		return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("unknown riding style %q", style))
	}
	return c.JSON(fiber.Map{"style": rs, "bands": bands[rs]})
}

// handleRiderEstimate returns segment lengths for a rider height in mm
func (s *Server) handleRiderEstimate(c *fiber.Ctx) error {
	height := float64(rider.DefaultHeightMM)
	if q := c.Query("height"); q != "" {
		h, err := strconv.ParseFloat(q, 64)
		if err != nil || h <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("invalid height %q", q))
		}
		height = h
	}
	return c.JSON(fiber.Map{
		"height_mm": height,
		"segments":  rider.EstimateSegments(height),
	})
}

// parseInput reads an analysis.Input body and fills in the default style
func (s *Server) parseInput(c *fiber.Ctx, in *analysis.Input) error {
	if err := c.BodyParser(in); err != nil {
		return fmt.Errorf("%w: %v", analysis.ErrInvalidInput, err)
	}
	if err := in.Validate(); err != nil {
		return err
	}
	if in.RidingStyle == "" {
		in.RidingStyle = s.style
	}
	return nil
}

// handleAnalyze runs the engine on a posted input without saving it
func (s *Server) handleAnalyze(c *fiber.Ctx) error {
	var in analysis.Input
	if err := s.parseInput(c, &in); err != nil {
		return err
	}
	return c.JSON(s.analyzer.Analyze(in))
}

// ComparisonRequest is the body for creating or updating a comparison
type ComparisonRequest struct {
	Name  string         `json:"name"`
	Input analysis.Input `json:"input"`
}

func (s *Server) parseComparison(c *fiber.Ctx) (ComparisonRequest, error) {
	var req ComparisonRequest
	if err := c.BodyParser(&req); err != nil {
		return req, fmt.Errorf("%w: %v", analysis.ErrInvalidInput, err)
	}
	if err := req.Input.Validate(); err != nil {
		return req, err
	}
	if req.Name == "" {
		req.Name = "Untitled comparison"
	}
	return req, nil
}

// handleListComparisons lists saved comparisons, newest first
func (s *Server) handleListComparisons(c *fiber.Ctx) error {
	items, err := s.store.List()
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"comparisons": items, "count": len(items)})
}

// handleCreateComparison saves a new comparison
func (s *Server) handleCreateComparison(c *fiber.Ctx) error {
	req, err := s.parseComparison(c)
	if err != nil {
		return err
	}
	cmp := &comparison.Comparison{Name: req.Name, Input: req.Input}
	if err := s.store.Save(cmp); err != nil {
		return err
	}
	s.publishUpdate(cmp)
	return c.Status(fiber.StatusCreated).JSON(cmp)
}

// handleGetComparison returns one saved comparison
func (s *Server) handleGetComparison(c *fiber.Ctx) error {
	cmp, err := s.store.Get(c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(cmp)
}

// handleUpdateComparison replaces a saved comparison's name and input
func (s *Server) handleUpdateComparison(c *fiber.Ctx) error {
	cmp, err := s.store.Get(c.Params("id"))
	if err != nil {
		return err
	}
	req, err := s.parseComparison(c)
	if err != nil {
		return err
	}
	cmp.Name = req.Name
	cmp.Input = req.Input
	if err := s.store.Save(cmp); err != nil {
		return err
	}
	s.publishUpdate(cmp)
	return c.JSON(cmp)
}

// handleDeleteComparison removes a saved comparison
func (s *Server) handleDeleteComparison(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := s.store.Delete(id); err != nil {
		return err
	}
	msg, err := protocol.NewMessage(protocol.TypeComparisonDeleted, protocol.ComparisonData{ID: id})
	if err == nil {
		s.viewers.Publish(id, msg)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// report analyses a saved comparison
func (s *Server) report(id string) (*comparison.Comparison, analysis.Report, error) {
	cmp, err := s.store.Get(id)
	if err != nil {
		return nil, analysis.Report{}, err
	}
	in := cmp.Input
	if in.RidingStyle == "" {
		in.RidingStyle = s.style
	}
	return cmp, s.analyzer.Analyze(in), nil
}

// handleComparisonReport returns the analysis of a saved comparison
func (s *Server) handleComparisonReport(c *fiber.Ctx) error {
	_, r, err := s.report(c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(r)
}

// handleComparisonOverlay renders a saved comparison as PNG
func (s *Server) handleComparisonOverlay(c *fiber.Ctx) error {
	_, r, err := s.report(c.Params("id"))
	if err != nil {
		return err
	}
	w := c.QueryInt("width", render.DefaultWidth)
	h := c.QueryInt("height", render.DefaultHeight)
	if w <= 0 || h <= 0 || w > 4096 || h > 4096 {
		return fiber.NewError(fiber.StatusBadRequest, "width and height must be within 1..4096")
	}

	var buf bytes.Buffer
	if err := render.WritePNG(&buf, r, w, h); err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "image/png")
	return c.Send(buf.Bytes())
}

// publishUpdate notifies viewers of cmp with its fresh report
func (s *Server) publishUpdate(cmp *comparison.Comparison) {
	in := cmp.Input
	if in.RidingStyle == "" {
		in.RidingStyle = s.style
	}
	r := s.analyzer.Analyze(in)
	msg, err := protocol.NewMessage(protocol.TypeComparisonUpdated, protocol.ComparisonData{
		ID:     cmp.ID,
		Name:   cmp.Name,
		Report: &r,
	})
	if err != nil {
		log.Warn("encode comparison update", "id", cmp.ID, "error", err)
		return
	}
	if err := s.viewers.Publish(cmp.ID, msg); err != nil {
		log.Warn("publish comparison update", "id", cmp.ID, "error", err)
	}
}
