package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/randalmurphal/textflow/pkg/textflow"
	"github.com/randalmurphal/textflow/pkg/textflow/canvas"
)

// ExtractRequest is the body of POST /v1/extract.
type ExtractRequest struct {
	Text string `json:"text" binding:"max=100000"`
}

// ExtractResponse reports an extraction outcome.
type ExtractResponse struct {
	Status    string              `json:"status"`
	RequestID string              `json:"request_id,omitempty"`
	Source    string              `json:"source,omitempty"`
	Nodes     []textflow.FlowNode `json:"nodes"`
	Rendered  string              `json:"rendered,omitempty"`
	Error     string              `json:"error,omitempty"`
	Kind      string              `json:"kind,omitempty"`
}

// FlowchartRequest is the body of POST /v1/flowchart.
type FlowchartRequest struct {
	Text string `json:"text" binding:"max=100000"`
	Page string `json:"page" binding:"omitempty,max=128"`
}

// FlowchartResponse reports an extraction followed by layout.
type FlowchartResponse struct {
	Status     string `json:"status"`
	RequestID  string `json:"request_id,omitempty"`
	Page       string `json:"page"`
	Nodes      int    `json:"nodes"`
	Placements int    `json:"placements"`
	Error      string `json:"error,omitempty"`
	Kind       string `json:"kind,omitempty"`
}

// ShapesResponse lists a page's shapes.
type ShapesResponse struct {
	Page   string         `json:"page"`
	Shapes []canvas.Shape `json:"shapes"`
}

// ErrorResponse is returned for malformed requests.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (s *Server) handleExtract(c *gin.Context) {
	var req ExtractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.logger.Warn("invalid request body", slog.String("handler", "extract"), slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Code: "INVALID_REQUEST"})
		return
	}

	r := s.pipeline.Extract(c.Request.Context(), req.Text, s.credential)
	if r.RequestID != "" {
		c.Header("X-Request-ID", r.RequestID)
	}

	resp := ExtractResponse{
		Status:    r.Status.String(),
		RequestID: r.RequestID,
		Source:    string(r.Source),
		Nodes:     nodesOrEmpty(r.Nodes),
		Rendered:  r.Text(),
	}
	if r.Status == textflow.StatusFailure {
		resp.Error = r.Err.Error()
		resp.Kind = textflow.KindOf(r.Err).String()
	}
	c.JSON(statusFor(r), resp)
}

func (s *Server) handleFlowchart(c *gin.Context) {
	var req FlowchartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.logger.Warn("invalid request body", slog.String("handler", "flowchart"), slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Code: "INVALID_REQUEST"})
		return
	}
	page := req.Page
	if page == "" {
		page = s.defaultPage
	}

	ctx := c.Request.Context()
	r := s.pipeline.Extract(ctx, req.Text, s.credential)
	if r.RequestID != "" {
		c.Header("X-Request-ID", r.RequestID)
	}

	resp := FlowchartResponse{Status: r.Status.String(), RequestID: r.RequestID, Page: page}
	switch r.Status {
	case textflow.StatusIgnored:
		resp.Error = textflow.ErrNoNodes.Error()
		resp.Kind = textflow.KindEmptyResult.String()
		c.JSON(http.StatusUnprocessableEntity, resp)
		return
	case textflow.StatusFailure:
		resp.Error = r.Err.Error()
		resp.Kind = textflow.KindOf(r.Err).String()
		c.JSON(statusFor(r), resp)
		return
	}

	resp.Nodes = len(r.Nodes)
	err := s.emitter.Emit(ctx, r.Nodes, s.surface.Page(page))
	if err != nil {
		resp.Status = textflow.StatusFailure.String()
		resp.Error = err.Error()
		resp.Kind = textflow.KindOf(err).String()
		resp.Placements = placed(err)
		c.JSON(http.StatusInternalServerError, resp)
		return
	}
	resp.Placements = 2 * len(r.Nodes)
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleShapes(c *gin.Context) {
	page := c.Param("page")
	shapes, err := s.surface.Shapes(c.Request.Context(), page)
	if err != nil {
		s.logger.Error("list shapes failed", slog.String("page", page), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "list shapes failed", Code: "CANVAS_ERROR"})
		return
	}
	c.JSON(http.StatusOK, ShapesResponse{Page: page, Shapes: shapes})
}

// statusFor maps an extraction result to an HTTP status.
func statusFor(r textflow.Result) int {
	if r.Status != textflow.StatusFailure {
		return http.StatusOK
	}
	switch textflow.KindOf(r.Err) {
	case textflow.KindService:
		return http.StatusBadGateway
	case textflow.KindEmptyResult:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// placed counts the drawing calls that succeeded before err.
func placed(err error) int {
	var de *textflow.DrawingError
	if !errors.As(err, &de) {
		return 0
	}
	n := 2 * de.Index
	if de.Command.Kind == textflow.ShapeText {
		n++
	}
	return n
}

func nodesOrEmpty(ns textflow.NodeSequence) []textflow.FlowNode {
	if ns == nil {
		return []textflow.FlowNode{}
	}
	return ns
}
