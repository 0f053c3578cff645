package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ShruAgarwal/Zoogist-Insights/internal/agent"
	"github.com/ShruAgarwal/Zoogist-Insights/internal/chart"
	"github.com/ShruAgarwal/Zoogist-Insights/internal/dataset"
	"github.com/ShruAgarwal/Zoogist-Insights/internal/insights"
	"github.com/ShruAgarwal/Zoogist-Insights/internal/mapview"
	"github.com/ShruAgarwal/Zoogist-Insights/internal/sqlexec"
)

type schemaColumn struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// askResponse adds the rendered chart suggestion to the service response.
type askResponse struct {
	insights.AskResponse
	Rendered *insights.ChartResponse `json:"chart,omitempty"`
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"table":  s.svc.Table(),
		"rows":   s.svc.Store().Len(),
		"agent":  s.svc.HasAgent(),
	})
}

func (s *Server) schema(c *gin.Context) {
	cols := make([]schemaColumn, len(dataset.Schema))
	for i, col := range dataset.Schema {
		cols[i] = schemaColumn{Name: col.Name, Type: col.DocType, Description: col.Description}
	}
	c.JSON(http.StatusOK, gin.H{
		"table":   s.svc.Table(),
		"columns": cols,
		"prompt":  agent.SystemPrompt(s.svc.Table()),
	})
}

func (s *Server) demos(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"demos": insights.DemoQueries})
}

func (s *Server) filters(c *gin.Context) {
	c.JSON(http.StatusOK, s.svc.FilterOptions())
}

func (s *Server) mapLayer(c *gin.Context) {
	c.JSON(http.StatusOK, mapview.Build(s.svc.Store()))
}

func (s *Server) ask(c *gin.Context) {
	var req insights.AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	resp := s.svc.Ask(c.Request.Context(), req)
	out := askResponse{AskResponse: resp}
	if rendered, ok := s.svc.RenderSuggestion(resp); ok {
		out.Rendered = &rendered
	}
	status := http.StatusOK
	if resp.Warning != "" {
		status = http.StatusBadRequest
	}
	logger(c).Info("ask",
		zap.String("question", resp.Question),
		zap.Int("tool_calls", len(resp.Calls)),
		zap.Bool("failed", resp.Error != ""),
	)
	c.JSON(status, out)
}

// query accepts either a bare JSON string or an object carrying sql_query.
func (s *Server) query(c *gin.Context) {
	var body any
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	res := s.svc.Query(c.Request.Context(), sqlexec.ParseRequest(body))
	status := http.StatusOK
	if res.Failed() {
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, res)
}

func (s *Server) chart(c *gin.Context) {
	var req chart.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	resp := s.svc.Visualize(req)
	status := http.StatusOK
	if resp.Chart == nil {
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, resp)
}
