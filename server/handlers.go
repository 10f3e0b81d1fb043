// handlers.go - Evaluations-Handler
// Enthält: EvaluateHandler, SweepHandler, RunsHandler

package server

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/seqcache/seqcache/api"
	"github.com/seqcache/seqcache/data"
	"github.com/seqcache/seqcache/eval"
	"github.com/seqcache/seqcache/model"
)

// EvaluateRequest ist der Body von /api/evaluate: Konfiguration plus
// der zu bewertende Token-Strom. HidDim und Seed parametrisieren das
// mitgelieferte Referenzmodell.
type EvaluateRequest struct {
	api.Config
	Tokens []int32 `json:"tokens"`
	HidDim int     `json:"hid_dim"`
	Seed   int64   `json:"seed"`
}

// EvaluateResponse liefert den aufgezeichneten Lauf zurueck
type EvaluateResponse struct {
	Run      api.RunResult `json:"run"`
	Duration float64       `json:"duration_seconds"`
}

// SweepResponse liefert alle Zeilen der Grid-Suche zurueck
type SweepResponse struct {
	Results  []eval.SweepResult `json:"results"`
	Duration float64            `json:"duration_seconds"`
}

// setup baut aus einem Request Modell, Konfiguration und Bloecke
func (req *EvaluateRequest) setup() (api.Config, model.Stepper, []data.Chunk, error) {
	cfg := req.Config
	if cfg.Mode == "" {
		def := api.DefaultConfig()
		def.Alpha, def.Theta = cfg.Alpha, cfg.Theta
		if cfg.Capacity > 0 {
			def.Capacity = cfg.Capacity
		}
		if cfg.Lanes > 0 {
			def.Lanes = cfg.Lanes
		}
		if cfg.BPTT > 0 {
			def.BPTT = cfg.BPTT
		}
		cfg = def
	}

	hidDim := req.HidDim
	if hidDim <= 0 {
		hidDim = 64
	}
	if cfg.VocabSize <= 0 {
		var maxSym int32
		for _, t := range req.Tokens {
			maxSym = max(maxSym, t)
		}
		cfg.VocabSize = int(maxSym) + 1
	}

	m, err := model.NewRNN(cfg.VocabSize, hidDim, req.Seed)
	if err != nil {
		return api.Config{}, nil, nil, err
	}

	blocks, err := data.NewBlocks(req.Tokens, cfg.Lanes, cfg.BPTT)
	if err != nil {
		return api.Config{}, nil, nil, err
	}

	return cfg, m, blocks.Chunks(), nil
}

// EvaluateHandler verarbeitet /api/evaluate Anfragen
func (s *Server) EvaluateHandler(c *gin.Context) {
	checkpointStart := time.Now()

	var req EvaluateRequest
	err := c.ShouldBindJSON(&req)
	switch {
	case errors.Is(err, io.EOF):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "missing request body"})
		return
	case err != nil:
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cfg, m, chunks, err := req.setup()
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ev, err := eval.New(cfg, m)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ppl, err := ev.Run(c.Request.Context(), chunks)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	run := api.RunResult{Mode: cfg.Mode, Theta: cfg.Theta, Alpha: cfg.Alpha, Perplexity: ppl, Tokens: ev.Tokens()}
	if s.store != nil {
		if run, err = s.store.AddRun(cfg.Mode, cfg.Theta, cfg.Alpha, ppl, ev.Tokens()); err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}

	c.JSON(http.StatusOK, EvaluateResponse{Run: run, Duration: time.Since(checkpointStart).Seconds()})
}

// SweepHandler verarbeitet /api/sweep Anfragen; Alpha und Theta aus
// dem Request werden ignoriert, die Suche laeuft ueber das volle Grid
func (s *Server) SweepHandler(c *gin.Context) {
	checkpointStart := time.Now()

	var req EvaluateRequest
	err := c.ShouldBindJSON(&req)
	switch {
	case errors.Is(err, io.EOF):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "missing request body"})
		return
	case err != nil:
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cfg, m, chunks, err := req.setup()
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	results, err := eval.Sweep(c.Request.Context(), cfg, m, chunks)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, SweepResponse{Results: results, Duration: time.Since(checkpointStart).Seconds()})
}

// RunsHandler liefert die aufgezeichneten Laeufe zurueck
func (s *Server) RunsHandler(c *gin.Context) {
	if s.store == nil {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "run store not configured"})
		return
	}

	limit := 0
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = n
	}

	runs, err := s.store.Runs(limit)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"runs": runs})
}
