// Package server exposes the stored valuation run over HTTP for the
// dashboard frontend.
package server

import (
	"context"
	"errors"
	"math"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	cors "github.com/rs/cors/wrapper/gin"

	"github.com/chanv/portrack"
	"github.com/chanv/portrack/store"
)

// AddFunc records a new transaction, recomputes the valuation and
// persists the result, returning the fresh report.
type AddFunc func(ctx context.Context, tx portrack.Transaction) (*portrack.Report, error)

// Server serves the report endpoints backed by the sqlite store.
type Server struct {
	store  *store.SQLiteStore
	logger zerolog.Logger
	addTx  AddFunc
}

// New builds the HTTP handler. addTx may be nil, which disables the
// POST /transactions endpoint.
func New(st *store.SQLiteStore, logger zerolog.Logger, addTx AddFunc, allowedOrigins []string) http.Handler {
	s := &Server{store: st, logger: logger, addTx: addTx}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/data/portfolio_value", s.portfolioValue)
	router.GET("/data/open_positions", s.openPositions)
	router.GET("/data/closed_positions", s.closedPositions)
	router.GET("/data/metrics/advanced", s.advancedMetrics)
	router.GET("/data/metrics/maximum_drawdown", s.maximumDrawdown)

	router.GET("/data/chart/portfolio_value_over_time", s.chartValueOverTime)
	router.GET("/data/chart/daily_pnl_change", s.chartDailyChange)
	router.GET("/data/chart/asset_allocation", s.chartAllocation)
	router.GET("/data/chart/twr_vs_benchmark", s.chartTWR)
	router.GET("/data/chart/cumulative_cash_flow_adjusted_return", s.chartAdjustedReturn)

	router.POST("/transactions", s.postTransaction)

	return router
}

func (s *Server) fail(c *gin.Context, err error) {
	s.logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

func (s *Server) portfolioValue(c *gin.Context) {
	recs, err := s.store.DailyRecords(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, recs)
}

func (s *Server) openPositions(c *gin.Context) {
	positions, err := s.store.OpenPositions(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, positions)
}

func (s *Server) closedPositions(c *gin.Context) {
	trades, err := s.store.ClosedPositions(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, trades)
}

func (s *Server) advancedMetrics(c *gin.Context) {
	metrics, err := s.store.Metrics(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, metrics)
}

func (s *Server) maximumDrawdown(c *gin.Context) {
	recs, err := s.store.DailyRecords(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	var mdd float64
	for _, rec := range recs {
		if rec.Drawdown > mdd {
			mdd = rec.Drawdown
		}
	}
	c.JSON(http.StatusOK, gin.H{"maximum_drawdown": round2(mdd * 100)})
}

func (s *Server) chartValueOverTime(c *gin.Context) {
	recs, err := s.store.DailyRecords(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	dates := make([]string, len(recs))
	values := make([]float64, len(recs))
	costs := make([]float64, len(recs))
	for i, rec := range recs {
		dates[i], values[i], costs[i] = rec.Date, rec.Value, rec.Cost
	}
	c.JSON(http.StatusOK, gin.H{"dates": dates, "current_value": values, "cost": costs})
}

func (s *Server) chartDailyChange(c *gin.Context) {
	recs, err := s.store.DailyRecords(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	dates := make([]string, len(recs))
	changes := make([]float64, len(recs))
	for i, rec := range recs {
		dates[i], changes[i] = rec.Date, rec.DailyChange
	}
	c.JSON(http.StatusOK, gin.H{"dates": dates, "daily_pnl_change": changes})
}

func (s *Server) chartAllocation(c *gin.Context) {
	positions, err := s.store.OpenPositions(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	labels := make([]string, len(positions))
	values := make([]float64, len(positions))
	for i, pos := range positions {
		labels[i], values[i] = pos.Symbol, pos.Value
	}
	c.JSON(http.StatusOK, gin.H{"labels": labels, "values": values})
}

func (s *Server) chartTWR(c *gin.Context) {
	recs, err := s.store.DailyRecords(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	dates := make([]string, len(recs))
	twr := make([]float64, len(recs))
	bench := make([]float64, len(recs))
	for i, rec := range recs {
		dates[i], twr[i], bench[i] = rec.Date, rec.TWR, rec.BenchmarkTWR
	}
	c.JSON(http.StatusOK, gin.H{"dates": dates, "portfolio_twr": twr, "benchmark_twr": bench})
}

func (s *Server) chartAdjustedReturn(c *gin.Context) {
	recs, err := s.store.DailyRecords(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	dates := make([]string, len(recs))
	returns := make([]float64, len(recs))
	for i, rec := range recs {
		dates[i], returns[i] = rec.Date, rec.AdjustedReturn
	}
	c.JSON(http.StatusOK, gin.H{"dates": dates, "cumulative_return": returns})
}

// txRequest is the POST /transactions payload.
type txRequest struct {
	Date       string  `json:"date" binding:"required"`
	Ticker     string  `json:"ticker" binding:"required"`
	Type       string  `json:"type" binding:"required"`
	Quantity   float64 `json:"quantity" binding:"required"`
	Price      float64 `json:"price" binding:"required"`
	Commission float64 `json:"commission"`
}

func (s *Server) postTransaction(c *gin.Context) {
	if s.addTx == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "transaction recording is disabled"})
		return
	}

	var req txRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	date, err := portrack.ParseDate(req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	side, err := portrack.ParseSide(req.Type)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tx := portrack.Transaction{
		Date:       date,
		Ticker:     req.Ticker,
		Side:       side,
		Quantity:   portrack.Q(req.Quantity),
		Price:      portrack.M(req.Price, ""),
		Commission: portrack.M(req.Commission, ""),
	}
	if err := tx.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := s.addTx(c.Request.Context(), tx)
	if err != nil {
		var insufficient *portrack.InsufficientPositionError
		if errors.As(err, &insufficient) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": insufficient.Error()})
			return
		}
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":          "Transaction added and portfolio updated successfully!",
		"advanced_metrics": report.Metrics,
	})
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
