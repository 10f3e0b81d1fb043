// Package server - HTTP-API der Evaluation
//
// routes.go - Router-Aufbau und Serve
// Enthält: Server, GenerateRoutes, Serve

package server

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/seqcache/seqcache/envconfig"
	"github.com/seqcache/seqcache/logutil"
	"github.com/seqcache/seqcache/store"
	"github.com/seqcache/seqcache/version"
)

// Server bedient die Evaluations-API. Der Store ist optional;
// ohne Store werden Laeufe nicht aufgezeichnet.
type Server struct {
	store *store.Store
}

// NewServer erstellt einen Server ueber dem gegebenen Store
func NewServer(st *store.Store) *Server {
	return &Server{store: st}
}

// GenerateRoutes erstellt und konfiguriert den HTTP-Router
func (s *Server) GenerateRoutes() http.Handler {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowWildcard = true
	corsConfig.AllowBrowserExtensions = true
	corsConfig.AllowHeaders = []string{"Authorization", "Content-Type", "User-Agent", "Accept", "X-Requested-With"}
	corsConfig.AllowAllOrigins = true

	r := gin.Default()
	r.HandleMethodNotAllowed = true
	r.Use(cors.New(corsConfig))

	// General
	r.HEAD("/", func(c *gin.Context) { c.String(http.StatusOK, "seqcache is running") })
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, "seqcache is running") })
	r.HEAD("/api/version", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"version": version.Version}) })
	r.GET("/api/version", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"version": version.Version}) })

	// Evaluation
	r.POST("/api/evaluate", s.EvaluateHandler)
	r.POST("/api/sweep", s.SweepHandler)
	r.GET("/api/runs", s.RunsHandler)

	return r
}

// Serve startet den HTTP-Server auf dem Listener
func Serve(ln net.Listener) error {
	slog.SetDefault(logutil.NewLogger(os.Stderr, envconfig.LogLevel()))

	st, err := store.Open(envconfig.DBPath())
	if err != nil {
		return fmt.Errorf("open run store: %w", err)
	}
	defer st.Close()

	s := NewServer(st)

	slog.Info(fmt.Sprintf("Listening on %s (version %s)", ln.Addr(), version.Version))
	srvr := &http.Server{Handler: s.GenerateRoutes()}

	return srvr.Serve(ln)
}
