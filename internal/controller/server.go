package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tomoRelay/internal/relay"
)

type Server struct {
	host   string
	port   string
	relay  *relay.Service
	logger *zap.Logger
}

func NewServer(host string, port string, relay *relay.Service, logger *zap.Logger) *Server {
	return &Server{
		host:   host,
		port:   port,
		relay:  relay,
		logger: logger.Named("controller"),
	}
}

func (r *Server) Start() {
	api := r.newAPI()

	if err := api.Run(r.host + ":" + r.port); err != nil {
		r.logger.Error("api server stopped", zap.Error(err))
	}
}

func (r *Server) newAPI() *gin.Engine {
	eng := gin.New()

	apiV1 := eng.Group("/v1")
	apiV1.GET("/health", r.health)
	apiV1.GET("/stats", r.getStats)

	return eng
}

func (r *Server) health(ctx *gin.Context) {
	ctx.Status(http.StatusOK)
}

func (r *Server) getStats(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, r.relay.Stats())
}
