package http

import (
	"log"

	"github.com/gin-gonic/gin"

	"github.com/vbjayanti/cumulus/internal/config"
	"github.com/vbjayanti/cumulus/internal/http/auth"
	"github.com/vbjayanti/cumulus/internal/http/common"
	eventshttp "github.com/vbjayanti/cumulus/internal/http/events"
	executionshttp "github.com/vbjayanti/cumulus/internal/http/executions"
	granuleshttp "github.com/vbjayanti/cumulus/internal/http/granules"
	pdrshttp "github.com/vbjayanti/cumulus/internal/http/pdrs"
	"github.com/vbjayanti/cumulus/internal/usecase"
)

type Server struct {
	cfg           config.Config
	r             *gin.Engine
	service       *usecase.GranuleService
	authenticator common.Authenticator
}

type ServerDeps struct {
	Service       *usecase.GranuleService
	Authenticator common.Authenticator
}

func NewServer(cfg config.Config, deps ServerDeps) *Server {
	r := gin.New()
	r.Use(gin.Recovery())

	s := &Server{
		cfg:           cfg,
		r:             r,
		service:       deps.Service,
		authenticator: deps.Authenticator,
	}
	if s.authenticator == nil {
		s.authenticator = auth.NewTokenAuthenticator(cfg.APIToken)
	}
	s.routes()
	return s
}

func (s *Server) Run() error {
	addr := s.cfg.HTTPAddr
	if addr == "" {
		addr = ":8080"
	}
	log.Printf("cumulus api listening on %s", addr)
	return s.r.Run(addr)
}

// Engine exposes the router for tests.
func (s *Server) Engine() *gin.Engine {
	return s.r
}

func (s *Server) routes() {
	s.r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	granuleHandler := granuleshttp.NewHandler(s.service, s.cfg.StackName)
	executionHandler := executionshttp.NewHandler(s.service.Executions)
	pdrHandler := pdrshttp.NewHandler(s.service.Pdrs)
	eventHandler := eventshttp.NewHandler(s.service)

	authed := s.r.Group("/", common.AuthMiddleware(s.authenticator))
	{
		authed.GET("/granules", granuleHandler.HandleList)
		authed.POST("/granules/bulk", granuleHandler.HandleBulk)
		authed.GET("/granules/bulk/:id", granuleHandler.HandleGetBulk)
		authed.GET("/granules/:granuleId", granuleHandler.HandleGet)
		authed.PUT("/granules/:granuleId", granuleHandler.HandleAction)
		authed.DELETE("/granules/:granuleId", granuleHandler.HandleDelete)

		authed.GET("/executions/:arn", executionHandler.HandleGet)
		authed.GET("/pdrs/:pdrName", pdrHandler.HandleGet)

		authed.POST("/events", eventHandler.HandleReport)
	}
}
