// Package server exposes the webhook HTTP endpoint. Deliveries are
// HMAC-validated, parsed, and handed to the dispatcher asynchronously;
// GitHub gets its 202 without waiting for component work.
package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	gh "github.com/google/go-github/v80/github"
	"github.com/rs/zerolog"
)

const webhookPath = "/api/github/webhooks"

// Dispatcher routes a parsed webhook event to the matching components.
type Dispatcher interface {
	Dispatch(ctx context.Context, event any) error
}

type Server struct {
	engine     *gin.Engine
	dispatcher Dispatcher
	secret     []byte
	log        zerolog.Logger
}

func New(dispatcher Dispatcher, webhookSecret string, log zerolog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{
		engine:     engine,
		dispatcher: dispatcher,
		secret:     []byte(webhookSecret),
		log:        log,
	}
	engine.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	engine.POST(webhookPath, s.handleWebhook)
	return s
}

func (s *Server) Run(addr string) error {
	s.log.Info().Str("addr", addr).Msg("listening for webhook deliveries")
	return s.engine.Run(addr)
}

// Handler exposes the underlying http.Handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) handleWebhook(c *gin.Context) {
	deliveryID := gh.DeliveryID(c.Request)
	eventType := gh.WebHookType(c.Request)
	log := s.log.With().
		Str("delivery", deliveryID).
		Str("event", eventType).
		Logger()

	payload, err := gh.ValidatePayload(c.Request, s.secret)
	if err != nil {
		log.Warn().Err(err).Msg("rejecting delivery with bad signature")
		c.String(http.StatusUnauthorized, "invalid signature")
		return
	}

	event, err := gh.ParseWebHook(eventType, payload)
	if err != nil {
		log.Warn().Err(err).Msg("rejecting unparseable delivery")
		c.String(http.StatusBadRequest, "invalid payload")
		return
	}

	// Deliveries are acknowledged immediately and processed in the
	// background. Handling deliberately outlives the request: there is no
	// cancellation path, an event either completes or fails on its own.
	go func() {
		if err := s.dispatcher.Dispatch(context.Background(), event); err != nil {
			log.Error().Err(err).Msg("event processing failed")
		}
	}()
	c.Status(http.StatusAccepted)
}
