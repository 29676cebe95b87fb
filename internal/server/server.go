package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/JoaoRebolo/NetMaster-sub000/internal/assets"
	"github.com/JoaoRebolo/NetMaster-sub000/internal/game"
	"github.com/JoaoRebolo/NetMaster-sub000/internal/httpmw"
	"github.com/JoaoRebolo/NetMaster-sub000/internal/input"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Options for NewHandler. Exit receives RequestExit from
// POST /api/session/exit. Images is set when decks come from an asset
// directory and serves card pictures.
type Options struct {
	Session        *game.Session
	Exit           *input.ChanSource
	Images         *assets.DirSource
	ThumbnailWidth int
	PublicURL      string
	Logger         *zap.Logger
}

// API holds what the handlers depend on.
type API struct {
	session   *game.Session
	exit      *input.ChanSource
	images    *assets.DirSource
	thumbW    int
	publicURL string
	routes    *RouteRegistry
	log       *zap.Logger
}

func NewHandler(opts Options) (*gin.Engine, error) {
	if opts.Session == nil {
		return nil, errors.New("session is required")
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.ThumbnailWidth <= 0 {
		opts.ThumbnailWidth = 320
	}

	api := &API{
		session:   opts.Session,
		exit:      opts.Exit,
		images:    opts.Images,
		thumbW:    opts.ThumbnailWidth,
		publicURL: opts.PublicURL,
		routes:    &RouteRegistry{},
		log:       opts.Logger,
	}

	r := gin.New()
	r.Use(httpmw.RequestID(), httpmw.AccessLog(opts.Logger), httpmw.Recover(opts.Logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"ok":      true,
			"service": "netmaster",
			"session": api.session.ID(),
			"time":    time.Now().UTC().Format(time.RFC3339),
		})
	})
	r.GET("/", api.statusPage)

	api.register(r.Group("/api"))
	return r, nil
}

func (a *API) register(g *gin.RouterGroup) {
	Handle(g, a.routes, "GET /routes", "List routes", "", func(c *gin.Context) {
		c.JSON(http.StatusOK, a.routes.List())
	})

	Handle(g, a.routes, "GET /session", "Session snapshot", "", a.snapshot)
	Handle(g, a.routes, "POST /session/exit", "Request exit", "", a.requestExit)
	Handle(g, a.routes, "GET /session/qr", "QR code for the status page", "", a.qr)
	Handle(g, a.routes, "GET /stats", "Transaction stats", "", a.stats)

	Handle(g, a.routes, "GET /board", "All squares", "", a.squares)
	Handle(g, a.routes, "GET /board/:pos", "Square at a position", "", a.squareAt)

	Handle(g, a.routes, "GET /cards", "Browse the catalog", "", a.listCards)
	Handle(g, a.routes, "GET /cards/:kind/:id", "Catalog entry", "", a.getCard)
	Handle(g, a.routes, "GET /locate", "Where an instance is", "", a.locate)
	Handle(g, a.routes, "GET /image", "Card instance thumbnail", "", a.image)

	Handle(g, a.routes, "GET /players/:color", "Player state", "", a.player)
	Handle(g, a.routes, "GET /players/:color/can-sell/:kind", "Sell eligibility", "", a.canSell)
	Handle(g, a.routes, "POST /players/:color/roll", "Roll and move", "", a.roll)
	Handle(g, a.routes, "POST /players/:color/move", "Move a fixed number of squares", `{"steps":3}`, a.move)
	Handle(g, a.routes, "POST /players/:color/draw", "Draw on the current square", "", a.draw)
	Handle(g, a.routes, "POST /players/:color/buy", "Buy the pending card", `{"instance":"users/1"}`, a.buy)
	Handle(g, a.routes, "POST /players/:color/accept", "Accept the pending card", `{"instance":"challenges/1"}`, a.accept)
	Handle(g, a.routes, "POST /players/:color/discard", "Discard the pending card", `{"instance":"challenges/1"}`, a.discard)
	Handle(g, a.routes, "POST /players/:color/abandon", "Put the pending card back", `{"instance":"users/1"}`, a.abandon)
	Handle(g, a.routes, "POST /players/:color/sell", "Sell an owned card", `{"instance":"users/1","type":"users"}`, a.sell)
	Handle(g, a.routes, "POST /players/:color/target", "Resolve an action or event target", `{"instance":"events/8"}`, a.resolveTarget)
	Handle(g, a.routes, "POST /players/:color/target/choose", "Answer a target choice", `{"target":"red"}`, a.chooseTarget)
	Handle(g, a.routes, "POST /players/:color/end-turn", "End the turn", "", a.endTurn)
}

func (a *API) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		a.log.Error("request failed",
			zap.String("request_id", httpmw.RequestIDFromContext(c)),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error(), "reason": game.Reason(err)})
}
