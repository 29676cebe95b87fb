package server

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/JoaoRebolo/NetMaster-sub000/internal/assets"
	"github.com/JoaoRebolo/NetMaster-sub000/internal/board"
	"github.com/JoaoRebolo/NetMaster-sub000/internal/catalog"
	"github.com/JoaoRebolo/NetMaster-sub000/internal/economy"
	"github.com/JoaoRebolo/NetMaster-sub000/internal/input"
	"github.com/JoaoRebolo/NetMaster-sub000/internal/model"

	"github.com/gin-gonic/gin"
)

type instanceBody struct {
	Instance string `json:"instance" binding:"required"`
}

type sellBody struct {
	Instance string `json:"instance" binding:"required"`
	Type     string `json:"type" binding:"required"`
}

type moveBody struct {
	Steps int `json:"steps"`
}

type chooseBody struct {
	Target string `json:"target" binding:"required"`
}

func badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func colorParam(c *gin.Context) (model.Color, bool) {
	color, err := model.ParseColor(c.Param("color"))
	if err != nil {
		badRequest(c, err)
		return "", false
	}
	return color, true
}

func (a *API) snapshot(c *gin.Context) {
	c.JSON(http.StatusOK, a.session.Snapshot())
}

func (a *API) requestExit(c *gin.Context) {
	if a.exit == nil {
		c.AbortWithStatusJSON(http.StatusNotImplemented, gin.H{"error": "exit source not configured"})
		return
	}
	delivered := a.exit.Send(input.Event{Kind: input.RequestExit, Origin: "http"})
	c.JSON(http.StatusAccepted, gin.H{"requested": true, "delivered": delivered})
}

func (a *API) qr(c *gin.Context) {
	url := a.publicURL
	if url == "" {
		url = "http://" + c.Request.Host + "/"
	}
	size, _ := strconv.Atoi(c.Query("size"))
	png, err := assets.QRCode(url, size)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

func (a *API) stats(c *gin.Context) {
	stats, err := a.session.Stats()
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (a *API) squares(c *gin.Context) {
	c.JSON(http.StatusOK, a.session.Board().Squares())
}

func (a *API) squareAt(c *gin.Context) {
	pos, err := strconv.Atoi(c.Param("pos"))
	if err != nil {
		badRequest(c, fmt.Errorf("position: %w", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"position": board.Wrap(pos),
		"square":   a.session.Board().SquareAt(pos),
	})
}

func (a *API) listCards(c *gin.Context) {
	var opt catalog.FilterOptions
	for _, k := range c.QueryArray("kind") {
		t, err := model.NormalizeCardType(k)
		if err != nil {
			badRequest(c, err)
			return
		}
		opt.Kinds = append(opt.Kinds, t)
	}
	for _, s := range c.QueryArray("color") {
		color, err := model.ParseColor(s)
		if err != nil {
			badRequest(c, err)
			return
		}
		opt.Colors = append(opt.Colors, color)
	}
	if v := c.Query("max_buy_cost"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			badRequest(c, fmt.Errorf("max_buy_cost: %w", err))
			return
		}
		opt.MaxBuyCost = n
	}
	opt.FreeWords = c.Query("q")

	c.JSON(http.StatusOK, catalog.Filter(a.session.Catalog().All(), opt))
}

func (a *API) getCard(c *gin.Context) {
	kind, err := model.NormalizeCardType(c.Param("kind"))
	if err != nil {
		badRequest(c, err)
		return
	}
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		badRequest(c, fmt.Errorf("id: %w", err))
		return
	}
	card, err := a.session.Catalog().Get(kind, id)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, card)
}

func (a *API) locate(c *gin.Context) {
	instance := c.Query("instance")
	loc, ok := a.session.Locate(instance)
	if !ok {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "unknown instance " + instance})
		return
	}
	c.JSON(http.StatusOK, gin.H{"instance": instance, "location": loc})
}

func (a *API) image(c *gin.Context) {
	if a.images == nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "no asset directory configured"})
		return
	}
	instance := c.Query("instance")
	if _, ok := a.session.Locate(instance); !ok {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "unknown instance " + instance})
		return
	}
	path, err := a.images.Path(model.CardRef{Instance: instance})
	if err != nil {
		badRequest(c, err)
		return
	}
	width := a.thumbW
	if w, err := strconv.Atoi(c.Query("width")); err == nil && w > 0 {
		width = w
	}
	img, err := assets.Thumbnail(path, width)
	if err != nil {
		a.fail(c, err)
		return
	}
	var buf bytes.Buffer
	if err := assets.EncodePNG(&buf, img); err != nil {
		a.fail(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

func (a *API) player(c *gin.Context) {
	color, ok := colorParam(c)
	if !ok {
		return
	}
	p, err := a.session.Player(color)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (a *API) canSell(c *gin.Context) {
	color, ok := colorParam(c)
	if !ok {
		return
	}
	t, err := model.NormalizeCardType(c.Param("kind"))
	if err != nil {
		badRequest(c, err)
		return
	}
	err = a.session.CanSell(color, t)
	if err != nil && statusFor(err) != http.StatusUnprocessableEntity {
		a.fail(c, err)
		return
	}
	body := gin.H{"allowed": err == nil}
	if err != nil {
		body["reason"] = err.Error()
	}
	c.JSON(http.StatusOK, body)
}

func (a *API) roll(c *gin.Context) {
	color, ok := colorParam(c)
	if !ok {
		return
	}
	res, err := a.session.Roll(color)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (a *API) move(c *gin.Context) {
	color, ok := colorParam(c)
	if !ok {
		return
	}
	var body moveBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	res, err := a.session.Move(color, body.Steps)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (a *API) draw(c *gin.Context) {
	color, ok := colorParam(c)
	if !ok {
		return
	}
	d, err := a.session.Draw(color)
	if errors.Is(err, economy.ErrEmpty) {
		c.JSON(http.StatusOK, gin.H{"empty": true, "message": economy.ErrEmpty.Error()})
		return
	}
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"empty": false, "drawn": d})
}

// decision binds {"instance": ...} and runs op for the player in the path.
func (a *API) decision(c *gin.Context, op func(model.Color, string) (economy.Receipt, error)) {
	color, ok := colorParam(c)
	if !ok {
		return
	}
	var body instanceBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	r, err := op(color, body.Instance)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (a *API) buy(c *gin.Context)     { a.decision(c, a.session.Buy) }
func (a *API) accept(c *gin.Context)  { a.decision(c, a.session.Accept) }
func (a *API) discard(c *gin.Context) { a.decision(c, a.session.Discard) }
func (a *API) abandon(c *gin.Context) { a.decision(c, a.session.Abandon) }

func (a *API) sell(c *gin.Context) {
	color, ok := colorParam(c)
	if !ok {
		return
	}
	var body sellBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	t, err := model.NormalizeCardType(body.Type)
	if err != nil {
		badRequest(c, err)
		return
	}
	r, err := a.session.Sell(color, body.Instance, t)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (a *API) resolveTarget(c *gin.Context) {
	color, ok := colorParam(c)
	if !ok {
		return
	}
	var body instanceBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	res, err := a.session.ResolveTarget(color, body.Instance)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (a *API) chooseTarget(c *gin.Context) {
	color, ok := colorParam(c)
	if !ok {
		return
	}
	var body chooseBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	target, err := model.ParseColor(body.Target)
	if err != nil {
		badRequest(c, err)
		return
	}
	res, err := a.session.ChooseTarget(color, target)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (a *API) endTurn(c *gin.Context) {
	color, ok := colorParam(c)
	if !ok {
		return
	}
	next, err := a.session.EndTurn(color)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"next": next})
}
