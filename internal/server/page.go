package server

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/JoaoRebolo/NetMaster-sub000/internal/game"

	"github.com/a-h/templ"
	"github.com/gin-gonic/gin"
)

// statusView renders the read-only board status shown next to the device.
func statusView(snap game.Snapshot) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := func(format string, args ...any) error {
			_, err := fmt.Fprintf(w, format, args...)
			return err
		}

		if err := p(`<!doctype html><html><head><meta charset="utf-8"><title>NetMaster</title></head><body>`); err != nil {
			return err
		}
		if err := p(`<h1>NetMaster session %s</h1>`, templ.EscapeString(snap.ID)); err != nil {
			return err
		}
		state := "in play"
		if snap.Ended {
			state = "ended"
		}
		if err := p(`<p>Round %d, %s to play (%s). Shop holds %d picoins.</p>`,
			snap.Round+1, templ.EscapeString(string(snap.Current)), state, snap.Shop.Balance); err != nil {
			return err
		}

		if err := p(`<table><tr><th>Player</th><th>Square</th><th>Picoins</th><th>Cards</th></tr>`); err != nil {
			return err
		}
		for _, pl := range snap.Players {
			if err := p(`<tr><td>%s</td><td>%d</td><td>%d</td><td>%d</td></tr>`,
				templ.EscapeString(string(pl.Color)), pl.Position, pl.Balance, pl.Count()); err != nil {
				return err
			}
		}
		if err := p(`</table>`); err != nil {
			return err
		}

		if snap.Pending != nil {
			if err := p(`<p>Pending: %s drew %s (%s)</p>`,
				templ.EscapeString(string(snap.Pending.Drawer)),
				templ.EscapeString(snap.Pending.Card.Title()),
				templ.EscapeString(snap.Pending.Ref.Key())); err != nil {
				return err
			}
		}
		return p(`<p><a href="/api/routes">API routes</a></p></body></html>`)
	})
}

func (a *API) statusPage(c *gin.Context) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := statusView(a.session.Snapshot()).Render(c.Request.Context(), c.Writer); err != nil {
		a.fail(c, err)
	}
}
