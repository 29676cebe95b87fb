package server

import (
	"strings"

	"github.com/gin-gonic/gin"
)

type RouteDoc struct {
	Method      string `json:"method"`
	Pattern     string `json:"pattern"`
	Summary     string `json:"summary,omitempty"`
	ExampleBody string `json:"example_body,omitempty"`
}

type RouteRegistry struct {
	routes []RouteDoc
}

func (rr *RouteRegistry) Add(doc RouteDoc) {
	rr.routes = append(rr.routes, doc)
}

func (rr *RouteRegistry) List() []RouteDoc {
	out := make([]RouteDoc, len(rr.routes))
	copy(out, rr.routes)
	return out
}

// Handle registers h on g and documents it. methodAndPattern is relative to
// the group, e.g. "POST /players/:color/buy".
func Handle(g *gin.RouterGroup, rr *RouteRegistry, methodAndPattern, summary, exampleBody string, h gin.HandlerFunc) {
	method, pattern, _ := strings.Cut(methodAndPattern, " ")
	rr.Add(RouteDoc{
		Method:      method,
		Pattern:     strings.TrimSuffix(g.BasePath(), "/") + pattern,
		Summary:     summary,
		ExampleBody: exampleBody,
	})
	g.Handle(method, pattern, h)
}
