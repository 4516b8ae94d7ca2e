// Package router mounts the posting API's domain groups under a versioned
// prefix.
package router

import (
	"net/http"
	"path"

	"github.com/gin-gonic/gin"
)

// RouteRegistrar defines the interface for registering routes
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router collects domain groups and mounts them under /api/<version>
type Router struct {
	engine     *gin.Engine
	apiVersion string
	groups     []*DomainGroup
	others     []RouteRegistrar
}

// RouterOption is a functional option for Router configuration
type RouterOption func(*Router)

// WithAPIVersion sets the API version prefix (e.g., "v1", "v2")
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) {
		r.apiVersion = version
	}
}

// NewRouter creates a new Router instance
func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{
		engine:     engine,
		apiVersion: "v1",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a RouteRegistrar to be mounted by Setup
func (r *Router) Register(registrar RouteRegistrar) *Router {
	if g, ok := registrar.(*DomainGroup); ok {
		r.groups = append(r.groups, g)
	} else {
		r.others = append(r.others, registrar)
	}
	return r
}

// BasePath is the prefix every registered group is mounted under
func (r *Router) BasePath() string {
	return "/api/" + r.apiVersion
}

// Setup mounts all registered groups on the engine
func (r *Router) Setup() {
	api := r.engine.Group(r.BasePath())
	for _, g := range r.groups {
		g.RegisterRoutes(api)
	}
	for _, other := range r.others {
		other.RegisterRoutes(api)
	}
}

// RouteInfo describes one mounted route
type RouteInfo struct {
	Group  string
	Method string
	Path   string
}

// Routes lists the routes of every registered domain group with their full
// path, in registration order. Used for the startup route table log.
func (r *Router) Routes() []RouteInfo {
	var out []RouteInfo
	for _, g := range r.groups {
		out = g.collect(r.BasePath(), out)
	}
	return out
}

// DomainGroup holds the routes of one part of the API, such as orders or
// payments, plus middleware that applies only to them
type DomainGroup struct {
	name       string
	prefix     string
	routes     []route
	subgroups  []*DomainGroup
	middleware []gin.HandlerFunc
}

type route struct {
	method   string
	path     string
	handlers []gin.HandlerFunc
}

// NewDomainGroup creates a new domain-specific route group
func NewDomainGroup(name, prefix string) *DomainGroup {
	return &DomainGroup{name: name, prefix: prefix}
}

// Use adds middleware to this group
func (dg *DomainGroup) Use(middleware ...gin.HandlerFunc) *DomainGroup {
	dg.middleware = append(dg.middleware, middleware...)
	return dg
}

// Handle registers a route for an arbitrary method
func (dg *DomainGroup) Handle(method, relPath string, handlers ...gin.HandlerFunc) *DomainGroup {
	dg.routes = append(dg.routes, route{method: method, path: relPath, handlers: handlers})
	return dg
}

// GET registers a GET route
func (dg *DomainGroup) GET(relPath string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.Handle(http.MethodGet, relPath, handlers...)
}

// POST registers a POST route
func (dg *DomainGroup) POST(relPath string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.Handle(http.MethodPost, relPath, handlers...)
}

// PUT registers a PUT route
func (dg *DomainGroup) PUT(relPath string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.Handle(http.MethodPut, relPath, handlers...)
}

// DELETE registers a DELETE route
func (dg *DomainGroup) DELETE(relPath string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.Handle(http.MethodDelete, relPath, handlers...)
}

// Group creates a sub-group within this domain
func (dg *DomainGroup) Group(name, prefix string) *DomainGroup {
	subgroup := NewDomainGroup(name, prefix)
	dg.subgroups = append(dg.subgroups, subgroup)
	return subgroup
}

// RegisterRoutes implements RouteRegistrar
func (dg *DomainGroup) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group(dg.prefix)
	if len(dg.middleware) > 0 {
		group.Use(dg.middleware...)
	}
	for _, rt := range dg.routes {
		group.Handle(rt.method, rt.path, rt.handlers...)
	}
	for _, subgroup := range dg.subgroups {
		subgroup.RegisterRoutes(group)
	}
}

func (dg *DomainGroup) collect(base string, out []RouteInfo) []RouteInfo {
	prefix := path.Join(base, dg.prefix)
	for _, rt := range dg.routes {
		full := prefix
		if rt.path != "" {
			full = path.Join(prefix, rt.path)
		}
		out = append(out, RouteInfo{Group: dg.name, Method: rt.method, Path: full})
	}
	for _, sub := range dg.subgroups {
		out = sub.collect(prefix, out)
	}
	return out
}

// Name returns the group name
func (dg *DomainGroup) Name() string {
	return dg.name
}

// Prefix returns the group prefix
func (dg *DomainGroup) Prefix() string {
	return dg.prefix
}
