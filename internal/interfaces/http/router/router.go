// Package router declares the storefront's URL space. Routes are collected
// into DomainGroups first and bound to gin when a Router is Setup, so route
// tables read top to bottom like the API they describe.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router binds registrars under one path prefix
type Router struct {
	engine     *gin.Engine
	prefix     string
	middleware []gin.HandlerFunc
	registrars []RouteRegistrar
}

type RouterOption func(*Router)

// WithPrefix replaces the default "/api" mount point
func WithPrefix(prefix string) RouterOption {
	return func(r *Router) { r.prefix = prefix }
}

func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{engine: engine, prefix: "/api"}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Router) Use(middleware ...gin.HandlerFunc) *Router {
	r.middleware = append(r.middleware, middleware...)
	return r
}

func (r *Router) Register(registrars ...RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrars...)
	return r
}

func (r *Router) Setup() {
	group := r.engine.Group(r.prefix, r.middleware...)
	for _, reg := range r.registrars {
		reg.RegisterRoutes(group)
	}
}

// DomainGroup is a deferred gin group. Its routes are bound in declaration
// order, nested groups after the group's own routes.
type DomainGroup struct {
	name       string
	prefix     string
	middleware []gin.HandlerFunc
	binds      []func(*gin.RouterGroup)
}

func NewDomainGroup(name, prefix string) *DomainGroup {
	return &DomainGroup{name: name, prefix: prefix}
}

func (dg *DomainGroup) Name() string   { return dg.name }
func (dg *DomainGroup) Prefix() string { return dg.prefix }

func (dg *DomainGroup) Use(middleware ...gin.HandlerFunc) *DomainGroup {
	dg.middleware = append(dg.middleware, middleware...)
	return dg
}

// Handle binds the same handler chain to every method in methods
func (dg *DomainGroup) Handle(methods []string, path string, handlers ...gin.HandlerFunc) *DomainGroup {
	dg.binds = append(dg.binds, func(rg *gin.RouterGroup) {
		for _, m := range methods {
			rg.Handle(m, path, handlers...)
		}
	})
	return dg
}

func (dg *DomainGroup) GET(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.Handle([]string{http.MethodGet}, path, handlers...)
}

func (dg *DomainGroup) POST(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.Handle([]string{http.MethodPost}, path, handlers...)
}

func (dg *DomainGroup) PUT(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.Handle([]string{http.MethodPut}, path, handlers...)
}

func (dg *DomainGroup) PATCH(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.Handle([]string{http.MethodPatch}, path, handlers...)
}

func (dg *DomainGroup) DELETE(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.Handle([]string{http.MethodDelete}, path, handlers...)
}

// Group nests a child group. The child inherits this group's middleware.
func (dg *DomainGroup) Group(name, prefix string) *DomainGroup {
	child := NewDomainGroup(name, prefix)
	dg.binds = append(dg.binds, child.RegisterRoutes)
	return child
}

func (dg *DomainGroup) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group(dg.prefix, dg.middleware...)
	for _, bind := range dg.binds {
		bind(group)
	}
}

func chain(middleware []gin.HandlerFunc, handlers ...gin.HandlerFunc) []gin.HandlerFunc {
	return append(append(make([]gin.HandlerFunc, 0, len(middleware)+len(handlers)), middleware...), handlers...)
}
