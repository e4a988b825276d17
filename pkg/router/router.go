package router

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/questx-lab/giveaway/config"
	"github.com/questx-lab/giveaway/pkg/logger"
	"gorm.io/gorm"
)

type HandlerFunc[Request, Response any] func(ctx context.Context, req *Request) (*Response, error)

// MiddlewareFunc runs before or after the handler. Returning an error stops
// the remaining middlewares and the handler.
type MiddlewareFunc func(ctx context.Context) (context.Context, error)

// CloserFunc always runs at the end of a request, after the response is
// written.
type CloserFunc func(ctx context.Context)

type Router struct {
	Inner   gin.IRouter
	db      *gorm.DB
	cfg     config.Configs
	logger  logger.Logger
	befores []MiddlewareFunc
	afters  []MiddlewareFunc
	closers []CloserFunc
}

func New(db *gorm.DB, cfg config.Configs, logger logger.Logger) *Router {
	return &Router{
		Inner:  gin.New(),
		db:     db,
		cfg:    cfg,
		logger: logger,
	}
}

// Branch returns a router sharing the same routes which inherits the current
// middlewares. Middlewares added to the branch do not affect the parent.
func (r *Router) Branch() *Router {
	return &Router{
		Inner:   r.Inner,
		db:      r.db,
		cfg:     r.cfg,
		logger:  r.logger,
		befores: append([]MiddlewareFunc{}, r.befores...),
		afters:  append([]MiddlewareFunc{}, r.afters...),
		closers: append([]CloserFunc{}, r.closers...),
	}
}

func (r *Router) Before(middleware MiddlewareFunc) {
	r.befores = append(r.befores, middleware)
}

func (r *Router) After(middleware MiddlewareFunc) {
	r.afters = append(r.afters, middleware)
}

func (r *Router) AddCloser(closer CloserFunc) {
	r.closers = append(r.closers, closer)
}

// Handle registers a plain http handler, such as the metrics endpoint.
func (r *Router) Handle(method, pattern string, handler http.Handler) {
	r.Inner.Handle(method, pattern, gin.WrapH(handler))
}

func (r *Router) Handler() http.Handler {
	return r.Inner.(*gin.Engine)
}

func GET[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	r.Inner.GET(pattern, wrapHandler(r, http.MethodGet, handler))
}

func POST[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	r.Inner.POST(pattern, wrapHandler(r, http.MethodPost, handler))
}
