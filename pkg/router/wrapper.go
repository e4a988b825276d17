package router

import (
	"context"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/mitchellh/mapstructure"
	"github.com/questx-lab/giveaway/pkg/errorx"
	"github.com/questx-lab/giveaway/pkg/xcontext"
)

func wrapHandler[Request, Response any](
	router *Router,
	method string,
	handler HandlerFunc[Request, Response],
) gin.HandlerFunc {
	befores := router.befores
	afters := router.afters
	closers := router.closers

	return func(c *gin.Context) {
		r := c.Request
		ctx := r.Context()
		ctx = xcontext.WithConfigs(ctx, router.cfg)
		ctx = xcontext.WithLogger(ctx, router.logger)
		ctx = xcontext.WithDB(ctx, router.db)
		ctx = xcontext.WithHTTPRequest(ctx, r)
		ctx = xcontext.WithResponseSlots(ctx)

		defer func() {
			writeResponse(ctx, c)
			for _, closer := range closers {
				closer(ctx)
			}
		}()

		ctx, err := runMiddlewares(ctx, befores)
		if err != nil {
			xcontext.SetError(ctx, err)
			return
		}

		var req Request
		if err := parseRequest(c, method, &req); err != nil {
			xcontext.Logger(ctx).Debugf("Cannot parse request: %v", err)
			xcontext.SetError(ctx, errorx.New(errorx.BadRequest, "Invalid request"))
			return
		}

		resp, err := handler(ctx, &req)
		if err != nil {
			xcontext.SetError(ctx, err)
			return
		}
		xcontext.SetResponse(ctx, resp)

		if _, err := runMiddlewares(ctx, afters); err != nil {
			xcontext.SetError(ctx, err)
		}
	}
}

func runMiddlewares(ctx context.Context, middlewares []MiddlewareFunc) (context.Context, error) {
	for _, m := range middlewares {
		var err error
		ctx, err = m(ctx)
		if err != nil {
			return ctx, err
		}
	}

	return ctx, nil
}

func parseRequest(c *gin.Context, method string, req any) error {
	switch method {
	case http.MethodGet:
		return decodeQuery(c.Request.URL.Query(), req)
	default:
		if c.Request.ContentLength == 0 {
			return nil
		}

		return c.ShouldBindJSON(req)
	}
}

// decodeQuery maps query parameters onto the json field names of req. Only
// the first value of each parameter is used.
func decodeQuery(query url.Values, req any) error {
	values := map[string]any{}
	for key := range query {
		values[key] = query.Get(key)
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           req,
	})
	if err != nil {
		return err
	}

	return decoder.Decode(values)
}
