package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/questx-lab/giveaway/pkg/errorx"
	"github.com/questx-lab/giveaway/pkg/xcontext"
)

type response struct {
	Code  int64  `json:"code"`
	Error string `json:"error,omitempty"`
	Data  any    `json:"data,omitempty"`
}

func newResponse(data any) response {
	return response{
		Code: 0,
		Data: data,
	}
}

func newErrorResponse(err error) response {
	errx := errorx.Error{}
	if errors.As(err, &errx) {
		return response{
			Code:  int64(errx.Code),
			Error: errx.Message,
		}
	}

	return response{
		Code:  int64(errorx.Unknown.Code),
		Error: errorx.Unknown.Message,
	}
}

func writeResponse(ctx context.Context, c *gin.Context) {
	resp := newResponse(xcontext.GetResponse(ctx))
	if err := xcontext.Error(ctx); err != nil {
		resp = newErrorResponse(err)
	}

	c.Header("Content-Type", "application/json")
	if err := WriteJson(c.Writer, resp); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot write the response: %v", err)
		xcontext.SetError(ctx, errorx.New(errorx.BadResponse, "Cannot write the response"))
	}
}

func WriteJson(w http.ResponseWriter, resp any) error {
	b, err := json.Marshal(resp)
	if err != nil {
		return err
	}

	if _, err := w.Write(b); err != nil {
		return err
	}

	return nil
}
