package handler

import (
	"bytes"
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"

	"projecttracker/pkg/apperr"
	"projecttracker/pkg/logger"
	"projecttracker/pkg/util"
)

// Invalidator 写操作成功后使项目树缓存失效
type Invalidator interface {
	Invalidate(ctx context.Context)
}

type noopInvalidator struct{}

func (noopInvalidator) Invalidate(context.Context) {}

func orNoop(inv Invalidator) Invalidator {
	if inv == nil {
		return noopInvalidator{}
	}
	return inv
}

// writeError 按错误分类输出状态码，只把 Message 返回给客户端
func writeError(c *gin.Context, l *zap.Logger, op string, err error) {
	l = logger.WithTrace(c.Request.Context(), l)

	e, ok := apperr.As(err)
	if !ok {
		e = apperr.Store("Internal server error", err)
	}

	status := e.HTTPStatus()
	if status >= http.StatusInternalServerError {
		l.Error(op+": failed",
			zap.String("error_type", util.ClassifyStoreError(e.Cause)),
			zap.Error(err),
		)
	} else {
		l.Warn(op+": rejected",
			zap.String("code", string(e.Code)),
			zap.String("reason", e.Message),
		)
	}
	c.JSON(status, gin.H{"error": e.Message})
}

// maxBodyBytes 请求体上限
const maxBodyBytes = 1 << 20

// bindBody 解析 JSON 请求体并按 binding 标签校验；空请求体按 {} 校验并返回 empty=true
func bindBody(c *gin.Context, out any) (empty bool, err error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
	body, err := c.GetRawData()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return false, apperr.Validation("Request body too large")
		}
		return false, apperr.Validation("Invalid request body")
	}
	if len(bytes.TrimSpace(body)) == 0 {
		empty = true
		body = []byte("{}")
	}
	if err := binding.JSON.BindBody(body, out); err != nil {
		return empty, validationError(err)
	}
	return empty, nil
}
