package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/pomegranateis/webfinalserver/internal/util"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracingMiddleware returns the otelgin middleware followed by a handler that
// adds custom span attributes. Register both with router.Use(chain...).
func TracingMiddleware(serviceName string) gin.HandlersChain {
	return gin.HandlersChain{
		otelgin.Middleware(serviceName),
		spanAttributes,
	}
}

// spanAttributes runs inside the otelgin span, which ends only after it returns
func spanAttributes(c *gin.Context) {
	c.Next()

	span := trace.SpanFromContext(c.Request.Context())
	if !span.IsRecording() {
		return
	}

	if userID := c.GetString(util.ContextUserID); userID != "" {
		span.SetAttributes(attribute.String("user.id", userID))
	}
	if requestID := c.GetString("request_id"); requestID != "" {
		span.SetAttributes(attribute.String("request.id", requestID))
	}
	if limit := c.Query("limit"); limit != "" {
		span.SetAttributes(attribute.String("query.limit", limit))
	}
	if offset := c.Query("offset"); offset != "" {
		span.SetAttributes(attribute.String("query.offset", offset))
	}

	for _, ginErr := range c.Errors {
		if ginErr.Err != nil {
			span.RecordError(ginErr.Err)
			span.SetStatus(codes.Error, ginErr.Error())
		}
	}
}
