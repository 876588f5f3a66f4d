package controllers

import (
	"context"
	"net/http"
	"time"
)

func pingContext(r *http.Request, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), timeout)
}
