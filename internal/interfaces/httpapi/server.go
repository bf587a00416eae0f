package httpapi

import (
	"net/http"

	"github.com/placarlab/matchodds/internal/platform/logging"
)

// NewRouter wires the full middleware chain around the route table. Order
// matters: tracing must wrap logging so request logs carry trace IDs, and
// panic recovery sits innermost so every other layer still runs.
func NewRouter(handler *Handler, logger *logging.Logger, corsAllowedOrigins []string) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}

	mux := http.NewServeMux()
	registerSystemRoutes(mux, handler)
	registerDomainRoutes(mux, handler)

	return RequestTracing(
		RequestLogging(logger,
			CORS(corsAllowedOrigins,
				recoverPanic(logger, mux),
			),
		),
	)
}

func recoverPanic(logger *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.ErrorContext(r.Context(), "panic recovered",
					"panic", rec,
					"method", r.Method,
					"path", r.URL.Path,
				)
				writeInternalError(r.Context(), w)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
