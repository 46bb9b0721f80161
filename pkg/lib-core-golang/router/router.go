package router

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"goji.io"
	"goji.io/pat"

	"github.com/evgeny-myasishchev/ledger.transactions-entry/pkg/lib-core-golang/diag"
)

var logger = diag.CreateLogger()

// MiddlewareFunc is a function that can be injected into a request chain
type MiddlewareFunc func(next http.Handler) http.Handler

// ToolkitHandlerFunc is a handler that gets request tools and returns
// errors instead of writing them. Returned errors are sent as HTTPError json
type ToolkitHandlerFunc func(w http.ResponseWriter, req *http.Request, h HandlerToolkit) error

// Router is a layer to abstract underlying http router implementation
type Router interface {
	http.Handler

	Use(mw MiddlewareFunc)

	// Handle registers a plain handler. Pattern may contain path params like /items/:id
	Handle(method string, pattern string, handler http.Handler)

	// HandleFunc registers a handler that works with a HandlerToolkit
	HandleFunc(method string, pattern string, fn ToolkitHandlerFunc)
}

type gojiRouter struct {
	mux       *goji.Mux
	prefix    string
	validator *structValidator
}

func (r *gojiRouter) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

func (r *gojiRouter) Use(mw MiddlewareFunc) {
	r.mux.Use(func(next http.Handler) http.Handler { return mw(next) })
}

func (r *gojiRouter) Handle(method string, pattern string, handler http.Handler) {
	r.mux.Handle(pat.NewWithMethods(r.prefix+pattern, method), handler)
}

func (r *gojiRouter) HandleFunc(method string, pattern string, fn ToolkitHandlerFunc) {
	r.Handle(method, pattern, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		toolkit := &handlerToolkit{
			request:        req,
			responseWriter: w,
			validator:      r.validator,
		}
		if err := fn(w, req, toolkit); err != nil {
			httpErr := newHTTPErrorFromError(err)
			if httpErr.StatusCode >= http.StatusInternalServerError {
				logger.WithError(err).Error(req.Context(), "Failed to process request")
			} else {
				logger.WithError(err).Info(req.Context(), "Request rejected: %v", httpErr.Message)
			}
			httpErr.Send(w)
		}
	}))
}

// RouterOpt is an option of a router
type RouterOpt func(r *gojiRouter)

// WithPrefix mounts all routes under a given path prefix, like /v1
func WithPrefix(prefix string) RouterOpt {
	return func(r *gojiRouter) {
		r.prefix = strings.TrimRight(prefix, "/")
	}
}

// CreateRouter returns default router implementation
func CreateRouter(opts ...RouterOpt) Router {
	r := &gojiRouter{
		mux:       goji.NewMux(),
		validator: newStructValidator(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// StartServer serves the handler on a given port until ctx is done,
// then shuts the server down gracefully
func StartServer(ctx context.Context, port int, handler http.Handler) error {
	server := &http.Server{
		Addr:              fmt.Sprintf(":%v", port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdownDone := make(chan error, 1)
	go func() {
		<-ctx.Done()
		logger.Info(ctx, "Shutting down the server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		shutdownDone <- server.Shutdown(shutdownCtx)
	}()

	logger.Info(ctx, "Starting server on port %v", port)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return <-shutdownDone
}
