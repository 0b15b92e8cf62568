// package server hosts the loopback OAuth2 callback used by auth login.
package server

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"
)

// AuthCode is the outcome of one authorization round trip.
type AuthCode struct {
	Code string
	Err  error
}

// CallbackServer captures the authorization code delivered to the loopback
// redirect URI. The token exchange itself happens in the catalog service.
type CallbackServer struct {
	state    string
	addr     string
	path     string
	result   chan AuthCode
	once     sync.Once
	httpServ *http.Server
}

// NewCallbackServer creates a server for the given redirect URI and CSRF
// state token.
func NewCallbackServer(redirectURI, state string) (*CallbackServer, error) {
	parsed, err := url.Parse(redirectURI)
	if err != nil {
		return nil, fmt.Errorf("invalid redirect URI: %w", err)
	}

	path := parsed.Path
	if path == "" {
		path = "/callback"
	}

	return &CallbackServer{
		state:  state,
		addr:   parsed.Host,
		path:   path,
		result: make(chan AuthCode, 1),
	}, nil
}

// Start begins serving the callback endpoint in the background.
func (s *CallbackServer) Start() error {
	mux := http.NewServeMux()
	mux.HandleFunc(s.path, s.handleCallback)

	s.httpServ = &http.Server{Addr: s.addr, Handler: mux}

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServ.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("callback server failed to start: %w", err)
	case <-time.After(100 * time.Millisecond):
		return nil
	}
}

// Wait blocks until the callback is hit or the context expires.
func (s *CallbackServer) Wait(ctx context.Context) (string, error) {
	select {
	case result := <-s.result:
		return result.Code, result.Err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Shutdown stops the server.
func (s *CallbackServer) Shutdown(ctx context.Context) error {
	if s.httpServ == nil {
		return nil
	}
	return s.httpServ.Shutdown(ctx)
}

func (s *CallbackServer) handleCallback(w http.ResponseWriter, r *http.Request) {
	if state := r.URL.Query().Get("state"); state != s.state {
		s.send(AuthCode{Err: fmt.Errorf("invalid state parameter")})
		http.Error(w, "Invalid state parameter", http.StatusBadRequest)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		errParam := r.URL.Query().Get("error")
		s.send(AuthCode{Err: fmt.Errorf("authorization failed: %s", errParam)})
		http.Error(w, "Authorization failed", http.StatusBadRequest)
		return
	}

	s.send(AuthCode{Code: code})

	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, `<!DOCTYPE html>
<html>
<body style="font-family: sans-serif; text-align: center; margin-top: 4rem;">
	<h1>Authorization successful</h1>
	<p>You can close this window and return to the terminal.</p>
</body>
</html>
`)
}

// send delivers the result exactly once; later callback hits are ignored.
func (s *CallbackServer) send(result AuthCode) {
	s.once.Do(func() {
		s.result <- result
		close(s.result)
	})
}
