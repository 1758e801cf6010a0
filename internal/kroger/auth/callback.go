package auth

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// NewState returns a random OAuth state value.
func NewState() string {
	return uuid.NewString()
}

type callbackResult struct {
	code string
	err  error
}

// CallbackServer is a one-shot local HTTP server that receives the
// authorization code redirect.
type CallbackServer struct {
	ln     net.Listener
	srv    *http.Server
	path   string
	state  string
	result chan callbackResult
}

// ListenForCallback starts a callback server on 127.0.0.1:port. Port 0
// picks a free port.
func ListenForCallback(port int, path, state string) (*CallbackServer, error) {
	ln, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	if err != nil {
		return nil, fmt.Errorf("listen for callback: %w", err)
	}

	cs := &CallbackServer{
		ln:     ln,
		path:   path,
		state:  state,
		result: make(chan callbackResult, 1),
	}

	mux := http.NewServeMux()
	mux.HandleFunc(path, cs.handle)
	cs.srv = &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	go func() { _ = cs.srv.Serve(ln) }()

	return cs, nil
}

// URL returns the redirect URL served by the callback server.
func (cs *CallbackServer) URL() string {
	return "http://" + cs.ln.Addr().String() + cs.path
}

func (cs *CallbackServer) handle(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var res callbackResult
	switch {
	case q.Get("error") != "":
		res.err = fmt.Errorf("%w: authorization denied: %s", ErrAuthentication, q.Get("error"))
	case q.Get("state") != cs.state:
		res.err = fmt.Errorf("%w: state mismatch", ErrAuthentication)
	case q.Get("code") == "":
		res.err = fmt.Errorf("%w: callback has no code", ErrAuthentication)
	default:
		res.code = q.Get("code")
	}

	if res.err != nil {
		http.Error(w, res.err.Error(), http.StatusBadRequest)
	} else {
		_, _ = fmt.Fprintln(w, "Login complete. You can close this window.")
	}

	select {
	case cs.result <- res:
	default:
	}
}

// Wait blocks until the first callback arrives or ctx is done, then shuts
// the server down.
func (cs *CallbackServer) Wait(ctx context.Context) (string, error) {
	defer cs.Close()

	select {
	case res := <-cs.result:
		return res.code, res.err
	case <-ctx.Done():
		return "", fmt.Errorf("%w: waiting for login callback: %w", ErrAuthentication, ctx.Err())
	}
}

// Close stops the server.
func (cs *CallbackServer) Close() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := cs.srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		_ = cs.srv.Close()
	}
}

// WaitForCode runs a callback server on port until an authorization code
// with a matching state arrives.
func WaitForCode(ctx context.Context, port int, path, state string) (string, error) {
	cs, err := ListenForCallback(port, path, state)
	if err != nil {
		return "", err
	}
	return cs.Wait(ctx)
}
