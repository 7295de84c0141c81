package web

import (
	"context"
	_ "embed"
	"errors"
	"net"
	"net/http"
	"os"
	"os/exec"
	"regexp"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

//go:embed static/index.html
var indexHTML []byte

var userRe = regexp.MustCompile(`^[A-Za-z0-9_.@-]{1,64}$`)

const cookieName = "minibooks_session"

// Options configures a web terminal server.
type Options struct {
	Addr   string
	APIURL string // API server the spawned TUI talks to
	User   string // default acting user
}

// Server serves a browser terminal running the TUI against an API server.
type Server struct {
	opts   Options
	router chi.Router
	log    zerolog.Logger

	// command builds the process attached to each terminal session.
	command func(ctx context.Context, user string) (*exec.Cmd, error)
}

func NewServer(opts Options, log zerolog.Logger) *Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	s := &Server{opts: opts, router: r, log: log.With().Str("component", "web").Logger()}
	s.command = s.tuiCommand

	r.Get("/", s.handleIndex)
	r.With(httprate.LimitByIP(30, time.Minute)).Get("/ws", s.handleWebSocket)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	return s
}

func (s *Server) Handler() http.Handler { return s.router }

// tuiCommand re-executes this binary in TUI mode as the given user.
func (s *Server) tuiCommand(ctx context.Context, user string) (*exec.Cmd, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, err
	}
	cmd := exec.CommandContext(ctx, exe, "tui", "--server", s.opts.APIURL, "--user", user)
	cmd.Env = append(os.Environ(), "TERM=xterm-256color", "COLORTERM=truecolor")
	return cmd, nil
}

// sessionID reads or issues the session cookie used to tag terminal logs.
func (s *Server) sessionID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(cookieName); err == nil {
		if _, err := uuid.Parse(c.Value); err == nil {
			return c.Value
		}
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   30 * 24 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.sessionID(w, r)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Frame-Options", "DENY")
	w.Write(indexHTML)
}

// actingUser picks the ?user= query parameter when valid, else the default.
func (s *Server) actingUser(r *http.Request) (string, error) {
	u := r.URL.Query().Get("user")
	if u == "" {
		return s.opts.User, nil
	}
	if !userRe.MatchString(u) {
		return "", errors.New("invalid user id")
	}
	return u, nil
}

// Serve runs on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{Handler: s.router, ReadHeaderTimeout: 10 * time.Second}
	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()

	s.log.Info().Str("addr", ln.Addr().String()).Str("api", s.opts.APIURL).Msg("web terminal listening")
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdown)
	}
}

func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}
