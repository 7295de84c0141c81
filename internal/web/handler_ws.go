package web

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"

	"github.com/coder/websocket"
	"github.com/creack/pty/v2"
)

type resizeMsg struct {
	Type string `json:"type"`
	Cols uint16 `json:"cols"`
	Rows uint16 `json:"rows"`
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	user, err := s.actingUser(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	session := s.sessionID(w, r)
	log := s.log.With().Str("session", session).Str("user", user).Logger()

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket accept")
		return
	}
	defer conn.CloseNow()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	cmd, err := s.command(ctx, user)
	if err != nil {
		log.Error().Err(err).Msg("build terminal command")
		conn.Close(websocket.StatusInternalError, "cannot start terminal")
		return
	}

	size := &pty.Winsize{
		Cols: parseUint16(r.URL.Query().Get("cols"), 80),
		Rows: parseUint16(r.URL.Query().Get("rows"), 24),
	}
	ptmx, err := pty.StartWithSize(cmd, size)
	if err != nil {
		log.Error().Err(err).Msg("pty start")
		conn.Close(websocket.StatusInternalError, "failed to start pty")
		return
	}
	log.Info().Int("pid", cmd.Process.Pid).Msg("terminal session started")

	var once sync.Once
	cleanup := func() {
		cancel()
		ptmx.Close()
		cmd.Process.Kill()
		cmd.Wait()
		log.Info().Msg("terminal session ended")
	}
	defer once.Do(cleanup)

	// pty to socket, as binary frames since output may split UTF-8 sequences
	go func() {
		buf := make([]byte, 32*1024)
		for {
			n, err := ptmx.Read(buf)
			if err != nil {
				once.Do(cleanup)
				conn.Close(websocket.StatusNormalClosure, "process exited")
				return
			}
			if err := conn.Write(ctx, websocket.MessageBinary, buf[:n]); err != nil {
				once.Do(cleanup)
				return
			}
		}
	}()

	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			return
		}
		if typ == websocket.MessageText && len(data) > 0 && data[0] == '{' {
			var resize resizeMsg
			if json.Unmarshal(data, &resize) == nil && resize.Type == "resize" {
				pty.Setsize(ptmx, &pty.Winsize{Rows: resize.Rows, Cols: resize.Cols})
				continue
			}
		}
		if _, err := ptmx.Write(data); err != nil {
			return
		}
	}
}

func parseUint16(s string, def uint16) uint16 {
	v, err := strconv.ParseUint(s, 10, 16)
	if err != nil || v == 0 {
		return def
	}
	return uint16(v)
}
