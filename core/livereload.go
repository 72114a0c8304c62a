package core

import (
	"bytes"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const ReloadPath = "/__firstapp_reload"

const reloadScript = `<script>(function(){var s=new WebSocket((location.protocol==="https:"?"wss://":"ws://")+location.host+"` + ReloadPath + `");s.onmessage=function(e){if(e.data==="reload"){location.reload()}}})();</script>`

const reloadWriteTimeout = time.Second

type LiveReloaderInterface interface {
	BroadcastReload()
	Handler(http.ResponseWriter, *http.Request)
}

// LiveReloader tracks the browser tabs open on a debug server and tells
// them to reload when templates change.
type LiveReloader struct {
	mu       sync.Mutex
	conns    map[*websocket.Conn]struct{}
	upgrader websocket.Upgrader
}

var NewLiveReloader = func() LiveReloaderInterface {
	return &LiveReloader{
		conns: map[*websocket.Conn]struct{}{},
		upgrader: websocket.Upgrader{
			// Debug servers are reached through arbitrary hostnames.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (lr *LiveReloader) Handler(w http.ResponseWriter, r *http.Request) {
	conn, err := lr.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	lr.mu.Lock()
	lr.conns[conn] = struct{}{}
	lr.mu.Unlock()

	go lr.drain(conn)
}

// drain discards client frames until the connection dies, then forgets it.
func (lr *LiveReloader) drain(conn *websocket.Conn) {
	defer lr.drop(conn)
	for {
		if _, _, err := conn.NextReader(); err != nil {
			return
		}
	}
}

func (lr *LiveReloader) drop(conn *websocket.Conn) {
	lr.mu.Lock()
	delete(lr.conns, conn)
	lr.mu.Unlock()
	conn.Close()
}

func (lr *LiveReloader) Clients() int {
	lr.mu.Lock()
	defer lr.mu.Unlock()
	return len(lr.conns)
}

func (lr *LiveReloader) BroadcastReload() {
	lr.mu.Lock()
	defer lr.mu.Unlock()

	deadline := time.Now().Add(reloadWriteTimeout)
	for conn := range lr.conns {
		conn.SetWriteDeadline(deadline)
		if err := conn.WriteMessage(websocket.TextMessage, []byte("reload")); err != nil {
			delete(lr.conns, conn)
			conn.Close()
		}
	}
}

// InjectReloadScript places the reload client just before the last </body>,
// or at the end when the document has none.
func InjectReloadScript(html []byte) []byte {
	idx := bytes.LastIndex(html, []byte("</body>"))
	if idx == -1 {
		return append(append([]byte{}, html...), reloadScript...)
	}

	out := make([]byte, 0, len(html)+len(reloadScript))
	out = append(out, html[:idx]...)
	out = append(out, reloadScript...)
	out = append(out, html[idx:]...)
	return out
}
