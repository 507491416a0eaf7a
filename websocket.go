package weave

import (
	"net/http"

	"github.com/gorilla/websocket"
)

// WebSocketParts is the handshake context passed to every WebSocket hook
// (on_connect, on_send, on_receive, on_close): the bound path params,
// the request headers, and the parsed query string.
type WebSocketParts struct {
	Params map[string]PathParam
	Headers http.Header
	Query map[string][]string
}

// WebSocketConnection is the handle handlers use to push messages to a
// connected client outside the read loop (the "outbound sender"
// on_connect receives).
type WebSocketConnection struct {
	conn *websocket.Conn
}

// Send writes a text message to the client.
func (c *WebSocketConnection) Send(msg []byte) error {
	return c.conn.WriteMessage(websocket.TextMessage, msg)
}

// Close ends the connection with the normal closure code.
func (c *WebSocketConnection) Close() error {
	return c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// WebSocketHandler is the optional hook set describes: each
// hook is optional, nil skips it, and on_send may rewrite or drop
// (returning false) an outbound message before it hits the wire.
type WebSocketHandler struct {
	OnConnect func(conn *WebSocketConnection, parts WebSocketParts)
	OnSend func(msg []byte, parts WebSocketParts) ([]byte, bool)
	OnReceive func(msg []byte, parts WebSocketParts)
	OnClose func(parts WebSocketParts)
}

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize: 4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool { return true },
}

// UpgradeWebSocket turns resp into a protocol-upgrade response (status
// 101) whose hijack callback runs the gorilla/websocket handshake and
// then handler's read loop. Grounded on grafana-k6/websockets' handling
// of on_connect/on_receive/on_close around a *websocket.Conn, adapted
// from k6's JS-runtime event loop to direct Go callbacks.
func UpgradeWebSocket(req *Request, handler WebSocketHandler) *Response {
	parts := WebSocketParts{
		Params: req.params,
		Headers: req.Headers,
		Query: req.Query(),
	}

	resp := NewResponse(StatusSwitchingProtocols)
	resp.Upgrade(StatusSwitchingProtocols, func(w http.ResponseWriter, r *http.Request) {
		conn, err := wsUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		wsConn := &WebSocketConnection{conn: conn}
		if handler.OnConnect != nil {
			handler.OnConnect(wsConn, parts)
		}
		defer func() {
			if handler.OnClose != nil {
				handler.OnClose(parts)
			}
		}()

		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if handler.OnReceive != nil {
				handler.OnReceive(msg, parts)
			}
		}
	})
	return resp
}

// SendWithHook runs msg through handler.OnSend (if set) before writing
// it, implementing its "on_send may transform or suppress an
// outbound message" rule.
func SendWithHook(conn *WebSocketConnection, handler WebSocketHandler, msg []byte, parts WebSocketParts) error {
	if handler.OnSend != nil {
		var ok bool
		msg, ok = handler.OnSend(msg, parts)
		if !ok {
			return nil
		}
	}
	return conn.Send(msg)
}
