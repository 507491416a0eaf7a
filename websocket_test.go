package weave

import "testing"

func TestUpgradeWebSocket_BuildsUpgradeResponse(t *testing.T) {
	req := newTestRequest(MethodGet, "/ws?room=lobby")
	resp := UpgradeWebSocket(req, WebSocketHandler{})

	if resp.Status() != StatusSwitchingProtocols {
		t.Errorf("expected status %d, got %d", StatusSwitchingProtocols, resp.Status())
	}
	if _, ok := resp.isUpgrade(); !ok {
		t.Error("expected an upgrade intent to be stored on the response")
	}
}

func TestSendWithHook_SuppressedMessageNeverReachesConn(t *testing.T) {
	handler := WebSocketHandler{
		OnSend: func(msg []byte, parts WebSocketParts) ([]byte, bool) {
			return nil, false
		},
	}
	// conn is nil; if SendWithHook tried to write, it would panic.
	if err := SendWithHook(nil, handler, []byte("hi"), WebSocketParts{}); err != nil {
		t.Errorf("expected a suppressed message to return nil, got %v", err)
	}
}
