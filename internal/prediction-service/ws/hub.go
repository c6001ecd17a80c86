package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/radieske/varsity-predictions/internal/prediction-service/activity"
)

// ClientMsg é a mensagem de controle enviada pelo app
// {"type":"follow","userId":"..."} / unfollow / ping
type ClientMsg struct {
	Type   string `json:"type"`
	UserID string `json:"userId"`
}

const defaultWriteWait = 5 * time.Second

// client serializa as escritas de uma conexão; gorilla/websocket não aceita escritas concorrentes
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// Hub gerencia conexões WebSocket e quem segue a atividade de quem
// subs: mapeia userID seguido para o conjunto de clientes
type Hub struct {
	upgrader  websocket.Upgrader
	mu        sync.RWMutex
	subs      map[string]map[*client]struct{}
	writeWait time.Duration
}

// NewHub cria uma instância de Hub com política customizada de origem (CORS)
func NewHub(allowOrigin func(r *http.Request) bool) *Hub {
	return &Hub{
		upgrader:  websocket.Upgrader{CheckOrigin: allowOrigin},
		subs:      make(map[string]map[*client]struct{}),
		writeWait: defaultWriteWait,
	}
}

// HandleWS gerencia o ciclo de vida de uma conexão WebSocket
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	c := &client{conn: conn}

	for {
		var msg ClientMsg
		if err := conn.ReadJSON(&msg); err != nil {
			break
		}
		switch msg.Type {
		case "follow":
			h.follow(msg.UserID, c)
		case "unfollow":
			h.unfollow(msg.UserID, c)
		case "ping":
			h.write(c, []byte(`{"type":"pong"}`))
		}
	}
	h.drop(c)
}

// Broadcast envia a atividade a todos que seguem o usuário.
// Cliente que não aceita a escrita dentro de writeWait é desconectado.
func (h *Hub) Broadcast(a activity.Activity) {
	h.mu.RLock()
	clients := make([]*client, 0, len(h.subs[a.UserID]))
	for c := range h.subs[a.UserID] {
		clients = append(clients, c)
	}
	h.mu.RUnlock()
	if len(clients) == 0 {
		return
	}

	b, _ := json.Marshal(a)
	for _, c := range clients {
		h.write(c, b)
	}
}

// Followers retorna quantas conexões seguem o usuário
func (h *Hub) Followers(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[userID])
}

func (h *Hub) follow(userID string, c *client) {
	if userID == "" {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[userID]; !ok {
		h.subs[userID] = make(map[*client]struct{})
	}
	h.subs[userID][c] = struct{}{}
}

func (h *Hub) unfollow(userID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if m, ok := h.subs[userID]; ok {
		delete(m, c)
		if len(m) == 0 {
			delete(h.subs, userID)
		}
	}
}

// drop remove o cliente de todas as assinaturas ao desconectar
func (h *Hub) drop(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, set := range h.subs {
		delete(set, c)
		if len(set) == 0 {
			delete(h.subs, id)
		}
	}
}

// write usa o lock da própria conexão; em erro ou timeout o cliente sai do hub
// e a conexão é fechada, o que encerra o loop de leitura em HandleWS
func (h *Hub) write(c *client, b []byte) {
	c.mu.Lock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(h.writeWait))
	err := c.conn.WriteMessage(websocket.TextMessage, b)
	c.mu.Unlock()
	if err != nil {
		h.drop(c)
		_ = c.conn.Close()
	}
}
