package monitor

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"

	"github.com/yourorg/transitcl/internal/models"
)

// Hub maneja las conexiones WebSocket del panel de despacho. Los
// despachadores conectados reciben en vivo las desviaciones de viaje
// que calcula el API.
type Hub struct {
	clients    map[*websocket.Conn]bool
	broadcast  chan []byte
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	mu         sync.RWMutex

	// OnClientCount, si está definido, recibe el total de clientes
	// tras cada conexión o desconexión (lo usa el gauge de métricas).
	OnClientCount func(n int)
}

// NewHub crea el hub y arranca su loop de despacho
func NewHub() *Hub {
	h := &Hub{
		broadcast:  make(chan []byte, 256),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		clients:    make(map[*websocket.Conn]bool),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			n := len(h.clients)
			h.mu.Unlock()
			h.notifyCount(n)
			log.Printf("🔌 Panel de despacho conectado. Total clientes: %d", n)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.Close()
			}
			n := len(h.clients)
			h.mu.Unlock()
			h.notifyCount(n)
			log.Printf("🔌 Panel de despacho desconectado. Total clientes: %d", n)

		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				err := client.WriteMessage(websocket.TextMessage, message)
				if err != nil {
					log.Printf("Error enviando mensaje al panel: %v", err)
					client.Close()
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

func (h *Hub) notifyCount(n int) {
	if h.OnClientCount != nil {
		h.OnClientCount(n)
	}
}

// ClientCount retorna el número de clientes conectados
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HandleConn maneja una conexión WebSocket entrante de Fiber
func (h *Hub) HandleConn(conn *websocket.Conn) {
	h.register <- conn

	defer func() {
		h.unregister <- conn
	}()

	// Leer mensajes del cliente (para comandos futuros)
	for {
		_, _, err := conn.ReadMessage()
		if err != nil {
			break
		}
	}
}

// DeviationMessage es el sobre que viaja al panel de despacho
type DeviationMessage struct {
	Type      string               `json:"type"`
	At        time.Time            `json:"at"`
	Deviation models.TripDeviation `json:"deviation"`
}

// BroadcastDeviation publica una desviación de viaje a todos los
// paneles conectados. Si el canal está lleno se descarta el mensaje.
func (h *Hub) BroadcastDeviation(d models.TripDeviation) {
	if h.ClientCount() == 0 {
		return
	}

	msg := DeviationMessage{
		Type:      "trip_deviation",
		At:        time.Now(),
		Deviation: d,
	}

	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Error serializando desviación para el panel: %v", err)
		return
	}

	select {
	case h.broadcast <- data:
	default:
		// Canal lleno, saltar mensaje
	}
}
