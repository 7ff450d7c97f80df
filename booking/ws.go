package booking

import (
	"context"
	"net/http"
	"slices"
	"sync"
	"time"

	"roamly/db"
	"roamly/middleware"
	"roamly/models"
	"roamly/utils"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins — adjust for production if needed
		return true
	},
}

var (
	subscribers = make(map[string][]*websocket.Conn)
	mu          sync.Mutex
)

// HandleWS subscribes a client to live status updates for one booking.
// The success page opens this right after checkout and waits for the
// webhook to flip the status. Browsers cannot set an Authorization
// header on a websocket, so the token rides in the `token` query param
// and is checked before the upgrade.
func HandleWS(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	bookingID := ps.ByName("bookingid")

	claims, err := middleware.ValidateJWT("Bearer " + r.URL.Query().Get("token"))
	if err != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var b models.Booking
	if err := db.BookingsCollection.FindOne(ctx, bson.M{"bookingid": bookingID}).Decode(&b); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Booking not found")
		return
	}
	if b.UserID != "" && b.UserID != claims.UserID && !slices.Contains(claims.Role, "admin") {
		utils.RespondWithError(w, http.StatusForbidden, "Forbidden")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, "WebSocket upgrade failed", http.StatusBadRequest)
		return
	}

	mu.Lock()
	subscribers[bookingID] = append(subscribers[bookingID], conn)
	mu.Unlock()

	for {
		// Keeps the connection alive until the client disconnects
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	mu.Lock()
	conns := subscribers[bookingID]
	newList := make([]*websocket.Conn, 0, len(conns))
	for _, c := range conns {
		if c != conn {
			newList = append(newList, c)
		}
	}
	subscribers[bookingID] = newList
	mu.Unlock()

	conn.Close()
}

// Broadcast pushes a payload to every subscriber of a booking, dropping
// connections that fail to write.
func Broadcast(bookingID string, val []byte) {
	mu.Lock()
	defer mu.Unlock()

	conns := subscribers[bookingID]
	newList := conns[:0]

	for _, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, val); err == nil {
			newList = append(newList, conn)
		} else {
			conn.Close()
		}
	}

	subscribers[bookingID] = newList
}
