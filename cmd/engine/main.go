package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"swapmeet/internal/config"
	"swapmeet/internal/database"
	"swapmeet/internal/engine"
	"swapmeet/internal/handlers"
	"swapmeet/internal/middleware"
	"swapmeet/internal/notify"
	"swapmeet/internal/utils"
	"swapmeet/internal/websocket"

	"github.com/asynkron/protoactor-go/actor"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	middleware.SetSecret(cfg.JWTSecret)

	metrics := utils.NewMetricsCollector()

	store, err := newStore(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer store.Close(context.Background())

	// Real-time delivery channel. The dispatcher is constructed here and
	// injected into the engine; nothing else reaches the hub directly.
	hub := websocket.NewHub()
	go hub.Run()
	dispatcher := notify.NewHubDispatcher(hub)

	system := actor.NewActorSystem()
	eng := engine.NewEngine(system, store, dispatcher, metrics)

	server := handlers.NewServer(system, eng, metrics, store, hub, cfg.PresenceTimeout)

	corsConfig := middleware.DefaultCORSConfig(cfg.AllowedOrigins)
	route := func(path string, handler http.HandlerFunc) {
		http.HandleFunc(path, middleware.ApplyCORS(server.Protect(path, handler), corsConfig))
	}

	route("/health", server.HandleHealth())
	route("/user/register", server.HandleUserRegistration())
	route("/user/login", server.HandleUserLogin())
	route("/user/logout", server.HandleUserLogout())
	route("/user/profile", server.HandleUserProfile())
	route("/user/presence", server.HandleUserPresence())
	route("/users", server.HandleUserSearch())
	route("/messages/send", server.HandleSendMessage())
	route("/messages/between", server.HandleMessagesBetween())
	route("/messages/conversations", server.HandleConversations())
	route("/ws", server.HandleWebSocket())

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("Starting server on %s (presence timeout: %s)", serverAddr, cfg.PresenceTimeout)
	if err := http.ListenAndServe(serverAddr, nil); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}

func newStore(cfg *config.Config) (database.Store, error) {
	switch cfg.Database.Type {
	case "postgres":
		db, err := database.NewPostgresDB(cfg.Database.URI)
		if err != nil {
			return nil, err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := db.InitializeTables(ctx); err != nil {
			return nil, err
		}
		return db, nil
	case "memory":
		log.Println("Using in-memory store; all data is lost on shutdown.")
		return database.NewMemoryDB(), nil
	default:
		return database.NewMongoDB(cfg.Database.URI)
	}
}
