package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/fluentvoice/fluentvoice-backend/internal/config"
	"github.com/fluentvoice/fluentvoice-backend/internal/rooms"
)

// Mints a room join token for local testing, so a client can be pointed at
// a room without going through the start-conversation endpoint.
func main() {
	_ = godotenv.Load()

	room := flag.String("room", "practice-local", "room name to join")
	identity := flag.String("identity", "learner-local", "participant identity")
	difficulty := flag.String("difficulty", "beginner", "difficulty metadata")
	topic := flag.String("topic", "", "topic metadata")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load configuration:", err)
		os.Exit(1)
	}
	if cfg.LiveKit.APIKey == "" || cfg.LiveKit.APISecret == "" {
		fmt.Fprintln(os.Stderr, "LIVEKIT_API_KEY and LIVEKIT_API_SECRET are required")
		os.Exit(1)
	}

	metadata := map[string]string{"difficulty": *difficulty}
	if *topic != "" {
		metadata["topic"] = *topic
	}

	provider := rooms.NewLiveKitProvider(cfg.LiveKit)
	token, err := provider.GenerateToken(*room, *identity, metadata)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to generate token:", err)
		os.Exit(1)
	}

	fmt.Printf("Join token for %s as %s:\n%s\n", *room, *identity, token)
}
