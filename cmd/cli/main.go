package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Sends a test alert through one channel via the running service.
func main() {
	_ = godotenv.Load()

	api := flag.String("api", envOr("API_BASE", "http://localhost:8080"), "service base URL")
	key := flag.String("key", os.Getenv("ADMIN_API_KEY"), "admin API key")
	typ := flag.String("type", "webhook", "notification type: webhook or email")
	platform := flag.String("platform", "", "telegram, slack or discord")
	webhookURL := flag.String("webhook-url", "", "slack/discord webhook URL")
	botToken := flag.String("bot-token", "", "telegram bot token")
	chatID := flag.String("chat-id", "", "telegram chat id")
	address := flag.String("address", "", "email address")
	flag.Parse()

	body, _ := json.Marshal(map[string]any{
		"type":     *typ,
		"platform": *platform,
		"address":  *address,
		"config": map[string]string{
			"webhook_url": *webhookURL,
			"bot_token":   *botToken,
			"chat_id":     *chatID,
		},
	})
	req, err := http.NewRequest(http.MethodPost, *api+"/api/v1/notifications/trigger", bytes.NewReader(body))
	if err != nil {
		fmt.Println("Invalid API base:", err)
		os.Exit(2)
	}
	req.Header.Set("Content-Type", "application/json")
	if *key != "" {
		req.Header.Set("X-API-Key", *key)
	}

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		fmt.Println("Error contacting API:", err)
		os.Exit(1)
	}
	defer resp.Body.Close()
	out, _ := io.ReadAll(resp.Body)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		fmt.Println("Sent:", string(bytes.TrimSpace(out)))
		return
	}
	fmt.Println("API returned status:", resp.Status, string(bytes.TrimSpace(out)))
	os.Exit(1)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
