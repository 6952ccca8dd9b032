package main

import (
	"bufio"
	"fmt"
	logslog "log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jgonzalez0406/Messaging-Program/internal/common/logs/slog"
	"github.com/jgonzalez0406/Messaging-Program/internal/smq"
	"github.com/joho/godotenv"
)

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func main() {
	_ = godotenv.Load()

	name := getEnv("SMQ_NAME", "Tester")
	host := getEnv("SMQ_HOST", "localhost")
	port := getEnv("SMQ_PORT", "9002")
	topic := getEnv("SMQ_TOPIC", "shell")

	logger := slog.New(logslog.LevelWarn)

	client, err := smq.New(name, host, port, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "chat: %v\n", err)
		os.Exit(1)
	}

	client.Subscribe(topic)

	fmt.Printf("Welcome to the Simple Message Queue (SMQ) shell, %s!\n", name)
	fmt.Printf("You are connected to server %s:%s, topic %q\n", host, port, topic)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		client.Shutdown()
		os.Exit(0)
	}()

	// Printer: drain received messages as they arrive.
	go func() {
		for client.Running() {
			if message, ok := client.Retrieve(); ok {
				fmt.Printf("\r%s\n%s > ", message, name)
			}
		}
	}()

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Printf("%s > ", name)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "/quit" || line == "/exit" {
			break
		}
		if line != "" {
			client.Publish(topic, fmt.Sprintf("%s: %s", name, line))
		}
		fmt.Printf("%s > ", name)
	}

	client.Shutdown()
}
