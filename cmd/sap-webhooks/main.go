package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/mattjoyce/sapwebhooks/internal/api"
	"github.com/mattjoyce/sapwebhooks/internal/auth"
	"github.com/mattjoyce/sapwebhooks/internal/client"
	"github.com/mattjoyce/sapwebhooks/internal/config"
	"github.com/mattjoyce/sapwebhooks/internal/doctor"
	"github.com/mattjoyce/sapwebhooks/internal/lock"
	"github.com/mattjoyce/sapwebhooks/internal/log"
	"gopkg.in/yaml.v3"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	// --- NOUNS ---
	case "system":
		os.Exit(runSystemNoun(args))
	case "config":
		os.Exit(runConfigNoun(args))
	case "client":
		os.Exit(runClientNoun(args))

	// --- ROOT ALIASES ---
	case "start":
		os.Exit(runStart(args))
	case "version":
		fmt.Printf("sap-webhooks version %s\n", version)
		os.Exit(0)
	case "help", "--help", "-h":
		printUsage()
		os.Exit(0)

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Print(`sap-webhooks - Minimal SAP webhook receiver

Usage:
  sap-webhooks <noun> <action> [flags]

Core Resources (Nouns):
  system    Receiver lifecycle
  config    Environment settings
  client    Exercise a running receiver

System Commands:
  system start      Start the receiver in the foreground

Config Commands:
  config show       Print resolved settings with secrets fingerprinted
  config check      Validate settings and the log directory

Client Commands:
  client run        Call every webhook endpoint and print the responses

General:
  version           Show version information
  help              Show this help message

Settings are read from the environment and an optional .env file.
Use 'sap-webhooks <noun> help' for resource-specific flags.
`)
}

// --- NOUN DISPATCHERS ---

func runSystemNoun(args []string) int {
	if len(args) < 1 {
		printSystemNounHelp(os.Stderr)
		return 1
	}
	if isHelpToken(args[0]) {
		printSystemNounHelp(os.Stdout)
		return 0
	}

	action := args[0]
	actionArgs := args[1:]

	switch action {
	case "start":
		if hasHelpFlag(actionArgs) {
			printSystemStartHelp()
			return 0
		}
		return runStart(actionArgs)
	default:
		fmt.Fprintf(os.Stderr, "Unknown system action: %s\n", action)
		return 1
	}
}

func runConfigNoun(args []string) int {
	if len(args) < 1 {
		printConfigNounHelp(os.Stderr)
		return 1
	}
	if isHelpToken(args[0]) {
		printConfigNounHelp(os.Stdout)
		return 0
	}

	action := args[0]
	actionArgs := args[1:]

	switch action {
	case "check":
		if hasHelpFlag(actionArgs) {
			printConfigCheckHelp()
			return 0
		}
		return runConfigCheck(actionArgs)
	case "show":
		if hasHelpFlag(actionArgs) {
			printConfigShowHelp()
			return 0
		}
		return runConfigShow(actionArgs)
	default:
		fmt.Fprintf(os.Stderr, "Unknown config action: %s\n", action)
		return 1
	}
}

func runClientNoun(args []string) int {
	if len(args) < 1 {
		printClientNounHelp(os.Stderr)
		return 1
	}
	if isHelpToken(args[0]) {
		printClientNounHelp(os.Stdout)
		return 0
	}

	action := args[0]
	actionArgs := args[1:]

	switch action {
	case "run":
		if hasHelpFlag(actionArgs) {
			printClientRunHelp()
			return 0
		}
		return runClient(actionArgs)
	default:
		fmt.Fprintf(os.Stderr, "Unknown client action: %s\n", action)
		return 1
	}
}

func isHelpToken(token string) bool {
	return token == "help" || token == "--help" || token == "-h"
}

func hasHelpFlag(args []string) bool {
	for _, arg := range args {
		if arg == "--help" || arg == "-h" {
			return true
		}
	}
	return false
}

func printSystemNounHelp(w *os.File) {
	fmt.Fprintln(w, "Usage: sap-webhooks system <action>")
	fmt.Fprintln(w, "Actions: start")
}

func printConfigNounHelp(w *os.File) {
	fmt.Fprintln(w, "Usage: sap-webhooks config <action> [flags]")
	fmt.Fprintln(w, "Actions: show, check")
}

func printClientNounHelp(w *os.File) {
	fmt.Fprintln(w, "Usage: sap-webhooks client <action> [flags]")
	fmt.Fprintln(w, "Actions: run")
}

func printSystemStartHelp() {
	fmt.Println("Usage: sap-webhooks system start [--env-file PATH]")
	fmt.Println("Start the receiver in the foreground.")
}

func printConfigCheckHelp() {
	fmt.Println("Usage: sap-webhooks config check [--env-file PATH] [--format human|json] [--strict] [--json]")
	fmt.Println("Validate settings and the request log directory.")
}

func printConfigShowHelp() {
	fmt.Println("Usage: sap-webhooks config show [--env-file PATH] [--json]")
	fmt.Println("Show resolved settings. API_KEY and SECRET_KEY are shown as fingerprints.")
}

func printClientRunHelp() {
	fmt.Println("Usage: sap-webhooks client run [-H HOST] [-p PORT] [--api-key KEY] [--id ID] [--signature-header NAME --secret KEY]")
	fmt.Println("Call every webhook endpoint of a running receiver and print the responses.")
}

// --- ACTION IMPLEMENTATIONS ---

func runStart(args []string) int {
	fs := flag.NewFlagSet("start", flag.ContinueOnError)
	envFile := fs.String("env-file", config.DefaultEnvFile, "Path to a dotenv file (optional)")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to parse flags: %v\n", err)
		return 1
	}

	settings, err := config.Load(*envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load settings: %v\n", err)
		return 1
	}

	log.Setup(settings.LogLevel, nil)
	logger := log.WithComponent("main")
	logger.Info("sap-webhooks starting", "version", version, "listen", settings.Listen())

	instance, err := lock.Acquire(settings.Log.Dir)
	if err != nil {
		logger.Error("failed to acquire instance lock", "dir", settings.Log.Dir, "error", err)
		return 1
	}
	defer instance.Release()
	logger.Info("acquired instance lock", "path", instance.Path())

	warnInsecureSettings(settings)

	requests, err := log.OpenRequestLog(log.SinkConfig{
		Dir:        settings.Log.Dir,
		File:       settings.Log.File,
		MaxSizeMB:  settings.Log.MaxSizeMB,
		MaxBackups: settings.Log.MaxBackups,
	}, log.ParseLevel(settings.LogLevel), log.WithComponent("request_log"))
	if err != nil {
		logger.Error("failed to open request log", "path", settings.Log.LogPath(), "error", err)
		return 1
	}
	defer requests.Close()
	logger.Info("request log opened", "path", settings.Log.LogPath())

	var signer *auth.Signer
	if settings.SignatureHeader != "" {
		signer = auth.NewSigner(settings.SignatureHeader, settings.SecretKey)
		logger.Info("body signatures required", "header", settings.SignatureHeader)
	}

	server := api.New(
		api.Config{Listen: settings.Listen(), MaxBodySize: settings.MaxBodySize},
		auth.New(settings.AuthEnabled, settings.APIKey),
		signer,
		requests,
		log.WithComponent("api"),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := server.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- fmt.Errorf("api: %w", err)
		}
	}()

	logger.Info("sap-webhooks running (press Ctrl+C to stop)")

	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
		<-done
	case err := <-errCh:
		logger.Error("component failed", "error", err)
		cancel()
		return 1
	}

	logger.Info("sap-webhooks stopped")
	return 0
}

func warnInsecureSettings(s *config.Settings) {
	logger := log.WithComponent("auth")
	switch {
	case !s.AuthEnabled && s.AuthImplicit:
		logger.Warn("API_KEY not set, authentication is disabled")
	case !s.AuthEnabled:
		logger.Warn("authentication disabled by AUTH_ENABLED")
	case s.AuthImplicit:
		logger.Warn("authentication inferred from API_KEY, set AUTH_ENABLED explicitly")
	}
	if s.UsesDefaultSecret() {
		logger.Warn("SECRET_KEY is the built-in default, override it in production")
	}
}

func runConfigShow(args []string) int {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	envFile := fs.String("env-file", config.DefaultEnvFile, "Path to a dotenv file (optional)")
	jsonOut := fs.Bool("json", false, "Output in structured JSON format")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to parse flags: %v\n", err)
		return 1
	}

	settings, err := config.Load(*envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Load error: %v\n", err)
		return 1
	}
	redacted := settings.Redacted()

	if *jsonOut {
		data, err := json.MarshalIndent(redacted, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "JSON format error: %v\n", err)
			return 1
		}
		fmt.Println(string(data))
		return 0
	}

	data, err := yaml.Marshal(redacted)
	if err != nil {
		fmt.Fprintf(os.Stderr, "YAML format error: %v\n", err)
		return 1
	}
	fmt.Print(string(data))
	return 0
}

func runConfigCheck(args []string) int {
	var envFile, format string
	var strict, jsonOut bool

	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	fs.StringVar(&envFile, "env-file", config.DefaultEnvFile, "Path to a dotenv file (optional)")
	fs.BoolVar(&strict, "strict", false, "Treat warnings as errors")
	fs.StringVar(&format, "format", "human", "Output format (human, json)")
	// Handle -json alias for format=json
	fs.BoolVar(&jsonOut, "json", false, "Output in JSON")

	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}
	if jsonOut {
		format = "json"
	}

	settings, err := config.Load(envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config load error: %v\n", err)
		return 1
	}

	result := doctor.New(settings).Validate()

	switch format {
	case "json":
		out, err := doctor.FormatJSON(result)
		if err != nil {
			fmt.Fprintf(os.Stderr, "JSON format error: %v\n", err)
			return 1
		}
		fmt.Println(out)
	default:
		fmt.Print(doctor.FormatHuman(result))
	}

	if !result.Valid {
		return 1
	}
	if strict && len(result.Warnings) > 0 {
		return 2
	}
	return 0
}

func runClient(args []string) int {
	var host, apiKey, id, sigHeader, secret string
	var port int

	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.StringVar(&host, "host", client.DefaultHost, "Receiver host")
	fs.StringVar(&host, "H", client.DefaultHost, "Receiver host (shorthand)")
	fs.IntVar(&port, "port", client.DefaultPort, "Receiver port")
	fs.IntVar(&port, "p", client.DefaultPort, "Receiver port (shorthand)")
	fs.StringVar(&apiKey, "api-key", os.Getenv("API_KEY"), "Value sent in X-API-KEY (default: $API_KEY)")
	fs.StringVar(&id, "id", client.DefaultWebhookID, "Webhook id used for the item endpoints")
	fs.StringVar(&sigHeader, "signature-header", "", "Sign write bodies into this header")
	fs.StringVar(&secret, "secret", os.Getenv("SECRET_KEY"), "Signing key (default: $SECRET_KEY)")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to parse flags: %v\n", err)
		return 1
	}

	var signer *auth.Signer
	if sigHeader != "" {
		signer = auth.NewSigner(sigHeader, secret)
	}

	c := client.New(client.Config{
		BaseURL: "http://" + net.JoinHostPort(host, strconv.Itoa(port)),
		APIKey:  apiKey,
		Signer:  signer,
		Out:     os.Stdout,
	})

	results, err := c.Run(context.Background(), client.DefaultSteps(id))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Client error: %v\n", err)
		return 1
	}
	for _, res := range results {
		if !res.OK() {
			return 1
		}
	}
	return 0
}
