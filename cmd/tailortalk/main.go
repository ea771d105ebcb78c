package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/amaan34/tailortalk/internal/agent"
	"github.com/amaan34/tailortalk/internal/api"
	"github.com/amaan34/tailortalk/internal/calendar"
	"github.com/amaan34/tailortalk/internal/genai"
	"github.com/amaan34/tailortalk/internal/session"
	"github.com/amaan34/tailortalk/internal/store"
	"github.com/amaan34/tailortalk/internal/util"
)

// Default configuration constants
const (
	// DefaultStateDir is the default directory for TailorTalk state data
	DefaultStateDir = "/var/lib/tailortalk"
	// DefaultDBFileName is the default SQLite database filename
	DefaultDBFileName = "tailortalk.db"
	// DefaultAPIAddr is the default listen address for the HTTP API
	DefaultAPIAddr = ":8080"
)

func main() {
	initializeLogger()

	config := loadEnvironmentConfig()
	flags := parseCommandLineFlags(config)

	if err := run(flags); err != nil {
		slog.Error("TailorTalk failed to run", "error", err)
		os.Exit(1)
	}
}

// Config holds environment configuration
type Config struct {
	DatabaseURL  string
	StateDir     string
	OpenAIKey    string
	OpenAIModel  string
	APIAddr      string
	Timezone     string
	CalendarID   string
	ClientID     string
	ClientSecret string
	TokenFile    string
	FakeCalendar bool
}

// Flags holds command line flag values
type Flags struct {
	stateDir     *string
	dbDSN        *string
	openaiKey    *string
	openaiModel  *string
	apiAddr      *string
	timezone     *string
	calendarID   *string
	clientID     *string
	clientSecret *string
	tokenFile    *string
	fakeCalendar *bool
}

// initializeLogger sets up structured logging with debug level
func initializeLogger() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	slog.SetDefault(logger)
}

// loadEnvironmentConfig loads configuration from environment variables and .env file
func loadEnvironmentConfig() Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	} else {
		slog.Debug("successfully loaded .env file")
	}

	config := Config{
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		StateDir:     util.EnvOrDefault("TAILORTALK_STATE_DIR", DefaultStateDir),
		OpenAIKey:    os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:  os.Getenv("OPENAI_MODEL"),
		APIAddr:      util.EnvOrDefault("API_ADDR", DefaultAPIAddr),
		Timezone:     os.Getenv("TAILORTALK_TIMEZONE"),
		CalendarID:   os.Getenv("GOOGLE_CALENDAR_ID"),
		ClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		ClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		TokenFile:    os.Getenv("GOOGLE_TOKEN_FILE"),
		FakeCalendar: util.ParseBoolEnv("TAILORTALK_FAKE_CALENDAR", false),
	}

	slog.Debug("environment variables loaded",
		"DATABASE_URL_SET", config.DatabaseURL != "",
		"TAILORTALK_STATE_DIR", config.StateDir,
		"OPENAI_API_KEY_SET", config.OpenAIKey != "",
		"API_ADDR", config.APIAddr,
		"TAILORTALK_TIMEZONE", config.Timezone,
		"GOOGLE_CALENDAR_ID", config.CalendarID,
		"GOOGLE_TOKEN_FILE", config.TokenFile,
		"TAILORTALK_FAKE_CALENDAR", config.FakeCalendar)

	return config
}

// parseCommandLineFlags parses command line arguments with environment defaults
func parseCommandLineFlags(config Config) Flags {
	flags := Flags{
		stateDir:     flag.String("state-dir", config.StateDir, "state directory for TailorTalk data (overrides $TAILORTALK_STATE_DIR)"),
		dbDSN:        flag.String("db-dsn", config.DatabaseURL, "database DSN for the record store (overrides $DATABASE_URL)"),
		openaiKey:    flag.String("openai-api-key", config.OpenAIKey, "OpenAI API key (overrides $OPENAI_API_KEY)"),
		openaiModel:  flag.String("openai-model", config.OpenAIModel, "OpenAI chat model (overrides $OPENAI_MODEL)"),
		apiAddr:      flag.String("api-addr", config.APIAddr, "API server address (overrides $API_ADDR)"),
		timezone:     flag.String("timezone", config.Timezone, "IANA timezone for date parsing (overrides $TAILORTALK_TIMEZONE)"),
		calendarID:   flag.String("calendar-id", config.CalendarID, "Google calendar id (overrides $GOOGLE_CALENDAR_ID)"),
		clientID:     flag.String("google-client-id", config.ClientID, "Google OAuth client id (overrides $GOOGLE_CLIENT_ID)"),
		clientSecret: flag.String("google-client-secret", config.ClientSecret, "Google OAuth client secret (overrides $GOOGLE_CLIENT_SECRET)"),
		tokenFile:    flag.String("google-token-file", config.TokenFile, "path to a stored OAuth token JSON (overrides $GOOGLE_TOKEN_FILE)"),
		fakeCalendar: flag.Bool("fake-calendar", config.FakeCalendar, "use an in-memory calendar instead of Google (overrides $TAILORTALK_FAKE_CALENDAR)"),
	}

	flag.Parse()

	slog.Debug("flags parsed",
		"stateDir", *flags.stateDir,
		"dbDSN_set", *flags.dbDSN != "",
		"openaiKeySet", *flags.openaiKey != "",
		"apiAddr", *flags.apiAddr,
		"timezone", *flags.timezone,
		"fakeCalendar", *flags.fakeCalendar)

	// With no DSN, fall back to SQLite in the state directory.
	if *flags.dbDSN == "" {
		*flags.dbDSN = filepath.Join(*flags.stateDir, DefaultDBFileName)
		slog.Debug("No database DSN provided, defaulting to SQLite", "sqlite_path", *flags.dbDSN)
	}

	return flags
}

// run wires the modules and serves the API until the listener fails.
func run(flags Flags) error {
	ctx := context.Background()

	loc := time.UTC
	if *flags.timezone != "" {
		parsed, err := time.LoadLocation(*flags.timezone)
		if err != nil {
			slog.Warn("run: invalid timezone, using UTC", "timezone", *flags.timezone, "error", err)
		} else {
			loc = parsed
		}
	}

	classifier, err := buildClassifier(flags)
	if err != nil {
		return err
	}

	cal, err := buildCalendar(ctx, flags)
	if err != nil {
		return err
	}

	records, err := store.NewStore(store.WithDSN(*flags.dbDSN))
	if err != nil {
		return err
	}
	defer records.Close()

	engine := agent.NewEngine(classifier, cal, session.NewStore(), agent.WithLocation(loc))
	server := api.NewServer(engine, cal, records)

	slog.Info("Bootstrapping TailorTalk", "addr", *flags.apiAddr, "timezone", loc.String())
	return server.Run(*flags.apiAddr)
}

// buildClassifier constructs the GenAI intent classifier.
func buildClassifier(flags Flags) (*genai.Client, error) {
	var opts []genai.Option
	if *flags.openaiKey != "" {
		opts = append(opts, genai.WithAPIKey(*flags.openaiKey))
	}
	if *flags.openaiModel != "" {
		opts = append(opts, genai.WithModel(*flags.openaiModel))
	}
	return genai.NewClient(opts...)
}

// buildCalendar constructs the calendar backend. The fake backend needs no
// credentials and exists for local development.
func buildCalendar(ctx context.Context, flags Flags) (calendar.Service, error) {
	if *flags.fakeCalendar {
		slog.Info("buildCalendar: using in-memory calendar backend")
		return calendar.NewFakeService(), nil
	}

	oauthConfig := calendar.OAuthConfig(*flags.clientID, *flags.clientSecret)
	client, err := calendar.ClientFromTokenFile(ctx, oauthConfig, *flags.tokenFile)
	if err != nil {
		return nil, err
	}
	return calendar.NewGoogleService(ctx, client, *flags.calendarID)
}
