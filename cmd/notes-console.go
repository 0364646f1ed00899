package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	authn "github.com/mrshanahan/notes-console/internal/auth"
	"github.com/mrshanahan/notes-console/internal/console"
	"github.com/mrshanahan/notes-console/internal/credentials"
	"github.com/mrshanahan/notes-console/internal/middleware"
	"github.com/mrshanahan/notes-console/internal/render"
	"github.com/mrshanahan/notes-console/internal/utils"
	"github.com/mrshanahan/notes-console/pkg/auth"
	"github.com/mrshanahan/notes-console/pkg/client"
	credentialsdb "github.com/mrshanahan/notes-console/pkg/credentials-db"
)

var (
	TokenLocalName                 string = "token"
	ConsoleConfigDirectory         string = path.Join(os.Getenv("HOME"), ".notes-console")
	DefaultPort                    int    = 4444
	DefaultCredentialsDatabaseName string = "console.sqlite"
)

func main() {
	exitCode := Run()
	os.Exit(exitCode)
}

func Run() int {
	if len(os.Args) > 1 && utils.Any(os.Args[1:], func(x string) bool { return x == "-h" || x == "--help" || x == "-?" }) {
		printHelp()
		return 0
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env file", "err", err)
	}

	var dbPath string
	dbPathDir := os.Getenv("NOTES_CONSOLE_DB_DIR")
	if dbPathDir == "" {
		if err := os.MkdirAll(ConsoleConfigDirectory, 0700); err != nil {
			slog.Error("failed to create console directory",
				"path", ConsoleConfigDirectory,
				"err", err)
			return 1
		}
		dbPath = path.Join(ConsoleConfigDirectory, DefaultCredentialsDatabaseName)
		slog.Info("no path provided for DB; using default",
			"path", dbPath)
	} else {
		slog.Info("given DB directory", "dir", dbPathDir)
		if err := os.MkdirAll(dbPathDir, 0700); err != nil {
			slog.Error("failed to create custom DB path parent",
				"path", dbPathDir,
				"err", err)
			return 1
		}
		dbPath = path.Join(dbPathDir, DefaultCredentialsDatabaseName)
	}

	if _, err := os.Stat(dbPath); err != nil && errors.Is(err, os.ErrNotExist) {
		slog.Info("DB does not exist; it will be created during initialization",
			"path", dbPath)
	}

	db, err := credentialsdb.Initialize(dbPath)
	if err != nil {
		slog.Error("failed to initialize credentials DB",
			"path", dbPath,
			"err", err)
		return 1
	}
	defer db.Close()

	portStr := os.Getenv("NOTES_CONSOLE_PORT")
	port, err := strconv.Atoi(portStr)
	if err != nil {
		port = DefaultPort
		slog.Info("no valid port provided via NOTES_CONSOLE_PORT, using default",
			"portStr", portStr,
			"defaultPort", port)
	} else {
		slog.Info("using custom port",
			"port", port)
	}

	apiUrl := strings.TrimSpace(os.Getenv("NOTES_CONSOLE_API_URL"))
	if apiUrl == "" {
		apiUrl = client.DefaultURL
	}
	apiClient := client.NewClient(apiUrl, "")
	if timeoutStr := strings.TrimSpace(os.Getenv("NOTES_CONSOLE_API_TIMEOUT")); timeoutStr != "" {
		timeout, err := time.ParseDuration(timeoutStr)
		if err != nil || timeout <= 0 {
			slog.Error("invalid NOTES_CONSOLE_API_TIMEOUT; expected a positive duration such as 10s",
				"value", timeoutStr,
				"err", err)
			return 1
		}
		apiClient.HTTPClient = &http.Client{Timeout: timeout}
	}
	slog.Info("using notes API", "url", apiUrl)

	disableAuth := false
	if strings.TrimSpace(os.Getenv("NOTES_CONSOLE_DISABLE_AUTH")) != "" {
		slog.Warn("disabling authentication framework - THIS SHOULD ONLY BE RUN FOR TESTING!")
		disableAuth = true
	}

	var authenticator *authn.Authenticator
	if !disableAuth {
		authProviderUrl := os.Getenv("NOTES_CONSOLE_AUTH_PROVIDER_URL")
		if authProviderUrl == "" {
			slog.Error("required value for NOTES_CONSOLE_AUTH_PROVIDER_URL but none provided")
			return 1
		}
		redirectUrl := os.Getenv("NOTES_CONSOLE_REDIRECT_URL")
		if redirectUrl == "" {
			slog.Error("required value for NOTES_CONSOLE_REDIRECT_URL but none provided")
			return 1
		}
		authConfig, err := auth.BuildAuthConfig(context.Background(), auth.ClientID, authProviderUrl, redirectUrl)
		if err != nil {
			slog.Error("failed to initialize authentication",
				"url", authProviderUrl,
				"err", err)
			return 1
		}
		authenticator = authn.NewAuthenticator(authConfig)
	} else {
		slog.Warn("skipping initialization of authentication framework", "disableAuth", disableAuth)
	}

	con := console.New(console.Config{
		Client:       apiClient,
		Credentials:  credentials.NewStore(db),
		Renderer:     render.MustNew(time.Local),
		LoginEnabled: authenticator != nil,
	})
	if err := con.Start(context.Background()); err != nil {
		slog.Error("failed to start console", "err", err)
		return 1
	}

	app := fiber.New()
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}), logger.New(), recover.New())
	if authenticator != nil {
		app.Route("/auth", func(auth fiber.Router) {
			auth.Get("/login", authenticator.Login)
			auth.Get("/logout", authenticator.Logout)
			auth.Get("/callback", authenticator.Callback)
		})
		app.Use(middleware.ValidateAccessToken(TokenLocalName, authn.AccessTokenCookieName, authenticator.VerifyToken, redirectToLogin))
	} else {
		slog.Warn("skipping registration of authentication-related endpoints", "disableAuth", disableAuth)
	}
	con.Register(app)

	slog.Info("listening for requests", "port", port)
	err = app.Listen(fmt.Sprintf(":%d", port))
	if err != nil {
		slog.Error("failed to initialize HTTP server",
			"err", err)
		return 1
	}
	return 0
}

// redirectToLogin sends the operator through the provider and back. Only GET
// pages are worth returning to; form posts land on the console home.
func redirectToLogin(c *fiber.Ctx) error {
	cameFrom := "/"
	if c.Method() == fiber.MethodGet {
		cameFrom = c.OriginalURL()
	}
	return c.Redirect(authn.LoginURL(cameFrom), fiber.StatusSeeOther)
}

func printHelp() {
	fmt.Fprintf(os.Stderr, `
notes-console [-h|--help|-?]

OPTIONS:
	-h|--help|-?	Display this help message and exit

ENVIRONMENT VARIABLES (also read from ./.env):
	NOTES_CONSOLE_AUTH_PROVIDER_URL: (required) Base URL of the authorization server
	NOTES_CONSOLE_REDIRECT_URL:      (required) OAuth2 redirect URL, ending in /auth/callback
	NOTES_CONSOLE_API_URL:           (optional) Base URL of the notes API (default: %s)
	NOTES_CONSOLE_API_TIMEOUT:       (optional) Timeout for notes API calls, e.g. 15s (default: none)
	NOTES_CONSOLE_DB_DIR:            (optional) Path to directory where %s is located (default: %s)
	NOTES_CONSOLE_PORT:              (optional) Port on which the console should be hosted (default: %d)
	NOTES_CONSOLE_DISABLE_AUTH:      (optional) Disable operator login; for testing only
`,
		client.DefaultURL,
		DefaultCredentialsDatabaseName,
		ConsoleConfigDirectory,
		DefaultPort)
}
