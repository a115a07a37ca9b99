package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"agent-chat-be/internal/config"
	"agent-chat-be/internal/controller"
	"agent-chat-be/internal/model"
	"agent-chat-be/internal/pkg/logger"
	"agent-chat-be/internal/pkg/serverutils"
	"agent-chat-be/internal/pkg/token"
	"agent-chat-be/internal/repository/unitofwork"
	"agent-chat-be/internal/service"
	"agent-chat-be/pkg/database"
	"agent-chat-be/pkg/llm"
	pkgNats "agent-chat-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
)

// stubLLM answers every chat with a fixed reply and every prompt with a
// fixed title, so conversation turns are deterministic. titleErr, when set,
// makes every Generate call fail.
type stubLLM struct {
	reply    string
	title    string
	titleErr error
}

func (s *stubLLM) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	return s.reply, nil
}

func (s *stubLLM) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	if s.titleErr != nil {
		return "", s.titleErr
	}
	return s.title, nil
}

type testEnv struct {
	app        *fiber.App
	uowFactory unitofwork.RepositoryFactory
	llm        *stubLLM
}

// newTestEnv wires the full HTTP stack against the real database, with the
// model stubbed and no outbound mail. Skips when DATABASE_URL is unset.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	if err := godotenv.Load("../../.env"); err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("Skipping integration test: DATABASE_URL not set")
	}

	db, err := database.NewGormDB(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}

	if err := db.AutoMigrate(
		&model.User{},
		&model.EmailVerificationToken{},
		&model.PasswordResetToken{},
		&model.Session{},
		&model.Thread{},
		&model.Message{},
	); err != nil {
		t.Fatalf("Failed to migrate schema: %v", err)
	}

	cfg := &config.Config{
		SecretKey:                         "integration-test-secret",
		AccessTokenExpireMinutes:          30,
		EmailVerificationRequired:         true,
		EmailVerificationTokenExpireHours: 24,
		PasswordResetTokenExpireHours:     1,
		LogFilePath:                       filepath.Join(t.TempDir(), "test.log"),
		FrontendURL:                       "http://localhost:3000",
	}

	sysLogger := logger.NewZapLogger(cfg.LogFilePath, false)
	issuer := token.NewIssuer(cfg.SecretKey, time.Duration(cfg.AccessTokenExpireMinutes)*time.Minute)
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NewStdLogger(false, false))

	var natsPub *pkgNats.Publisher // nil publisher is a no-op

	uowFactory := unitofwork.NewRepositoryFactory(db)

	llmStub := &stubLLM{reply: "Hi", title: "Test Title"}

	authService := service.NewAuthService(uowFactory, cfg, issuer, pubSub, natsPub, sysLogger)
	userService := service.NewUserService(uowFactory)
	sessionService := service.NewSessionService(uowFactory)
	threadService := service.NewThreadService(uowFactory)
	messageService := service.NewMessageService(uowFactory, threadService, llmStub, sysLogger)

	authmw := serverutils.NewJwtMiddleware(uowFactory, issuer)

	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware(sysLogger))

	controller.NewAuthController(authService, userService).RegisterRoutes(app, authmw)
	controller.NewSessionController(sessionService).RegisterRoutes(app, authmw)
	controller.NewThreadController(threadService).RegisterRoutes(app, authmw)
	controller.NewMessageController(messageService).RegisterRoutes(app, authmw)

	return &testEnv{
		app:        app,
		uowFactory: uowFactory,
		llm:        llmStub,
	}
}

// envelope mirrors the response wrapper with the payload left raw for
// per-test decoding.
type envelope struct {
	Success bool            `json:"success"`
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (e *testEnv) request(t *testing.T, method, path string, body interface{}, bearer string) (int, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := e.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response body: %v", err)
	}

	var env envelope
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			t.Fatalf("decode response %s: %v", string(raw), err)
		}
	}
	return resp.StatusCode, env
}

func decodeData(t *testing.T, env envelope, out interface{}) {
	t.Helper()
	if err := json.Unmarshal(env.Data, out); err != nil {
		t.Fatalf("decode data %s: %v", string(env.Data), err)
	}
}
