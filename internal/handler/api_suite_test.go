package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/JDamianDelgado/ValleDePaz/internal/dashboard"
	"github.com/JDamianDelgado/ValleDePaz/internal/handler"
	"github.com/JDamianDelgado/ValleDePaz/internal/repository"
	"github.com/JDamianDelgado/ValleDePaz/internal/service"
	"github.com/JDamianDelgado/ValleDePaz/internal/testutil"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
)

const testMaxImageBytes = 4096

// apiSuite serves the full router over an in-memory database. Suites embed
// it to share setup and request helpers.
type apiSuite struct {
	suite.Suite
	testDB   *testutil.TestDatabase
	uploader *testutil.FakeUploader
	notifier *testutil.FakeNotifier
	handlers handler.Handlers
	router   *gin.Engine
}

// upload is one file part of a multipart request
type upload struct {
	field string
	name  string
	data  []byte
}

func (s *apiSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	s.testDB = testutil.SetupTestDatabase(s.T())
}

func (s *apiSuite) TearDownSuite() {
	s.testDB.Teardown(s.T())
}

// SetupTest cleans the database and rebuilds the router with fresh fakes
func (s *apiSuite) SetupTest() {
	testutil.CleanDatabase(s.T(), s.testDB.DB)

	s.uploader = &testutil.FakeUploader{}
	s.notifier = &testutil.FakeNotifier{}

	db := s.testDB.DB
	userRepo := repository.NewUserRepository(db)
	messageRepo := repository.NewVirginMessageRepository(db)
	inhumadoRepo := repository.NewInhumadoRepository(db)

	authService := service.NewAuthService(userRepo, testutil.TestJWTSecret, time.Hour, "development")
	userService := service.NewUserService(userRepo, s.uploader, testMaxImageBytes)
	messageService := service.NewVirginMessageService(messageRepo, userRepo, s.uploader, s.notifier,
		service.ModerationOptions{MaxImageBytes: testMaxImageBytes})
	inhumadoService := service.NewInhumadoService(inhumadoRepo, s.uploader, testMaxImageBytes)

	renderer, err := dashboard.NewRenderer()
	s.Require().NoError(err)

	s.handlers = handler.Handlers{
		Auth:      handler.NewAuthHandler(authService),
		User:      handler.NewUserHandler(userService, testMaxImageBytes),
		Message:   handler.NewVirginMessageHandler(messageService, testMaxImageBytes),
		Inhumado:  handler.NewInhumadoHandler(inhumadoService, testMaxImageBytes),
		Dashboard: handler.NewDashboardHandler(renderer, messageService, inhumadoService, userService),
	}
	s.router = handler.NewRouter(s.routerConfig(), s.handlers)
}

func (s *apiSuite) routerConfig() handler.RouterConfig {
	return handler.RouterConfig{
		JWTSecret:      testutil.TestJWTSecret,
		AllowedOrigins: []string{"http://localhost:3000"},
		MaxBodyBytes:   1 << 20,
	}
}

func (s *apiSuite) serve(req *http.Request, token string) *httptest.ResponseRecorder {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// doJSON sends body encoded as JSON. A nil body sends no payload.
func (s *apiSuite) doJSON(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return s.serve(req, token)
}

func (s *apiSuite) doMultipart(method, path string, fields map[string]string, files []upload, token string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, value := range fields {
		s.Require().NoError(writer.WriteField(key, value))
	}
	for _, f := range files {
		part, err := writer.CreateFormFile(f.field, f.name)
		s.Require().NoError(err)
		_, err = part.Write(f.data)
		s.Require().NoError(err)
	}
	s.Require().NoError(writer.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return s.serve(req, token)
}

func (s *apiSuite) decode(w *httptest.ResponseRecorder, target interface{}) {
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), target), w.Body.String())
}

func (s *apiSuite) decodeMap(w *httptest.ResponseRecorder) map[string]interface{} {
	var body map[string]interface{}
	s.decode(w, &body)
	return body
}
