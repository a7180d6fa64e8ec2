package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	. "github.com/trezcool/escola/apps/api/echo"
	"github.com/trezcool/escola/core"
	"github.com/trezcool/escola/core/directory"
	"github.com/trezcool/escola/core/grade"
	"github.com/trezcool/escola/core/payment"
	"github.com/trezcool/escola/core/registration"
	"github.com/trezcool/escola/core/user"
	emailsvc "github.com/trezcool/escola/services/email"
	inmemdb "github.com/trezcool/escola/storage/database/inmem"
	"github.com/trezcool/escola/tests"
)

var (
	errMissingToken = httpErr{Error: "missing or malformed jwt"}
	errForbidden    = httpErr{Error: "permission denied"}
	errNotFound     = httpErr{Error: "not found"}

	testSenha = "Str0ng!Senha"
)

// fixedCredentials derives the usuario like the real generator but always hands out testSenha.
type fixedCredentials struct{}

func (fixedCredentials) Generate(fullName string) (registration.Credentials, error) {
	return registration.Credentials{Usuario: registration.GenerateUsuario(fullName), Senha: testSenha}, nil
}

type testApp struct {
	app     Server
	conf    *core.Config
	usrRepo user.Repository
	payRepo payment.Repository
	dir     directory.Directory
	regSvc  *registration.Service
	mailSvc *emailsvc.ConsoleServiceMock
}

// newTestApp wires a server on fresh in-memory storage. dir defaults to the seeded directory.
func newTestApp(t *testing.T, dir ...directory.Directory) *testApp {
	t.Helper()

	var d directory.Directory = inmemdb.NewSeededDirectory()
	if len(dir) > 0 {
		d = dir[0]
	}
	return newTestAppWith(t, d, &fixedCredentials{})
}

func newTestAppWith(t *testing.T, d directory.Directory, creds registration.CredentialGenerator) *testApp {
	t.Helper()

	conf := core.NewTestConfig()
	logger := testutil.NewLogger()

	// set up DB & repos
	db := inmemdb.Open()
	usrRepo := inmemdb.NewUserRepository(db)
	payRepo := inmemdb.NewPaymentRepository(db)

	// set up services
	validate, translator := core.NewValidator()
	user.InitValidators(validate, translator)
	mailSvc := emailsvc.NewConsoleServiceMock(conf, logger)
	usrSvc := user.NewService(usrRepo)
	regSvc := registration.NewService(nil /* db */, inmemdb.NewRegistrationRepository(db), usrSvc, mailSvc, validate, translator)

	// set up server
	app := NewServer(ServerDeps{
		Conf:            conf,
		Logger:          logger,
		DisableReqLogs:  true,
		UserSvc:         usrSvc,
		Directory:       d,
		Credentials:     creds,
		RegistrationSvc: regSvc,
		PaymentSvc:      payment.NewService(payRepo, regSvc, conf),
		GradeSvc:        grade.NewService(inmemdb.NewGradeRepository(db), regSvc),
		Validate:        validate,
		Translator:      translator,
	})
	t.Cleanup(func() { _ = app.Close() })

	return &testApp{
		app:     app,
		conf:    conf,
		usrRepo: usrRepo,
		payRepo: payRepo,
		dir:     d,
		regSvc:  regSvc,
		mailSvc: mailSvc,
	}
}

func (ta *testApp) serve(req *http.Request, rec *httptest.ResponseRecorder) {
	ta.app.ServeHTTP(rec, req)
}

func (ta *testApp) createAdmin(t *testing.T) user.User {
	return testutil.CreateUser(t, ta.usrRepo, "Secretária", "secretaria", "secretaria@escola.co.mz", "S3cret!pwd", []string{user.RoleAdminSecretary}, true)
}

// register saves an active registration of a seeded student straight through the service.
func (ta *testApp) register(t *testing.T, studentID int, name, usuario string) registration.Registration {
	t.Helper()

	reg, err := ta.regSvc.Save(context.Background(), registration.Registration{
		StudentID:      studentID,
		StudentName:    name,
		StudentCode:    "2024001",
		CourseID:       "ING-B1",
		CourseName:     "Inglês Básico",
		ClassID:        1,
		ClassName:      "Inglês Básico A",
		Period:         "2024/1",
		EnrollmentDate: testutil.Date(2024, time.February, 1),
		Status:         registration.StatusActive,
		PaymentStatus:  registration.PaymentPaid,
		EnrollmentFee:  decimal.NewFromInt(5000),
		MonthlyFee:     decimal.NewFromInt(2500),
		PaidAmount:     decimal.NewFromInt(5000),
		Usuario:        usuario,
		Senha:          testSenha,
	})
	if err != nil {
		t.Fatalf("register(): %v", err)
	}
	return reg
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, conf *core.Config, usr user.User) string {
	claims := GetUserClaims(conf, usr)
	token, err := GenerateToken(conf, claims)
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList(): %v", err)
	}
	return data
}

func unmarshal(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("json.Unmarshal(%s): %v", rec.Body.String(), err)
	}
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	return false, nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func runHTTPTests(t *testing.T, ta *testApp, tests []httpTest) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := tt.method
			if method == "" {
				method = http.MethodGet
			}
			req, rec := newAuthRequest(method, tt.path, tt.token, tt.body)
			ta.serve(req, rec)
			checkCodeAndData(t, tt, rec)
		})
	}
}
