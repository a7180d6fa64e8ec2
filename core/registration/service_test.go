package registration_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/escola/core"
	"github.com/trezcool/escola/core/payment"
	"github.com/trezcool/escola/core/registration"
	"github.com/trezcool/escola/core/user"
	emailsvc "github.com/trezcool/escola/services/email"
	inmemdb "github.com/trezcool/escola/storage/database/inmem"
	"github.com/trezcool/escola/tests"
)

type serviceFixture struct {
	svc     *registration.Service
	usrRepo user.Repository
	mailSvc *emailsvc.ConsoleServiceMock
}

func setupService(t *testing.T) serviceFixture {
	t.Helper()

	conf := core.NewTestConfig()
	db := inmemdb.Open()
	usrRepo := inmemdb.NewUserRepository(db)
	mailSvc := emailsvc.NewConsoleServiceMock(conf, testutil.NewLogger())
	validate, translator := core.NewValidator()
	user.InitValidators(validate, translator)

	svc := registration.NewService(
		nil, /* db */
		inmemdb.NewRegistrationRepository(db),
		user.NewService(usrRepo),
		mailSvc,
		validate,
		translator,
	)
	return serviceFixture{svc: svc, usrRepo: usrRepo, mailSvc: mailSvc}
}

func newRegistration(studentID int, name, email, usuario string, enrolledOn time.Time) registration.Registration {
	return registration.Registration{
		StudentID:      studentID,
		StudentName:    name,
		StudentCode:    "2024001",
		StudentEmail:   email,
		CourseID:       "ING-B1",
		CourseName:     "Inglês Básico",
		ClassName:      "Inglês Básico A",
		Period:         "2024/1",
		EnrollmentDate: enrolledOn,
		Status:         registration.StatusActive,
		PaymentStatus:  registration.PaymentPaid,
		EnrollmentFee:  decimal.NewFromInt(5000),
		MonthlyFee:     decimal.NewFromInt(2500),
		PaidAmount:     decimal.NewFromInt(5000),
		Usuario:        usuario,
		Senha:          "Str0ng!Senha",
	}
}

func TestService_Save(t *testing.T) {
	ctx := context.Background()
	fx := setupService(t)
	enrolledOn := testutil.Date(2024, time.March, 4)

	t.Run("creates account and emails credentials", func(t *testing.T) {
		reg, err := fx.svc.Save(ctx, newRegistration(1, "Maria Santos", "maria.santos@example.com", "maria.santos", enrolledOn))
		require.NoError(t, err)
		assert.NotZero(t, reg.ID)
		assert.Empty(t, reg.Senha)
		assert.NotEmpty(t, reg.UserID)
		assert.False(t, reg.CreatedAt.IsZero())

		usr, err := fx.usrRepo.GetUser(ctx, user.GetFilter{ID: reg.UserID})
		require.NoError(t, err)
		assert.Equal(t, "maria.santos", usr.Username)
		assert.Equal(t, "Maria Santos", usr.Name)
		assert.True(t, usr.IsStudent())
		assert.NoError(t, usr.CheckPassword("Str0ng!Senha"))

		sent := fx.mailSvc.Sent()
		require.Len(t, sent, 1)
		assert.Equal(t, "maria.santos@example.com", sent[0].To[0].Address)
		assert.Contains(t, sent[0].TextContent, "maria.santos")
		assert.Contains(t, sent[0].TextContent, "Str0ng!Senha")
	})

	t.Run("no email without address", func(t *testing.T) {
		_, err := fx.svc.Save(ctx, newRegistration(3, "Ana Conceição Mondlane", "", "ana.mondlane", enrolledOn))
		require.NoError(t, err)
		assert.Len(t, fx.mailSvc.Sent(), 1)
	})

	t.Run("usuario taken", func(t *testing.T) {
		_, err := fx.svc.Save(ctx, newRegistration(2, "Maria Santos", "", "maria.santos", enrolledOn))
		require.Error(t, err)
		vErr, ok := err.(*core.ValidationError)
		require.True(t, ok)
		assert.Equal(t, registration.ErrUsuarioTaken, vErr.Err)
		assert.Contains(t, vErr.FieldMap(), "usuario")
	})

	t.Run("re-enrollment reuses the account", func(t *testing.T) {
		first, err := fx.svc.Query(ctx, registration.QueryFilter{StudentID: 1}, nil)
		require.NoError(t, err)
		require.Len(t, first, 1)

		reg := newRegistration(1, "Maria Santos", "maria.santos@example.com", "maria.santos", testutil.Date(2024, time.August, 1))
		reg.CourseID, reg.Period, reg.Senha = "INF-01", "2024/2", "N0va!Chave7"
		saved, err := fx.svc.Save(ctx, reg)
		require.NoError(t, err)
		assert.Equal(t, first[0].UserID, saved.UserID)
		assert.Equal(t, "maria.santos", saved.Usuario)

		usr, err := fx.usrRepo.GetUser(ctx, user.GetFilter{ID: saved.UserID})
		require.NoError(t, err)
		assert.NoError(t, usr.CheckPassword("N0va!Chave7"))
		assert.Error(t, usr.CheckPassword("Str0ng!Senha"))

		sent := fx.mailSvc.Sent()
		require.Len(t, sent, 2)
		assert.Contains(t, sent[1].TextContent, "N0va!Chave7")
	})

	t.Run("weak senha reported under its wizard name", func(t *testing.T) {
		reg := newRegistration(4, "Carlos Nhantumbo", "", "carlos.nhantumbo", enrolledOn)
		reg.Senha = "abc"
		_, err := fx.svc.Save(ctx, reg)
		require.Error(t, err)
		vErr, ok := err.(*core.ValidationError)
		require.True(t, ok)
		assert.Contains(t, vErr.FieldMap(), "senha")
		assert.NotContains(t, vErr.FieldMap(), "password")
	})
}

func TestService_queries(t *testing.T) {
	ctx := context.Background()
	fx := setupService(t)

	old := newRegistration(1, "Maria Santos", "", "maria.santos", testutil.Date(2023, time.February, 1))
	old.MonthlyFee = decimal.NewFromInt(2000)
	current := newRegistration(1, "Maria Santos", "", "maria.santos", testutil.Date(2024, time.February, 1))
	cancelled := newRegistration(2, "João Machava", "", "joao.machava", testutil.Date(2024, time.February, 2))
	cancelled.Status = registration.StatusCancelled
	bruno := newRegistration(5, "Bruno Cossa", "", "bruno.cossa", testutil.Date(2024, time.January, 15))

	for _, reg := range []registration.Registration{old, current, cancelled, bruno} {
		_, err := fx.svc.Save(ctx, reg)
		require.NoError(t, err)
	}

	t.Run("query", func(t *testing.T) {
		regs, err := fx.svc.Query(ctx, registration.QueryFilter{}, nil)
		require.NoError(t, err)
		require.Len(t, regs, 4)
		assert.Equal(t, "joao.machava", regs[0].Usuario, "most recent enrollment first")

		regs, err = fx.svc.Query(ctx, registration.QueryFilter{Status: registration.StatusCancelled}, nil)
		require.NoError(t, err)
		require.Len(t, regs, 1)

		regs, err = fx.svc.Query(ctx, registration.QueryFilter{}, []core.DBOrdering{{Field: "student_name", Ascending: true}})
		require.NoError(t, err)
		assert.Equal(t, "Bruno Cossa", regs[0].StudentName)
	})

	t.Run("get account", func(t *testing.T) {
		acc, err := fx.svc.GetAccount(ctx, 1)
		require.NoError(t, err)
		assert.True(t, acc.MonthlyFee.Equal(decimal.NewFromInt(2500)), "latest registration wins")

		_, err = fx.svc.GetAccount(ctx, 2)
		assert.Equal(t, payment.ErrUnknownStudent, err)
	})

	t.Run("accounts", func(t *testing.T) {
		accounts, err := fx.svc.Accounts(ctx)
		require.NoError(t, err)
		require.Len(t, accounts, 2)
		assert.Equal(t, "Bruno Cossa", accounts[0].StudentName)
		assert.Equal(t, "Maria Santos", accounts[1].StudentName)
	})

	t.Run("student name", func(t *testing.T) {
		name, err := fx.svc.StudentName(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, "João Machava", name)

		_, err = fx.svc.StudentName(ctx, 9)
		assert.Equal(t, registration.ErrNotFound, err)
	})
}
