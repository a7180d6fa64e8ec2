package registration

import (
	"context"
	"errors"
	"net/mail"
	"sort"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/kat-co/vala"
	pkgerrors "github.com/pkg/errors"

	"github.com/trezcool/escola/core"
	"github.com/trezcool/escola/core/payment"
	"github.com/trezcool/escola/core/user"
)

var (
	// errors
	ErrNotFound     = errors.New("registration not found")
	ErrUsuarioTaken = errors.New("this usuario is already taken")

	credentialsTmpl    = "student_credentials"
	credentialsSubject = "Credenciais de acesso ao portal do aluno"

	// user validation fields reported under their wizard name
	userFieldNames = map[string]string{"username": "usuario", "password": "senha", "name": "student_id"}
)

type Repository interface {
	CreateRegistration(ctx context.Context, reg Registration, exec ...core.DBExecutor) (Registration, error)
	// QueryRegistrations returns the matching registrations, most recent enrollment first unless ordered otherwise.
	QueryRegistrations(ctx context.Context, filter QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Registration, error)
	UsuarioExists(ctx context.Context, usuario string, exec ...core.DBExecutor) (bool, error)
}

type Service struct {
	db         core.DB
	repo       Repository
	usrSvc     user.Service
	mailSvc    core.EmailService
	validate   *validator.Validate
	translator ut.Translator
}

// NewService returns the registration service. db may be nil with in-memory repositories.
func NewService(
	db core.DB,
	repo Repository,
	usrSvc user.Service,
	mailSvc core.EmailService,
	validate *validator.Validate,
	translator ut.Translator,
) *Service {
	vala.BeginValidation().Validate(
		vala.IsNotNil(repo, "repo"),
		vala.IsNotNil(usrSvc, "usrSvc"),
		vala.IsNotNil(mailSvc, "mailSvc"),
		vala.IsNotNil(validate, "validate"),
		vala.IsNotNil(translator, "translator"),
	).CheckAndPanic()

	return &Service{
		db:         db,
		repo:       repo,
		usrSvc:     usrSvc,
		mailSvc:    mailSvc,
		validate:   validate,
		translator: translator,
	}
}

// Save commits a confirmed registration: it creates the student's portal account,
// stores the registration and emails the credentials to the student.
// A student enrolled before keeps their account and usuario; only the senha is replaced.
func (svc *Service) Save(ctx context.Context, reg Registration) (Registration, error) {
	usr, enrolled, err := svc.studentUser(ctx, reg.StudentID)
	if err != nil {
		return Registration{}, err
	}
	if enrolled {
		reg.UserID, reg.Usuario = usr.ID, usr.Username
	} else {
		taken, err := svc.repo.UsuarioExists(ctx, reg.Usuario)
		if err != nil {
			return Registration{}, pkgerrors.Wrap(err, "checking usuario")
		}
		if taken {
			return Registration{}, core.NewValidationError(ErrUsuarioTaken, core.FieldError{Field: "usuario", Error: ErrUsuarioTaken.Error()})
		}
	}

	nu := user.NewUser{
		Name:            reg.StudentName,
		Username:        reg.Usuario,
		Password:        reg.Senha,
		PasswordConfirm: reg.Senha,
		Roles:           []string{user.RoleStudent},
	}
	var excl []user.User
	if enrolled {
		excl = append(excl, usr)
	}
	if err = nu.Validate(ctx, svc.validate, svc.usrSvc, excl...); err != nil {
		return Registration{}, svc.renameUserFields(err)
	}

	senha := reg.Senha
	reg.Senha = ""
	reg.CreatedAt = time.Now().UTC()

	err = core.RunInTx(ctx, svc.db, func(exec core.DBExecutor) error {
		if enrolled {
			if _, err := svc.usrSvc.SetPassword(ctx, usr, senha, exec); err != nil {
				return pkgerrors.Wrap(err, "resetting student password")
			}
		} else {
			created, err := svc.usrSvc.Create(ctx, nu, exec)
			if err != nil {
				return pkgerrors.Wrap(err, "creating student user")
			}
			reg.UserID = created.ID
		}

		var err error
		reg, err = svc.repo.CreateRegistration(ctx, reg, exec)
		return pkgerrors.Wrap(err, "creating registration")
	})
	if err != nil {
		return Registration{}, err
	}

	if reg.StudentEmail != "" {
		svc.mailSvc.SendMessages(&core.EmailMessage{
			To:           []mail.Address{{Name: reg.StudentName, Address: reg.StudentEmail}},
			Subject:      credentialsSubject,
			TemplateName: credentialsTmpl,
			TemplateData: map[string]string{
				"StudentName": reg.StudentName,
				"CourseName":  reg.CourseName,
				"Period":      reg.Period,
				"Usuario":     reg.Usuario,
				"Senha":       senha,
			},
		})
	}
	return reg, nil
}

// studentUser returns the portal account created by an earlier registration of the student.
func (svc *Service) studentUser(ctx context.Context, studentID int) (user.User, bool, error) {
	regs, err := svc.repo.QueryRegistrations(ctx, QueryFilter{StudentID: studentID}, nil)
	if err != nil {
		return user.User{}, false, pkgerrors.Wrap(err, "querying registrations")
	}
	for _, reg := range regs {
		if reg.UserID == "" {
			continue
		}
		usr, err := svc.usrSvc.GetByID(ctx, reg.UserID)
		if err != nil {
			if pkgerrors.Cause(err) == user.ErrNotFound {
				continue
			}
			return user.User{}, false, pkgerrors.Wrap(err, "fetching student user")
		}
		return usr, true, nil
	}
	return user.User{}, false, nil
}

// renameUserFields reports user account validation errors under the wizard's field names.
func (svc *Service) renameUserFields(err error) error {
	err = core.TranslateValidationErrors(err, svc.translator)
	vErr, ok := pkgerrors.Cause(err).(*core.ValidationError)
	if !ok {
		return err
	}
	flds := make([]core.FieldError, 0, len(vErr.Fields))
	for _, f := range vErr.Fields {
		if name, ok := userFieldNames[f.Field]; ok {
			f.Field = name
		}
		flds = append(flds, f)
	}
	return core.NewValidationError(vErr.Err, flds...)
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter, ordering []core.DBOrdering) ([]Registration, error) {
	regs, err := svc.repo.QueryRegistrations(ctx, filter, ordering)
	return regs, pkgerrors.Wrap(err, "querying registrations")
}

// latest returns the most recent registration of a student, preferring active ones.
func (svc *Service) latest(ctx context.Context, studentID int, activeOnly bool) (Registration, error) {
	filter := QueryFilter{StudentID: studentID}
	if activeOnly {
		filter.Status = StatusActive
	}
	regs, err := svc.repo.QueryRegistrations(ctx, filter, nil)
	if err != nil {
		return Registration{}, pkgerrors.Wrap(err, "querying registrations")
	}
	if len(regs) == 0 {
		return Registration{}, ErrNotFound
	}
	return regs[0], nil
}

// GetAccount returns the payment account of the student's latest active registration.
func (svc *Service) GetAccount(ctx context.Context, studentID int) (payment.Account, error) {
	reg, err := svc.latest(ctx, studentID, true)
	if err != nil {
		if err == ErrNotFound {
			return payment.Account{}, payment.ErrUnknownStudent
		}
		return payment.Account{}, err
	}
	return accountOf(reg), nil
}

// Accounts returns one payment account per actively registered student, sorted by name.
func (svc *Service) Accounts(ctx context.Context) ([]payment.Account, error) {
	regs, err := svc.repo.QueryRegistrations(ctx, QueryFilter{Status: StatusActive}, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "querying registrations")
	}

	seen := make(map[int]bool, len(regs))
	accounts := make([]payment.Account, 0, len(regs))
	for _, reg := range regs { // most recent first
		if seen[reg.StudentID] {
			continue
		}
		seen[reg.StudentID] = true
		accounts = append(accounts, accountOf(reg))
	}
	sort.SliceStable(accounts, func(i, j int) bool { return accounts[i].StudentName < accounts[j].StudentName })
	return accounts, nil
}

// StudentName returns the name of a registered student.
func (svc *Service) StudentName(ctx context.Context, studentID int) (string, error) {
	reg, err := svc.latest(ctx, studentID, false)
	if err != nil {
		return "", err
	}
	return reg.StudentName, nil
}

func accountOf(reg Registration) payment.Account {
	return payment.Account{
		StudentID:   reg.StudentID,
		StudentName: reg.StudentName,
		ClassName:   reg.ClassName,
		MonthlyFee:  reg.MonthlyFee,
	}
}

var (
	_ payment.AccountLookup = (*Service)(nil)
)
