package echoapi

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/trezcool/escola/core"
	"github.com/trezcool/escola/core/directory"
	"github.com/trezcool/escola/core/registration"
)

const (
	contextWizardKey = "wizard"
	wizardIdleTTL    = 2 * time.Hour
)

var (
	registrationOrderFields = []string{"id", "student_name", "period", "enrollment_date"}

	errUnknownAction = "unknown action"
	errInvalidValue  = "invalid value"
)

// Wizard sessions

type (
	wizardSession struct {
		mu       sync.Mutex
		id       string
		wizard   *registration.Wizard
		lastUsed time.Time
	}

	// wizardStore keeps the open registration wizards in memory, keyed by session id.
	wizardStore struct {
		mu       sync.Mutex
		sessions map[string]*wizardSession
		now      func() time.Time
	}
)

func newWizardStore() *wizardStore {
	return &wizardStore{sessions: make(map[string]*wizardSession), now: time.Now}
}

func (st *wizardStore) add(w *registration.Wizard) *wizardSession {
	st.mu.Lock()
	defer st.mu.Unlock()

	now := st.now()
	for id, sess := range st.sessions { // prune idle sessions
		if now.Sub(sess.lastUsed) > wizardIdleTTL {
			delete(st.sessions, id)
		}
	}

	sess := &wizardSession{id: uuid.New().String(), wizard: w, lastUsed: now}
	st.sessions[sess.id] = sess
	return sess
}

func (st *wizardStore) get(id string) (*wizardSession, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()

	sess, ok := st.sessions[id]
	if ok {
		sess.lastUsed = st.now()
	}
	return sess, ok
}

func (st *wizardStore) remove(id string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, id)
}

type registrationApi struct {
	conf    *core.Config
	dir     directory.Directory
	creds   registration.CredentialGenerator
	svc     *registration.Service
	wizards *wizardStore
}

func registerRegistrationAPI(
	g *echo.Group,
	jwt, staff echo.MiddlewareFunc,
	conf *core.Config,
	dir directory.Directory,
	creds registration.CredentialGenerator,
	svc *registration.Service,
) {
	api := registrationApi{
		conf:    conf,
		dir:     dir,
		creds:   creds,
		svc:     svc,
		wizards: newWizardStore(),
	}

	rg := g.Group("/registrations", jwt, staff)
	rg.GET("", api.query)
	rg.POST("/wizards", api.openWizard)

	wg := rg.Group("/wizards/:id", wizardMiddleware(api.wizards))
	wg.GET("", api.retrieveWizard)
	wg.POST("/actions", api.dispatch)
	wg.POST("/confirm", api.confirm)
	wg.DELETE("", api.cancel)
}

// Handlers

func (api *registrationApi) query(ctx echo.Context) error {
	var filter registration.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return core.NewValidationError(nil, core.FieldError{Field: "status", Error: errInvalidValue})
	}
	var ord Ordering
	ord.Bind(ctx, registrationOrderFields...)

	regs, err := api.svc.Query(ctx.Request().Context(), filter, ord.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying registrations")
	}
	return ctx.JSON(http.StatusOK, regs)
}

func (api *registrationApi) openWizard(ctx echo.Context) error {
	w := registration.NewWizard(api.dir, api.creds, api.svc.Save)
	if err := w.Open(ctx.Request().Context()); err != nil {
		return directoryErr(err)
	}
	sess := api.wizards.add(w)
	return ctx.JSON(http.StatusCreated, newWizardResponse(sess))
}

func (api *registrationApi) retrieveWizard(ctx echo.Context) error {
	sess := ctx.Get(contextWizardKey).(*wizardSession)
	return ctx.JSON(http.StatusOK, newWizardResponse(sess))
}

func (api *registrationApi) dispatch(ctx echo.Context) error {
	sess := ctx.Get(contextWizardKey).(*wizardSession)

	var data ActionRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ActionRequest")
	}
	if err := data.apply(sess.wizard); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, newWizardResponse(sess))
}

func (api *registrationApi) confirm(ctx echo.Context) error {
	sess := ctx.Get(contextWizardKey).(*wizardSession)

	reg, err := sess.wizard.Confirm(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "confirming registration")
	}
	api.wizards.remove(sess.id)
	return ctx.JSON(http.StatusCreated, reg)
}

func (api *registrationApi) cancel(ctx echo.Context) error {
	sess := ctx.Get(contextWizardKey).(*wizardSession)
	sess.wizard.Cancel()
	api.wizards.remove(sess.id)
	return ctx.NoContent(http.StatusNoContent)
}

// Requests & Responses

type (
	// ActionRequest is a wizard action: Type names it, the other fields are its arguments.
	ActionRequest struct {
		Type      string              `json:"type"`
		Tab       registration.Tab    `json:"tab"`
		Query     string              `json:"query"`
		StudentID int                 `json:"student_id"`
		Usuario   string              `json:"usuario"`
		Senha     string              `json:"senha"`
		CourseID  string              `json:"course_id"`
		ClassID   int                 `json:"class_id"`
		Period    string              `json:"period"`
		Date      string              `json:"date"`
		Status    registration.Status `json:"status"`
		Text      string              `json:"text"`
		Amount    decimal.Decimal     `json:"amount"`
	}

	WizardResponse struct {
		ID             string              `json:"id"`
		Draft          registration.Draft  `json:"draft"`
		TotalToPay     decimal.Decimal     `json:"total_to_pay"`
		EnrollmentPaid bool                `json:"enrollment_paid"`
		Students       []directory.Student `json:"students"`
		Courses        []directory.Course  `json:"courses"`
		Classes        []directory.Class   `json:"classes"`
	}
)

func newWizardResponse(sess *wizardSession) WizardResponse {
	w := sess.wizard
	d := w.Draft()
	return WizardResponse{
		ID:             sess.id,
		Draft:          d,
		TotalToPay:     d.TotalToPay(),
		EnrollmentPaid: d.IsEnrollmentPaid(),
		Students:       w.Students(),
		Courses:        w.Courses(),
		Classes:        w.Classes(),
	}
}

func invalid(field string) error {
	return core.NewValidationError(nil, core.FieldError{Field: field, Error: errInvalidValue})
}

// apply runs the action against the wizard. Selections go through the wizard so that
// credentials are generated and directory records resolved.
func (ar ActionRequest) apply(w *registration.Wizard) error {
	if !w.Draft().Open {
		return registration.ErrWizardClosed
	}

	var action registration.Action
	switch ar.Type {
	case "select_tab":
		if !ar.Tab.Valid() {
			return invalid("tab")
		}
		action = registration.SelectTab{Tab: ar.Tab}
	case "next":
		action = registration.Next{}
	case "back":
		action = registration.Back{}
	case "search":
		action = registration.Search{Query: ar.Query}
	case "select_student":
		return w.SelectStudentByID(ar.StudentID)
	case "clear_student":
		action = registration.ClearStudent{}
	case "set_credentials":
		action = registration.SetCredentials{Usuario: core.CleanString(ar.Usuario, true /* lower */), Senha: ar.Senha}
	case "select_course":
		return w.SelectCourse(ar.CourseID)
	case "select_class":
		return w.SelectClass(ar.ClassID)
	case "set_period":
		action = registration.SetPeriod{Period: core.CleanString(ar.Period)}
	case "set_enrollment_date":
		date, err := time.Parse(registration.DateLayout, ar.Date)
		if err != nil {
			return invalid("date")
		}
		action = registration.SetEnrollmentDate{Date: date}
	case "set_status":
		if !ar.Status.Valid() {
			return invalid("status")
		}
		action = registration.SetStatus{Status: ar.Status}
	case "set_observations":
		action = registration.SetObservations{Text: ar.Text}
	case "set_paid_amount":
		if ar.Amount.IsNegative() {
			return invalid("amount")
		}
		action = registration.SetPaidAmount{Amount: ar.Amount}
	case "toggle_first_month":
		action = registration.ToggleFirstMonth{}
	default:
		return core.NewValidationError(nil, core.FieldError{Field: "type", Error: errUnknownAction})
	}

	w.Dispatch(action)
	return nil
}
