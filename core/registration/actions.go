package registration

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/trezcool/escola/core/directory"
)

// Action is a draft transition. The concrete types below form a closed set.
type Action interface {
	isAction()
}

type (
	// SelectTab jumps to any tab, unguarded.
	SelectTab struct{ Tab Tab }
	// Next moves to the following tab when the current one is complete.
	Next struct{}
	// Back moves to the previous tab.
	Back struct{}
	// Search filters the student list.
	Search struct{ Query string }

	SelectStudent  struct{ Student directory.Student }
	ClearStudent   struct{}
	SetCredentials struct{ Usuario, Senha string }

	SelectCourse struct{ Course directory.Course }
	// SelectClass with a zero Class clears the class.
	SelectClass       struct{ Class directory.Class }
	SetPeriod         struct{ Period string }
	SetEnrollmentDate struct{ Date time.Time }
	SetStatus         struct{ Status Status }
	SetObservations   struct{ Text string }

	SetPaidAmount    struct{ Amount decimal.Decimal }
	ToggleFirstMonth struct{}

	// ShowErrors moves to Tab and surfaces a message and field errors.
	ShowErrors struct {
		Tab     Tab
		Message string
		Fields  map[string]string
	}
	// Reset discards the draft and closes the wizard.
	Reset struct{}
)

func (SelectTab) isAction()         {}
func (Next) isAction()              {}
func (Back) isAction()              {}
func (Search) isAction()            {}
func (SelectStudent) isAction()     {}
func (ClearStudent) isAction()      {}
func (SetCredentials) isAction()    {}
func (SelectCourse) isAction()      {}
func (SelectClass) isAction()       {}
func (SetPeriod) isAction()         {}
func (SetEnrollmentDate) isAction() {}
func (SetStatus) isAction()         {}
func (SetObservations) isAction()   {}
func (SetPaidAmount) isAction()     {}
func (ToggleFirstMonth) isAction()  {}
func (ShowErrors) isAction()        {}
func (Reset) isAction()             {}
