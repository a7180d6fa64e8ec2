// Package logsvc logs escola's API, database, admin and scheduler events to stdout and reports them to rollbar.
package logsvc

import (
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"

	"github.com/trezcool/escola/core"
	"github.com/trezcool/escola/core/user"
)

// Components
const (
	ComponentAPI       = "API"
	ComponentDB        = "DB"
	ComponentAdmin     = "ADMIN"
	ComponentScheduler = "SCHEDULER"
	ComponentTest      = "TEST"
)

// Fields is custom data attached to a rollbar item, e.g. {"student_id": 1, "payment_id": "..."}.
type Fields map[string]interface{}

type RollbarLogger struct {
	std       *log.Logger
	component string
}

var _ core.Logger = (*RollbarLogger)(nil)

// NewRollbarLogger writes "<component> : " prefixed lines to w.
// Rollbar only receives items outside debug & test modes, tagged with the component.
func NewRollbarLogger(component string, w io.Writer, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnabled(conf.RollbarToken != "" && !conf.Debug && !conf.TestMode)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(conf.Server.Host)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)

	return &RollbarLogger{
		std:       log.New(w, component+" : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		component: component,
	}
}

func (l RollbarLogger) Enable(enabled bool) {
	rollbar.SetEnabled(enabled)
}

// item builds the rollbar arguments of a log call.
// args may hold errors, Fields (or plain maps) and the staff user behind the request;
// anything else lands in the custom data under "args".
func (l RollbarLogger) item(msg string, args []interface{}) []interface{} {
	var (
		usr    *user.User
		others []interface{}
	)
	custom := map[string]interface{}{"component": l.component, "message": msg}
	items := []interface{}{msg}

	for _, arg := range args {
		switch a := arg.(type) {
		case error:
			items = append(items, a)
		case Fields:
			for k, v := range a {
				custom[k] = v
			}
		case map[string]interface{}:
			for k, v := range a {
				custom[k] = v
			}
		case user.User:
			if usr == nil {
				usr = &a
			}
		case *user.User:
			if usr == nil && a != nil {
				usr = a
			}
		default:
			others = append(others, a)
		}
	}
	if len(others) > 0 {
		custom["args"] = others
	}

	if usr != nil {
		rollbar.SetPerson(usr.ID, usr.Username, usr.Email)
	} else {
		rollbar.ClearPerson()
	}
	return append(items, custom)
}

func (l RollbarLogger) print(level, msg string, args []interface{}) {
	var b strings.Builder
	b.WriteString("[" + level + "] " + msg)
	for _, arg := range args {
		switch a := arg.(type) {
		case Fields:
			b.WriteString(" " + formatFields(a))
		case user.User:
			b.WriteString(" user=" + a.Username)
		case *user.User:
			if a != nil {
				b.WriteString(" user=" + a.Username)
			}
		case error:
			b.WriteString(fmt.Sprintf("\n%+v", a))
		default:
			b.WriteString(fmt.Sprintf(" %+v", a))
		}
	}
	_ = l.std.Output(3, b.String())
}

// formatFields renders fields as sorted key=value pairs.
func formatFields(f Fields) string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, fmt.Sprintf("%s=%v", k, f[k]))
	}
	return strings.Join(pairs, " ")
}

func (l RollbarLogger) Debug(msg string, args ...interface{}) {
	rollbar.Debug(l.item(msg, args)...)
	l.print("DEBUG", msg, args)
}

func (l RollbarLogger) Info(msg string, args ...interface{}) {
	rollbar.Info(l.item(msg, args)...)
	l.print("INFO", msg, args)
}

func (l RollbarLogger) Warn(msg string, args ...interface{}) {
	rollbar.Warning(l.item(msg, args)...)
	l.print("WARN", msg, args)
}

func (l RollbarLogger) Error(msg string, args ...interface{}) {
	rollbar.Error(l.item(msg, args)...)
	l.print("ERROR", msg, args)
}

func (l RollbarLogger) Fatal(msg string, args ...interface{}) {
	rollbar.Critical(l.item(msg, args)...)
	l.print("FATAL", msg, args)
	rollbar.Wait()
	os.Exit(1)
}
