package logsvc

import (
	"bytes"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/escola/core"
	"github.com/trezcool/escola/core/user"
)

func TestRollbarLogger_item(t *testing.T) {
	l := NewRollbarLogger(ComponentScheduler, new(bytes.Buffer), core.NewTestConfig())
	errOverdue := errors.New("db down")

	items := l.item("refreshing overdue payments", []interface{}{
		errOverdue,
		Fields{"payment_id": "p-1"},
		map[string]interface{}{"student_id": 1},
		user.User{ID: "u-1", Username: "secretaria"},
		42,
	})

	require.Len(t, items, 3)
	assert.Equal(t, "refreshing overdue payments", items[0])
	assert.Equal(t, errOverdue, items[1])
	custom, ok := items[2].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, ComponentScheduler, custom["component"])
	assert.Equal(t, "refreshing overdue payments", custom["message"])
	assert.Equal(t, "p-1", custom["payment_id"])
	assert.Equal(t, 1, custom["student_id"])
	assert.Equal(t, []interface{}{42}, custom["args"])
}

func TestRollbarLogger_print(t *testing.T) {
	buf := new(bytes.Buffer)
	l := NewRollbarLogger(ComponentAPI, buf, core.NewTestConfig())

	l.Info("registration saved", Fields{"usuario": "maria.santos", "id": 3}, &user.User{Username: "secretaria"})

	out := buf.String()
	assert.Contains(t, out, "API : ")
	assert.Contains(t, out, "[INFO] registration saved id=3 usuario=maria.santos user=secretaria")
}

func Test_formatFields(t *testing.T) {
	assert.Equal(t, "a=1 b=two", formatFields(Fields{"b": "two", "a": 1}))
	assert.Empty(t, formatFields(Fields{}))
}
