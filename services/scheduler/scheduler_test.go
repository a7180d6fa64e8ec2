package schedulersvc

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/escola/core"
	"github.com/trezcool/escola/tests"
)

type refresherMock struct {
	calls int
	n     int
	err   error
}

func (m *refresherMock) RefreshOverdue(_ context.Context) (int, error) {
	m.calls++
	return m.n, m.err
}

func TestNew(t *testing.T) {
	conf := core.NewTestConfig()

	t.Run("valid schedule", func(t *testing.T) {
		s, err := New(conf, testutil.NewLogger(), &refresherMock{})
		require.NoError(t, err)
		assert.Len(t, s.cron.Entries(), 1)
	})

	t.Run("invalid schedule", func(t *testing.T) {
		badConf := *conf
		badConf.Payments.OverdueSchedule = "every now and then"
		_, err := New(&badConf, testutil.NewLogger(), &refresherMock{})
		assert.Error(t, err)
	})
}

func TestScheduler_refreshOverdue(t *testing.T) {
	conf := core.NewTestConfig()

	t.Run("success", func(t *testing.T) {
		m := &refresherMock{n: 3}
		s, err := New(conf, testutil.NewLogger(), m)
		require.NoError(t, err)

		s.refreshOverdue(m)()
		assert.Equal(t, 1, m.calls)
	})

	t.Run("failure is logged", func(t *testing.T) {
		m := &refresherMock{err: errors.New("db down")}
		s, err := New(conf, testutil.NewLogger(), m)
		require.NoError(t, err)

		assert.NotPanics(t, s.refreshOverdue(m))
		assert.Equal(t, 1, m.calls)
	})
}
