package emailsvc

import (
	"net/mail"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/escola/core"
	"github.com/trezcool/escola/tests"
)

func TestSendgridService_build(t *testing.T) {
	conf := core.NewTestConfig()
	svc := NewSendgridService(conf, testutil.NewLogger()).(*sendgridService)

	t.Run("templated", func(t *testing.T) {
		m := svc.build(core.EmailMessage{
			To:           []mail.Address{{Name: "Maria Santos", Address: "maria.santos@example.com"}},
			Bcc:          []mail.Address{{Address: "secretaria@escola.co.mz"}},
			Subject:      "Credenciais",
			TemplateName: "student_credentials",
			TextContent:  "Usuário: maria.santos",
			HTMLContent:  "<p>Usuário: maria.santos</p>",
		})

		require.Len(t, m.Personalizations, 1)
		p := m.Personalizations[0]
		assert.Equal(t, "["+conf.AppName+"] Credenciais", p.Subject)
		require.Len(t, p.To, 1)
		assert.Equal(t, "maria.santos@example.com", p.To[0].Address)
		assert.Empty(t, p.CC)
		assert.Len(t, p.BCC, 1)

		assert.Equal(t, []string{mailCategory, "student_credentials"}, m.Categories)
		assert.Equal(t, "student_credentials", m.CustomArgs["template"])
		assert.Equal(t, conf.Env, m.CustomArgs["env"])
		require.Len(t, m.Content, 2)
		assert.Equal(t, "text/plain", m.Content[0].Type)
		assert.Equal(t, "text/html", m.Content[1].Type)
	})

	t.Run("plain body", func(t *testing.T) {
		m := svc.build(core.EmailMessage{
			To:          []mail.Address{{Address: "carlos@example.com"}},
			TextContent: "Olá",
		})
		assert.Equal(t, []string{mailCategory}, m.Categories)
		assert.NotContains(t, m.CustomArgs, "template")
		require.Len(t, m.Content, 1)
		assert.Equal(t, "Olá", m.Content[0].Value)
	})
}
