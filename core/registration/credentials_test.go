package registration

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateUsuario(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Maria Santos", "maria.santos"},
		{"  João   Machava ", "joao.machava"},
		{"Ana Conceição Mondlane", "ana.mondlane"},
		{"José d'Almeida", "jose.dalmeida"},
		{"Óscar", "oscar"},
		{"", "aluno"},
		{"123 !!", "aluno"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GenerateUsuario(tt.name))
		})
	}
}

func TestGenerateSenha(t *testing.T) {
	_, err := GenerateSenha(3)
	assert.Error(t, err)

	for i := 0; i < 20; i++ {
		senha, err := GenerateSenha(DefaultSenhaLength)
		require.NoError(t, err)
		assert.Len(t, senha, DefaultSenhaLength)
		assert.True(t, strings.ContainsAny(senha, lowerChars), senha)
		assert.True(t, strings.ContainsAny(senha, upperChars), senha)
		assert.True(t, strings.ContainsAny(senha, digitChars), senha)
		assert.True(t, strings.ContainsAny(senha, specialChars), senha)
	}
}

func TestRandomCredentials_Generate(t *testing.T) {
	creds, err := RandomCredentials{}.Generate("Carlos Nhantumbo")
	require.NoError(t, err)
	assert.Equal(t, "carlos.nhantumbo", creds.Usuario)
	assert.Len(t, creds.Senha, DefaultSenhaLength)

	creds, err = RandomCredentials{Length: 16}.Generate("Carlos")
	require.NoError(t, err)
	assert.Len(t, creds.Senha, 16)
}
