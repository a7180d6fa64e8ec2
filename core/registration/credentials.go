package registration

import (
	"crypto/rand"
	"math/big"
	"strings"
	"unicode"

	"github.com/pkg/errors"
	"golang.org/x/text/unicode/norm"
)

const (
	DefaultSenhaLength = 10

	lowerChars   = "abcdefghijkmnopqrstuvwxyz"
	upperChars   = "ABCDEFGHJKLMNPQRSTUVWXYZ"
	digitChars   = "23456789"
	specialChars = "!@#$%&*?"
	allChars     = lowerChars + upperChars + digitChars + specialChars

	fallbackUsuario = "aluno"
)

type Credentials struct {
	Usuario string `json:"usuario"`
	Senha   string `json:"senha"`
}

// CredentialGenerator creates the portal credentials of a newly selected student.
type CredentialGenerator interface {
	Generate(fullName string) (Credentials, error)
}

// RandomCredentials derives the usuario from the name and draws a random senha.
type RandomCredentials struct {
	Length int
}

func NewRandomCredentials() *RandomCredentials {
	return &RandomCredentials{Length: DefaultSenhaLength}
}

func (g RandomCredentials) Generate(fullName string) (Credentials, error) {
	n := g.Length
	if n <= 0 {
		n = DefaultSenhaLength
	}
	senha, err := GenerateSenha(n)
	if err != nil {
		return Credentials{}, err
	}
	return Credentials{Usuario: GenerateUsuario(fullName), Senha: senha}, nil
}

// GenerateUsuario builds "first.last" from a full name: lowercased, diacritics folded, non-letters stripped.
func GenerateUsuario(fullName string) string {
	tokens := make([]string, 0, 4)
	for _, tok := range strings.Fields(foldName(fullName)) {
		var b strings.Builder
		for _, r := range tok {
			if r >= 'a' && r <= 'z' {
				b.WriteRune(r)
			}
		}
		if b.Len() > 0 {
			tokens = append(tokens, b.String())
		}
	}

	switch len(tokens) {
	case 0:
		return fallbackUsuario
	case 1:
		return tokens[0]
	default:
		return tokens[0] + "." + tokens[len(tokens)-1]
	}
}

func foldName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var buf []rune
	for _, r := range norm.NFD.String(s) {
		if unicode.Is(unicode.Mn, r) { // é → e
			continue
		}
		buf = append(buf, r)
	}
	return string(buf)
}

// GenerateSenha draws n random characters, with at least one lowercase, uppercase, digit and special character.
func GenerateSenha(n int) (string, error) {
	if n < 4 {
		return "", errors.New("senha must be at least 4 characters long")
	}
	sets := []string{lowerChars, upperChars, digitChars, specialChars}
	buf := make([]byte, n)
	for i := range buf {
		set := allChars
		if i < len(sets) {
			set = sets[i]
		}
		c, err := randomChar(set)
		if err != nil {
			return "", err
		}
		buf[i] = c
	}

	// Fisher-Yates, so the guaranteed classes are not always up front
	for i := n - 1; i > 0; i-- {
		j, err := randInt(i + 1)
		if err != nil {
			return "", err
		}
		buf[i], buf[j] = buf[j], buf[i]
	}
	return string(buf), nil
}

func randomChar(set string) (byte, error) {
	i, err := randInt(len(set))
	if err != nil {
		return 0, err
	}
	return set[i], nil
}

func randInt(max int) (int, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
	if err != nil {
		return 0, errors.Wrap(err, "reading random")
	}
	return int(n.Int64()), nil
}
