package pix

import (
	"fmt"
	"strings"

	"github.com/feirahub/feira-api/pkg/money"
)

// KeyType identifies the kind of PIX key a merchant registered.
type KeyType string

const (
	KeyTypeCPF    KeyType = "cpf"
	KeyTypeCNPJ   KeyType = "cnpj"
	KeyTypeEmail  KeyType = "email"
	KeyTypePhone  KeyType = "phone"
	KeyTypeRandom KeyType = "random"
)

// Valid reports whether the key type is one of the supported kinds.
func (k KeyType) Valid() bool {
	switch k {
	case KeyTypeCPF, KeyTypeCNPJ, KeyTypeEmail, KeyTypePhone, KeyTypeRandom:
		return true
	}
	return false
}

// Instruction holds the inputs for a payment instruction. The payload
// encoding itself is an external concern; callers treat the output as an
// opaque string to display as a scannable code and a textual copy.
type Instruction struct {
	PayeeKey     string
	PayeeKeyType KeyType
	PayeeName    string
	PayeeCity    string
	AmountCents  int64
	Description  string
}

// Generator produces an opaque payment instruction string.
type Generator interface {
	Generate(in Instruction) (string, error)
}

// PassthroughGenerator renders the instruction fields as a pipe-delimited
// opaque string. A real deployment swaps in a BR Code encoder behind the
// same interface.
type PassthroughGenerator struct{}

// NewPassthroughGenerator creates a passthrough generator.
func NewPassthroughGenerator() *PassthroughGenerator {
	return &PassthroughGenerator{}
}

// Generate validates the inputs and returns the opaque instruction string.
func (g *PassthroughGenerator) Generate(in Instruction) (string, error) {
	if strings.TrimSpace(in.PayeeKey) == "" {
		return "", fmt.Errorf("pix: payee key is required")
	}
	if !in.PayeeKeyType.Valid() {
		return "", fmt.Errorf("pix: unsupported key type %q", in.PayeeKeyType)
	}
	if in.AmountCents <= 0 {
		return "", fmt.Errorf("pix: amount must be positive")
	}
	return fmt.Sprintf("PIX|%s|%s|%s|%s|%s|%s",
		in.PayeeKeyType,
		in.PayeeKey,
		in.PayeeName,
		in.PayeeCity,
		money.FromCents(in.AmountCents).StringFixed(2),
		in.Description,
	), nil
}
