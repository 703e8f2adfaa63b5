package gateway

import (
	"math/rand"
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

const (
	cpfLength      = 11
	minPhoneDigits = 10
	countryPrefix  = "55"
)

var emailDomains = []string{"gmail.com", "yahoo.com", "hotmail.com", "outlook.com"}

var hundred = decimal.NewFromInt(100)

// DigitsOnly strips every non-digit character.
func DigitsOnly(raw string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, raw)
}

// NormalizeCpf returns the 11 digits of a CPF, ignoring punctuation.
func NormalizeCpf(raw string) (string, error) {
	cpf := DigitsOnly(raw)
	if len(cpf) != cpfLength {
		return "", NewError(KindInvalidCPF, "CPF inválido - deve conter 11 dígitos (recebido %d)", len(cpf))
	}
	return cpf, nil
}

// FormatCpf renders an 11-digit CPF as 123.456.789-00. Anything else is returned as is.
func FormatCpf(cpf string) string {
	if len(cpf) != cpfLength {
		return cpf
	}
	return cpf[:3] + "." + cpf[3:6] + "." + cpf[6:9] + "-" + cpf[9:]
}

// MaskCpf keeps the first three and last two digits, for logs.
func MaskCpf(cpf string) string {
	if len(cpf) <= 5 {
		return "***"
	}
	return cpf[:3] + "..." + cpf[len(cpf)-2:]
}

// MaskSecret keeps the first and last three characters, for logs.
func MaskSecret(secret string) string {
	if len(secret) < 8 {
		return "***"
	}
	return secret[:3] + "..." + secret[len(secret)-3:]
}

// NormalizePhone never fails: a number that is too short is replaced by a
// synthetic one, and the 55 country prefix is dropped.
func NormalizePhone(raw string) string {
	phone := DigitsOnly(raw)
	if len(phone) < minPhoneDigits {
		return RandomPhone()
	}
	if len(phone) > minPhoneDigits && strings.HasPrefix(phone, countryPrefix) {
		phone = phone[len(countryPrefix):]
	}
	return phone
}

// RandomPhone generates a Brazilian-shaped number: area code 11-99 followed by 9 digits.
func RandomPhone() string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(11 + rand.Intn(89)))
	b.WriteString(randomDigits(9))
	return b.String()
}

// NormalizeEmail passes through anything with an @ and synthesizes a
// placeholder from the customer name otherwise.
func NormalizeEmail(raw, name string) string {
	if strings.Contains(raw, "@") {
		return raw
	}
	return RandomEmail(name)
}

// RandomEmail builds <name><4 digits>@<common domain>.
func RandomEmail(name string) string {
	clean := strings.Map(func(r rune) rune {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			return unicode.ToLower(r)
		}
		return -1
	}, name)
	return clean + randomDigits(4) + "@" + emailDomains[rand.Intn(len(emailDomains))]
}

// NormalizeAmount parses a major-unit amount ("45.84") into minor units (4584).
func NormalizeAmount(raw string) (int64, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return 0, &Error{Kind: KindInvalidAmount, Message: "Valor de pagamento inválido: " + raw, Err: err}
	}
	return MinorUnits(amount)
}

// MinorUnits multiplies by 100 and truncates. The result must be positive
// and fit in an int64.
func MinorUnits(amount decimal.Decimal) (int64, error) {
	cents := amount.Mul(hundred).Truncate(0)
	if cents.Sign() <= 0 {
		return 0, NewError(KindInvalidAmount, "Valor do pagamento deve ser maior que zero (recebido %s)", amount.String())
	}
	if !cents.BigInt().IsInt64() {
		return 0, NewError(KindInvalidAmount, "Valor do pagamento excede o limite (recebido %s)", amount.String())
	}
	return cents.IntPart(), nil
}

func randomDigits(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte('0' + rand.Intn(10))
	}
	return string(b)
}
