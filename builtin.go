package veil

import (
	"strings"
	"unicode"
)

// Built-in policy names, usable directly as mask tag elements.
const (
	PolicyPhone    = "phone"    // 13812345678 -> 138****5678
	PolicyEmail    = "email"    // alice@example.com -> a***@example.com
	PolicySSN      = "ssn"      // 123-45-6789 -> ***-**-6789
	PolicyCard     = "card"     // 4111111111111111 -> ************1111
	PolicyIP       = "ip"       // 192.168.1.100 -> 192.168.xxx.xxx
	PolicyUUID     = "uuid"     // 550e8400-e29b-41d4-a716-446655440000 -> 550e8400-****-****-****-************
	PolicyIBAN     = "iban"     // GB82WEST12345698765432 -> GB82**************5432
	PolicyName     = "name"     // John Smith -> J*** S****
	PolicyPassword = "password" // any value -> ""
	PolicyHash     = "hash"     // deterministic BLAKE2b fingerprint
)

// builtinRegistry holds the built-in strategies keyed by policy name.
// Populated once at startup, read-only afterwards.
var builtinRegistry = builtinStrategies()

// builtinStrategy returns the built-in strategy for a policy name.
func builtinStrategy(name string) (Strategy, bool) {
	s, ok := builtinRegistry[name]
	return s, ok
}

// builtinStrategies returns the built-in strategy registry.
func builtinStrategies() map[string]Strategy {
	return map[string]Strategy{
		PolicyPhone:    PhoneStrategy(),
		PolicyEmail:    EmailStrategy(),
		PolicySSN:      SSNStrategy(),
		PolicyCard:     CardStrategy(),
		PolicyIP:       IPStrategy(),
		PolicyUUID:     UUIDStrategy(),
		PolicyIBAN:     IBANStrategy(),
		PolicyName:     NameStrategy(),
		PolicyPassword: PasswordStrategy(),
		PolicyHash:     HashStrategy(),
	}
}

// builtinPolicies returns the named policy registry seeded with built-ins.
func builtinPolicies() map[string]Policy {
	policies := make(map[string]Policy, len(builtinRegistry))
	for name := range builtinRegistry {
		policies[name] = Policy{Strategy: name, BuiltIn: true}
	}
	return policies
}

// Built-in strategies operate on strings and pass every other value through
// unchanged, so a mistagged numeric field is left intact rather than
// corrupted.

// phoneStrategy masks mobile numbers: 13812345678 -> 138****5678
type phoneStrategy struct{}

// PhoneStrategy returns the builtin strategy for mobile numbers.
// Keeps the first 3 and last 4 characters, stars the middle. The rule is
// positional, suited to bare digit strings.
func PhoneStrategy() Strategy {
	return &phoneStrategy{}
}

func (s *phoneStrategy) Mask(value any, _ *Context) any {
	str, ok := value.(string)
	if !ok {
		return value
	}
	runes := []rune(str)
	if len(runes) < 8 {
		return strings.Repeat("*", len(runes))
	}
	return string(runes[:3]) + strings.Repeat("*", len(runes)-7) + string(runes[len(runes)-4:])
}

// emailStrategy masks emails: alice@example.com -> a***@example.com
type emailStrategy struct{}

// EmailStrategy returns the builtin strategy for email addresses.
// Preserves the first character of the local part and the full domain.
func EmailStrategy() Strategy {
	return &emailStrategy{}
}

func (s *emailStrategy) Mask(value any, _ *Context) any {
	str, ok := value.(string)
	if !ok {
		return value
	}

	atIdx := strings.LastIndex(str, "@")
	if atIdx < 1 {
		// No @ or @ at start, mask everything
		return strings.Repeat("*", len(str))
	}

	local := str[:atIdx]
	domain := str[atIdx:]
	return string(local[0]) + "***" + domain
}

// ssnStrategy masks SSN format: 123-45-6789 -> ***-**-6789
type ssnStrategy struct{}

// SSNStrategy returns the builtin strategy for Social Security Numbers.
// Preserves the last 4 digits, masks everything else.
func SSNStrategy() Strategy {
	return &ssnStrategy{}
}

func (s *ssnStrategy) Mask(value any, _ *Context) any {
	str, ok := value.(string)
	if !ok {
		return value
	}

	digits := extractDigits(str)
	if len(digits) < 4 {
		return strings.Repeat("*", len(str))
	}
	return "***-**-" + digits[len(digits)-4:]
}

// cardStrategy masks card numbers: 4111111111111111 -> ************1111
type cardStrategy struct{}

// CardStrategy returns the builtin strategy for card numbers.
// Preserves the last 4 digits and any space or dash grouping.
func CardStrategy() Strategy {
	return &cardStrategy{}
}

func (s *cardStrategy) Mask(value any, _ *Context) any {
	str, ok := value.(string)
	if !ok {
		return value
	}

	digits := extractDigits(str)
	if len(digits) < 4 {
		return strings.Repeat("*", len(str))
	}

	last4 := digits[len(digits)-4:]

	if strings.Contains(str, " ") {
		return maskGrouped(len(digits), last4, " ")
	}
	if strings.Contains(str, "-") {
		return maskGrouped(len(digits), last4, "-")
	}
	return strings.Repeat("*", len(digits)-4) + last4
}

// extractDigits returns only the digit characters from a string.
func extractDigits(s string) string {
	var digits strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			digits.WriteRune(r)
		}
	}
	return digits.String()
}

// maskGrouped formats a masked card in groups of four: **** **** **** 1234
func maskGrouped(totalDigits int, last4, sep string) string {
	groups := (totalDigits - 4 + 3) / 4
	masked := make([]string, groups)
	for i := range masked {
		masked[i] = "****"
	}
	return strings.Join(masked, sep) + sep + last4
}

// ipStrategy masks IP addresses.
// IPv4: 192.168.1.100 -> 192.168.xxx.xxx
// IPv6: 2001:0db8:85a3:0000:0000:8a2e:0370:7334 -> 2001:0db8:85a3:0000:xxxx:xxxx:xxxx:xxxx
type ipStrategy struct{}

// IPStrategy returns the builtin strategy for IP addresses.
// IPv4 keeps the first two octets, IPv6 keeps the 64-bit network prefix.
func IPStrategy() Strategy {
	return &ipStrategy{}
}

func (s *ipStrategy) Mask(value any, _ *Context) any {
	str, ok := value.(string)
	if !ok {
		return value
	}

	if parts := strings.Split(str, "."); len(parts) == 4 {
		return parts[0] + "." + parts[1] + ".xxx.xxx"
	}
	if strings.Contains(str, ":") {
		return maskIPv6(str)
	}
	return strings.Repeat("*", len(str))
}

// maskIPv6 masks an IPv6 address, preserving the network prefix.
func maskIPv6(value string) string {
	expanded := expandIPv6(value)
	parts := strings.Split(expanded, ":")
	if len(parts) != 8 {
		return strings.Repeat("*", len(value))
	}
	return parts[0] + ":" + parts[1] + ":" + parts[2] + ":" + parts[3] +
		":xxxx:xxxx:xxxx:xxxx"
}

// expandIPv6 expands :: notation to full 8-group form.
func expandIPv6(value string) string {
	if !strings.Contains(value, "::") {
		return value
	}

	parts := strings.Split(value, "::")
	if len(parts) != 2 {
		return value // Multiple ::, invalid
	}

	left := strings.Split(parts[0], ":")
	right := strings.Split(parts[1], ":")
	if parts[0] == "" {
		left = []string{}
	}
	if parts[1] == "" {
		right = []string{}
	}

	missing := 8 - len(left) - len(right)
	if missing < 0 {
		return value // Too many groups, invalid
	}

	zeros := make([]string, missing)
	for i := range zeros {
		zeros[i] = "0000"
	}

	all := append(left, zeros...)
	all = append(all, right...)
	return strings.Join(all, ":")
}

// uuidStrategy masks UUIDs: 550e8400-e29b-41d4-a716-446655440000 -> 550e8400-****-****-****-************
type uuidStrategy struct{}

// UUIDStrategy returns the builtin strategy for UUIDs.
// Preserves the first segment, masks the rest.
func UUIDStrategy() Strategy {
	return &uuidStrategy{}
}

func (s *uuidStrategy) Mask(value any, _ *Context) any {
	str, ok := value.(string)
	if !ok {
		return value
	}

	parts := strings.Split(str, "-")
	if len(parts) != 5 {
		return strings.Repeat("*", len(str))
	}
	return parts[0] + "-****-****-****-************"
}

// ibanStrategy masks IBANs: GB82WEST12345698765432 -> GB82**************5432
type ibanStrategy struct{}

// IBANStrategy returns the builtin strategy for IBANs.
// Preserves the country code and check digits (first 4) plus the last 4.
func IBANStrategy() Strategy {
	return &ibanStrategy{}
}

func (s *ibanStrategy) Mask(value any, _ *Context) any {
	str, ok := value.(string)
	if !ok {
		return value
	}

	if len(str) <= 8 {
		return strings.Repeat("*", len(str))
	}
	return str[:4] + strings.Repeat("*", len(str)-8) + str[len(str)-4:]
}

// nameStrategy masks names: John Smith -> J*** S****
type nameStrategy struct{}

// NameStrategy returns the builtin strategy for personal names.
// Preserves the first letter of each word, masks the rest.
func NameStrategy() Strategy {
	return &nameStrategy{}
}

func (s *nameStrategy) Mask(value any, _ *Context) any {
	str, ok := value.(string)
	if !ok {
		return value
	}

	words := strings.Fields(str)
	masked := make([]string, len(words))
	for i, word := range words {
		runes := []rune(word)
		masked[i] = string(runes[0]) + strings.Repeat("*", len(runes)-1)
	}
	return strings.Join(masked, " ")
}

// passwordStrategy blanks values outright.
type passwordStrategy struct{}

// PasswordStrategy returns the builtin strategy that replaces any string
// with the empty string. Nothing of the original survives, length included.
func PasswordStrategy() Strategy {
	return &passwordStrategy{}
}

func (s *passwordStrategy) Mask(value any, _ *Context) any {
	if _, ok := value.(string); !ok {
		return value
	}
	return ""
}
