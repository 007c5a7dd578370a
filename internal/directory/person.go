package directory

import (
	"fmt"
	"strings"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleProvider Role = "provider"
	RolePatient  Role = "patient"
)

// Person is a directory entry. Specialty is set only for providers.
type Person struct {
	ID        string
	Name      string
	Role      Role
	Specialty *string
}

func (p *Person) IsProvider() bool {
	return p.Role == RoleProvider
}

func (p *Person) SpecialtyName() string {
	if p.Specialty == nil {
		return ""
	}
	return *p.Specialty
}

// NormalizeID strips everything but digits from a person identifier, so
// "111.111.111-11" and "11111111111" refer to the same person.
func NormalizeID(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidID reports whether an identifier carries the expected 11 digits,
// ignoring display punctuation.
func ValidID(id string) bool {
	return len(NormalizeID(id)) == 11
}

// FormatID renders an identifier as 000.000.000-00 for display. Anything
// that is not 11 digits long is returned unchanged.
func FormatID(raw string) string {
	id := NormalizeID(raw)
	if len(id) != 11 {
		return raw
	}
	return fmt.Sprintf("%s.%s.%s-%s", id[:3], id[3:6], id[6:9], id[9:])
}
