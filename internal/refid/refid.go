// Package refid generates the tracking codes handed to applicants.
//
// A code looks like SEV-2026-4F9A1: a fixed prefix, the calendar year at
// generation time, and five uppercase hex characters cut from a random UUID.
// The generator never checks for collisions. The relational schema carries a
// UNIQUE constraint on applications.reference_id and the memory backend
// rejects duplicates itself.
package refid

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Prefix is the fixed leading segment of every reference code.
const Prefix = "SEV"

// tokenLen is the length of the random segment.
const tokenLen = 5

// Pattern matches a well-formed code. The year is not pinned here.
var Pattern = regexp.MustCompile(`^` + Prefix + `-\d{4}-[A-Z0-9]{5}$`)

// Generator produces reference codes. The zero value is ready to use and
// reads the wall clock; tests set Now.
type Generator struct {
	Now func() time.Time
}

// New returns a Generator on the wall clock.
func New() *Generator {
	return &Generator{Now: time.Now}
}

// Generate returns a fresh code such as "SEV-2026-4F9A1".
func (g *Generator) Generate() string {
	now := time.Now
	if g != nil && g.Now != nil {
		now = g.Now
	}
	token := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:tokenLen]
	return fmt.Sprintf("%s-%04d-%s", Prefix, now().Year(), token)
}

// Valid reports whether code has the SEV-YYYY-XXXXX shape.
func Valid(code string) bool {
	return Pattern.MatchString(code)
}
