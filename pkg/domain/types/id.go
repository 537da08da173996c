package types

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// AssessmentID is the kebab-case key of an assessment in the config index
type AssessmentID string

// ReportID is the key of a QBR report in the config index
type ReportID string

// ResultID identifies a stored assessment result
type ResultID string

// NewResultID generates a new UUID v4 ResultID
func NewResultID() ResultID {
	return ResultID(uuid.New().String())
}

// IsValid reports whether the ID is a UUID
func (id ResultID) IsValid() bool {
	_, err := uuid.Parse(string(id))
	return err == nil
}

func (id AssessmentID) String() string { return string(id) }
func (id ReportID) String() string     { return string(id) }
func (id ResultID) String() string     { return string(id) }

var (
	slugInvalidChars = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugSpaces       = regexp.MustCompile(`\s+`)
	slugDashes       = regexp.MustCompile(`-+`)
)

// Slugify converts a display name to a kebab-case assessment ID.
// "Test Coffee Assessment" becomes "test-coffee-assessment".
func Slugify(name string) AssessmentID {
	s := strings.ToLower(strings.TrimSpace(name))
	s = slugInvalidChars.ReplaceAllString(s, "")
	s = slugSpaces.ReplaceAllString(s, "-")
	s = slugDashes.ReplaceAllString(s, "-")
	return AssessmentID(strings.Trim(s, "-"))
}

var safeKeyPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// IsSafeKey reports whether s can be used as a single storage path segment
func IsSafeKey(s string) bool {
	return safeKeyPattern.MatchString(s) && !strings.Contains(s, "..")
}
