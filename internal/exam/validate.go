package exam

import (
	"fmt"
	"strings"

	"github.com/ieltsprep/ieltsadmin/internal/validation"
)

// Validate runs the pre-save checks. It returns a *ValidationError listing
// every problem found, or nil.
func Validate(t Test) error {
	var problems []string
	if strings.TrimSpace(t.Title) == "" {
		problems = append(problems, "test title is required")
	}
	problems = append(problems, validation.Problems(t.TestMeta)...)

	for i, p := range t.Parts {
		if len(p.Groups) == 0 {
			problems = append(problems, fmt.Sprintf("part %d has no question groups", i+1))
			continue
		}
		for j, g := range p.Groups {
			where := fmt.Sprintf("part %d, group %d (%s)", i+1, j+1, g.Type)
			if !KnownType(g.Type) {
				problems = append(problems, where+": unknown question type")
				continue
			}
			n := QuestionRange(g)
			if n == 0 {
				problems = append(problems, where+": group has no questions")
			}
			if g.Type == FillInBlanks || g.Type == DragDrop {
				if blanks := CountBlanks(g.Content); blanks != n {
					problems = append(problems, fmt.Sprintf("%s: found %d blanks in text but %d answers", where, blanks, n))
				}
			}
		}
	}
	return validation.New(problems)
}

// ValidatePatch checks a partial test update.
func ValidatePatch(p TestPatch) error {
	return validation.Struct(p)
}
