package workflow

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/JaimeStill/screener/internal/criteria"
	"github.com/JaimeStill/screener/internal/documents"
	"github.com/JaimeStill/screener/internal/prompts"
)

const notProvided = "Not provided"

// FollowUp carries the context a follow-up prompt needs: the first-pass
// reply and the unresolved assessments with their prior justifications.
type FollowUp struct {
	Initial string
	Targets []criteria.Assessment
}

// ComposePrompt builds a prompt by combining tunable instructions, the
// immutable response specification, and the document for a given stage.
// When followUp is non-nil, the first-pass reply and the unresolved
// criteria are appended.
func ComposePrompt(
	ctx context.Context,
	ps prompts.System,
	stage prompts.Stage,
	doc documents.Document,
	followUp *FollowUp,
) (string, error) {
	instructions, err := ps.Instructions(ctx, stage)
	if err != nil {
		return "", fmt.Errorf("load instructions for %s: %w", stage, err)
	}

	spec, err := ps.Spec(ctx, stage)
	if err != nil {
		return "", fmt.Errorf("load spec for %s: %w", stage, err)
	}

	var sb strings.Builder
	sb.WriteString(instructions)
	sb.WriteString("\n\n")
	writeDocument(&sb, doc)

	if followUp != nil {
		sb.WriteString("\n\nInitial assessment:\n\n")
		sb.WriteString(strings.TrimSpace(followUp.Initial))

		sb.WriteString("\n\nUnresolved criteria:\n")
		for _, a := range followUp.Targets {
			fmt.Fprintf(&sb, "\n- %s (%s)\n  Prior reasoning: %s", a.Criterion, a.Criterion.Label(), a.Justification)
		}
	}

	sb.WriteString("\n\n")
	sb.WriteString(spec)

	return sb.String(), nil
}

func writeDocument(sb *strings.Builder, doc documents.Document) {
	year := notProvided
	if doc.Year != nil {
		year = strconv.Itoa(*doc.Year)
	}

	sb.WriteString("Paper information:\n")
	field(sb, "Title", doc.Title)
	field(sb, "Authors", strings.Join(doc.Authors, "; "))
	field(sb, "Journal", doc.Journal)
	field(sb, "Year", year)
	field(sb, "Abstract", doc.Body)
	field(sb, "Keywords", strings.Join(doc.Keywords, "; "))
	field(sb, "DOI", doc.DOI)
	field(sb, "Publication Type", doc.PublicationType)
}

func field(sb *strings.Builder, name, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		value = notProvided
	}
	fmt.Fprintf(sb, "\n%s: %s", name, value)
}
