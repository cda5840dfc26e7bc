package prompts

const assessSpec = `Respond with a JSON object matching this exact structure:

{
  "entity_mention": "<programme name or 'no specific program'>",
  "criteria_evaluation": {
    "program_recognition": {"assessment": "YES|NO|UNCLEAR", "reasoning": "<programme name as written>"},
    "participants_lmic": {"assessment": "YES|NO|UNCLEAR", "reasoning": "<explanation>"},
    "component_a_cash_support": {"assessment": "YES|NO|UNCLEAR", "reasoning": "<explanation>"},
    "component_b_productive_assets": {"assessment": "YES|NO|UNCLEAR", "reasoning": "<explanation>"},
    "relevant_outcomes": {"assessment": "YES|NO|UNCLEAR", "reasoning": "<explanation>"},
    "appropriate_study_design": {"assessment": "YES|NO|UNCLEAR", "reasoning": "<explanation>"},
    "publication_year": {"year_extracted": "<four-digit year or 'Year not provided'>", "reasoning": "<where the year was found>"},
    "completed_study": {"assessment": "YES|NO|UNCLEAR", "reasoning": "<explanation>"}
  }
}

Behavioral constraints:
- Always respond with valid JSON, no markdown fencing
- Include every criterion key shown above
- Use only YES, NO, or UNCLEAR as assessment values
- Keep each reasoning to one or two sentences citing the paper`

const followUpSpec = `Respond with a JSON object matching this exact structure, including only the unresolved criteria:

{
  "entity_mention": "<programme name or 'no specific program'>",
  "criteria_evaluation": {
    "<criterion_key>": {"assessment": "YES|NO|UNCLEAR", "reasoning": "<explanation>"}
  }
}

Behavioral constraints:
- Always respond with valid JSON, no markdown fencing
- Use the exact criterion keys listed under "Unresolved criteria"
- Use only YES, NO, or UNCLEAR as assessment values`

var specs = map[Stage]string{
	StageAssess:   assessSpec,
	StageFollowUp: followUpSpec,
}

// Spec returns the fixed response specification for a stage.
// Specifications define the expected output format and are not overridable.
// Returns ErrInvalidStage if the stage is not recognized.
func Spec(stage Stage) (string, error) {
	text, ok := specs[stage]
	if !ok {
		return "", ErrInvalidStage
	}
	return text, nil
}
