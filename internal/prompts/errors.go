package prompts

import "errors"

// ErrInvalidStage indicates an unrecognized stage name.
var ErrInvalidStage = errors.New("stage must be assess or followup")
