// Package analysis implements the configuration-driven analysis pipeline:
// prompt construction, model invocation, response parsing and validation,
// deterministic rescoring, and lead synthesis.
package analysis

import "github.com/rotisserie/eris"

// Pipeline failure taxonomy. Every one of these is caught exactly once
// by the Analyzer and converted into a synthesized excluded lead;
// callers of Analyze never see them raised.
var (
	// ErrNoContent means the model returned zero candidates: the request
	// was blocked (safety filters) or produced nothing. Distinct from a
	// parse failure for diagnostics.
	ErrNoContent = eris.New("analysis: the AI returned no content; this may be due to safety filters or an issue with the target website")

	// ErrMalformedResponse means no JSON object could be located in the
	// response text.
	ErrMalformedResponse = eris.New("analysis: the AI response was not in the expected format")

	// ErrParse means a JSON object was located but failed to parse.
	ErrParse = eris.New("analysis: the AI returned malformed JSON")

	// ErrIncompleteAnalysis means the response parsed but contained zero
	// usable opportunities after filtering.
	ErrIncompleteAnalysis = eris.New("analysis: the AI response was missing key opportunity data")

	// ErrZeroValue means the derived ROI was zero for a persona where
	// zero is not a meaningful domain value.
	ErrZeroValue = eris.New("analysis: the derived ROI was zero")
)
