package dto

// RegenerateRequest requests a component-enhancement re-run over an
// existing SynthesizedEntry's Definitions (spec.md §4.4). Components is the
// subset of the recognized component set (spec.md §6.1) to dispatch; empty
// means every component.
type RegenerateRequest struct {
	Force      bool     `json:"force"`
	Components []string `json:"components,omitempty"`
}

// FailureResponse reports one (definition, component) dispatch that did
// not complete, so clients can retry or surface a partial result.
type FailureResponse struct {
	DefinitionID int64  `json:"definition_id,string"`
	Component    string `json:"component"`
	Error        string `json:"error"`
}

// RegenerateResponse summarizes a regeneration run.
type RegenerateResponse struct {
	Failures []FailureResponse `json:"failures,omitempty"`
}
