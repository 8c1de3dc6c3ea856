package keypad

import "github.com/TeapotSmashers/keypad-calculator/internal/calculator"

// KeysRequest is the JSON body for POST /calculator/sessions/{id}/keys and
// POST /calculator/evaluate.
type KeysRequest struct {
	Keys []string `json:"keys"`
}

// ThemeRequest is the JSON body for PUT /calculator/sessions/{id}/theme.
type ThemeRequest struct {
	Theme string `json:"theme"`
}

// StateResponse describes a calculator display. Numbers are rendered as
// text because results can be infinite or NaN.
type StateResponse struct {
	SessionID  string `json:"session_id,omitempty"`
	Output     string `json:"output"`
	Equation   string `json:"equation"`
	Number     string `json:"number,omitempty"`
	Operator   string `json:"operator,omitempty"`
	Percentage bool   `json:"percentage"`
	Theme      string `json:"theme,omitempty"`
}

// StepResult is the display after one key of an evaluation.
type StepResult struct {
	Key      string `json:"key"`
	Output   string `json:"output"`
	Equation string `json:"equation"`
}

// EvaluateResponse is the JSON response for POST /calculator/evaluate.
type EvaluateResponse struct {
	Steps []StepResult `json:"steps"`
	StateResponse
}

func newStateResponse(c calculator.Calculator) StateResponse {
	return StateResponse{
		Output:     c.Output(),
		Equation:   c.Equation(),
		Number:     c.Number(),
		Operator:   string(c.Operator()),
		Percentage: c.IsNumber2Percentage(),
	}
}

func newSessionResponse(s Session) StateResponse {
	resp := newStateResponse(s.Calculator)
	resp.SessionID = s.ID
	resp.Theme = string(s.Theme)
	return resp
}
