// Package conversation implements the ordered questionnaire that collects
// and validates the inputs for a sizing run. State is caller-supplied on
// every call; nothing is retained between requests.
package conversation

import (
	"blower-selector/internal/refdata"
	"blower-selector/internal/sizing"
)

// StepKey identifies one questionnaire step.
type StepKey string

const (
	StepOperationType  StepKey = "operation_type"
	StepLocation       StepKey = "location"
	StepApplication    StepKey = "application"
	StepEnvironment    StepKey = "environment"
	StepTankConfig     StepKey = "tank_config"
	StepTankDimensions StepKey = "tank_dimensions"
	StepPipeSystem     StepKey = "pipe_system"
	StepDiffuserType   StepKey = "diffuser_type"
	StepEmail          StepKey = "email"
)

// Step is one entry in the fixed questionnaire.
type Step struct {
	Key    StepKey
	Prompt string
	// Optional steps accept the literal "default" token, which resolves
	// to an application-dependent default.
	Optional bool
}

// steps is the questionnaire in answer order. The order is part of the wire
// contract with callers that echo state back, so entries are append-only.
var steps = []Step{
	{
		Key:    StepOperationType,
		Prompt: "Is this a compression (blowing) or vacuum (suction) application?",
	},
	{
		Key:    StepLocation,
		Prompt: "Where will the blower be installed? Enter a city, an altitude like \"1400m\", or \"sea level\".",
	},
	{
		Key:    StepApplication,
		Prompt: "What is the application? (waste water, fish hatchery, industrial)",
	},
	{
		Key:    StepEnvironment,
		Prompt: "What is the installation environment? (normal, wet/humid, dusty, coastal, gas/hazardous, climate controlled)",
	},
	{
		Key:    StepTankConfig,
		Prompt: "How many tanks, and are they in parallel or series? (e.g. \"1\", \"3 parallel\", \"2 series\")",
	},
	{
		Key:    StepTankDimensions,
		Prompt: "What are the tank dimensions in meters? (length width depth, e.g. \"6 3 2\")",
	},
	{
		Key:      StepPipeSystem,
		Prompt:   "Describe the pipe run as \"diameter_mm length_m bends\" (e.g. \"100 50 4\"), or \"default\".",
		Optional: true,
	},
	{
		Key:      StepDiffuserType,
		Prompt:   "Which diffuser type? (fine bubble, disc, coarse bubble, tube, jet, custom), or \"default\".",
		Optional: true,
	},
	{
		Key:    StepEmail,
		Prompt: "Where should we send the quote? Please enter your email address.",
	},
}

// Steps returns the questionnaire definition.
func Steps() []Step {
	out := make([]Step, len(steps))
	copy(out, steps)
	return out
}

// StepCount is the number of questionnaire steps.
func StepCount() int { return len(steps) }

// Location is a resolved installation site.
type Location struct {
	Name      string  `json:"name,omitempty"`
	AltitudeM float64 `json:"altitude_m"`
	Coastal   bool    `json:"coastal"`
}

// TankConfig describes how many tanks there are and how they are connected.
type TankConfig struct {
	Count  int               `json:"count"`
	Layout sizing.TankLayout `json:"layout"`
}

// TankDimensions is the tank geometry in meters.
type TankDimensions struct {
	LengthM float64 `json:"length_m"`
	WidthM  float64 `json:"width_m"`
	DepthM  float64 `json:"depth_m"`
}

// Answers is the collected answer set. A nil field means the step has not
// been answered yet; fields are filled strictly in step order.
type Answers struct {
	OperationType  *string         `json:"operation_type,omitempty"`
	Location       *Location       `json:"location,omitempty"`
	Application    *string         `json:"application,omitempty"`
	Environment    *string         `json:"environment,omitempty"`
	TankConfig     *TankConfig     `json:"tank_config,omitempty"`
	TankDimensions *TankDimensions `json:"tank_dimensions,omitempty"`
	Pipe           *sizing.Pipe    `json:"pipe,omitempty"`
	Diffuser       *string         `json:"diffuser,omitempty"`
	Email          *string         `json:"email,omitempty"`
}

// answered reports whether the step at index i has a value.
func (a *Answers) answered(i int) bool {
	switch steps[i].Key {
	case StepOperationType:
		return a.OperationType != nil
	case StepLocation:
		return a.Location != nil
	case StepApplication:
		return a.Application != nil
	case StepEnvironment:
		return a.Environment != nil
	case StepTankConfig:
		return a.TankConfig != nil
	case StepTankDimensions:
		return a.TankDimensions != nil
	case StepPipeSystem:
		return a.Pipe != nil
	case StepDiffuserType:
		return a.Diffuser != nil
	case StepEmail:
		return a.Email != nil
	}
	return false
}

// SizingInput converts a complete answer set into engine terms.
func (a *Answers) SizingInput() *sizing.Input {
	return &sizing.Input{
		Application: *a.Application,
		Environment: *a.Environment,
		AltitudeM:   a.Location.AltitudeM,
		TankLengthM: a.TankDimensions.LengthM,
		TankWidthM:  a.TankDimensions.WidthM,
		TankDepthM:  a.TankDimensions.DepthM,
		TankCount:   a.TankConfig.Count,
		TankLayout:  a.TankConfig.Layout,
		Pipe:        *a.Pipe,
		Diffuser:    *a.Diffuser,
	}
}

// defaultPipe returns the assumed pipe run for an application.
func defaultPipe(application string) sizing.Pipe {
	params := refdata.Applications[application]
	return sizing.Pipe{
		DiameterMM: params.DefaultPipe.DiameterMM,
		LengthM:    params.DefaultPipe.LengthM,
		Bends:      params.DefaultPipe.Bends,
	}
}
