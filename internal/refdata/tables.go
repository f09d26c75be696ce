// Package refdata holds the engineering reference tables and the product
// catalog used by the sizing and matching engines.
package refdata

import "strings"

// ApplicationParams captures the per-application sizing characteristics.
type ApplicationParams struct {
	// AirflowPerM2 is the demand per square meter of tank surface, in
	// m^3/min. Zero means the application sizes by volume instead.
	AirflowPerM2 float64
	// AirChangesPerHour sizes volume-based applications (tank volume times
	// changes per hour, converted to m^3/min).
	AirChangesPerHour float64
	DefaultDiffuser   string
	DefaultPipe       PipeDefaults
}

// PipeDefaults are assumed when the user skips the pipe system step.
type PipeDefaults struct {
	DiameterMM float64
	LengthM    float64
	Bends      int
}

// Application identifiers.
const (
	AppWasteWater   = "waste_water"
	AppFishHatchery = "fish_hatchery"
	AppIndustrial   = "industrial"
)

// Diffuser identifiers.
const (
	DiffuserFineBubble   = "fine_bubble"
	DiffuserDisc         = "disc"
	DiffuserCoarseBubble = "coarse_bubble"
	DiffuserTube         = "tube"
	DiffuserJet          = "jet"
	DiffuserCustom       = "custom"
)

// Environment identifiers.
const (
	EnvNormal            = "normal"
	EnvWetHumid          = "wet_humid"
	EnvDusty             = "dusty"
	EnvCoastal           = "coastal"
	EnvGasHazardous      = "gas_hazardous"
	EnvClimateControlled = "climate_controlled"
)

// Applications maps application identifiers to their sizing parameters.
var Applications = map[string]ApplicationParams{
	AppWasteWater: {
		AirflowPerM2:    0.25,
		DefaultDiffuser: DiffuserFineBubble,
		DefaultPipe:     PipeDefaults{DiameterMM: 100, LengthM: 50, Bends: 4},
	},
	AppFishHatchery: {
		AirflowPerM2:    0.002,
		DefaultDiffuser: DiffuserCoarseBubble,
		DefaultPipe:     PipeDefaults{DiameterMM: 50, LengthM: 30, Bends: 3},
	},
	AppIndustrial: {
		AirChangesPerHour: 2,
		DefaultDiffuser:   DiffuserDisc,
		DefaultPipe:       PipeDefaults{DiameterMM: 50, LengthM: 30, Bends: 3},
	},
}

// DiffuserPressureMbar is the pressure drop across each diffuser type.
var DiffuserPressureMbar = map[string]float64{
	DiffuserFineBubble:   250,
	DiffuserDisc:         200,
	DiffuserCoarseBubble: 50,
	DiffuserTube:         80,
	DiffuserJet:          30,
	DiffuserCustom:       100,
}

// EnvironmentFactor is the pressure multiplier per installation environment.
var EnvironmentFactor = map[string]float64{
	EnvNormal:            1.00,
	EnvWetHumid:          1.10,
	EnvDusty:             1.15,
	EnvCoastal:           1.20,
	EnvGasHazardous:      1.25,
	EnvClimateControlled: 1.15,
}

// FrictionFactor is the Darcy friction factor by pipe material.
var FrictionFactor = map[string]float64{
	"smooth":     0.025,
	"galvanized": 0.030,
	"rough":      0.035,
}

// KFactor is the minor-loss coefficient per fitting type.
var KFactor = map[string]float64{
	"90_bend":    0.9,
	"45_bend":    0.4,
	"tee":        1.8,
	"valve_open": 0.2,
	"entrance":   0.5,
	"exit":       1.0,
}

// City holds a known location with its altitude above sea level.
type City struct {
	Name      string
	AltitudeM float64
	Coastal   bool
	Aliases   []string
}

// Cities is the built-in South African location database.
var Cities = []City{
	{Name: "johannesburg", AltitudeM: 1750, Aliases: []string{"joburg", "jhb", "jozi", "egoli"}},
	{Name: "pretoria", AltitudeM: 1350},
	{Name: "cape town", AltitudeM: 50, Coastal: true, Aliases: []string{"capetown"}},
	{Name: "durban", AltitudeM: 10, Coastal: true},
	{Name: "port elizabeth", AltitudeM: 60, Coastal: true, Aliases: []string{"gqeberha"}},
	{Name: "bloemfontein", AltitudeM: 1400},
	{Name: "east london", AltitudeM: 50, Coastal: true},
	{Name: "kimberley", AltitudeM: 1200},
	{Name: "nelspruit", AltitudeM: 660, Aliases: []string{"mbombela"}},
	{Name: "polokwane", AltitudeM: 1230},
	{Name: "rustenburg", AltitudeM: 1170},
}

// LookupCity finds a city by name or alias, case-insensitively.
func LookupCity(name string) (City, bool) {
	needle := strings.ToLower(strings.TrimSpace(name))
	for _, c := range Cities {
		if c.Name == needle {
			return c, true
		}
		for _, alias := range c.Aliases {
			if alias == needle {
				return c, true
			}
		}
	}
	return City{}, false
}

// DiffuserNames returns the diffuser identifiers in a stable order.
func DiffuserNames() []string {
	return []string{
		DiffuserFineBubble,
		DiffuserDisc,
		DiffuserCoarseBubble,
		DiffuserTube,
		DiffuserJet,
		DiffuserCustom,
	}
}

// ApplicationNames returns the application identifiers in a stable order.
func ApplicationNames() []string {
	return []string{AppWasteWater, AppFishHatchery, AppIndustrial}
}

// EnvironmentNames returns the environment identifiers in a stable order.
func EnvironmentNames() []string {
	return []string{
		EnvNormal,
		EnvWetHumid,
		EnvDusty,
		EnvCoastal,
		EnvGasHazardous,
		EnvClimateControlled,
	}
}
