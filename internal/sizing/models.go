// Package sizing computes the airflow, pressure, and power requirement for a
// completed set of conversation answers.
package sizing

// TankLayout describes how multiple tanks are connected.
type TankLayout string

const (
	LayoutSingle   TankLayout = "single"
	LayoutParallel TankLayout = "parallel"
	LayoutSeries   TankLayout = "series"
)

// Pipe describes the air supply line. A zero DiameterMM means no pipe run is
// modeled and friction and fitting losses are skipped.
type Pipe struct {
	DiameterMM float64 `json:"diameter_mm"`
	LengthM    float64 `json:"length_m"`
	Bends      int     `json:"bends"`
	Material   string  `json:"material,omitempty"`
}

// Input is a completed answer set expressed in engine terms.
type Input struct {
	Application string     `json:"application"`
	Environment string     `json:"environment"`
	AltitudeM   float64    `json:"altitude_m"`
	TankLengthM float64    `json:"tank_length_m"`
	TankWidthM  float64    `json:"tank_width_m"`
	TankDepthM  float64    `json:"tank_depth_m"`
	TankCount   int        `json:"tank_count"`
	TankLayout  TankLayout `json:"tank_layout"`
	Pipe        Pipe       `json:"pipe"`
	// Diffuser is empty when no diffuser loss applies.
	Diffuser string `json:"diffuser,omitempty"`
	// SpecificGravity of the liquid; zero means clean water (1.0).
	SpecificGravity float64 `json:"specific_gravity,omitempty"`
}

// Breakdown retains every term that produced the totals.
type Breakdown struct {
	TankAreaM2   float64 `json:"tank_area_m2"`
	TankVolumeM3 float64 `json:"tank_volume_m3"`

	StaticMbar   float64 `json:"static_mbar"`
	FrictionMbar float64 `json:"friction_mbar"`
	FittingMbar  float64 `json:"fitting_mbar"`
	DiffuserMbar float64 `json:"diffuser_mbar"`
	// SubtotalMbar is the per-line sum before tank aggregation and the
	// multiplicative corrections.
	SubtotalMbar float64 `json:"subtotal_mbar"`

	PipeVelocityMS float64 `json:"pipe_velocity_ms"`

	AltitudeFactor     float64 `json:"altitude_factor"`
	AltitudeFlowFactor float64 `json:"altitude_flow_factor"`
	EnvironmentFactor  float64 `json:"environment_factor"`
	SafetyFactor       float64 `json:"safety_factor"`
}

// Requirement is the sized demand handed to the matching engine. Immutable
// once computed.
type Requirement struct {
	AirflowM3Min      float64   `json:"airflow_m3_min"`
	TotalPressureMbar float64   `json:"total_pressure_mbar"`
	PowerKW           float64   `json:"power_kw"`
	Breakdown         Breakdown `json:"breakdown"`
	Warnings          []string  `json:"warnings,omitempty"`
}
