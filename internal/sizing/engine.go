package sizing

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"blower-selector/internal/common/errors"
	"blower-selector/internal/common/logger"
	"blower-selector/internal/common/metrics"
	"blower-selector/internal/refdata"
)

// Physical constants. Pressures are in mbar, flows in m^3/min, lengths in m.
const (
	// hydrostaticMbarPerM converts liquid depth to pressure for SG 1.0.
	hydrostaticMbarPerM = 98.1
	// airDensityKgM3 at standard conditions, used in the dynamic pressure
	// term of the friction and fitting losses.
	airDensityKgM3 = 1.2
	// paToMbar scales the Pa-denominated loss terms to mbar.
	paToMbar = 0.01

	// altitudePressureDivisor gives ~1% extra pressure per 100 m.
	altitudePressureDivisor = 10000.0
	// altitudeFlowDivisor compensates airflow for thinner air.
	altitudeFlowDivisor = 12000.0

	// powerConversionConst and assumedEfficiency turn m^3/hr times mbar
	// into shaft kW.
	powerConversionConst = 36000.0
	assumedEfficiency    = 0.5

	// Single-stage blower pressure advisories.
	pressureAdviseMbar = 800.0
	pressureLimitMbar  = 1000.0
)

// Engine computes requirements from completed answer sets. It is stateless;
// the same input always produces the same requirement.
type Engine struct {
	cfg    Config
	logger logger.Logger
}

// NewEngine creates a sizing engine.
func NewEngine(cfg Config, log logger.Logger) *Engine {
	if cfg.SafetyFactor < 1.0 {
		cfg.SafetyFactor = 1.0
	}
	if cfg.VelocityWarnLimit <= 0 {
		cfg.VelocityWarnLimit = DefaultConfig().VelocityWarnLimit
	}
	return &Engine{cfg: cfg, logger: log}
}

// Compute derives the airflow, pressure, and power requirement. It fails with
// a domain error when the inputs make sizing impossible; it never fails for
// unusual but computable inputs, attaching warnings instead.
func (e *Engine) Compute(input *Input) (*Requirement, error) {
	params, ok := refdata.Applications[input.Application]
	if !ok {
		return nil, errors.NewDomainError(errors.ErrCodeUnknownApplication,
			fmt.Sprintf("unknown application %q", input.Application),
			fmt.Sprintf("known applications: %v", refdata.ApplicationNames()))
	}

	envFactor := 1.0
	if input.Environment != "" {
		envFactor, ok = refdata.EnvironmentFactor[input.Environment]
		if !ok {
			return nil, errors.NewDomainError(errors.ErrCodeUnknownEnvironment,
				fmt.Sprintf("unknown environment %q", input.Environment),
				fmt.Sprintf("known environments: %v", refdata.EnvironmentNames()))
		}
	}

	diffuserMbar := 0.0
	if input.Diffuser != "" {
		diffuserMbar, ok = refdata.DiffuserPressureMbar[input.Diffuser]
		if !ok {
			return nil, errors.NewDomainError(errors.ErrCodeUnknownDiffuser,
				fmt.Sprintf("unknown diffuser type %q", input.Diffuser),
				fmt.Sprintf("known diffusers: %v", refdata.DiffuserNames()))
		}
	}

	area := input.TankLengthM * input.TankWidthM
	volume := area * input.TankDepthM
	if area <= 0 || input.TankDepthM <= 0 {
		return nil, errors.NewZeroVolumeTankError(input.TankLengthM, input.TankWidthM, input.TankDepthM)
	}

	tankCount := input.TankCount
	if tankCount < 1 {
		tankCount = 1
	}
	layout := input.TankLayout
	if layout == "" || tankCount == 1 {
		layout = LayoutSingle
	}

	// Per-tank demand. Surface-loaded applications size by plan area,
	// volume-loaded ones by air changes per hour.
	var perTankAirflow float64
	if params.AirflowPerM2 > 0 {
		perTankAirflow = area * params.AirflowPerM2
	} else {
		perTankAirflow = volume * params.AirChangesPerHour / 60.0
	}

	sg := input.SpecificGravity
	if sg <= 0 {
		sg = 1.0
	}
	staticMbar := input.TankDepthM * hydrostaticMbarPerM * sg

	var warnings []string

	// Each tank is fed by its own identical supply line, so line losses
	// are computed from per-tank flow.
	var frictionMbar, fittingMbar, velocity float64
	if input.Pipe.DiameterMM > 0 {
		diameterM := input.Pipe.DiameterMM / 1000.0
		pipeArea := math.Pi * math.Pow(diameterM/2.0, 2)
		velocity = (perTankAirflow / 60.0) / pipeArea

		material := input.Pipe.Material
		if material == "" {
			material = "smooth"
		}
		friction, ok := refdata.FrictionFactor[material]
		if !ok {
			friction = refdata.FrictionFactor["smooth"]
		}

		dynamicPa := 0.5 * airDensityKgM3 * velocity * velocity
		frictionMbar = friction * (input.Pipe.LengthM / diameterM) * dynamicPa * paToMbar

		kTotal := float64(input.Pipe.Bends)*refdata.KFactor["90_bend"] +
			refdata.KFactor["entrance"] + refdata.KFactor["exit"]
		fittingMbar = kTotal * dynamicPa * paToMbar

		if velocity > e.cfg.VelocityWarnLimit {
			warnings = append(warnings, fmt.Sprintf(
				"pipe velocity %.1f m/s exceeds the recommended %.0f m/s, consider a larger diameter",
				velocity, e.cfg.VelocityWarnLimit))
		}
	}

	subtotal := staticMbar + frictionMbar + fittingMbar + diffuserMbar

	// Tank aggregation: parallel lines add flow at shared pressure,
	// series stages add pressure at shared flow.
	totalAirflow := perTankAirflow
	aggregated := subtotal
	switch layout {
	case LayoutParallel:
		totalAirflow = perTankAirflow * float64(tankCount)
	case LayoutSeries:
		aggregated = subtotal * float64(tankCount)
	}

	altFactor := 1.0 + input.AltitudeM/altitudePressureDivisor
	altFlowFactor := 1.0 + input.AltitudeM/altitudeFlowDivisor

	totalPressure := aggregated * altFactor * envFactor * e.cfg.SafetyFactor
	totalAirflow *= altFlowFactor

	if totalPressure > pressureLimitMbar {
		warnings = append(warnings, fmt.Sprintf(
			"required pressure %.0f mbar exceeds typical single-stage blower capability, consider a multi-stage arrangement",
			totalPressure))
	} else if totalPressure > pressureAdviseMbar {
		warnings = append(warnings, fmt.Sprintf(
			"required pressure %.0f mbar is approaching the single-stage limit",
			totalPressure))
	}

	powerKW := (totalAirflow * 60.0 * totalPressure) / (powerConversionConst * assumedEfficiency)

	req := &Requirement{
		AirflowM3Min:      totalAirflow,
		TotalPressureMbar: totalPressure,
		PowerKW:           powerKW,
		Breakdown: Breakdown{
			TankAreaM2:         area,
			TankVolumeM3:       volume,
			StaticMbar:         staticMbar,
			FrictionMbar:       frictionMbar,
			FittingMbar:        fittingMbar,
			DiffuserMbar:       diffuserMbar,
			SubtotalMbar:       subtotal,
			PipeVelocityMS:     velocity,
			AltitudeFactor:     altFactor,
			AltitudeFlowFactor: altFlowFactor,
			EnvironmentFactor:  envFactor,
			SafetyFactor:       e.cfg.SafetyFactor,
		},
		Warnings: warnings,
	}

	metrics.SizingComputationsTotal.WithLabelValues(input.Application).Inc()
	e.logger.Debug("requirement computed",
		zap.String("application", input.Application),
		zap.Float64("airflow_m3_min", req.AirflowM3Min),
		zap.Float64("pressure_mbar", req.TotalPressureMbar),
		zap.Float64("power_kw", req.PowerKW),
		zap.Int("warnings", len(warnings)))

	return req, nil
}
