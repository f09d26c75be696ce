package conversation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"blower-selector/internal/common/errors"
	"blower-selector/internal/refdata"
	"blower-selector/internal/sizing"
)

// Input bounds. Out-of-range values are rejected with the accepted range in
// the message, never clamped.
const (
	minTankDimensionM = 0.1
	maxTankDimensionM = 50
	minTankCount      = 1
	maxTankCount      = 10
	minAltitudeM      = 0
	maxAltitudeM      = 5000
	minPipeDiameterMM = 10
	maxPipeDiameterMM = 1000
	minPipeLengthM    = 1
	maxPipeLengthM    = 1000
	minPipeBends      = 0
	maxPipeBends      = 20
)

const defaultToken = "default"

var (
	altitudeRe = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*m?$`)
	emailRe    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// enumOption is one vocabulary entry for an enumerated step.
type enumOption struct {
	canonical string
	aliases   []string
}

var operationOptions = []enumOption{
	{canonical: "compression", aliases: []string{"blowing", "blower", "pressure"}},
	{canonical: "vacuum", aliases: []string{"suction"}},
}

var applicationOptions = []enumOption{
	{canonical: refdata.AppWasteWater, aliases: []string{"waste water", "wastewater", "sewage", "effluent"}},
	{canonical: refdata.AppFishHatchery, aliases: []string{"fish hatchery", "aquaculture", "fish farm"}},
	{canonical: refdata.AppIndustrial, aliases: []string{"industrial", "general", "factory"}},
}

var environmentOptions = []enumOption{
	{canonical: refdata.EnvNormal, aliases: []string{"indoor", "standard"}},
	{canonical: refdata.EnvWetHumid, aliases: []string{"wet", "humid", "wet humid"}},
	{canonical: refdata.EnvDusty, aliases: []string{"dust"}},
	{canonical: refdata.EnvCoastal, aliases: []string{"marine"}},
	{canonical: refdata.EnvGasHazardous, aliases: []string{"gas", "hazardous", "chemical"}},
	{canonical: refdata.EnvClimateControlled, aliases: []string{"climate", "extreme climate"}},
}

var diffuserOptions = []enumOption{
	{canonical: refdata.DiffuserFineBubble, aliases: []string{"fine bubble", "fine", "membrane"}},
	{canonical: refdata.DiffuserDisc, aliases: []string{"disk"}},
	{canonical: refdata.DiffuserCoarseBubble, aliases: []string{"coarse bubble", "coarse"}},
	{canonical: refdata.DiffuserTube, aliases: []string{"tubular"}},
	{canonical: refdata.DiffuserJet, aliases: []string{"jet aerator"}},
	{canonical: refdata.DiffuserCustom, aliases: []string{"other"}},
}

// matchEnum resolves input against a vocabulary: case-insensitive exact
// match on canonical names or aliases first, then unambiguous prefix match.
func matchEnum(field, input string, options []enumOption) (string, error) {
	needle := normalize(input)
	if needle == "" {
		return "", errors.NewUnknownOptionError(field, input, canonicals(options))
	}

	for _, opt := range options {
		if normalize(opt.canonical) == needle {
			return opt.canonical, nil
		}
		for _, alias := range opt.aliases {
			if normalize(alias) == needle {
				return opt.canonical, nil
			}
		}
	}

	var candidates []string
	for _, opt := range options {
		if hasPrefixMatch(needle, opt) {
			candidates = append(candidates, opt.canonical)
		}
	}

	switch len(candidates) {
	case 1:
		return candidates[0], nil
	case 0:
		return "", errors.NewUnknownOptionError(field, input, canonicals(options))
	default:
		return "", errors.NewAmbiguousOptionError(field, input, candidates)
	}
}

func hasPrefixMatch(needle string, opt enumOption) bool {
	if strings.HasPrefix(normalize(opt.canonical), needle) {
		return true
	}
	for _, alias := range opt.aliases {
		if strings.HasPrefix(normalize(alias), needle) {
			return true
		}
	}
	return false
}

func canonicals(options []enumOption) []string {
	out := make([]string, 0, len(options))
	for _, opt := range options {
		out = append(out, opt.canonical)
	}
	return out
}

// normalize lowercases and collapses separators so "Waste-Water" matches
// "waste_water".
func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")
	return strings.Join(strings.Fields(s), " ")
}

// parseLocation resolves a free-text site into an altitude. Recognized
// coastal cities and explicit sea-level phrasing force altitude to exactly
// zero regardless of any recorded city altitude.
func parseLocation(raw string) (*Location, error) {
	needle := normalize(raw)
	if needle == "" {
		return nil, errors.NewValidationError(errors.ErrCodeUnknownLocation,
			"please enter a city name, an altitude in meters, or \"sea level\"", "")
	}

	if needle == "sea level" || needle == "sea" || needle == "coast" || needle == "coastal" {
		return &Location{Name: "sea level", AltitudeM: 0, Coastal: true}, nil
	}

	if city, ok := refdata.LookupCity(needle); ok {
		altitude := city.AltitudeM
		if city.Coastal {
			altitude = 0
		}
		return &Location{Name: city.Name, AltitudeM: altitude, Coastal: city.Coastal}, nil
	}

	if m := altitudeRe.FindStringSubmatch(needle); m != nil {
		altitude, err := strconv.ParseFloat(m[1], 64)
		if err == nil {
			if altitude < minAltitudeM || altitude > maxAltitudeM {
				return nil, errors.NewOutOfRangeError("altitude", minAltitudeM, maxAltitudeM, altitude)
			}
			return &Location{AltitudeM: altitude}, nil
		}
	}

	return nil, errors.NewValidationError(errors.ErrCodeUnknownLocation,
		fmt.Sprintf("unrecognized location %q, enter a known city, an altitude like \"1400m\", or \"sea level\"", raw), "")
}

// parseTankConfig accepts "1", "3 parallel", "2 series" and the like.
func parseTankConfig(raw string) (*TankConfig, error) {
	fields := strings.Fields(normalize(raw))
	if len(fields) == 0 || len(fields) > 2 {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidNumber,
			"enter a tank count, optionally followed by \"parallel\" or \"series\"", "")
	}

	count, err := strconv.Atoi(fields[0])
	if err != nil {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidNumber,
			fmt.Sprintf("%q is not a whole number of tanks", fields[0]), "")
	}
	if count < minTankCount || count > maxTankCount {
		return nil, errors.NewOutOfRangeError("tank count", minTankCount, maxTankCount, float64(count))
	}

	layout := sizing.LayoutSingle
	if len(fields) == 2 {
		switch {
		case strings.HasPrefix("parallel", fields[1]):
			layout = sizing.LayoutParallel
		case strings.HasPrefix("series", fields[1]):
			layout = sizing.LayoutSeries
		default:
			return nil, errors.NewUnknownOptionError("tank layout", fields[1], []string{"parallel", "series"})
		}
	}
	if count == 1 {
		layout = sizing.LayoutSingle
	} else if layout == sizing.LayoutSingle {
		// Multiple tanks need an explicit arrangement.
		return nil, errors.NewValidationError(errors.ErrCodeInvalidNumber,
			"for multiple tanks, add \"parallel\" or \"series\" (e.g. \"3 parallel\")", "")
	}

	return &TankConfig{Count: count, Layout: layout}, nil
}

// parseTankDimensions accepts "6 3 2", "6x3x2", or "6 x 3 x 2" in meters.
func parseTankDimensions(raw string) (*TankDimensions, error) {
	cleaned := strings.NewReplacer("x", " ", "X", " ", "×", " ", ",", " ").Replace(raw)
	fields := strings.Fields(cleaned)
	if len(fields) != 3 {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidDimensions,
			"enter three numbers: length width depth in meters (e.g. \"6 3 2\")", "")
	}

	names := []string{"tank length", "tank width", "tank depth"}
	values := make([]float64, 3)
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, errors.NewValidationError(errors.ErrCodeInvalidNumber,
				fmt.Sprintf("%q is not a number", f), "")
		}
		if v < minTankDimensionM || v > maxTankDimensionM {
			return nil, errors.NewOutOfRangeError(names[i], minTankDimensionM, maxTankDimensionM, v)
		}
		values[i] = v
	}

	return &TankDimensions{LengthM: values[0], WidthM: values[1], DepthM: values[2]}, nil
}

// parsePipe accepts "diameter_mm length_m bends", e.g. "100 50 4".
func parsePipe(raw string) (*sizing.Pipe, error) {
	fields := strings.Fields(normalize(raw))
	if len(fields) != 3 {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidNumber,
			"enter three values: diameter_mm length_m bends (e.g. \"100 50 4\"), or \"default\"", "")
	}

	diameter, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidNumber,
			fmt.Sprintf("%q is not a number", fields[0]), "")
	}
	if diameter < minPipeDiameterMM || diameter > maxPipeDiameterMM {
		return nil, errors.NewOutOfRangeError("pipe diameter (mm)", minPipeDiameterMM, maxPipeDiameterMM, diameter)
	}

	length, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidNumber,
			fmt.Sprintf("%q is not a number", fields[1]), "")
	}
	if length < minPipeLengthM || length > maxPipeLengthM {
		return nil, errors.NewOutOfRangeError("pipe length (m)", minPipeLengthM, maxPipeLengthM, length)
	}

	bends, err := strconv.Atoi(fields[2])
	if err != nil {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidNumber,
			fmt.Sprintf("%q is not a whole number of bends", fields[2]), "")
	}
	if bends < minPipeBends || bends > maxPipeBends {
		return nil, errors.NewOutOfRangeError("bend count", minPipeBends, maxPipeBends, float64(bends))
	}

	return &sizing.Pipe{DiameterMM: diameter, LengthM: length, Bends: bends}, nil
}

func parseEmail(raw string) (string, error) {
	email := strings.TrimSpace(raw)
	if !emailRe.MatchString(email) {
		return "", errors.NewValidationError(errors.ErrCodeInvalidEmail,
			"please enter a valid email address (e.g. name@company.co.za)", "")
	}
	return email, nil
}

// applyAnswer validates raw input for the step at index i and records the
// typed value. Answers is mutated only on success.
func applyAnswer(i int, raw string, a *Answers) error {
	step := steps[i]

	if step.Optional && normalize(raw) == defaultToken {
		switch step.Key {
		case StepPipeSystem:
			pipe := defaultPipe(*a.Application)
			a.Pipe = &pipe
		case StepDiffuserType:
			diffuser := refdata.Applications[*a.Application].DefaultDiffuser
			a.Diffuser = &diffuser
		}
		return nil
	}

	switch step.Key {
	case StepOperationType:
		v, err := matchEnum("operation type", raw, operationOptions)
		if err != nil {
			return err
		}
		a.OperationType = &v
	case StepLocation:
		loc, err := parseLocation(raw)
		if err != nil {
			return err
		}
		a.Location = loc
	case StepApplication:
		v, err := matchEnum("application", raw, applicationOptions)
		if err != nil {
			return err
		}
		a.Application = &v
	case StepEnvironment:
		v, err := matchEnum("environment", raw, environmentOptions)
		if err != nil {
			return err
		}
		a.Environment = &v
	case StepTankConfig:
		cfg, err := parseTankConfig(raw)
		if err != nil {
			return err
		}
		a.TankConfig = cfg
	case StepTankDimensions:
		dims, err := parseTankDimensions(raw)
		if err != nil {
			return err
		}
		a.TankDimensions = dims
	case StepPipeSystem:
		pipe, err := parsePipe(raw)
		if err != nil {
			return err
		}
		a.Pipe = pipe
	case StepDiffuserType:
		v, err := matchEnum("diffuser type", raw, diffuserOptions)
		if err != nil {
			return err
		}
		a.Diffuser = &v
	case StepEmail:
		email, err := parseEmail(raw)
		if err != nil {
			return err
		}
		a.Email = &email
	}

	return nil
}
