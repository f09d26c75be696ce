package sizing

// Config carries the tunable engine parameters.
type Config struct {
	// SafetyFactor is applied to the final pressure. Must be >= 1.
	SafetyFactor float64
	// VelocityWarnLimit is the pipe velocity, in m/s, above which a
	// warning is attached to the requirement.
	VelocityWarnLimit float64
}

// DefaultConfig returns the standard engine parameters.
func DefaultConfig() Config {
	return Config{
		SafetyFactor:      1.0,
		VelocityWarnLimit: 20.0,
	}
}
