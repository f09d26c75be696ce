package conversation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	commonerrors "blower-selector/internal/common/errors"
	"blower-selector/internal/sizing"
)

// ==========================
// Enum Matching Tests
// ==========================

func TestMatchEnum(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		options     []enumOption
		want        string
		expectError bool
		errCode     commonerrors.ErrorCode
	}{
		{name: "exact canonical", input: "compression", options: operationOptions, want: "compression"},
		{name: "case insensitive", input: "VACUUM", options: operationOptions, want: "vacuum"},
		{name: "unambiguous prefix", input: "comp", options: operationOptions, want: "compression"},
		{name: "alias", input: "suction", options: operationOptions, want: "vacuum"},
		{name: "alias prefix", input: "blow", options: operationOptions, want: "compression"},
		{name: "separator insensitive", input: "waste-water", options: applicationOptions, want: "waste_water"},
		{name: "unknown", input: "sideways", options: operationOptions, expectError: true, errCode: commonerrors.ErrCodeUnknownOption},
		{name: "empty", input: "  ", options: operationOptions, expectError: true, errCode: commonerrors.ErrCodeUnknownOption},
		{
			// "c" prefixes both coarse_bubble and custom.
			name: "ambiguous prefix", input: "c", options: diffuserOptions,
			expectError: true, errCode: commonerrors.ErrCodeAmbiguousOption,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := matchEnum("field", tt.input, tt.options)

			if tt.expectError {
				require.Error(t, err)
				assert.Equal(t, tt.errCode, commonerrors.CodeOf(err))
				assert.True(t, commonerrors.IsValidation(err))
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// ==========================
// Location Tests
// ==========================

func TestParseLocation(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		wantAltitude float64
		wantCoastal  bool
		expectError  bool
	}{
		{name: "inland city", input: "Johannesburg", wantAltitude: 1750},
		{name: "city alias", input: "jhb", wantAltitude: 1750},
		{name: "coastal city forces zero altitude", input: "Durban", wantAltitude: 0, wantCoastal: true},
		{name: "sea level phrase", input: "sea level", wantAltitude: 0, wantCoastal: true},
		{name: "explicit altitude with unit", input: "1420m", wantAltitude: 1420},
		{name: "explicit bare altitude", input: "950", wantAltitude: 950},
		{name: "altitude above bound", input: "6000m", expectError: true},
		{name: "unknown place", input: "gotham", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, err := parseLocation(tt.input)

			if tt.expectError {
				require.Error(t, err)
				assert.True(t, commonerrors.IsValidation(err))
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantAltitude, loc.AltitudeM)
			assert.Equal(t, tt.wantCoastal, loc.Coastal)
		})
	}
}

// ==========================
// Structured Field Tests
// ==========================

func TestParseTankConfig(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		want        *TankConfig
		expectError bool
	}{
		{name: "single tank", input: "1", want: &TankConfig{Count: 1, Layout: sizing.LayoutSingle}},
		{name: "parallel", input: "3 parallel", want: &TankConfig{Count: 3, Layout: sizing.LayoutParallel}},
		{name: "series with prefix", input: "2 ser", want: &TankConfig{Count: 2, Layout: sizing.LayoutSeries}},
		{name: "single with redundant layout", input: "1 parallel", want: &TankConfig{Count: 1, Layout: sizing.LayoutSingle}},
		{name: "multiple without layout", input: "3", expectError: true},
		{name: "count above bound", input: "11 parallel", expectError: true},
		{name: "count below bound", input: "0", expectError: true},
		{name: "not a number", input: "three parallel", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := parseTankConfig(tt.input)

			if tt.expectError {
				require.Error(t, err)
				assert.True(t, commonerrors.IsValidation(err))
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg)
		})
	}
}

func TestParseTankDimensions(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		want        *TankDimensions
		expectError bool
		errText     string
	}{
		{name: "space separated", input: "6 3 2", want: &TankDimensions{LengthM: 6, WidthM: 3, DepthM: 2}},
		{name: "x separated", input: "6x3x2", want: &TankDimensions{LengthM: 6, WidthM: 3, DepthM: 2}},
		{name: "decimals", input: "4.5 2.2 1.8", want: &TankDimensions{LengthM: 4.5, WidthM: 2.2, DepthM: 1.8}},
		{name: "too few values", input: "6 3", expectError: true},
		{name: "depth above bound states the range", input: "6 3 100", expectError: true, errText: "between 0.1 and 50"},
		{name: "dimension below bound", input: "6 3 0.05", expectError: true},
		{name: "not numeric", input: "six three two", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dims, err := parseTankDimensions(tt.input)

			if tt.expectError {
				require.Error(t, err)
				assert.True(t, commonerrors.IsValidation(err))
				if tt.errText != "" {
					assert.Contains(t, err.Error(), tt.errText)
				}
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, dims)
		})
	}
}

func TestParsePipe(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		want        *sizing.Pipe
		expectError bool
	}{
		{name: "standard run", input: "100 50 4", want: &sizing.Pipe{DiameterMM: 100, LengthM: 50, Bends: 4}},
		{name: "no bends", input: "50 30 0", want: &sizing.Pipe{DiameterMM: 50, LengthM: 30, Bends: 0}},
		{name: "diameter below bound", input: "5 50 4", expectError: true},
		{name: "diameter above bound", input: "1200 50 4", expectError: true},
		{name: "length above bound", input: "100 2000 4", expectError: true},
		{name: "too many bends", input: "100 50 21", expectError: true},
		{name: "fractional bends", input: "100 50 2.5", expectError: true},
		{name: "wrong arity", input: "100 50", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pipe, err := parsePipe(tt.input)

			if tt.expectError {
				require.Error(t, err)
				assert.True(t, commonerrors.IsValidation(err))
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, pipe)
		})
	}
}

func TestParseEmail(t *testing.T) {
	valid := []string{"user@example.com", "first.last@plant.co.za", "a@b.io"}
	for _, in := range valid {
		got, err := parseEmail(" " + in + " ")
		require.NoError(t, err, in)
		assert.Equal(t, in, got)
	}

	invalid := []string{"plainword", "user@nodot", "user @example.com", "@example.com", "user@"}
	for _, in := range invalid {
		_, err := parseEmail(in)
		require.Error(t, err, in)
		assert.Equal(t, commonerrors.ErrCodeInvalidEmail, commonerrors.CodeOf(err))
	}
}
