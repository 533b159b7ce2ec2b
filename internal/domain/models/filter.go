package models

// MarketIndia is the provider universe every scan targets (NSE + BSE).
const MarketIndia = "india"

// TrendDirection selects which directional component must lead.
type TrendDirection string

const (
	TrendAny     TrendDirection = "any"
	TrendBullish TrendDirection = "bullish" // +DI > -DI
	TrendBearish TrendDirection = "bearish" // -DI > +DI
)

// BandCondition is a Bollinger band position filter.
type BandCondition string

const (
	BandAny        BandCondition = "any"
	BandNearLower  BandCondition = "near_lower_band"
	BandAboveUpper BandCondition = "above_upper_band"
)

// NearLowerTolerance lets "near lower band" match closes up to 2% above it.
const NearLowerTolerance = 1.02

// OscillatorMode is a fast/slow stochastic filter.
type OscillatorMode string

const (
	OscillatorAny          OscillatorMode = "any"
	OscillatorOversold     OscillatorMode = "oversold"
	OscillatorOverbought   OscillatorMode = "overbought"
	OscillatorBullishCross OscillatorMode = "bullish_cross"
	OscillatorBearishCross OscillatorMode = "bearish_cross"

	OversoldLevel   = 20
	OverboughtLevel = 80
)

// Preset is a provider-side named shortcut. PresetNone attaches nothing.
type Preset string

const (
	PresetNone          Preset = "none"
	PresetGainers       Preset = "gainers"
	PresetLosers        Preset = "losers"
	PresetMostActive    Preset = "most_active"
	PresetUnusualVolume Preset = "unusual_volume"
)

// IsSet reports whether the preset should be sent to the provider.
func (p Preset) IsSet() bool {
	return p != "" && p != PresetNone
}

// Option is a selectable value with the label shown next to it.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

var (
	PresetOptions = []Option{
		{Value: string(PresetNone), Label: "None"},
		{Value: string(PresetGainers), Label: "Top Gainers"},
		{Value: string(PresetLosers), Label: "Biggest Losers"},
		{Value: string(PresetMostActive), Label: "Most Active"},
		{Value: string(PresetUnusualVolume), Label: "Unusual Volume"},
	}
	TrendOptions = []Option{
		{Value: string(TrendAny), Label: "Any"},
		{Value: string(TrendBullish), Label: "Bullish (+DI > -DI)"},
		{Value: string(TrendBearish), Label: "Bearish (-DI > +DI)"},
	}
	BandOptions = []Option{
		{Value: string(BandAny), Label: "Any"},
		{Value: string(BandNearLower), Label: "Near Lower Band"},
		{Value: string(BandAboveUpper), Label: "Above Upper Band"},
	}
	OscillatorOptions = []Option{
		{Value: string(OscillatorAny), Label: "Any"},
		{Value: string(OscillatorOversold), Label: "Oversold (<20)"},
		{Value: string(OscillatorOverbought), Label: "Overbought (>80)"},
		{Value: string(OscillatorBullishCross), Label: "Bullish (%K > %D)"},
		{Value: string(OscillatorBearishCross), Label: "Bearish (%K < %D)"},
	}
)

// Range is an inclusive numeric interval. Lower > Upper is representable and
// kept as-is.
type Range struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// MovingAverageFlags toggles "close above MA(period)" per period.
type MovingAverageFlags struct {
	Above20  bool `json:"above_20"`
	Above50  bool `json:"above_50"`
	Above200 bool `json:"above_200"`
}

// Periods returns the enabled periods in ascending order.
func (f MovingAverageFlags) Periods() []int {
	periods := make([]int, 0, 3)
	if f.Above20 {
		periods = append(periods, 20)
	}
	if f.Above50 {
		periods = append(periods, 50)
	}
	if f.Above200 {
		periods = append(periods, 200)
	}
	return periods
}

// Filter is the user's threshold selection captured when a scan is triggered.
// It is passed by value and never mutated afterwards.
type Filter struct {
	Market           string             `json:"market"`
	Momentum         Range              `json:"momentum"`
	TrendStrengthMin float64            `json:"trend_strength_min"`
	Direction        TrendDirection     `json:"direction"`
	MovingAverages   MovingAverageFlags `json:"moving_averages"`
	Band             BandCondition      `json:"band"`
	Oscillator       OscillatorMode     `json:"oscillator"`
	MinVolume        int64              `json:"min_volume"`
	Limit            int                `json:"limit"`
	Preset           Preset             `json:"preset"`
}

// Result limit bounds accepted from the controls.
const (
	MinResultLimit = 10
	MaxResultLimit = 200
)

// DefaultFilter mirrors the initial position of every control.
func DefaultFilter() Filter {
	return Filter{
		Market:           MarketIndia,
		Momentum:         Range{Lower: 40, Upper: 75},
		TrendStrengthMin: 20,
		Direction:        TrendAny,
		MovingAverages:   MovingAverageFlags{Above20: true, Above50: true},
		Band:             BandAny,
		Oscillator:       OscillatorAny,
		MinVolume:        100000,
		Limit:            50,
		Preset:           PresetNone,
	}
}
