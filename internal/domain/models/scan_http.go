package models

// ScanRequest carries the control values for one scan. Pointer fields accept
// an explicit zero; nil means "use the control's default".
type ScanRequest struct {
	Profile    string   `param:"profile" json:"-"`
	RSIMin     *float64 `query:"rsi_min" json:"rsi_min" default:"40" validate:"gte=0,lte=100"`
	RSIMax     *float64 `query:"rsi_max" json:"rsi_max" default:"75" validate:"gte=0,lte=100"`
	ADXMin     *float64 `query:"adx_min" json:"adx_min" default:"20" validate:"gte=0,lte=60"`
	Direction  string   `query:"direction" json:"direction" default:"any" validate:"oneof=any bullish bearish"`
	Above20    *bool    `query:"ma20" json:"ma20" default:"true"`
	Above50    *bool    `query:"ma50" json:"ma50" default:"true"`
	Above200   *bool    `query:"ma200" json:"ma200" default:"false"`
	Band       string   `query:"band" json:"band" default:"any" validate:"oneof=any near_lower_band above_upper_band"`
	Oscillator string   `query:"oscillator" json:"oscillator" default:"any" validate:"oneof=any oversold overbought bullish_cross bearish_cross"`
	MinVolume  *int64   `query:"min_volume" json:"min_volume" default:"100000" validate:"gte=0"`
	Limit      int      `query:"limit" json:"limit" default:"50" validate:"gte=10,lte=200"`
	Preset     string   `query:"preset" json:"preset" default:"none" validate:"oneof=none gainers losers most_active unusual_volume"`
}

// Filter captures the request as an immutable Filter value. Missing values
// fall back to DefaultFilter.
func (r *ScanRequest) Filter() Filter {
	f := DefaultFilter()
	if r.RSIMin != nil {
		f.Momentum.Lower = *r.RSIMin
	}
	if r.RSIMax != nil {
		f.Momentum.Upper = *r.RSIMax
	}
	if r.ADXMin != nil {
		f.TrendStrengthMin = *r.ADXMin
	}
	if r.Direction != "" {
		f.Direction = TrendDirection(r.Direction)
	}
	if r.Above20 != nil {
		f.MovingAverages.Above20 = *r.Above20
	}
	if r.Above50 != nil {
		f.MovingAverages.Above50 = *r.Above50
	}
	if r.Above200 != nil {
		f.MovingAverages.Above200 = *r.Above200
	}
	if r.Band != "" {
		f.Band = BandCondition(r.Band)
	}
	if r.Oscillator != "" {
		f.Oscillator = OscillatorMode(r.Oscillator)
	}
	if r.MinVolume != nil {
		f.MinVolume = *r.MinVolume
	}
	if r.Limit != 0 {
		f.Limit = r.Limit
	}
	if r.Preset != "" {
		f.Preset = Preset(r.Preset)
	}
	return f
}

// ProfileInfo describes a profile and its controls for a UI.
type ProfileInfo struct {
	Profile
	Defaults          Filter   `json:"defaults"`
	Presets           []Option `json:"presets"`
	TrendDirections   []Option `json:"trend_directions"`
	BandConditions    []Option `json:"band_conditions"`
	OscillatorModes   []Option `json:"oscillator_modes"`
	MovingAverageBars []int    `json:"moving_average_periods"`
}

// NewProfileInfo bundles p with the option catalogues.
func NewProfileInfo(p Profile) ProfileInfo {
	return ProfileInfo{
		Profile:           p,
		Defaults:          DefaultFilter(),
		Presets:           PresetOptions,
		TrendDirections:   TrendOptions,
		BandConditions:    BandOptions,
		OscillatorModes:   OscillatorOptions,
		MovingAverageBars: []int{20, 50, 200},
	}
}
