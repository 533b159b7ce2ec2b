package usecase

import "TechScreener/internal/domain/models"

// BaseClauseCount is the number of predicates every query carries:
// type, typespecs, is_primary, RSI lower, RSI upper, volume.
const BaseClauseCount = 6

// TranslateQuery maps a filter onto a provider query for profile p. Every
// enabled toggle adds exactly one predicate; "any" choices add none. Bounds
// are passed through untouched, so an inverted momentum range stays inverted.
func TranslateQuery(p models.Profile, f models.Filter) models.Query {
	market := f.Market
	if market == "" {
		market = models.MarketIndia
	}

	preds := make([]models.Predicate, 0, BaseClauseCount+8)
	preds = append(preds,
		pred(models.FieldType, models.OpEqual, models.Text(models.InstrumentStock)),
		pred(models.FieldTypeSpecs, models.OpHas, models.TextSet(models.InstrumentCommon)),
		pred(models.FieldIsPrimary, models.OpEqual, models.Bool(true)),
		pred(models.FieldRSI, models.OpGreaterOrEqual, models.Number(f.Momentum.Lower)),
		pred(models.FieldRSI, models.OpLessOrEqual, models.Number(f.Momentum.Upper)),
		pred(models.FieldVolume, models.OpGreaterOrEqual, models.Number(float64(f.MinVolume))),
	)

	if p.TrendStrength {
		preds = append(preds, pred(models.FieldADX, models.OpGreaterOrEqual, models.Number(f.TrendStrengthMin)))
	}

	for _, period := range f.MovingAverages.Periods() {
		preds = append(preds, pred(models.FieldClose, models.OpGreater, models.FieldRef(p.MovingAverageField(period))))
	}

	preds = appendDirection(preds, f.Direction)
	preds = appendBand(preds, f.Band)
	preds = appendOscillator(preds, f.Oscillator)

	q := models.Query{
		Market:     market,
		Fields:     append([]string(nil), p.Fields...),
		Predicates: preds,
		Limit:      f.Limit,
	}
	if f.Preset.IsSet() {
		q.Preset = f.Preset
	}
	return q
}

// ExpectedClauseCount is the predicate count TranslateQuery yields for f.
func ExpectedClauseCount(p models.Profile, f models.Filter) int {
	n := BaseClauseCount + len(f.MovingAverages.Periods())
	if p.TrendStrength {
		n++
	}
	if f.Direction == models.TrendBullish || f.Direction == models.TrendBearish {
		n++
	}
	if f.Band == models.BandNearLower || f.Band == models.BandAboveUpper {
		n++
	}
	switch f.Oscillator {
	case models.OscillatorOversold, models.OscillatorOverbought,
		models.OscillatorBullishCross, models.OscillatorBearishCross:
		n++
	}
	return n
}

func appendDirection(preds []models.Predicate, d models.TrendDirection) []models.Predicate {
	switch d {
	case models.TrendBullish:
		return append(preds, pred(models.FieldPlusDI, models.OpGreater, models.FieldRef(models.FieldMinusDI)))
	case models.TrendBearish:
		return append(preds, pred(models.FieldMinusDI, models.OpGreater, models.FieldRef(models.FieldPlusDI)))
	}
	return preds
}

func appendBand(preds []models.Predicate, b models.BandCondition) []models.Predicate {
	switch b {
	case models.BandNearLower:
		return append(preds, pred(models.FieldClose, models.OpLess,
			models.ScaledFieldRef(models.FieldBBLower, models.NearLowerTolerance)))
	case models.BandAboveUpper:
		return append(preds, pred(models.FieldClose, models.OpGreater, models.FieldRef(models.FieldBBUpper)))
	}
	return preds
}

func appendOscillator(preds []models.Predicate, m models.OscillatorMode) []models.Predicate {
	switch m {
	case models.OscillatorOversold:
		return append(preds, pred(models.FieldStochK, models.OpLess, models.Number(models.OversoldLevel)))
	case models.OscillatorOverbought:
		return append(preds, pred(models.FieldStochK, models.OpGreater, models.Number(models.OverboughtLevel)))
	case models.OscillatorBullishCross:
		return append(preds, pred(models.FieldStochK, models.OpGreater, models.FieldRef(models.FieldStochD)))
	case models.OscillatorBearishCross:
		return append(preds, pred(models.FieldStochK, models.OpLess, models.FieldRef(models.FieldStochD)))
	}
	return preds
}

func pred(field string, op models.Operator, operand models.Operand) models.Predicate {
	return models.Predicate{Field: field, Op: op, Operand: operand}
}
