package request

import "github.com/wonny/optrisk/internal/pricing"

// ModelRecord selects the pricing model for one request
// {"name": "binomial", "steps": 800} / {"name": "merton_jump", "jump_intensity": 0.5, ...}
type ModelRecord struct {
	Name          string  `json:"name" yaml:"name" validate:"required,pricingmodel"`
	Steps         int     `json:"steps,omitempty" yaml:"steps"` // 생략 시 500
	JumpIntensity float64 `json:"jump_intensity,omitempty" yaml:"jump_intensity"`
	JumpMean      float64 `json:"jump_mean,omitempty" yaml:"jump_mean"`
	JumpVol       float64 `json:"jump_vol,omitempty" yaml:"jump_vol"`
}

// Config converts the record; parameter range errors come from the pricer itself
func (m *ModelRecord) Config() (pricing.ModelConfig, error) {
	model, err := pricing.ParseModel(m.Name)
	if err != nil {
		return pricing.ModelConfig{}, &ValidationError{Fields: []FieldError{{Field: "model.name", Tag: "pricingmodel"}}, cause: err}
	}

	steps := m.Steps
	if model == pricing.ModelBinomial && steps == 0 {
		steps = pricing.DefaultBinomialSteps
	}
	return pricing.ModelConfig{
		Model:         model,
		BinomialSteps: steps,
		JumpIntensity: m.JumpIntensity,
		JumpMean:      m.JumpMean,
		JumpVol:       m.JumpVol,
	}, nil
}

// Pricer builds the selected pricer; a nil record returns (nil, nil) so the server default applies
func (m *ModelRecord) Pricer() (pricing.Pricer, error) {
	if m == nil {
		return nil, nil
	}
	cfg, err := m.Config()
	if err != nil {
		return nil, err
	}
	return pricing.NewPricer(cfg)
}
