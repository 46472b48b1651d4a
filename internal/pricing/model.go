package pricing

import (
	"fmt"
	"strings"
)

// Model names a pricing model
type Model string

const (
	ModelBlackScholes Model = "black_scholes"
	ModelBinomial     Model = "binomial"
	ModelMertonJump   Model = "merton_jump"
)

// ParseModel parses a model name ("binomial", "Merton-Jump", ...)
func ParseModel(s string) (Model, error) {
	name := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	switch Model(name) {
	case ModelBlackScholes, "", "bsm":
		return ModelBlackScholes, nil
	case ModelBinomial:
		return ModelBinomial, nil
	case ModelMertonJump, "merton":
		return ModelMertonJump, nil
	default:
		return "", fmt.Errorf("unknown pricing model %q (expected %s, %s or %s)", s, ModelBlackScholes, ModelBinomial, ModelMertonJump)
	}
}

// ModelConfig selects and parameterises a pricer
type ModelConfig struct {
	Model         Model
	BinomialSteps int

	JumpIntensity float64
	JumpMean      float64
	JumpVol       float64
}

// NewPricer builds the pricer described by cfg
func NewPricer(cfg ModelConfig) (Pricer, error) {
	switch cfg.Model {
	case ModelBlackScholes, "":
		return NewBlackScholes(), nil
	case ModelBinomial:
		b, err := NewBinomial(cfg.BinomialSteps)
		if err != nil {
			return nil, err
		}
		return b, nil
	case ModelMertonJump:
		m, err := NewMertonJump(cfg.JumpIntensity, cfg.JumpMean, cfg.JumpVol)
		if err != nil {
			return nil, err
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unknown pricing model %q", cfg.Model)
	}
}

// Describe names p for cache keys and reports
func Describe(p Pricer) string {
	if s, ok := p.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", p)
}
