package fleet

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/mitchellh/mapstructure"

	"github.com/inference-sim/fleetsim/sim"
)

// Delay policy names accepted in DelaySpec.Policy.
const (
	DelayUniform  = "uniform"
	DelayConstant = "constant"
)

// validDelayPolicies is the set of recognized delay policy names.
var validDelayPolicies = map[string]bool{"": true, DelayUniform: true, DelayConstant: true}

// DelaySpec selects the delay policy. Params is free-form in YAML and decoded
// into the policy's typed parameters.
type DelaySpec struct {
	Policy string         `yaml:"policy"`
	Params map[string]any `yaml:"params,omitempty"`
}

// UniformParams parameterizes the uniform delay policy (inclusive bounds, in ticks).
type UniformParams struct {
	Min int64 `mapstructure:"min"`
	Max int64 `mapstructure:"max"`
}

// ConstantParams parameterizes the constant delay policy.
type ConstantParams struct {
	Value int64 `mapstructure:"value"`
}

// decode validates the spec and returns its typed parameters
// (UniformParams or ConstantParams). An empty policy means uniform [1, 5].
func (d DelaySpec) decode() (any, error) {
	if !validDelayPolicies[d.Policy] {
		return nil, fmt.Errorf("unknown delay policy %q; valid: uniform, constant", d.Policy)
	}
	switch d.Policy {
	case DelayConstant:
		var p ConstantParams
		if err := decodeParams(d.Params, &p); err != nil {
			return nil, err
		}
		if p.Value < 0 {
			return nil, fmt.Errorf("constant delay must be non-negative, got %d", p.Value)
		}
		return p, nil
	default:
		p := UniformParams{Min: sim.DefaultDelayMin, Max: sim.DefaultDelayMax}
		if err := decodeParams(d.Params, &p); err != nil {
			return nil, err
		}
		if p.Min < 0 || p.Max < p.Min {
			return nil, fmt.Errorf("uniform delay range [%d, %d] is invalid; need 0 <= min <= max", p.Min, p.Max)
		}
		if p.Max-p.Min == math.MaxInt64 {
			return nil, fmt.Errorf("uniform delay range [%d, %d] is too wide; max - min must be below %d", p.Min, p.Max, int64(math.MaxInt64))
		}
		return p, nil
	}
}

// decodeParams decodes params into out; unknown keys are rejected.
func decodeParams(params map[string]any, out any) error {
	if len(params) == 0 {
		return nil
	}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      out,
		ErrorUnused: true,
	})
	if err != nil {
		return fmt.Errorf("building params decoder: %w", err)
	}
	if err := decoder.Decode(params); err != nil {
		return fmt.Errorf("decoding delay params: %w", err)
	}
	return nil
}

// NewDelayPolicy builds the sim.DelayPolicy described by d.
// The rng is only consumed by the uniform policy.
func NewDelayPolicy(d DelaySpec, rng *rand.Rand) (sim.DelayPolicy, error) {
	params, err := d.decode()
	if err != nil {
		return nil, err
	}
	switch p := params.(type) {
	case ConstantParams:
		return sim.ConstantDelay(p.Value), nil
	case UniformParams:
		return sim.UniformDelay(rng, p.Min, p.Max), nil
	default:
		panic(fmt.Sprintf("NewDelayPolicy: unhandled params type %T", params))
	}
}
