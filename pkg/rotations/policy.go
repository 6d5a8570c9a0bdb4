package rotations

import (
	"fmt"
	"os"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	DuplicateKeepFirst = "first"
	DuplicateKeepLast  = "last"
)

// Policy controls how the assembler acts on what it detects. The
// defaults are deliberately conservative, merge candidates are
// reported but never applied and only the later weekly duplicate is
// removed.
type Policy struct {
	// AutoMerge applies detected merge candidates instead of only
	// suggesting them. MergePredicate can narrow this further, it is
	// an expression over a candidate pair that must evaluate to true
	// for the merge to happen.
	AutoMerge      bool   `yaml:"auto_merge"`
	MergePredicate string `yaml:"merge_predicate"`

	// DuplicateKeep picks which side of a weekly duplicate pair
	// survives. DuplicatePredicate, when set, must evaluate to true
	// for a pair to be eliminated at all.
	DuplicateKeep      string `yaml:"duplicate_keep" validate:"oneof=first last"`
	DuplicatePredicate string `yaml:"duplicate_predicate"`

	mergeProgram     *vm.Program
	duplicateProgram *vm.Program
}

func DefaultPolicy() *Policy {
	return &Policy{
		AutoMerge:     false,
		DuplicateKeep: DuplicateKeepFirst,
	}
}

// LoadPolicy reads a YAML policy file and compiles its predicate
// expressions.
func LoadPolicy(path string) (*Policy, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading policy file: %w", err)
	}

	policy := DefaultPolicy()
	if err := yaml.Unmarshal(contents, policy); err != nil {
		return nil, fmt.Errorf("parsing policy file: %w", err)
	}

	if err := validator.New().Struct(policy); err != nil {
		return nil, fmt.Errorf("invalid policy: %w", err)
	}

	if err := policy.compile(); err != nil {
		return nil, err
	}

	return policy, nil
}

func (policy *Policy) compile() error {
	var err error

	if policy.MergePredicate != "" {
		policy.mergeProgram, err = expr.Compile(policy.MergePredicate, expr.AsBool())
		if err != nil {
			return fmt.Errorf("compiling merge predicate: %w", err)
		}
	}

	if policy.DuplicatePredicate != "" {
		policy.duplicateProgram, err = expr.Compile(policy.DuplicatePredicate, expr.AsBool())
		if err != nil {
			return fmt.Errorf("compiling duplicate predicate: %w", err)
		}
	}

	return nil
}

func evaluatePredicate(program *vm.Program, env map[string]any) (bool, error) {
	if program == nil {
		return true, nil
	}

	result, err := expr.Run(program, env)
	if err != nil {
		return false, fmt.Errorf("evaluating predicate: %w", err)
	}

	accepted, ok := result.(bool)
	if !ok {
		return false, fmt.Errorf("predicate returned %T, want bool", result)
	}
	return accepted, nil
}

func (policy *Policy) acceptMerge(suggestion *MergeSuggestion) (bool, error) {
	return evaluatePredicate(policy.mergeProgram, map[string]any{
		"DayGap":      suggestion.DayGap,
		"VehicleType": suggestion.VehicleType,
		"DepotID":     suggestion.DepotID,
		"LocationID":  suggestion.LocationID,
	})
}

func (policy *Policy) acceptDuplicate(pair *DuplicatePair) (bool, error) {
	return evaluatePredicate(policy.duplicateProgram, map[string]any{
		"LineNumber": pair.LineNumber,
		"WeekGap":    pair.WeekGap,
		"TripID":     pair.DuplicateTripID,
	})
}
