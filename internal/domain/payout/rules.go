package payout

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Category identifies one award type in the rule table. The order of
// AllCategories is the order awards are granted and listed in.
type Category string

const (
	CategoryChampion          Category = "champion"
	CategoryRunnerUp          Category = "runner_up"
	CategoryThirdPlace        Category = "third_place"
	CategoryFourthPlace       Category = "fourth_place"
	CategoryMostPointsRegular Category = "most_points_regular"
	CategoryWeeklyHigh        Category = "weekly_high"
)

var AllCategories = []Category{
	CategoryChampion,
	CategoryRunnerUp,
	CategoryThirdPlace,
	CategoryFourthPlace,
	CategoryMostPointsRegular,
	CategoryWeeklyHigh,
}

// Label is the human-readable award type used in ledger lines.
func (c Category) Label() string {
	switch c {
	case CategoryChampion:
		return "Champion"
	case CategoryRunnerUp:
		return "Runner-Up"
	case CategoryThirdPlace:
		return "3rd Place"
	case CategoryFourthPlace:
		return "4th Place"
	case CategoryMostPointsRegular:
		return "Most Points (Regular)"
	case CategoryWeeklyHigh:
		return "Weekly High Scores"
	default:
		return string(c)
	}
}

// Rules is the amount table for every award category.
type Rules struct {
	Champion          float64 `yaml:"champion"`
	RunnerUp          float64 `yaml:"runner_up"`
	ThirdPlace        float64 `yaml:"third_place"`
	FourthPlace       float64 `yaml:"fourth_place"`
	WeeklyHigh        float64 `yaml:"weekly_high"`
	MostPointsRegular float64 `yaml:"most_points_regular"`
}

func DefaultRules() Rules {
	return Rules{
		Champion:          300,
		RunnerUp:          150,
		ThirdPlace:        70,
		FourthPlace:       50,
		WeeklyHigh:        10,
		MostPointsRegular: 40,
	}
}

// LoadRules reads a rule table from YAML. Missing file path falls back
// to the defaults; a present but malformed file is an error.
func LoadRules(path string) (Rules, error) {
	if path == "" {
		return DefaultRules(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultRules(), nil
		}
		return Rules{}, fmt.Errorf("read payout rules: %w", err)
	}

	rules := DefaultRules()
	if err := yaml.Unmarshal(raw, &rules); err != nil {
		return Rules{}, fmt.Errorf("parse payout rules %s: %w", path, err)
	}
	if err := rules.Validate(); err != nil {
		return Rules{}, fmt.Errorf("payout rules %s: %w", path, err)
	}
	return rules, nil
}

func (r Rules) Validate() error {
	for category, amount := range r.Amounts() {
		if amount < 0 {
			return fmt.Errorf("%s amount must be >= 0, got %v", category, amount)
		}
	}
	return nil
}

// Amounts exposes the table keyed by category.
func (r Rules) Amounts() map[Category]float64 {
	return map[Category]float64{
		CategoryChampion:          r.Champion,
		CategoryRunnerUp:          r.RunnerUp,
		CategoryThirdPlace:        r.ThirdPlace,
		CategoryFourthPlace:       r.FourthPlace,
		CategoryWeeklyHigh:        r.WeeklyHigh,
		CategoryMostPointsRegular: r.MostPointsRegular,
	}
}

func (r Rules) Amount(c Category) float64 {
	return r.Amounts()[c]
}

// Detail is one ledger line for a single award.
type Detail struct {
	Category    Category `json:"category"`
	Type        string   `json:"type"`
	Amount      float64  `json:"amount"`
	Count       int      `json:"count,omitempty"`
	Description string   `json:"description"`
}

// OwnerPayout is one owner's total for a season plus the lines behind it.
type OwnerPayout struct {
	Owner       string   `json:"owner"`
	TotalPayout float64  `json:"total_payout"`
	Details     []Detail `json:"details"`
}
