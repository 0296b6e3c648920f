package predictor

import (
	"fmt"
	"slices"

	"github.com/dustin/go-humanize"

	"github.com/YuminosukeSato/salary-predictor/pkg/errors"
)

// Form bounds and choices.
const (
	MinExperience     = 0
	MaxExperience     = 50
	DefaultExperience = 3
)

var (
	Educations  = []string{"Bachelor", "Master", "PhD"}
	Roles       = []string{"Engineer", "Manager", "HR", "Analyst", "Developer"}
	Departments = []string{"IT", "Finance", "HR", "Operations", "Marketing"}
	Locations   = []string{"New York", "San Francisco", "London", "Berlin", "Remote"}
	Genders     = []string{"Male", "Female", "Other"}
)

// Validate checks r against the form bounds and choices.
func (r Request) Validate() error {
	if r.Experience < MinExperience || r.Experience > MaxExperience {
		return errors.NewValidationError("experience",
			fmt.Sprintf("must be between %d and %d", MinExperience, MaxExperience), r.Experience)
	}
	choices := []struct {
		name    string
		value   string
		allowed []string
	}{
		{"education", r.Education, Educations},
		{"role", r.Role, Roles},
		{"department", r.Department, Departments},
		{"location", r.Location, Locations},
		{"gender", r.Gender, Genders},
	}
	for _, c := range choices {
		if !slices.Contains(c.allowed, c.value) {
			return errors.NewValidationError(c.name, "must be one of "+fmt.Sprint(c.allowed), c.value)
		}
	}
	return nil
}

// FormatCurrency renders v as dollars with thousands separators and two
// decimals, e.g. "$12,345.67".
func FormatCurrency(v float64) string {
	if v < 0 {
		return "-$" + humanize.FormatFloat("#,###.##", -v)
	}
	return "$" + humanize.FormatFloat("#,###.##", v)
}
