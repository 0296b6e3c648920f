// Package dataset loads the employee salary dataset and brings it into
// the shape the training pipeline expects.
package dataset

// Target is the column predicted by the model.
const Target = "Salary"

// Canonical feature column names.
const (
	Experience = "Experience"
	Education  = "Education"
	Role       = "Role"
	Department = "Department"
	Location   = "Location"
	Gender     = "Gender"
)

// Features is the feature schema, in canonical order.
var Features = []string{Experience, Education, Role, Department, Location, Gender}

// Categorical lists the features that are one-hot encoded. Experience is
// the only numeric feature.
var Categorical = []string{Education, Role, Department, Location, Gender}

// Required is every column that must be present after renaming, in the
// order missing columns are reported.
var Required = append(append([]string{}, Features...), Target)

// Renames maps source header names to canonical names.
var Renames = map[string]string{
	"Experience_Years": Experience,
	"Education_Level":  Education,
	"Job_Title":        Role,
}

// Identity columns are dropped before training when present.
var Identity = []string{"Employee_ID", "Name", "Age"}
