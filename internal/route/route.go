// Package route names the fixed set of labels the supervisor can choose from.
package route

import "strings"

// Route labels the next specialist to act, or Finish.
type Route string

const (
	Finish            Route = "FINISH"
	Greeting          Route = "GreetingAgent"
	Farewell          Route = "FarewellAgent"
	Medicine          Route = "MedicineAgent"
	MedicalHospital   Route = "MedicalHospitalAgent"
	MedicalDepartment Route = "MedicalDepartmentAgent"
)

// Members lists the specialist labels in prompt order.
var Members = []Route{Greeting, Farewell, Medicine, MedicalHospital, MedicalDepartment}

// Options lists every label the supervisor may return: Members then Finish.
func Options() []Route {
	return append(append([]Route(nil), Members...), Finish)
}

// Parse maps s to a known label. Unknown or empty input is not ok.
func Parse(s string) (Route, bool) {
	r := Route(strings.TrimSpace(s))
	for _, o := range Options() {
		if r == o {
			return r, true
		}
	}
	return "", false
}

// IsMember reports whether r names a specialist (not Finish).
func (r Route) IsMember() bool {
	for _, m := range Members {
		if r == m {
			return true
		}
	}
	return false
}

func (r Route) String() string { return string(r) }

// Strings converts routes to plain strings, e.g. for a schema enum.
func Strings(rs []Route) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = string(r)
	}
	return out
}
