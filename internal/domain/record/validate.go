package record

import "fmt"

// FieldError reports a single rejected observation value.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

type fieldRange struct {
	name string
	min  float64
	max  float64
}

// Plausible measurement domains, bounds inclusive. Values outside are
// rejected, never clamped.
var fieldRanges = []fieldRange{
	{"hgb", 0, 100},
	{"rbc", 0, 20},
	{"wbc", 0, 200},
	{"plt", 0, 2000},
	{"hct", 0, 100},
	{"glucose", 0, 1000},
	{"creatinine", 0, 50},
	{"alt", 0, 5000},
	{"cholesterol", 0, 1000},
	{"crp", 0, 500},
}

func (o *Observation) fieldValue(name string) *float64 {
	switch name {
	case "hgb":
		return o.Hgb
	case "rbc":
		return o.Rbc
	case "wbc":
		return o.Wbc
	case "plt":
		return o.Plt
	case "hct":
		return o.Hct
	case "glucose":
		return o.Glucose
	case "creatinine":
		return o.Creatinine
	case "alt":
		return o.Alt
	case "cholesterol":
		return o.Cholesterol
	case "crp":
		return o.Crp
	}
	return nil
}

// Validate checks every present value against its measurement domain and
// returns one FieldError per violation. Absent fields pass.
func Validate(o *Observation) []FieldError {
	var errs []FieldError
	for _, r := range fieldRanges {
		v := o.fieldValue(r.name)
		if v == nil {
			continue
		}
		if *v < r.min || *v > r.max {
			errs = append(errs, FieldError{
				Field:  r.name,
				Reason: fmt.Sprintf("value %g outside range %g-%g", *v, r.min, r.max),
			})
		}
	}
	return errs
}
