package record

import "testing"

func f(v float64) *float64 { return &v }

func TestValidate_EmptyObservation(t *testing.T) {
	if errs := Validate(&Observation{}); len(errs) != 0 {
		t.Errorf("observation with no values must pass, got %v", errs)
	}
}

func TestValidate_Boundaries(t *testing.T) {
	tests := []struct {
		name string
		obs  Observation
		ok   bool
	}{
		{"hgb at lower bound", Observation{Hgb: f(0)}, true},
		{"hgb at upper bound", Observation{Hgb: f(100)}, true},
		{"hgb below range", Observation{Hgb: f(-0.1)}, false},
		{"hgb above range", Observation{Hgb: f(100.1)}, false},
		{"rbc at upper bound", Observation{Rbc: f(20)}, true},
		{"rbc above range", Observation{Rbc: f(20.5)}, false},
		{"wbc in range", Observation{Wbc: f(7.2)}, true},
		{"wbc above range", Observation{Wbc: f(200.1)}, false},
		{"plt at upper bound", Observation{Plt: f(2000)}, true},
		{"plt negative", Observation{Plt: f(-1)}, false},
		{"hct above range", Observation{Hct: f(101)}, false},
		{"glucose in range", Observation{Glucose: f(95)}, true},
		{"glucose above range", Observation{Glucose: f(1000.5)}, false},
		{"creatinine at upper bound", Observation{Creatinine: f(50)}, true},
		{"creatinine above range", Observation{Creatinine: f(50.1)}, false},
		{"alt at upper bound", Observation{Alt: f(5000)}, true},
		{"alt above range", Observation{Alt: f(5001)}, false},
		{"cholesterol in range", Observation{Cholesterol: f(180)}, true},
		{"cholesterol above range", Observation{Cholesterol: f(1001)}, false},
		{"crp at upper bound", Observation{Crp: f(500)}, true},
		{"crp above range", Observation{Crp: f(500.01)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := Validate(&tt.obs)
			if tt.ok && len(errs) != 0 {
				t.Errorf("expected pass, got %v", errs)
			}
			if !tt.ok && len(errs) == 0 {
				t.Error("expected rejection, got pass")
			}
		})
	}
}

func TestValidate_ReportsEveryViolation(t *testing.T) {
	obs := Observation{
		Hgb:     f(-1),
		Glucose: f(2000),
		Rbc:     f(5), // in range
	}
	errs := Validate(&obs)
	if len(errs) != 2 {
		t.Fatalf("expected 2 field errors, got %d: %v", len(errs), errs)
	}

	fields := map[string]bool{}
	for _, e := range errs {
		fields[e.Field] = true
	}
	if !fields["hgb"] || !fields["glucose"] {
		t.Errorf("wrong fields flagged: %v", errs)
	}
}

func TestValidate_NeverClamps(t *testing.T) {
	obs := Observation{Hgb: f(150)}
	Validate(&obs)
	if *obs.Hgb != 150 {
		t.Errorf("value mutated during validation: %g", *obs.Hgb)
	}
}
