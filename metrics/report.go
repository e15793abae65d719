package metrics

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/rs/zerolog"
)

// Recorder returns a SampleRecorder that records each outcome into m and
// into log. Learners driven by the boosting loop receive one of these.
func (m *ConfusionMatrix) Recorder(log *SampleLog) SampleRecorder {
	return &matrixRecorder{m: m, log: log}
}

type matrixRecorder struct {
	m   *ConfusionMatrix
	log *SampleLog
}

func (r *matrixRecorder) RecordSample(index, trueClass, predictedClass int) error {
	return r.m.RecordOutcome(trueClass, predictedClass, WithSample(index, r.log))
}

// ClassReport holds the marginal rates of one class.
type ClassReport struct {
	Class       int     `json:"class" yaml:"class"`
	Support     int     `json:"support" yaml:"support"`
	Precision   float64 `json:"precision" yaml:"precision"`
	Sensitivity float64 `json:"sensitivity" yaml:"sensitivity"`
	Specificity float64 `json:"specificity" yaml:"specificity"`
	FValue      float64 `json:"f_value" yaml:"f_value"`
	FDefined    bool    `json:"f_defined" yaml:"f_defined"`
}

// ClassificationReport is a snapshot of every metric of a ConfusionMatrix.
// F-values that are undefined are reported as 0 with the matching Defined
// flag cleared.
type ClassificationReport struct {
	Total              int           `json:"total" yaml:"total"`
	ClassificationRate float64       `json:"classification_rate" yaml:"classification_rate"`
	Classes            []ClassReport `json:"classes" yaml:"classes"`

	MicroPrecision   float64 `json:"micro_precision" yaml:"micro_precision"`
	MicroSensitivity float64 `json:"micro_sensitivity" yaml:"micro_sensitivity"`
	MicroFValue      float64 `json:"micro_f_value" yaml:"micro_f_value"`
	MicroFDefined    bool    `json:"micro_f_defined" yaml:"micro_f_defined"`

	MacroPrecision   float64 `json:"macro_precision" yaml:"macro_precision"`
	MacroSensitivity float64 `json:"macro_sensitivity" yaml:"macro_sensitivity"`
	MacroSpecificity float64 `json:"macro_specificity" yaml:"macro_specificity"`
	MacroFValue      float64 `json:"macro_f_value" yaml:"macro_f_value"`
	MacroFDefined    bool    `json:"macro_f_defined" yaml:"macro_f_defined"`
}

// Report computes a ClassificationReport from the current counts.
func (m *ConfusionMatrix) Report() *ClassificationReport {
	r := &ClassificationReport{
		Total:              m.TotalCount(),
		ClassificationRate: m.ClassificationRate(),
		Classes:            make([]ClassReport, m.numClasses),
		MicroPrecision:     m.MicroPrecision(),
		MicroSensitivity:   m.MicroSensitivity(),
		MacroPrecision:     m.MacroPrecision(),
		MacroSensitivity:   m.MacroSensitivity(),
		MacroSpecificity:   m.MacroSpecificity(),
	}
	for c := range r.Classes {
		f, err := m.FValue(c)
		r.Classes[c] = ClassReport{
			Class:       c,
			Support:     m.Support(c),
			Precision:   m.Precision(c),
			Sensitivity: m.Sensitivity(c),
			Specificity: m.Specificity(c),
			FValue:      f,
			FDefined:    err == nil,
		}
	}
	if f, err := m.MicroFValue(); err == nil {
		r.MicroFValue, r.MicroFDefined = f, true
	}
	if f, err := m.MacroFValue(); err == nil {
		r.MacroFValue, r.MacroFDefined = f, true
	}
	return r
}

// MarshalZerologObject implements zerolog.LogObjectMarshaler.
func (r *ClassificationReport) MarshalZerologObject(e *zerolog.Event) {
	e.Int("total", r.Total).
		Float64("classification_rate", r.ClassificationRate).
		Float64("micro_precision", r.MicroPrecision).
		Float64("micro_sensitivity", r.MicroSensitivity).
		Float64("macro_precision", r.MacroPrecision).
		Float64("macro_sensitivity", r.MacroSensitivity).
		Float64("macro_specificity", r.MacroSpecificity)
	if r.MicroFDefined {
		e.Float64("micro_f_value", r.MicroFValue)
	}
	if r.MacroFDefined {
		e.Float64("macro_f_value", r.MacroFValue)
	}
}

// String renders the per-class table followed by the averages.
func (r *ClassificationReport) String() string {
	var sb strings.Builder
	tw := tabwriter.NewWriter(&sb, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "class\tsupport\tprecision\tsensitivity\tspecificity\tf-value\t")
	for _, c := range r.Classes {
		fmt.Fprintf(tw, "%d\t%d\t%.4f\t%.4f\t%.4f\t%s\t\n",
			c.Class, c.Support, c.Precision, c.Sensitivity, c.Specificity, formatF(c.FValue, c.FDefined))
	}
	fmt.Fprintf(tw, "micro\t%d\t%.4f\t%.4f\t-\t%s\t\n",
		r.Total, r.MicroPrecision, r.MicroSensitivity, formatF(r.MicroFValue, r.MicroFDefined))
	fmt.Fprintf(tw, "macro\t%d\t%.4f\t%.4f\t%.4f\t%s\t\n",
		r.Total, r.MacroPrecision, r.MacroSensitivity, r.MacroSpecificity, formatF(r.MacroFValue, r.MacroFDefined))
	tw.Flush()
	fmt.Fprintf(&sb, "classification rate: %.4f\n", r.ClassificationRate)
	return sb.String()
}

func formatF(v float64, defined bool) string {
	if !defined {
		return "undefined"
	}
	return fmt.Sprintf("%.4f", v)
}

// String renders the raw counts, one row per predicted class.
func (m *ConfusionMatrix) String() string {
	var sb strings.Builder
	tw := tabwriter.NewWriter(&sb, 0, 4, 1, ' ', tabwriter.AlignRight)
	fmt.Fprint(tw, "pred\\true\t")
	for c := 0; c < m.numClasses; c++ {
		fmt.Fprintf(tw, "%d\t", c)
	}
	fmt.Fprintln(tw)
	for p := 0; p < m.numClasses; p++ {
		fmt.Fprintf(tw, "%d\t", p)
		for c := 0; c < m.numClasses; c++ {
			fmt.Fprintf(tw, "%d\t", m.Count(p, c))
		}
		fmt.Fprintln(tw)
	}
	tw.Flush()
	return sb.String()
}
