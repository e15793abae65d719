package metrics

import (
	"github.com/YuminosukeSato/boostcv/pkg/errors"
)

// Unrecorded marks a sample slot that has not received an outcome.
const Unrecorded = -1

// SampleRecorder receives per-sample outcomes alongside the confusion
// matrix. Only consumers that need to know which rows were misclassified,
// such as the boosting loop, pass one.
type SampleRecorder interface {
	RecordSample(index, trueClass, predictedClass int) error
}

// SampleLog is a SampleRecorder keeping two parallel arrays, Original and
// Predicted, with one slot per sample.
type SampleLog struct {
	Original  []int
	Predicted []int
}

var _ SampleRecorder = (*SampleLog)(nil)

// NewSampleLog creates a log for n samples with every slot Unrecorded.
func NewSampleLog(n int) *SampleLog {
	s := &SampleLog{
		Original:  make([]int, n),
		Predicted: make([]int, n),
	}
	s.Reset()
	return s
}

// RecordSample implements SampleRecorder. Recording a slot twice keeps the
// latest outcome.
func (s *SampleLog) RecordSample(index, trueClass, predictedClass int) error {
	if index < 0 || index >= len(s.Original) {
		return errors.NewValidationError("sampleIndex", "out of range", index)
	}
	s.Original[index] = trueClass
	s.Predicted[index] = predictedClass
	return nil
}

// Len returns the number of slots.
func (s *SampleLog) Len() int {
	return len(s.Original)
}

// Reset marks every slot Unrecorded.
func (s *SampleLog) Reset() {
	for i := range s.Original {
		s.Original[i] = Unrecorded
		s.Predicted[i] = Unrecorded
	}
}

// IsRecorded reports whether slot i holds an outcome.
func (s *SampleLog) IsRecorded(i int) bool {
	return s.Original[i] != Unrecorded
}

// Outcomes returns +1 for a correct sample, -1 for an incorrect one and 0
// for an unrecorded slot.
func (s *SampleLog) Outcomes() []int {
	out := make([]int, len(s.Original))
	for i := range out {
		switch {
		case !s.IsRecorded(i):
			out[i] = 0
		case s.Original[i] == s.Predicted[i]:
			out[i] = 1
		default:
			out[i] = -1
		}
	}
	return out
}

// Recorded returns the number of slots holding an outcome.
func (s *SampleLog) Recorded() int {
	n := 0
	for i := range s.Original {
		if s.IsRecorded(i) {
			n++
		}
	}
	return n
}

// Tally records every recorded slot into m, once per sample.
func (s *SampleLog) Tally(m *ConfusionMatrix) error {
	for i := range s.Original {
		if !s.IsRecorded(i) {
			continue
		}
		if err := m.Record(s.Original[i], s.Predicted[i]); err != nil {
			return errors.Wrapf(err, "sample %d", i)
		}
	}
	return nil
}
