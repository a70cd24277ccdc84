package feature

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Set represents a mapping to each feature data keyed by the string representation
// of the feature. All features share the same number of rows, shorter inputs are
// zero padded.
type Set struct {
	m      int
	set    map[string][]float64
	labels []Feature
}

func NewSet() *Set {
	return &Set{
		set: make(map[string][]float64),
	}
}

// Len returns the number of features in the set
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.labels)
}

// Rows returns the number of observations per feature
func (s *Set) Rows() int {
	if s == nil {
		return 0
	}
	return s.m
}

// Set stores the feature data, replacing any existing data for the same feature. If the data
// is longer than the current rows, every other feature is zero padded to match.
func (s *Set) Set(f Feature, data []float64) *Set {
	if s == nil {
		s = NewSet()
	}
	if s.set == nil {
		s.set = make(map[string][]float64)
	}

	if len(data) > s.m {
		for label, d := range s.set {
			s.set[label] = append(d, make([]float64, len(data)-len(d))...)
		}
		s.m = len(data)
	}

	vals := make([]float64, s.m)
	copy(vals, data)

	label := f.String()
	if _, exists := s.set[label]; !exists {
		s.labels = append(s.labels, f)
		sort.Slice(s.labels, func(i, j int) bool {
			return s.labels[i].String() < s.labels[j].String()
		})
	}
	s.set[label] = vals
	return s
}

// Get returns the feature data if it exists
func (s *Set) Get(f Feature) ([]float64, bool) {
	if s == nil {
		return nil, false
	}
	vals, exists := s.set[f.String()]
	return vals, exists
}

// Del removes a feature from the set
func (s *Set) Del(f Feature) *Set {
	if s == nil {
		return nil
	}
	label := f.String()
	if _, exists := s.set[label]; !exists {
		return s
	}
	delete(s.set, label)
	for i, l := range s.labels {
		if l.String() == label {
			s.labels = append(s.labels[:i], s.labels[i+1:]...)
			break
		}
	}
	return s
}

// Labels returns the sorted labels of all tracked features in the Set
func (s *Set) Labels() *Labels {
	if s == nil {
		return NewLabels(nil)
	}
	labels := make([]Feature, len(s.labels))
	copy(labels, s.labels)
	return NewLabels(labels)
}

// RemoveZeroOnlyFeatures drops every feature whose values are all zero
func (s *Set) RemoveZeroOnlyFeatures() *Set {
	if s == nil {
		return nil
	}
	for _, l := range s.Labels().Labels() {
		vals := s.set[l.String()]
		if len(vals) == 0 || floats.Norm(vals, 1) == 0 {
			s.Del(l)
		}
	}
	return s
}

// Active returns a copy of the set holding only the features with at least one non-zero value
func (s *Set) Active() *Set {
	active := NewSet()
	active.m = s.Rows()
	for _, l := range s.Labels().Labels() {
		vals, _ := s.Get(l)
		active.Set(l, vals)
	}
	return active.RemoveZeroOnlyFeatures()
}

// Align returns a new set restricted to exactly the given labels. Labels not present in the
// set are zero filled and features not in labels are dropped.
func (s *Set) Align(labels *Labels) *Set {
	aligned := NewSet()
	aligned.m = s.Rows()
	for _, l := range labels.Labels() {
		vals, exists := s.Get(l)
		if !exists {
			vals = make([]float64, aligned.m)
		}
		aligned.Set(l, vals)
	}
	return aligned
}

// Matrix returns a matrix representation of the Set to be used with matrix methods.
// The matrix has m rows representing the number of observations and n columns representing
// the number of features in label order.
func (s *Set) Matrix(intercept bool) *mat.Dense {
	if s == nil || len(s.labels) == 0 || s.m == 0 {
		return nil
	}

	m := s.m
	n := len(s.labels)
	if intercept {
		n += 1
	}

	obs := make([]float64, m*n)

	featNum := 0
	if intercept {
		for i := 0; i < m; i++ {
			obs[n*i] = 1.0
		}
		featNum += 1
	}

	for _, label := range s.labels {
		feature := s.set[label.String()]
		for i := 0; i < len(feature); i++ {
			obs[n*i+featNum] = feature[i]
		}
		featNum += 1
	}
	return mat.NewDense(m, n, obs)
}
