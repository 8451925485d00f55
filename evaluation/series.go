package evaluation

// Series collects the panel means of successive variants in execution order.
type Series struct {
	Labels      []string  `yaml:"labels"`
	Accuracy    []float64 `yaml:"accuracy"`
	Sensitivity []float64 `yaml:"sensitivity"`
	Specificity []float64 `yaml:"specificity"`
}

// Append records the means of one variant.
func (s *Series) Append(label string, m Means) {
	s.Labels = append(s.Labels, label)
	s.Accuracy = append(s.Accuracy, m.Accuracy)
	s.Sensitivity = append(s.Sensitivity, m.Sensitivity)
	s.Specificity = append(s.Specificity, m.Specificity)
}

// Len is the number of recorded variants.
func (s Series) Len() int { return len(s.Labels) }
