// Package evaluation fits a panel of classifiers on one table and collects
// accuracy, sensitivity and specificity per classifier.
package evaluation

import (
	"fmt"
	"strings"

	"github.com/YuminosukeSato/trafobench/core/model"
	"github.com/YuminosukeSato/trafobench/pkg/errors"
	"github.com/YuminosukeSato/trafobench/sklearn/ensemble"
	"github.com/YuminosukeSato/trafobench/sklearn/linear_model"
	"github.com/YuminosukeSato/trafobench/sklearn/naive_bayes"
	"github.com/YuminosukeSato/trafobench/sklearn/neighbors"
	"github.com/YuminosukeSato/trafobench/sklearn/tree"
)

// Member is one classifier of the panel. New returns a fresh, unfitted model
// on every call so that no state leaks between tables.
type Member struct {
	Name string
	New  func() model.Estimator
}

// Panel is an ordered list of classifiers.
type Panel []Member

// DefaultPanel returns the six classifiers evaluated on every variant, all
// seeded from seed.
func DefaultPanel(seed int64) Panel {
	return Panel{
		{Name: "LogisticRegression", New: func() model.Estimator {
			return linear_model.NewLogisticRegression(
				linear_model.WithLRMaxIter(1000),
				linear_model.WithLRRandomState(seed),
			)
		}},
		{Name: "PassiveAggressiveClassifier", New: func() model.Estimator {
			return linear_model.NewPassiveAggressiveClassifier(linear_model.WithPARandomState(seed))
		}},
		{Name: "KNeighborsClassifier", New: func() model.Estimator {
			return neighbors.NewKNeighborsClassifier(neighbors.WithNNeighbors(5))
		}},
		{Name: "GaussianNB", New: func() model.Estimator {
			return naive_bayes.NewGaussianNB()
		}},
		{Name: "DecisionTreeClassifier", New: func() model.Estimator {
			return tree.NewDecisionTreeClassifier(tree.WithMaxDepth(5), tree.WithRandomState(seed))
		}},
		{Name: "RandomForestClassifier", New: func() model.Estimator {
			return ensemble.NewRandomForestClassifier(
				ensemble.WithNEstimators(25),
				ensemble.WithRandomState(seed),
			)
		}},
	}
}

// Names lists the panel members in order.
func (p Panel) Names() []string {
	names := make([]string, len(p))
	for i, m := range p {
		names[i] = m.Name
	}
	return names
}

// Restrict keeps the members named in names, in panel order. Names match
// case-insensitively. An empty list keeps the whole panel.
func (p Panel) Restrict(names []string) (Panel, error) {
	if len(names) == 0 {
		return p, nil
	}
	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[strings.ToLower(strings.TrimSpace(n))] = true
	}

	var out Panel
	for _, m := range p {
		key := strings.ToLower(m.Name)
		if wanted[key] {
			out = append(out, m)
			delete(wanted, key)
		}
	}
	if len(wanted) > 0 {
		unknown := make([]string, 0, len(wanted))
		for n := range wanted {
			unknown = append(unknown, n)
		}
		return nil, errors.NewValidationError("classifiers",
			fmt.Sprintf("unknown classifier, expected one of %s", strings.Join(p.Names(), ", ")), unknown)
	}
	return out, nil
}
