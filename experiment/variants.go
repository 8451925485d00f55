// Package experiment runs the preprocessing variants through the classifier
// panel, renders the charts and writes the run report.
package experiment

import (
	"github.com/YuminosukeSato/trafobench/evaluation"
	"github.com/YuminosukeSato/trafobench/preprocessing"
)

// Series is the per-variant panel means in execution order.
type Series = evaluation.Series

// Variant is one named preprocessing pipeline.
type Variant struct {
	// Label identifies the variant in logs and the report.
	Label string
	// Display is the x axis label on the metrics line plot.
	Display   string
	Transform preprocessing.Transform
}

// Variants returns the six pipelines in execution order.
func Variants() []Variant {
	r, e, s := preprocessing.RemoveOutliers, preprocessing.EqualizeClasses, preprocessing.ScaleFeatures
	return []Variant{
		{Label: "raw correct data", Display: "Raw correct data", Transform: preprocessing.Chain()},
		{Label: "data without outliers", Display: "data without outliers", Transform: preprocessing.Chain(r)},
		{Label: "equilized data", Display: "equilized data", Transform: preprocessing.Chain(e)},
		{Label: "scaled data", Display: "scaled data", Transform: preprocessing.Chain(s)},
		{Label: "scaled and equalized data", Display: "scaled and equalized data", Transform: preprocessing.Chain(s, e)},
		{
			Label:     "scaled and equalized data without outliers",
			Display:   "scaled and equalized data \n without outliers",
			Transform: preprocessing.Chain(r, s, e),
		},
	}
}

// FinalPipeline is the preprocessing applied to the table the overview
// charts are drawn from.
func FinalPipeline() preprocessing.Transform {
	return preprocessing.Chain(preprocessing.RemoveOutliers, preprocessing.ScaleFeatures, preprocessing.EqualizeClasses)
}
