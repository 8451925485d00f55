// Package trafobench measures how data preprocessing changes the behaviour of
// a panel of classifiers on the Pima Indians diabetes table.
//
// The module loads the headerless 9-column diabetes CSV, drops rows whose
// missing-value sentinel (0) appears in Glucose, BloodPressure, SkinThickness,
// Insulin or BMI, and evaluates six preprocessing variants. Each variant is
// scored by accuracy, sensitivity and specificity averaged over the panel.
//
// # Quick Start
//
// Run the command line tool against a local copy of the data:
//
//	go run ./cmd/trafobench --input diabetes.csv --out results
//
// The run writes the metric line plot (dataTrafos), the box plot grid
// (data_manipulations), the correlation heat map, the pair plot, the class
// mean bar chart, an overview grid and a YAML report.
//
// Library use follows the same steps as the command:
//
//	raw, err := dataset.Load("diabetes.csv")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	base, err := dataset.DropSentinels(raw)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	driver := &experiment.Driver{Aggregator: evaluation.NewAggregator(42)}
//	res, err := driver.Run(base)
//
// # Packages
//
//   - dataset: table type, CSV loader, sentinel filter, stratified split, column summaries
//   - preprocessing: outlier removal, class equalization, min-max scaling, transform chains
//   - metrics: confusion matrix, sensitivity, specificity and related scores
//   - sklearn/...: LogisticRegression, PassiveAggressiveClassifier, KNeighborsClassifier,
//     GaussianNB, DecisionTreeClassifier, RandomForestClassifier
//   - evaluation: classifier panel, metric aggregation per variant
//   - plotting: gonum/plot charts with light and dark themes
//   - experiment: the variant driver and YAML report
//   - pkg/config, pkg/log, pkg/errors: configuration, structured logging, error types
//
// # Configuration
//
// Settings are read from flags, TRAFOBENCH_* environment variables (a .env
// file is honoured), trafobench.yaml and built-in defaults, in that order.
// `trafobench config` prints the effective values.
package trafobench
