// Package dataset はPima糖尿病データの読み込み・行フィルタ・分割を提供します。
//
// テーブルは go-gota/gota の DataFrame を包んだ不変の値で、全ての操作は新しい
// Table を返します。
package dataset

// 固定スキーマの列名。CSV はヘッダーなしでこの順序に並んでいます。
const (
	Pregnancies              = "Pregnancies"
	Glucose                  = "Glucose"
	BloodPressure            = "Blood_pressure"
	SkinThickness            = "Skin_thickness"
	Insulin                  = "Insulin"
	Bmi                      = "Bmi"
	DiabetesPedigreeFunction = "Diabetes_Pedigree_Function"
	Age                      = "Age"
	Outcome                  = "Outcome"
)

// ColumnNames は全9列の名前をCSVの列順で返します。
var ColumnNames = []string{
	Pregnancies, Glucose, BloodPressure,
	SkinThickness, Insulin, Bmi,
	DiabetesPedigreeFunction, Age, Outcome,
}

// FeatureNames は Outcome を除く8つの特徴量列です。
var FeatureNames = ColumnNames[:len(ColumnNames)-1]

// SentinelColumns は値 0 が欠損を意味する列です。
var SentinelColumns = []string{Glucose, BloodPressure, SkinThickness, Insulin, Bmi}

// Sentinel は欠損を表す値です。
const Sentinel = 0.0
