// Command trafobench compares preprocessing variants of the Pima diabetes
// table across a panel of classifiers and renders diagnostic charts.
package main

func main() {
	Execute()
}
