// Package ontology provides the Gene Ontology term graph and ancestor-closure queries.
package ontology

import "fmt"

// Namespace identifies one of the three Gene Ontology aspects.
type Namespace string

const (
	BiologicalProcess Namespace = "BP"
	CellularComponent Namespace = "CC"
	MolecularFunction Namespace = "MF"
)

// Root term identifiers, one per namespace. These are fixed by the ontology.
const (
	RootBP = "GO:0008150"
	RootCC = "GO:0005575"
	RootMF = "GO:0003674"
)

// namespaceLabels maps the long-form namespace labels used by annotation
// services to the three-letter codes.
var namespaceLabels = map[string]Namespace{
	"biological_process": BiologicalProcess,
	"cellular_component": CellularComponent,
	"molecular_function": MolecularFunction,
}

// ParseNamespace converts a long-form namespace label (or a three-letter code)
// to a Namespace.
func ParseNamespace(label string) (Namespace, error) {
	if ns, ok := namespaceLabels[label]; ok {
		return ns, nil
	}
	switch Namespace(label) {
	case BiologicalProcess, CellularComponent, MolecularFunction:
		return Namespace(label), nil
	}
	return "", fmt.Errorf("unknown namespace label %q", label)
}

// Namespaces returns the three namespaces in a fixed order.
func Namespaces() []Namespace {
	return []Namespace{BiologicalProcess, CellularComponent, MolecularFunction}
}

// RootOf returns the root term identifier for a namespace.
func RootOf(ns Namespace) string {
	switch ns {
	case BiologicalProcess:
		return RootBP
	case CellularComponent:
		return RootCC
	case MolecularFunction:
		return RootMF
	}
	return ""
}
