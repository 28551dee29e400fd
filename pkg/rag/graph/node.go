package graph

// Node is a state of the chatbot graph.
type Node int

const (
	NodeStart Node = iota
	NodeGuardrail
	NodeIntent
	NodeRetrieve
	NodeGenerate
	NodeGrade
	NodeResample
	NodeEnd
)

func (n Node) String() string {
	switch n {
	case NodeStart:
		return "start"
	case NodeGuardrail:
		return "guardrail"
	case NodeIntent:
		return "intent"
	case NodeRetrieve:
		return "retrieve"
	case NodeGenerate:
		return "generate"
	case NodeGrade:
		return "grade"
	case NodeResample:
		return "resample"
	case NodeEnd:
		return "end"
	default:
		return "unknown"
	}
}
