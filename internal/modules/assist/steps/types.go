package steps

// DiagramSectionMarker demarcates the diagram section in a drafted answer. The
// generator is instructed to emit it; its absence means the draft carries no
// usable diagram.
const DiagramSectionMarker = "PlantUML code:"

// ModelConfig selects which models the pipeline calls. ChatModel answers the
// user; RouteModel handles classification and diagram refinement.
type ModelConfig struct {
	ChatModel   string
	RouteModel  string
	Temperature float32
}
