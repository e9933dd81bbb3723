package driven

// Prompt names recognised by PromptStore implementations.
const (
	// PromptGroundedQA is the instruction template constraining the model
	// to answer only from supplied context. Takes (context, question).
	PromptGroundedQA = "grounded_qa"

	// PromptContextLabel formats one retrieved chunk inside the context
	// block. Takes (source, page, content).
	PromptContextLabel = "context_label"
)

// PromptStore loads prompt templates, falling back to embedded defaults
// when no user-edited file exists.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	Load(name string) (string, error)
}
