package driven

// Tokenizer encodes text into model-token IDs and back. The chunker windows
// content in token units so chunk boundaries respect the language model's
// tokenization rather than arbitrary character counts.
type Tokenizer interface {
	// Encode converts text to token IDs.
	Encode(text string) []int

	// Decode converts token IDs back to text.
	Decode(tokens []int) string
}
