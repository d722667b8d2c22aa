// Package generation turns study text into a batch of flashcards using a
// text-completion Backend. It owns the algorithmic core of flashgen: sentence
// segmentation, prompt construction, output cleaning, difficulty rating and
// the per-item failure accounting that lets a batch partially succeed.
//
// The Backend is the only I/O boundary. Concrete providers (Gemini, OpenAI
// compatible APIs, Anthropic) live in internal/platform/llm.
package generation
