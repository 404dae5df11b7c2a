package ports

// Normalizer cleans deck text before it is split into lines.
type Normalizer interface {
	Normalize(text string) string
}
