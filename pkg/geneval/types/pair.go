package types

// Pair is one prediction image matched to its ground truth file by key.
// Each Pair is 32 bytes
type Pair struct {
	GT   string
	Pred string
}
