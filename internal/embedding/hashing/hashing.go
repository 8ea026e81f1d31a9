// Package hashing implements a deterministic, in-process embedding
// Provider using the feature-hashing trick: tokens are hashed into a
// fixed number of signed buckets and the result is L2-normalized. It
// requires no model weights and performs no I/O, satisfying the
// classification hot path's no-network, no-disk constraint.
package hashing

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"regexp"
	"strings"
)

// Name identifies this embedding scheme in the model descriptor.
const Name = "hashing-trick-v1"

var tokenPattern = regexp.MustCompile(`[a-z0-9]+`)

// Embedder is a deterministic hashed bag-of-words Provider.
type Embedder struct {
	dimension int
	stopwords map[string]struct{}
}

// New creates an Embedder producing vectors of the given dimension.
func New(dimension int) (*Embedder, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("hashing embedder: dimension must be positive, got %d", dimension)
	}
	return &Embedder{dimension: dimension, stopwords: defaultStopwords()}, nil
}

// Dimension returns the fixed output vector length.
func (e *Embedder) Dimension() int { return e.dimension }

// Descriptor identifies the scheme, dimension, preprocessing policy, and
// pattern embedding-text policy (description followed by all sample texts)
// so artifacts built under a different policy are rejected at load time.
func (e *Embedder) Descriptor() string {
	return fmt.Sprintf("%s:d=%d:lowercase+stopwords+fnv1a:text=description+samples", Name, e.dimension)
}

// Embed maps text to a unit vector. text must be non-empty after trimming.
func (e *Embedder) Embed(_ context.Context, text string) ([]float32, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, fmt.Errorf("hashing embedder: empty text after trim")
	}

	vec := make([]float32, e.dimension)
	tokens := e.tokenize(trimmed)
	if len(tokens) == 0 {
		// No recognised tokens (e.g. pure punctuation) still yields a
		// deterministic, non-zero vector so cosine similarity stays defined.
		tokens = []string{trimmed}
	}

	for _, tok := range tokens {
		bucket, sign := hashToken(tok, e.dimension)
		vec[bucket] += sign
	}

	normalize(vec)
	return vec, nil
}

// EmbedBatch embeds each text independently, preserving order.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := e.Embed(ctx, t)
		if err != nil {
			return nil, fmt.Errorf("embed batch [%d]: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

func (e *Embedder) tokenize(text string) []string {
	lower := strings.ToLower(text)
	raw := tokenPattern.FindAllString(lower, -1)
	out := raw[:0]
	for _, tok := range raw {
		if _, stop := e.stopwords[tok]; stop {
			continue
		}
		out = append(out, tok)
	}
	return out
}

// hashToken hashes a token into a bucket index and a +1/-1 sign, the
// standard random-projection hashing trick used by feature-hashed
// vectorizers (one FNV-1a hash over the token picks the bucket, a second
// over a salted variant of it picks the sign, keeping the two roughly
// decorrelated).
func hashToken(tok string, dimension int) (int, float32) {
	bucketHash := fnv.New32a()
	_, _ = bucketHash.Write([]byte(tok))
	bucket := int(bucketHash.Sum32() % uint32(dimension))

	signHash := fnv.New32a()
	_, _ = signHash.Write([]byte("sign:" + tok))
	sign := float32(1)
	if signHash.Sum32()%2 == 0 {
		sign = -1
	}
	return bucket, sign
}

func normalize(vec []float32) {
	var sumSquares float64
	for _, v := range vec {
		sumSquares += float64(v) * float64(v)
	}
	norm := math.Sqrt(sumSquares)
	if norm == 0 {
		return
	}
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to",
		"of", "in", "on", "at", "by", "with", "as", "is", "are", "was", "were",
		"be", "been", "being", "it", "this", "that", "these", "those", "from",
		"up", "down", "over", "under", "again", "further", "than", "so", "such",
		"into", "about", "between", "through", "during", "before", "after",
		"above", "below", "out", "off", "own", "same", "too", "very", "can",
		"will", "just", "don", "should", "now", "her", "his", "she", "he",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
