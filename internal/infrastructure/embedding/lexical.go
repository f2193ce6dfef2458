package embedding

import (
	"context"
	"hash/fnv"
	"math"
	"regexp"
	"strings"
)

var tokenRegex = regexp.MustCompile(`[a-zA-Z0-9]+`)

// Lexical embeds text as an L2 normalised bag of hashed terms.
// It needs no external service, so it is the default for local runs.
type Lexical struct {
	dims int
}

func NewLexical(dims int) *Lexical {
	if dims <= 0 {
		dims = 512
	}
	return &Lexical{dims: dims}
}

func (l *Lexical) Name() string { return "lexical" }

func (l *Lexical) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = l.vector(text)
	}
	return vectors, nil
}

func (l *Lexical) vector(text string) []float32 {
	v := make([]float32, l.dims)
	for _, token := range tokenRegex.FindAllString(strings.ToLower(text), -1) {
		if len(token) < 2 {
			continue
		}
		h := fnv.New32a()
		_, _ = h.Write([]byte(token))
		v[h.Sum32()%uint32(l.dims)]++
	}

	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	n := float32(math.Sqrt(sum))
	for i := range v {
		v[i] /= n
	}
	return v
}
