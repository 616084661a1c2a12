// Package advice adapts an external chat-completion service into the small
// Generator interface the reading service consumes. The concrete client is
// injected at construction so tests can substitute a deterministic fake.
package advice

import "context"

// Input carries the birth data a reading is generated from.
type Input struct {
	Name      string
	BirthDate string
	BirthTime string // optional, empty when not provided
	Location  string
}

// Generator produces advice text for the given birth data.
type Generator interface {
	Generate(ctx context.Context, in Input) (string, error)
}
