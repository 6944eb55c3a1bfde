package wizard

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFinalStep = errors.New("booking can only be submitted from the payment step")
	ErrUnknownAgent = errors.New("selected agent is not among the ranked agents")
)

// StepError blocks a forward transition and names the fields that are missing.
type StepError struct {
	Step   int
	Fields []string
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d is incomplete: %s", e.Step, strings.Join(e.Fields, ", "))
}
