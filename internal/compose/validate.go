package compose

import (
	"fmt"

	"github.com/gofrs/uuid"
)

const (
	msgChooseOneAlternative  = "choose exactly one of the alternatives"
	msgChooseOnlyAlternative = "choose only one of the alternatives"
	msgMisconfigured         = "step is misconfigured: choice limits are out of range"
)

// CollectErrors checks selections against each step's cardinality and the
// exactly-one rule of every XOR cluster. The result maps group IDs to a
// message; an empty map means the selection is valid.
func CollectErrors(steps []Step, selections map[uuid.UUID][]uuid.UUID) map[uuid.UUID]string {
	errs := make(map[uuid.UUID]string)
	xorTotals := make(map[string]int)

	for _, step := range steps {
		if step.XORTag == "" {
			continue
		}
		xorTotals[step.XORTag] += len(selections[step.Group.ID])
	}

	for _, step := range steps {
		id := step.Group.ID
		if step.MinChoices < 0 || step.MaxChoices < step.MinChoices {
			errs[id] = msgMisconfigured
			continue
		}

		count := len(selections[id])
		required := step.MinChoices
		if step.XORTag != "" {
			required = 0
		}
		switch {
		case count < required && step.MinChoices == step.MaxChoices:
			errs[id] = fmt.Sprintf("select exactly %d option(s)", step.MinChoices)
		case count < required:
			errs[id] = fmt.Sprintf("select at least %d option(s)", step.MinChoices)
		case count > step.MaxChoices:
			errs[id] = fmt.Sprintf("select at most %d option(s)", step.MaxChoices)
		}
	}

	for _, step := range steps {
		if step.XORTag == "" || errs[step.Group.ID] == msgMisconfigured {
			continue
		}
		switch total := xorTotals[step.XORTag]; {
		case total == 0:
			errs[step.Group.ID] = msgChooseOneAlternative
		case total > 1:
			errs[step.Group.ID] = msgChooseOnlyAlternative
		}
	}

	return errs
}
