package permit

import "github.com/xraph/permit/id"

// ID is the primary identifier type for all Permit entities.
type ID = id.ID

// GenerationID identifies one GenerateAbility run.
type GenerationID = id.GenerationID
