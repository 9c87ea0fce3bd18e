package permission

// State is the evaluation state of one permission inside a generation run.
type State string

const (
	// StatePending is the state before the pipeline finishes.
	StatePending State = "pending"

	// StateBailedPreFormat means a pre-format validator returned false.
	StateBailedPreFormat State = "bailed_pre_format"

	// StateBailedPostFormat means a post-format validator returned false.
	StateBailedPostFormat State = "bailed_post_format"

	// StateRegistered means the permission was added to the ability.
	StateRegistered State = "registered"

	// StateSkippedAllTrue means every evaluated condition returned true and
	// the permission was not registered.
	StateSkippedAllTrue State = "skipped_all_true"
)

// Terminal reports whether s ends the pipeline for a permission.
func (s State) Terminal() bool { return s != StatePending && s != "" }

// Registered reports whether the permission reached the ability builder.
func (s State) Registered() bool { return s == StateRegistered }
