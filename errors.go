package permit

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xraph/permit/ability"
	"github.com/xraph/permit/condition"
	"github.com/xraph/permit/permission"
)

var (
	// ErrConditionProviderRequired is returned by NewEngine without a condition provider.
	ErrConditionProviderRequired = errors.New("permit: condition provider is required")

	// ErrAbilityBuilderRequired is returned by NewEngine when the builder factory is nil.
	ErrAbilityBuilderRequired = errors.New("permit: ability builder factory is required")

	// ErrInvalidHook is matched by *InvalidHookError.
	ErrInvalidHook = errors.New("permit: invalid hook")

	// ErrInvalidHookHandler is returned when a handler does not fit its hook.
	ErrInvalidHookHandler = errors.New("permit: invalid hook handler")

	// ErrInvalidPermission is returned for a permission without an action.
	ErrInvalidPermission = permission.ErrInvalidPermission

	// ErrConditionTimeout is returned when a condition handler exceeds
	// Config.ConditionTimeout.
	ErrConditionTimeout = condition.ErrConditionTimeout

	// ErrForbidden is returned by ability queries when nothing is permitted.
	ErrForbidden = ability.ErrForbidden
)

// InvalidHookError reports an unknown hook name.
type InvalidHookError struct {
	Name  string
	Valid []Hook
}

func (e *InvalidHookError) Error() string {
	names := make([]string, len(e.Valid))
	for i, h := range e.Valid {
		names[i] = string(h)
	}
	return fmt.Sprintf("permit: invalid hook %q, expected one of: %s", e.Name, strings.Join(names, ", "))
}

// Is makes errors.Is(err, ErrInvalidHook) hold.
func (e *InvalidHookError) Is(target error) bool { return target == ErrInvalidHook }
