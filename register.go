package permit

import (
	"context"

	"github.com/xraph/permit/permission"
)

// register runs the before-register hook and adds p to the run's builder.
// compiled, when non-nil, becomes the permission's condition tree.
func (e *Engine) register(ctx context.Context, run *generation, p permission.Permission, compiled map[string]any) error {
	rp := permission.Permission{
		ID:         p.ID,
		Action:     p.Action,
		Subject:    p.Subject,
		Properties: p.Properties,
		Condition:  compiled,
	}
	rc := &RegisterContext{permission: &rp, options: run.options}

	if err := e.hooks.BeforeRegister.Call(ctx, rc); err != nil {
		return err
	}
	return run.builder.Can(rp)
}
