package stdlib

import (
	"strings"

	"github.com/google/uuid"

	"github.com/lemonberrylabs/miro/pkg/types"
)

// registerUUID registers unique-id.
func (r *Registry) registerUUID() {
	r.Register("unique-id", uniqueID)
}

// uniqueID returns a fresh identifier usable as a CSS class or keyframes
// name. It always starts with a letter.
func uniqueID(args []types.Value) (types.Value, error) {
	if err := requireArgs("unique-id", args, 0, 0); err != nil {
		return nil, err
	}
	id := uuid.New()
	return types.NewIdent("u" + strings.ReplaceAll(id.String(), "-", "")[:12]), nil
}
