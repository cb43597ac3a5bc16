package board

import "github.com/pkg/errors"

// errNoHistory is returned by Undo when there is nothing to pop.
var errNoHistory = errors.New("board: no move to undo")
