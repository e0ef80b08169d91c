package relbin

import (
	"fmt"

	"github.com/columnar-sql/relbin/internal/planerr"
	"github.com/columnar-sql/relbin/internal/rel"
)

func unknownOp(op rel.Op) error {
	return planerr.ErrInternal.New(fmt.Sprintf("unhandled relational op %d", op))
}
