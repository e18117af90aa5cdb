package surreal

import (
	"errors"
	"fmt"
	"strings"

	"github.com/surrealdb/surrealdb.go"

	"github.com/loreline/loreline/internal/store"
)

// wrapQueryError inspects a SurrealDB error and wraps known query error
// patterns with the store sentinel errors. Other failures are wrapped as
// store.ErrUnavailable so the fallback layer can recognize them.
func wrapQueryError(err error) error {
	if err == nil {
		return nil
	}

	var queryErr *surrealdb.QueryError
	if errors.As(err, &queryErr) {
		msg := queryErr.Message
		if strings.Contains(msg, "already exists") {
			return fmt.Errorf("record already exists: %s", msg)
		}
		return err
	}

	return fmt.Errorf("%w: %v", store.ErrUnavailable, err)
}
