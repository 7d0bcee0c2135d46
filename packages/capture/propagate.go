package capture

import (
	"github.com/abdul-hamid-achik/paychain/packages/core/env"
	"go.uber.org/zap"
)

// DefaultFields are the identifiers threaded through payment scenarios.
var DefaultFields = []string{"payment_id", "mandate_id", "client_secret"}

// Propagate copies body[field] into the store under the same name. A
// missing or null field leaves the store as it was. Both outcomes are
// logged at info level. It reports whether the store was written.
func Propagate(body Body, field string, store *env.Store, log *zap.Logger) bool {
	if log == nil {
		log = zap.NewNop()
	}

	value, ok := body.Get(field)
	if !ok {
		log.Info("unable to assign variable, field is undefined",
			zap.String("variable", "{{"+field+"}}"),
			zap.String("field", field),
		)
		return false
	}

	s := value.String()
	store.Set(field, s)
	log.Info("use variable for value",
		zap.String("variable", "{{"+field+"}}"),
		zap.String("value", s),
	)
	return true
}

// PropagateAll runs Propagate for each field and returns the values that
// were written.
func PropagateAll(body Body, fields []string, store *env.Store, log *zap.Logger) map[string]string {
	written := make(map[string]string)
	for _, field := range fields {
		if Propagate(body, field, store, log) {
			written[field], _ = store.Get(field)
		}
	}
	return written
}
