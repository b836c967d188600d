// Package mutation wraps plain entity writes so every create, update and
// delete produces exactly one audit record with before/after snapshots. The
// entity mutation and the audit append always share a transaction.
package mutation

import (
	"time"

	"pharma-elog-backend/internal/audit"
	"pharma-elog-backend/internal/store"
)

// Interceptor performs audited writes for Equipment, User, PMSchedule and
// draft log entry patches.
type Interceptor struct {
	store      store.Store
	recorder   *audit.Recorder
	bcryptCost int
	now        func() time.Time
}

// NewInterceptor wires the interceptor to the store and audit recorder.
// bcryptCost is used when hashing passwords on user create/update.
func NewInterceptor(s store.Store, r *audit.Recorder, bcryptCost int) *Interceptor {
	return &Interceptor{store: s, recorder: r, bcryptCost: bcryptCost, now: time.Now}
}
