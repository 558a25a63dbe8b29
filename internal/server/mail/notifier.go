// Package mail implements best-effort delivery of account mails
// (verification and password-reset links). Delivery failures never
// propagate: Send reports false and the caller is expected to surface the
// link to the user directly instead.
package mail

import "context"

// Notifier delivers a plain-text mail. Implementations must not panic or
// return errors past this boundary; a false result means "not delivered,
// show the action to the user yourself".
type Notifier interface {
	Send(ctx context.Context, to, subject, body string) bool
}
