// Package connectors pulls supplier mail out of a mailbox and into the
// ingest ledger.
package connectors

import "despensa/internal"

type MailConnector interface {
	FetchInbox(label string, max int) ([]internal.FetchedMailMessage, error)
}
