package connectors

import "github.com/nithinv16/dukaaon-admin-console-sub005/internal"

// MailConnector fetches raw messages from the receipts inbox staff forward
// scanned receipts to.
type MailConnector interface {
	FetchInbox(label string, max int) ([]internal.FetchedMailMessage, error)
}
