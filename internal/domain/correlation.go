package domain

import (
	"fmt"
	"regexp"
)

// ticketTagPattern matches the correlation tag embedded in email subjects,
// e.g. "Re: [Ticket #a1b2c3d4-...] Billing question". The tag is the only
// thing that ties a mailbox reply back to its conversation.
var ticketTagPattern = regexp.MustCompile(`(?i)\[Ticket #([a-f0-9-]+)\]`)

// ExtractTicketID pulls the ticket id out of an email subject. Returns the
// empty string when no tag is present.
func ExtractTicketID(subject string) string {
	m := ticketTagPattern.FindStringSubmatch(subject)
	if m == nil {
		return ""
	}
	return m[1]
}

// FormatTicketTag renders the correlation tag for outbound subjects.
func FormatTicketTag(ticketID string) string {
	return fmt.Sprintf("[Ticket #%s]", ticketID)
}
