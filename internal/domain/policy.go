package domain

// TicketField names the mutable ticket fields gated by the edit policy.
type TicketField string

const (
	TicketFieldSubject     TicketField = "subject"
	TicketFieldDescription TicketField = "description"
	TicketFieldStatus      TicketField = "status"
	TicketFieldPriority    TicketField = "priority"
	TicketFieldDepartment  TicketField = "department_id"
	TicketFieldOperator    TicketField = "operator_id"
)

// CanEditField is the role/status access matrix for explicit ticket updates.
// Clients may only touch subject and description, and only while the ticket
// is still OPEN; in particular they can never set status directly. Their
// only path to a status change is the message-driven transition function.
// Staff may edit everything.
func CanEditField(role UserRole, status TicketStatus, field TicketField) bool {
	switch role {
	case UserRoleOperator, UserRoleAdmin:
		return true
	case UserRoleClient:
		if status != TicketStatusOpen {
			return false
		}
		return field == TicketFieldSubject || field == TicketFieldDescription
	}
	return false
}
