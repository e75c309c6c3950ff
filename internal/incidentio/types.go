package incidentio

import "time"

// Incident represents an incident from the incident.io v2 REST API.
// Only the fields the bot consumes are mapped.
type Incident struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	Reference       string           `json:"reference"`
	IncidentStatus  StatusField      `json:"incident_status"`
	Severity        *SeverityField   `json:"severity"`
	RoleAssignments []RoleAssignment `json:"incident_role_assignments"`
	TimestampValues []TimestampValue `json:"incident_timestamp_values"`
}

// StatusField represents an incident's status.
type StatusField struct {
	Category string `json:"category"`
	Name     string `json:"name"`
}

// SeverityField represents an incident's severity.
type SeverityField struct {
	Name string `json:"name"`
}

// RoleAssignment pairs an incident role with its assignee.
type RoleAssignment struct {
	Role     *Role     `json:"role"`
	Assignee *Assignee `json:"assignee"`
}

// Role represents an incident role definition.
type Role struct {
	Name      string `json:"name"`
	Shortform string `json:"shortform"`
	RoleType  string `json:"role_type"`
}

// Assignee represents the user assigned to a role.
type Assignee struct {
	Name        string `json:"name"`
	SlackUserID string `json:"slack_user_id"`
}

// TimestampValue is one entry of an incident's named timestamps.
type TimestampValue struct {
	IncidentTimestamp TimestampName `json:"incident_timestamp"`
	Value             *ValueWrapper `json:"value"`
}

// TimestampName identifies a named incident timestamp ("Resolved at", ...).
type TimestampName struct {
	Name string `json:"name"`
}

// ValueWrapper wraps the actual timestamp value.
type ValueWrapper struct {
	Value time.Time `json:"value"`
}

// ListResponse is the response envelope for GET /incidents.
type ListResponse struct {
	Incidents []Incident `json:"incidents"`
}

// ResolvedAt returns the incident's resolution timestamp, preferring the
// "Resolved at" timestamp over "Closed at". ok is false when neither is set.
func (i *Incident) ResolvedAt() (t time.Time, ok bool) {
	for _, name := range []string{"Resolved at", "Closed at"} {
		for _, tv := range i.TimestampValues {
			if tv.IncidentTimestamp.Name == name && tv.Value != nil && !tv.Value.Value.IsZero() {
				return tv.Value.Value, true
			}
		}
	}
	return time.Time{}, false
}

// Lead returns the incident lead's role assignment. Matches on role name
// "Incident Lead", shortform "lead", or role type "lead", first match wins.
func (i *Incident) Lead() *RoleAssignment {
	for idx := range i.RoleAssignments {
		ra := &i.RoleAssignments[idx]
		if ra.Role == nil {
			continue
		}
		if ra.Role.Name == "Incident Lead" || ra.Role.Shortform == "lead" || ra.Role.RoleType == "lead" {
			return ra
		}
	}
	return nil
}

// LeadSlackUserID returns the Slack user ID of the incident lead, and the
// lead's display name for logging. Empty ID means no lead is resolvable.
func (i *Incident) LeadSlackUserID() (userID, name string) {
	lead := i.Lead()
	if lead == nil || lead.Assignee == nil {
		return "", ""
	}
	return lead.Assignee.SlackUserID, lead.Assignee.Name
}

// Display returns the human-readable incident label: "REF: Name" when a
// reference exists, otherwise the name, otherwise the raw ID.
func (i *Incident) Display() string {
	if i.Reference != "" && i.Name != "" {
		return i.Reference + ": " + i.Name
	}
	if i.Name != "" {
		return i.Name
	}
	return i.ID
}
