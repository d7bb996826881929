package models

// Decision enumerates the possible outcomes of a permission check.
type Decision string

const (
	DecisionGranted     Decision = "GRANTED"
	DecisionDenied      Decision = "DENIED"
	DecisionConditional Decision = "CONDITIONAL"
)

// Valid returns true when the decision is a supported value.
func (d Decision) Valid() bool {
	switch d {
	case DecisionGranted, DecisionDenied, DecisionConditional:
		return true
	default:
		return false
	}
}

// AccessDecision captures the outcome of a permission check, including any
// conditions (field masking, row caps, scoping restrictions) attached to a
// conditional grant.
type AccessDecision struct {
	Decision           Decision          `json:"decision"`
	Granted            bool              `json:"granted"`
	Reason             string            `json:"reason"`
	Reasons            []string          `json:"reasons,omitempty"`
	AppliedPermissions []string          `json:"applied_permissions,omitempty"`
	DataRestrictions   map[string]string `json:"data_restrictions,omitempty"`
	MaskedFields       []string          `json:"masked_fields,omitempty"`
	MaxRecords         *int              `json:"max_records,omitempty"`
}

// GrantedDecision builds an unconditional allow result.
func GrantedDecision(reason string) *AccessDecision {
	return &AccessDecision{
		Decision: DecisionGranted,
		Granted:  true,
		Reason:   reason,
	}
}

// DeniedDecision builds a deny result.
func DeniedDecision(reason string) *AccessDecision {
	return &AccessDecision{
		Decision: DecisionDenied,
		Granted:  false,
		Reason:   reason,
	}
}

// ConditionalDecision builds an allow result that carries restrictions.
func ConditionalDecision(reason string) *AccessDecision {
	return &AccessDecision{
		Decision: DecisionConditional,
		Granted:  true,
		Reason:   reason,
	}
}

// AddReason appends a supplementary reason.
func (d *AccessDecision) AddReason(reason string) {
	if reason == "" {
		return
	}
	if d.Reasons == nil {
		d.Reasons = make([]string, 0, 1)
	}
	d.Reasons = append(d.Reasons, reason)
}

// AddPermission records a permission that contributed to the decision.
func (d *AccessDecision) AddPermission(permission string) {
	if permission == "" {
		return
	}
	if d.AppliedPermissions == nil {
		d.AppliedPermissions = make([]string, 0, 1)
	}
	d.AppliedPermissions = append(d.AppliedPermissions, permission)
}

// AddMaskedField marks a field to be masked in responses.
func (d *AccessDecision) AddMaskedField(field string) {
	if field == "" {
		return
	}
	if d.MaskedFields == nil {
		d.MaskedFields = make([]string, 0, 1)
	}
	d.MaskedFields = append(d.MaskedFields, field)
}

// AddRestriction attaches a named data restriction to the decision.
func (d *AccessDecision) AddRestriction(key, value string) {
	if key == "" {
		return
	}
	if d.DataRestrictions == nil {
		d.DataRestrictions = make(map[string]string, 1)
	}
	d.DataRestrictions[key] = value
}

// LimitRecords caps the number of records the caller may read.
func (d *AccessDecision) LimitRecords(max int) {
	if max <= 0 {
		return
	}
	d.MaxRecords = &max
}
