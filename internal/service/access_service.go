package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campushq/sis-core-api/internal/dto"
	"github.com/campushq/sis-core-api/internal/models"
	appErrors "github.com/campushq/sis-core-api/pkg/errors"
)

type accessAuditWriter interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// resourcePolicy maps an action to the roles allowed to perform it outright.
type resourcePolicy map[string][]models.UserRole

// accessPolicies is the static role matrix. Roles absent from an action are
// denied unless a conditional rule below applies.
var accessPolicies = map[string]resourcePolicy{
	"students": {
		"read":  {models.RoleSuperAdmin, models.RoleAdmin},
		"write": {models.RoleSuperAdmin, models.RoleAdmin},
	},
	"attendance": {
		"read":  {models.RoleSuperAdmin, models.RoleAdmin, models.RoleTeacher},
		"write": {models.RoleSuperAdmin, models.RoleAdmin, models.RoleTeacher},
	},
	"bell_schedules": {
		"read":  {models.RoleSuperAdmin, models.RoleAdmin, models.RoleTeacher, models.RoleStudent},
		"write": {models.RoleSuperAdmin, models.RoleAdmin},
	},
	"substitutes": {
		"read":  {models.RoleSuperAdmin, models.RoleAdmin, models.RoleTeacher},
		"write": {models.RoleSuperAdmin, models.RoleAdmin},
	},
	"reports": {
		"read":  {models.RoleSuperAdmin, models.RoleAdmin},
		"write": {models.RoleSuperAdmin, models.RoleAdmin},
	},
	"platform": {
		"read": {models.RoleSuperAdmin},
	},
}

// studentListCap bounds how many rows a conditional student read may return.
const studentListCap = 200

// AccessService evaluates role-based permission checks and produces access
// decisions with any attached conditions.
type AccessService struct {
	audit     accessAuditWriter
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAccessService constructs an AccessService.
func NewAccessService(audit accessAuditWriter, validate *validator.Validate, logger *zap.Logger) *AccessService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AccessService{audit: audit, validator: validate, logger: logger}
}

// Check evaluates whether the claimed user may perform the requested action
// on the resource. The result is always a decision, never an error, except
// for invalid payloads.
func (s *AccessService) Check(ctx context.Context, claims *models.JWTClaims, req dto.AccessCheckRequest) (*models.AccessDecision, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid access check payload")
	}
	if claims == nil {
		return models.DeniedDecision("no authenticated subject"), nil
	}

	decision := s.evaluate(claims, req)
	s.recordAudit(ctx, claims, req, decision)
	return decision, nil
}

func (s *AccessService) evaluate(claims *models.JWTClaims, req dto.AccessCheckRequest) *models.AccessDecision {
	if claims.Role == models.RoleSuperAdmin {
		decision := models.GrantedDecision("superadmin bypasses resource policies")
		decision.AddPermission(fmt.Sprintf("%s:%s", req.Resource, req.Action))
		return decision
	}

	policy, ok := accessPolicies[req.Resource]
	if !ok {
		return models.DeniedDecision(fmt.Sprintf("unknown resource %q", req.Resource))
	}
	roles, ok := policy[req.Action]
	if !ok {
		return models.DeniedDecision(fmt.Sprintf("action %q is not defined for resource %q", req.Action, req.Resource))
	}

	for _, role := range roles {
		if role == claims.Role {
			decision := models.GrantedDecision(fmt.Sprintf("role %s holds %s:%s", claims.Role, req.Resource, req.Action))
			decision.AddPermission(fmt.Sprintf("%s:%s", req.Resource, req.Action))
			return decision
		}
	}

	if conditional := s.conditionalGrant(claims, req); conditional != nil {
		return conditional
	}

	return models.DeniedDecision(fmt.Sprintf("role %s lacks %s:%s", claims.Role, req.Resource, req.Action))
}

// conditionalGrant covers the narrow read paths a plain role match does not:
// teachers reading student rosters and students reading their own records.
func (s *AccessService) conditionalGrant(claims *models.JWTClaims, req dto.AccessCheckRequest) *models.AccessDecision {
	if req.Action != "read" {
		return nil
	}

	switch {
	case req.Resource == "students" && claims.Role == models.RoleTeacher:
		decision := models.ConditionalDecision("teachers read students scoped to their classes")
		decision.AddPermission("students:read")
		decision.AddRestriction("scope", "assigned_classes")
		decision.AddMaskedField("guardian_phone")
		decision.AddMaskedField("birth_date")
		decision.LimitRecords(studentListCap)
		return decision

	case req.Resource == "students" && claims.Role == models.RoleStudent:
		if req.ResourceID == "" || req.ResourceID != claims.UserID {
			return nil
		}
		decision := models.ConditionalDecision("students read their own record")
		decision.AddPermission("students:read_self")
		decision.AddRestriction("scope", "self")
		return decision

	case req.Resource == "attendance" && claims.Role == models.RoleStudent:
		if req.ResourceID != "" && req.ResourceID != claims.UserID {
			return nil
		}
		decision := models.ConditionalDecision("students read their own attendance")
		decision.AddPermission("attendance:read_self")
		decision.AddRestriction("scope", "self")
		return decision
	}

	return nil
}

func (s *AccessService) recordAudit(ctx context.Context, claims *models.JWTClaims, req dto.AccessCheckRequest, decision *models.AccessDecision) {
	if s.audit == nil {
		return
	}
	payload, err := json.Marshal(map[string]interface{}{
		"resource": req.Resource,
		"action":   req.Action,
		"decision": decision.Decision,
	})
	if err != nil {
		payload = []byte(`{}`)
	}
	entry := &models.AuditLog{
		UserID:    &claims.UserID,
		Action:    models.AuditActionAccessCheck,
		Resource:  req.Resource,
		NewValues: payload,
	}
	if req.ResourceID != "" {
		entry.ResourceID = &req.ResourceID
	}
	if err := s.audit.CreateAuditLog(ctx, entry); err != nil {
		s.logger.Warn("failed to record access check audit log", zap.Error(err))
	}
}
