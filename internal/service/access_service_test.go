package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campushq/sis-core-api/internal/dto"
	"github.com/campushq/sis-core-api/internal/models"
)

type stubAuditWriter struct {
	entries []*models.AuditLog
}

func (m *stubAuditWriter) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	m.entries = append(m.entries, log)
	return nil
}

func newAccessService(audit *stubAuditWriter) *AccessService {
	return NewAccessService(audit, validator.New(), zap.NewNop())
}

func adminClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: "u-admin", Role: models.RoleAdmin}
}

func TestAccessCheckAdminGranted(t *testing.T) {
	audit := &stubAuditWriter{}
	svc := newAccessService(audit)

	decision, err := svc.Check(context.Background(), adminClaims(), dto.AccessCheckRequest{Resource: "students", Action: "write"})
	require.NoError(t, err)
	assert.Equal(t, models.DecisionGranted, decision.Decision)
	assert.True(t, decision.Granted)
	assert.Contains(t, decision.AppliedPermissions, "students:write")
	assert.Len(t, audit.entries, 1)
}

func TestAccessCheckSuperadminBypass(t *testing.T) {
	svc := newAccessService(&stubAuditWriter{})
	claims := &models.JWTClaims{UserID: "u-root", Role: models.RoleSuperAdmin}

	decision, err := svc.Check(context.Background(), claims, dto.AccessCheckRequest{Resource: "platform", Action: "read"})
	require.NoError(t, err)
	assert.Equal(t, models.DecisionGranted, decision.Decision)
}

func TestAccessCheckTeacherConditionalStudents(t *testing.T) {
	svc := newAccessService(&stubAuditWriter{})
	claims := &models.JWTClaims{UserID: "u-teacher", Role: models.RoleTeacher}

	decision, err := svc.Check(context.Background(), claims, dto.AccessCheckRequest{Resource: "students", Action: "read"})
	require.NoError(t, err)
	assert.Equal(t, models.DecisionConditional, decision.Decision)
	assert.True(t, decision.Granted)
	assert.Equal(t, "assigned_classes", decision.DataRestrictions["scope"])
	assert.Contains(t, decision.MaskedFields, "guardian_phone")
	require.NotNil(t, decision.MaxRecords)
	assert.Equal(t, studentListCap, *decision.MaxRecords)
}

func TestAccessCheckStudentSelfRead(t *testing.T) {
	svc := newAccessService(&stubAuditWriter{})
	claims := &models.JWTClaims{UserID: "s-1", Role: models.RoleStudent}

	own, err := svc.Check(context.Background(), claims, dto.AccessCheckRequest{Resource: "students", Action: "read", ResourceID: "s-1"})
	require.NoError(t, err)
	assert.Equal(t, models.DecisionConditional, own.Decision)
	assert.Equal(t, "self", own.DataRestrictions["scope"])

	other, err := svc.Check(context.Background(), claims, dto.AccessCheckRequest{Resource: "students", Action: "read", ResourceID: "s-2"})
	require.NoError(t, err)
	assert.Equal(t, models.DecisionDenied, other.Decision)
	assert.False(t, other.Granted)
}

func TestAccessCheckDeniedPaths(t *testing.T) {
	svc := newAccessService(&stubAuditWriter{})
	claims := &models.JWTClaims{UserID: "u-teacher", Role: models.RoleTeacher}

	unknown, err := svc.Check(context.Background(), claims, dto.AccessCheckRequest{Resource: "payroll", Action: "read"})
	require.NoError(t, err)
	assert.Equal(t, models.DecisionDenied, unknown.Decision)

	write, err := svc.Check(context.Background(), claims, dto.AccessCheckRequest{Resource: "reports", Action: "write"})
	require.NoError(t, err)
	assert.Equal(t, models.DecisionDenied, write.Decision)

	missing, err := svc.Check(context.Background(), nil, dto.AccessCheckRequest{Resource: "students", Action: "read"})
	require.NoError(t, err)
	assert.Equal(t, models.DecisionDenied, missing.Decision)
}

func TestAccessCheckValidation(t *testing.T) {
	svc := newAccessService(&stubAuditWriter{})

	_, err := svc.Check(context.Background(), adminClaims(), dto.AccessCheckRequest{Resource: "students"})
	require.Error(t, err)
}
