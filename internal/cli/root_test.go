package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/estatedesk/portal/internal/utils"
	"github.com/estatedesk/portal/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	logger.SetOutput(io.Discard)
}

// run executes portalctl against a fresh sqlite file and default config.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml")}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_DSN", filepath.Join(t.TempDir(), "portal.db"))
	t.Setenv("JWT_SECRET", "cli-test-secret")
	t.Setenv("REMOTE_ASSIGNMENTS_URL", "")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	assert.Equal(t, "portalctl", cmd.Use)

	for _, name := range []string{"edges", "sync", "cleanup", "token"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestInvalidFormat(t *testing.T) {
	isolate(t)
	_, err := run(t, "--format", "yaml", "edges")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestToken_RoundTrips(t *testing.T) {
	isolate(t)

	out, err := run(t, "token", "--role", "consultant", "--subject", "C-7", "--hours", "2")
	require.NoError(t, err)

	utils.SetJWTSecret("cli-test-secret")
	claims, err := utils.ParseToken(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, utils.RoleConsultant, claims.Role)
	assert.Equal(t, "C-7", claims.SubjectID)
	assert.Equal(t, "portalctl", claims.UserID)
}

func TestToken_SubjectRequiredForNonAdmin(t *testing.T) {
	isolate(t)
	_, err := run(t, "token", "--role", "client")
	require.Error(t, err)

	_, err = run(t, "token", "--role", "superuser", "--subject", "x")
	require.Error(t, err, "unknown roles are rejected")
}

func TestEdgesAndCleanup(t *testing.T) {
	isolate(t)
	ctx := context.Background()

	e, err := openEnv(&RootOptions{ConfigPath: filepath.Join(t.TempDir(), "missing.yaml")})
	require.NoError(t, err)
	_, err = e.assignments.AssignClientToProject(ctx, "P1", "X1")
	require.NoError(t, err)
	_, err = e.assignments.AssignConsultantToProject(ctx, "P1", "C1")
	require.NoError(t, err)
	e.Close()

	out, err := run(t, "--format", "json", "edges", "--relation", "client-consultant")
	require.NoError(t, err)
	var rows []edgeRow
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "X1", rows[0].A)
	assert.Equal(t, "C1", rows[0].B)

	out, err = run(t, "cleanup", "--consultant", "C1")
	require.NoError(t, err)
	assert.Contains(t, out, "removed 2 edge(s) for consultant")

	out, err = run(t, "edges", "--relation", "project-client")
	require.NoError(t, err)
	assert.Contains(t, out, "P1", "project-client edges are untouched by a consultant cleanup")

	out, err = run(t, "--format", "json", "edges", "--relation", "project-consultant")
	require.NoError(t, err)
	assert.JSONEq(t, "[]", out)
}

func TestCleanup_RequiresExactlyOneTarget(t *testing.T) {
	isolate(t)
	_, err := run(t, "cleanup")
	require.Error(t, err)

	_, err = run(t, "cleanup", "--client", "X1", "--project", "P1")
	require.Error(t, err)
}

func TestEdges_UnknownRelation(t *testing.T) {
	isolate(t)
	_, err := run(t, "edges", "--relation", "client-project")
	require.Error(t, err)
}

func TestSync_DisabledWithoutEndpoint(t *testing.T) {
	isolate(t)
	_, err := run(t, "sync")
	require.Error(t, err)
}
