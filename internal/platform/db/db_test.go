package db_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	mysql "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"booklend/internal/platform/db"
	"booklend/internal/platform/db/dbtest"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func Test_LoadConfig(t *testing.T) {
	path := writeConfig(t, `
version: "1"
mode: release
database:
  driver: sqlite3
  path: data/test.db
auth:
  jwt_secret: from-file
  token_ttl: 2h
loans:
  period_days: 21
server:
  addr: ":9000"
`)

	cfg, err := db.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "release", cfg.Mode)
	assert.Equal(t, db.DriverSQLite, cfg.DB.Driver)
	assert.Equal(t, "data/test.db", cfg.DB.Path)
	assert.Equal(t, "from-file", cfg.Auth.JWTSecret)
	assert.Equal(t, 2*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 21, cfg.Loans.PeriodDays)
	require.NotNil(t, cfg.Loans.MaxRenewals)
	assert.Equal(t, 3, *cfg.Loans.MaxRenewals)
	assert.Equal(t, ":9000", cfg.Server.Addr)
}

func Test_LoadConfig_Defaults(t *testing.T) {
	cfg, err := db.LoadConfig(writeConfig(t, "version: \"1\"\n"))
	require.NoError(t, err)
	assert.Equal(t, "dev", cfg.Mode)
	assert.Equal(t, db.DriverMySQL, cfg.DB.Driver)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 14, cfg.Loans.PeriodDays)
	require.NotNil(t, cfg.Loans.MaxRenewals)
	assert.Equal(t, 3, *cfg.Loans.MaxRenewals)
	assert.Equal(t, ":8443", cfg.Server.Addr)
}

func Test_LoadConfig_MaxRenewals(t *testing.T) {
	testCases := []struct {
		name string
		yaml string
		want int
	}{
		{name: "missing", yaml: "loans:\n  period_days: 7\n", want: 3},
		{name: "explicit zero", yaml: "loans:\n  max_renewals: 0\n", want: 0},
		{name: "explicit five", yaml: "loans:\n  max_renewals: 5\n", want: 5},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := db.LoadConfig(writeConfig(t, tc.yaml))
			require.NoError(t, err)
			require.NotNil(t, cfg.Loans.MaxRenewals)
			assert.Equal(t, tc.want, *cfg.Loans.MaxRenewals)
		})
	}

	_, err := db.LoadConfig(writeConfig(t, "loans:\n  max_renewals: -1\n"))
	assert.ErrorContains(t, err, "loans.max_renewals")
}

func Test_LoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("BOOKLEND_DB_DRIVER", "pgx")
	t.Setenv("BOOKLEND_DB_PASSWORD", "s3cret")
	t.Setenv("BOOKLEND_JWT_SECRET", "from-env")

	cfg, err := db.LoadConfig(writeConfig(t, `
database:
  driver: mysql
  password: in-file
auth:
  jwt_secret: from-file
`))
	require.NoError(t, err)
	assert.Equal(t, db.DriverPostgres, cfg.DB.Driver)
	assert.Equal(t, "s3cret", cfg.DB.Password)
	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
}

func Test_LoadConfig_Errors(t *testing.T) {
	_, err := db.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = db.LoadConfig(writeConfig(t, "mode: staging\n"))
	assert.ErrorContains(t, err, "mode must be dev or release")
}

func Test_Connect_SQLiteRequiresPath(t *testing.T) {
	_, err := db.Connect(db.DatabaseConfig{Driver: db.DriverSQLite})
	assert.ErrorContains(t, err, "database.path")

	_, err = db.Connect(db.DatabaseConfig{Driver: "oracle"})
	assert.ErrorContains(t, err, "unsupported database driver")
}

func Test_IsDuplicateKey(t *testing.T) {
	conn := dbtest.Open(t)
	ctx := context.Background()

	const ins = `INSERT INTO members (member_id, email, display_name, password_hash, is_admin, created_at) VALUES (?, ?, ?, ?, ?, ?)`
	now := time.Now().UTC()
	_, err := conn.ExecContext(ctx, ins, "01JA0000000000000000000001", "a@example.com", "A", "x", false, now)
	require.NoError(t, err)
	_, err = conn.ExecContext(ctx, ins, "01JA0000000000000000000002", "a@example.com", "B", "x", false, now)
	require.Error(t, err)

	testCases := []struct {
		name string
		err  error
		want bool
	}{
		{name: "sqlite unique", err: err, want: true},
		{name: "mysql 1062", err: fmt.Errorf("insert: %w", &mysql.MySQLError{Number: 1062}), want: true},
		{name: "mysql other", err: &mysql.MySQLError{Number: 1452}, want: false},
		{name: "postgres 23505", err: &pgconn.PgError{Code: "23505"}, want: true},
		{name: "plain", err: errors.New("boom"), want: false},
		{name: "nil", err: nil, want: false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, db.IsDuplicateKey(tc.err))
		})
	}
}

func Test_RunInTx_RollsBackOnError(t *testing.T) {
	conn := dbtest.Open(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := db.RunInTx(ctx, conn, nil, func(ctx context.Context, tx db.DBTX) error {
		_, err := tx.ExecContext(ctx, tx.Rebind(`INSERT INTO members (member_id, email, display_name, password_hash, is_admin, created_at) VALUES (?, ?, ?, ?, ?, ?)`),
			"01JA0000000000000000000003", "b@example.com", "B", "x", false, time.Now().UTC())
		require.NoError(t, err)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var n int
	require.NoError(t, conn.GetContext(ctx, &n, `SELECT COUNT(*) FROM members`))
	assert.Equal(t, 0, n)
}

func Test_Dialect(t *testing.T) {
	q, _, err := db.Dialect(db.DriverPostgres).From("books").Select("title").ToSQL()
	require.NoError(t, err)
	assert.Equal(t, `SELECT "title" FROM "books"`, q)

	q, _, err = db.Dialect(db.DriverMySQL).From("books").Select("title").ToSQL()
	require.NoError(t, err)
	assert.Equal(t, "SELECT `title` FROM `books`", q)
}
