package postgresql_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-payroll-desk/internal/pkg/database"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const schema = `
CREATE EXTENSION IF NOT EXISTS pgcrypto;

CREATE TABLE IF NOT EXISTS employees (
	id         TEXT PRIMARY KEY,
	full_name  TEXT NOT NULL,
	deleted_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS punches (
	id             UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	employee_id    TEXT NOT NULL REFERENCES employees(id),
	kind           TEXT NOT NULL,
	nominal_date   DATE NOT NULL,
	local_datetime TIMESTAMP NOT NULL,
	day_offset     INT NOT NULL DEFAULT 0,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS payroll_daily (
	employee_id                TEXT NOT NULL REFERENCES employees(id),
	date                       DATE NOT NULL,
	base_pay                   NUMERIC(12,2) NOT NULL DEFAULT 0,
	daytime_overtime_minutes   INT NOT NULL DEFAULT 0,
	daytime_overtime_pay       NUMERIC(12,2) NOT NULL DEFAULT 0,
	nighttime_overtime_minutes INT NOT NULL DEFAULT 0,
	nighttime_overtime_pay     NUMERIC(12,2) NOT NULL DEFAULT 0,
	deficit_minutes            INT NOT NULL DEFAULT 0,
	deductions                 NUMERIC(12,2) NOT NULL DEFAULT 0,
	net_pay                    NUMERIC(12,2) NOT NULL DEFAULT 0,
	observation                TEXT,
	entry_clock                TEXT,
	exit_clock                 TEXT,
	updated_at                 TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (employee_id, date)
);

CREATE TABLE IF NOT EXISTS salary_advances (
	id           UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	employee_id  TEXT NOT NULL REFERENCES employees(id),
	request_date DATE NOT NULL,
	amount       NUMERIC(12,2) NOT NULL,
	description  TEXT,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

// newTestDB connects to TEST_DATABASE_URL, or starts a throwaway PostgreSQL container.
// The test is skipped when neither is available.
func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping database test in short mode")
	}

	ctx := context.Background()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		var err error
		dsn, err = startPostgres(t)
		if err != nil {
			t.Skipf("no test database available: %v", err)
		}
	}

	db, err := database.NewPostgreSQLDB(ctx, dsn)
	if err != nil {
		t.Skipf("cannot connect to test database: %v", err)
	}
	t.Cleanup(db.Close)

	if _, err := db.Exec(ctx, schema); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}
	truncateAll(t, db)
	return db
}

func startPostgres(t *testing.T) (string, error) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "postgres",
			"POSTGRES_PASSWORD": "postgres",
			"POSTGRES_DB":       "payroll_desk_test",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return "", err
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate postgres container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	if err != nil {
		return "", err
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("postgres://postgres:postgres@%s:%s/payroll_desk_test?sslmode=disable", host, port.Port()), nil
}

func truncateAll(t *testing.T, db *database.DB) {
	t.Helper()
	_, err := db.Exec(context.Background(),
		"TRUNCATE TABLE punches, payroll_daily, salary_advances, employees CASCADE")
	if err != nil {
		t.Fatalf("failed to truncate tables: %v", err)
	}
}

func seedEmployee(t *testing.T, db *database.DB, id, name string) {
	t.Helper()
	_, err := db.Exec(context.Background(),
		"INSERT INTO employees (id, full_name) VALUES ($1, $2)", id, name)
	if err != nil {
		t.Fatalf("failed to seed employee: %v", err)
	}
}

func seedDay(t *testing.T, db *database.DB, employeeID, date, netPay, observation string) {
	t.Helper()
	_, err := db.Exec(context.Background(), `
		INSERT INTO payroll_daily (employee_id, date, base_pay, daytime_overtime_minutes, daytime_overtime_pay,
			nighttime_overtime_pay, deductions, net_pay, observation, entry_clock, exit_clock)
		VALUES ($1, $2::date, 40.00, 60, 6.50, 2.25, 1.75, $3::numeric, $4, '08:00', '17:00')
	`, employeeID, date, netPay, observation)
	if err != nil {
		t.Fatalf("failed to seed payroll day: %v", err)
	}
}

func seedAdvance(t *testing.T, db *database.DB, employeeID, date, amount, description string) {
	t.Helper()
	_, err := db.Exec(context.Background(), `
		INSERT INTO salary_advances (employee_id, request_date, amount, description)
		VALUES ($1, $2::date, $3::numeric, $4)
	`, employeeID, date, amount, description)
	if err != nil {
		t.Fatalf("failed to seed advance: %v", err)
	}
}
