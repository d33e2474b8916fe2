package database

import "testing"

func TestDSN(t *testing.T) {
	got := dsn("crm", "pw", "db.internal", "3306", "crmdb")
	want := "crm:pw@tcp(db.internal:3306)/crmdb?charset=utf8mb4&parseTime=true&loc=UTC"
	if got != want {
		t.Errorf("dsn = %q, want %q", got, want)
	}
}

func TestDSNEmptyPassword(t *testing.T) {
	got := dsn("crm", "", "localhost", "3306", "crmdb")
	want := "crm@tcp(localhost:3306)/crmdb?charset=utf8mb4&parseTime=true&loc=UTC"
	if got != want {
		t.Errorf("dsn = %q, want %q", got, want)
	}
}
