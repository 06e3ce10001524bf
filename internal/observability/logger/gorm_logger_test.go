package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOperationFromSQL(t *testing.T) {
	cases := map[string]string{
		"SELECT * FROM invoices":                  "SELECT",
		"  insert into customers (id) values (?)": "INSERT",
		"":                                        "UNKNOWN",
		"PRAGMA foreign_keys = ON":                "UNKNOWN",
	}
	for sql, want := range cases {
		assert.Equal(t, want, operationFromSQL(sql), sql)
	}
}
