package quizzes

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
)

func TestIsUniqueViolation(t *testing.T) {
	unique := &pq.Error{Code: "23505"}
	if !isUniqueViolation(unique) {
		t.Error("23505 should classify as a unique violation")
	}
	if !isUniqueViolation(fmt.Errorf("insert answer: %w", unique)) {
		t.Error("wrapped 23505 should classify as a unique violation")
	}
	if isUniqueViolation(&pq.Error{Code: "23503"}) {
		t.Error("foreign-key violation should not classify as unique")
	}
	if isUniqueViolation(errors.New("connection reset")) {
		t.Error("non-pq error should not classify as unique")
	}
	if isUniqueViolation(nil) {
		t.Error("nil should not classify as unique")
	}
}
